package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"
	"unicode/utf8"

	"sidopi/internal/model"
	"sidopi/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type SubmissionItemRequest struct {
	MedicineID        string  `json:"medicine_id" binding:"required"`
	RequestedQuantity float64 `json:"requested_quantity" binding:"required,gt=0"`
	Notes             string  `json:"notes"`
}

type CreateSubmissionRequest struct {
	SubmissionType string                  `json:"submission_type"` // optional for POPT — derived from activity_type
	ActivityType   string                  `json:"activity_type"`
	Priority       string                  `json:"priority" binding:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	FarmerGroupID  string                  `json:"farmer_group_id" binding:"required"`
	Village        string                  `json:"village" binding:"required"`
	District       string                  `json:"district" binding:"required"`
	AffectedArea   float64                 `json:"affected_area" binding:"required,gt=0"`
	TotalArea      float64                 `json:"total_area" binding:"required,gt=0"`
	PestTypes      []string                `json:"pest_types" binding:"required,min=1,max=10,dive,required"`
	Description    string                  `json:"description"`
	Items          []SubmissionItemRequest `json:"items" binding:"required,min=1,dive"`
}

type ApprovedItemInput struct {
	ItemID           string  `json:"item_id" binding:"required"`
	ApprovedQuantity float64 `json:"approved_quantity"`
}

type UpdateStatusRequest struct {
	Status        string              `json:"status" binding:"required"`
	Note          string              `json:"note"`
	ApprovedItems []ApprovedItemInput `json:"approved_items"`
}

type SubmissionFilter struct {
	Status         string
	SubmissionType string
	District       string
	Page           int
	Limit          int
}

// --- Interface ---

// SubmissionService owns the submission lifecycle: creation under the
// type/role compatibility rule, status updates through the state machine
// with approval reconciliation and stock allocation, and role-scoped reads.
type SubmissionService interface {
	CreateSubmission(ctx context.Context, req CreateSubmissionRequest, submitterID, submitterRole string) (*model.Submission, error)
	UpdateStatus(ctx context.Context, id string, req UpdateStatusRequest, actorID, actorRole string) (*model.Submission, error)
	GetSubmission(ctx context.Context, id, actorID, actorRole string) (*model.Submission, error)
	ListSubmissions(ctx context.Context, filter SubmissionFilter, actorID, actorRole string) ([]model.Submission, int64, error)
	DeleteSubmission(ctx context.Context, id, actorID, actorRole string) error
	// ExpireStale marks PENDING submissions older than the cutoff as EXPIRED
	// with the system as actor
	ExpireStale(ctx context.Context, olderThan time.Time) (int, error)
}

type submissionService struct {
	submissionRepo   repository.SubmissionRepository
	farmerGroupRepo  repository.FarmerGroupRepository
	distributionRepo repository.DistributionRepository
	auditRepo        repository.AuditRepository
	txManager        repository.TransactionManager
	medicines        MedicineService
	notifications    NotificationService
}

func NewSubmissionService(
	submissionRepo repository.SubmissionRepository,
	farmerGroupRepo repository.FarmerGroupRepository,
	distributionRepo repository.DistributionRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	medicines MedicineService,
	notifications NotificationService,
) SubmissionService {
	return &submissionService{
		submissionRepo:   submissionRepo,
		farmerGroupRepo:  farmerGroupRepo,
		distributionRepo: distributionRepo,
		auditRepo:        auditRepo,
		txManager:        txManager,
		medicines:        medicines,
		notifications:    notifications,
	}
}

// --- Implementation ---

func (s *submissionService) CreateSubmission(ctx context.Context, req CreateSubmissionRequest, submitterID, submitterRole string) (*model.Submission, error) {
	// Resolve the submission type before checking role compatibility: PPL
	// defaults to its only type, POPT derives from the activity type
	submissionType := req.SubmissionType
	if submissionType == "" {
		switch submitterRole {
		case model.RolePPL:
			submissionType = model.TypePPLRegular
		case model.RolePOPT:
			submissionType = DeriveSubmissionType(req.ActivityType)
		}
	}
	if err := ValidateTypeForRole(submitterRole, submissionType); err != nil {
		return nil, err
	}

	if req.AffectedArea > req.TotalArea {
		return nil, fmt.Errorf("%w: affected area cannot exceed total area", ErrMissingRequiredFields)
	}
	if len(req.PestTypes) == 0 || len(req.PestTypes) > 10 {
		return nil, fmt.Errorf("%w: between 1 and 10 pest types required", ErrMissingRequiredFields)
	}

	sid, err := uuid.Parse(submitterID)
	if err != nil {
		return nil, fmt.Errorf("invalid submitter id: %w", err)
	}

	gid, err := uuid.Parse(req.FarmerGroupID)
	if err != nil {
		return nil, fmt.Errorf("invalid farmer_group_id: %w", err)
	}
	group, err := s.farmerGroupRepo.FindByID(ctx, gid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFarmerGroupNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if !group.IsActive {
		return nil, fmt.Errorf("%w: farmer group %s is inactive", ErrFarmerGroupNotFound, group.Name)
	}

	priority := req.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}
	priority = EscalatePriority(submissionType, priority)

	submission := &model.Submission{
		SubmissionType: submissionType,
		Status:         model.StatusPending,
		Priority:       priority,
		ActivityType:   req.ActivityType,
		FarmerGroupID:  gid,
		Village:        req.Village,
		District:       req.District,
		AffectedArea:   req.AffectedArea,
		TotalArea:      req.TotalArea,
		PestTypes:      req.PestTypes,
		Description:    req.Description,
		SubmitterID:    sid,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		// Validate every requested medicine against the inventory oracle
		for _, itemReq := range req.Items {
			mid, parseErr := uuid.Parse(itemReq.MedicineID)
			if parseErr != nil {
				return fmt.Errorf("invalid medicine_id: %w", parseErr)
			}
			medicine, oracleErr := s.medicines.GetMedicine(txCtx, mid)
			if oracleErr != nil {
				return oracleErr
			}
			submission.Items = append(submission.Items, model.SubmissionItem{
				MedicineID:        mid,
				RequestedQuantity: decimal.NewFromFloat(itemReq.RequestedQuantity),
				Unit:              medicine.Unit,
				Notes:             itemReq.Notes,
			})
		}

		prefix := "SUB-" + time.Now().Format("200601") + "-"
		seq, seqErr := s.submissionRepo.NextSequence(txCtx, prefix)
		if seqErr != nil {
			return fmt.Errorf("failed to generate submission number: %w", seqErr)
		}
		submission.SubmissionNumber = fmt.Sprintf("%s%04d", prefix, seq)

		if createErr := s.submissionRepo.Create(txCtx, submission); createErr != nil {
			return fmt.Errorf("failed to create submission: %w", createErr)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"submission_number": submission.SubmissionNumber,
			"submission_type":   submissionType,
			"priority":          priority,
			"pest_types":        req.PestTypes,
			"item_count":        len(req.Items),
		})
		audit := &model.AuditLog{
			UserID:     &sid,
			Action:     model.ActionCreateSubmission,
			EntityID:   submission.ID.String(),
			EntityName: submission.SubmissionNumber,
			Details:    string(details),
		}
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifications.NotifyNewSubmission(ctx, submission)

	return s.submissionRepo.FindByID(ctx, submission.ID)
}

// UpdateStatus drives one transition through the state machine. The whole
// decision — transition check, per-status validation, reconciliation,
// stamping — commits atomically; stock allocation runs after commit and its
// failure is logged without compensating the status. Operators reconcile a
// failed allocation with an ADJUSTMENT movement.
func (s *submissionService) UpdateStatus(ctx context.Context, id string, req UpdateStatusRequest, actorID, actorRole string) (*model.Submission, error) {
	submissionID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid submission id: %w", err)
	}
	actor, err := uuid.Parse(actorID)
	if err != nil {
		return nil, fmt.Errorf("invalid actor id: %w", err)
	}

	var previousStatus string
	var toAllocate []model.SubmissionItem
	var submission *model.Submission

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		submission, findErr = s.submissionRepo.FindByIDForUpdate(txCtx, submissionID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %s", ErrSubmissionNotFound, id)
			}
			return fmt.Errorf("database error: %w", findErr)
		}

		previousStatus = submission.Status
		if transErr := CanTransition(submission.Status, req.Status, actorRole); transErr != nil {
			return transErr
		}

		now := time.Now()
		switch req.Status {
		case model.StatusRejected:
			if utf8.RuneCountInString(req.Note) < 10 {
				return fmt.Errorf("%w: rejection note must be at least 10 characters", ErrMissingRequiredFields)
			}
			submission.ReviewNote = req.Note
			submission.ReviewerID = &actor
			submission.ReviewedAt = &now

		case model.StatusApproved, model.StatusPartiallyApproved:
			approved, reconcileErr := s.reconcileApprovedItems(txCtx, submission, req.ApprovedItems)
			if reconcileErr != nil {
				return reconcileErr
			}
			toAllocate = approved
			if req.Note != "" {
				submission.ReviewNote = req.Note
			}
			submission.ReviewerID = &actor
			submission.ReviewedAt = &now

		case model.StatusUnderReview:
			submission.ReviewerID = &actor
			submission.ReviewedAt = &now

		case model.StatusDistributed:
			submission.DistributorID = &actor
			submission.DistributedAt = &now
			for i := range submission.Items {
				if submission.Items[i].ApprovedQuantity.IsPositive() {
					submission.Items[i].DistributedQuantity = submission.Items[i].ApprovedQuantity
					if saveErr := s.submissionRepo.SaveItem(txCtx, &submission.Items[i]); saveErr != nil {
						return fmt.Errorf("failed to update item: %w", saveErr)
					}
				}
			}
			if recordErr := s.createDistributionRecord(txCtx, submission, actor, req.Note); recordErr != nil {
				return recordErr
			}

		case model.StatusCompleted:
			submission.DistributorID = &actor
			submission.DistributedAt = &now
		}

		submission.Status = req.Status
		if saveErr := s.submissionRepo.Save(txCtx, submission); saveErr != nil {
			return fmt.Errorf("failed to update submission: %w", saveErr)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"from":   previousStatus,
			"to":     req.Status,
			"note":   req.Note,
			"number": submission.SubmissionNumber,
		})
		audit := &model.AuditLog{
			UserID:     &actor,
			Action:     model.ActionUpdateSubmissionStatus,
			EntityID:   submission.ID.String(),
			EntityName: submission.SubmissionNumber,
			Details:    string(details),
		}
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	// Known gap: allocation happens after the status transition committed.
	// A failure here (or a race with a concurrent allocation) leaves an
	// approved submission without reserved stock; we log and continue
	// rather than compensating the status.
	for _, item := range toAllocate {
		if allocErr := s.medicines.Allocate(ctx, item.MedicineID, item.ID, submission.ID, item.ApprovedQuantity); allocErr != nil {
			log.Printf("stock allocation failed for submission %s item %s: %v",
				submission.SubmissionNumber, item.ID, allocErr)
		}
	}

	s.notifications.NotifyStatusChange(ctx, submission, previousStatus)

	return s.submissionRepo.FindByID(ctx, submission.ID)
}

// reconcileApprovedItems validates the approval decision item by item and
// stamps approved quantities. All items must pass — one violation aborts the
// surrounding transaction and the transition with it.
func (s *submissionService) reconcileApprovedItems(ctx context.Context, submission *model.Submission, inputs []ApprovedItemInput) ([]model.SubmissionItem, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: approved items list cannot be empty", ErrInvalidApprovalData)
	}

	itemIndex := make(map[uuid.UUID]*model.SubmissionItem, len(submission.Items))
	for i := range submission.Items {
		itemIndex[submission.Items[i].ID] = &submission.Items[i]
	}

	var approved []model.SubmissionItem
	for _, input := range inputs {
		itemID, err := uuid.Parse(input.ItemID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid item_id %q", ErrInvalidApprovalData, input.ItemID)
		}
		item, ok := itemIndex[itemID]
		if !ok {
			return nil, fmt.Errorf("%w: item %s does not belong to this submission", ErrInvalidApprovalData, input.ItemID)
		}

		available, err := s.medicines.GetTotalStock(ctx, item.MedicineID)
		if err != nil {
			return nil, fmt.Errorf("failed to read stock: %w", err)
		}

		approvedQty := decimal.NewFromFloat(input.ApprovedQuantity)
		if err := ValidateApprovedQuantity(item.RequestedQuantity, available, approvedQty); err != nil {
			return nil, err
		}

		item.ApprovedQuantity = approvedQty
		if err := s.submissionRepo.SaveItem(ctx, item); err != nil {
			return nil, fmt.Errorf("failed to update item: %w", err)
		}
		if approvedQty.IsPositive() {
			approved = append(approved, *item)
		}
	}

	return approved, nil
}

// createDistributionRecord snapshots the handover as a numbered berita acara
func (s *submissionService) createDistributionRecord(ctx context.Context, submission *model.Submission, distributor uuid.UUID, note string) error {
	prefix := "BA-" + time.Now().Format("20060102") + "-"
	seq, err := s.distributionRepo.NextSequence(ctx, prefix)
	if err != nil {
		return fmt.Errorf("failed to generate record number: %w", err)
	}

	record := &model.DistributionRecord{
		RecordNumber:  fmt.Sprintf("%s%05d", prefix, seq),
		SubmissionID:  submission.ID,
		DistributorID: distributor,
		Note:          note,
	}

	total := decimal.Zero
	for _, item := range submission.Items {
		if !item.ApprovedQuantity.IsPositive() {
			continue
		}
		name := ""
		price := decimal.Zero
		if item.Medicine != nil {
			name = item.Medicine.Name
			price = item.Medicine.PricePerUnit
		}
		record.Items = append(record.Items, model.DistributionItem{
			MedicineID:   item.MedicineID,
			MedicineName: name,
			Quantity:     item.ApprovedQuantity,
			Unit:         item.Unit,
			UnitPrice:    price,
		})
		total = total.Add(price.Mul(item.ApprovedQuantity))
	}
	record.TotalValue = total

	if err := s.distributionRepo.Create(ctx, record); err != nil {
		return fmt.Errorf("failed to create distribution record: %w", err)
	}

	details, _ := json.Marshal(map[string]interface{}{
		"record_number": record.RecordNumber,
		"submission":    submission.SubmissionNumber,
		"total_value":   total.StringFixed(2),
	})
	audit := &model.AuditLog{
		UserID:     &distributor,
		Action:     model.ActionCreateDistributionRecord,
		EntityID:   record.ID.String(),
		EntityName: record.RecordNumber,
		Details:    string(details),
	}
	if err := s.auditRepo.Log(ctx, audit); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}

	return nil
}

func (s *submissionService) GetSubmission(ctx context.Context, id, actorID, actorRole string) (*model.Submission, error) {
	submissionID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid submission id: %w", err)
	}

	submission, err := s.submissionRepo.FindByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSubmissionNotFound, id)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	// Field officers only see their own submissions
	if actorRole == model.RolePPL || actorRole == model.RolePOPT {
		if submission.SubmitterID.String() != actorID {
			return nil, fmt.Errorf("%w: not the submitter", ErrUnauthorizedAction)
		}
	}

	return submission, nil
}

func (s *submissionService) ListSubmissions(ctx context.Context, filter SubmissionFilter, actorID, actorRole string) ([]model.Submission, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	repoFilter := repository.SubmissionFilter{
		Status:         filter.Status,
		SubmissionType: filter.SubmissionType,
		District:       filter.District,
		Page:           filter.Page,
		Limit:          filter.Limit,
	}

	if actorRole == model.RolePPL || actorRole == model.RolePOPT {
		actor, err := uuid.Parse(actorID)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid actor id: %w", err)
		}
		repoFilter.SubmitterID = &actor
	}

	return s.submissionRepo.List(ctx, repoFilter)
}

// DeleteSubmission physically removes a submission; administrators only, and
// only while nothing has been committed against it (PENDING or CANCELLED)
func (s *submissionService) DeleteSubmission(ctx context.Context, id, actorID, actorRole string) error {
	if actorRole != model.RoleAdmin {
		return fmt.Errorf("%w: only administrators may delete submissions", ErrUnauthorizedAction)
	}

	submissionID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid submission id: %w", err)
	}

	submission, err := s.submissionRepo.FindByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s", ErrSubmissionNotFound, id)
		}
		return fmt.Errorf("database error: %w", err)
	}

	if submission.Status != model.StatusPending && submission.Status != model.StatusCancelled {
		return fmt.Errorf("%w: only PENDING or CANCELLED submissions can be deleted", ErrInvalidStatusTransition)
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.submissionRepo.Delete(txCtx, submissionID); err != nil {
			return fmt.Errorf("failed to delete submission: %w", err)
		}

		actor := parseUserID(actorID)
		audit := &model.AuditLog{
			UserID:     actor,
			Action:     model.ActionDeleteSubmission,
			EntityID:   submission.ID.String(),
			EntityName: submission.SubmissionNumber,
			Details:    fmt.Sprintf(`{"status_at_deletion": %q}`, submission.Status),
		}
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
}

func (s *submissionService) ExpireStale(ctx context.Context, olderThan time.Time) (int, error) {
	stale, err := s.submissionRepo.ListStalePending(ctx, olderThan)
	if err != nil {
		return 0, fmt.Errorf("failed to list stale submissions: %w", err)
	}

	expired := 0
	for i := range stale {
		submission := &stale[i]
		previousStatus := submission.Status

		err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
			submission.Status = model.StatusExpired
			if saveErr := s.submissionRepo.Save(txCtx, submission); saveErr != nil {
				return fmt.Errorf("failed to expire submission: %w", saveErr)
			}

			audit := &model.AuditLog{
				Action:     model.ActionExpireSubmissions,
				EntityID:   submission.ID.String(),
				EntityName: submission.SubmissionNumber,
				Details:    fmt.Sprintf(`{"created_at": %q}`, submission.CreatedAt.Format(time.RFC3339)),
			}
			return s.auditRepo.Log(txCtx, audit)
		})
		if err != nil {
			log.Printf("expiry sweep: %v", err)
			continue
		}

		expired++
		s.notifications.NotifyStatusChange(ctx, submission, previousStatus)
	}

	return expired, nil
}
