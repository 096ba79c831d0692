package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"sidopi/internal/model"
	"sidopi/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testEnv wires the full service stack onto an in-memory sqlite database
type testEnv struct {
	db *gorm.DB

	submissionRepo   repository.SubmissionRepository
	medicineRepo     repository.MedicineRepository
	stockRepo        repository.StockRepository
	farmerGroupRepo  repository.FarmerGroupRepository
	distributionRepo repository.DistributionRepository
	notificationRepo repository.NotificationRepository
	auditRepo        repository.AuditRepository
	userRepo         repository.UserRepository

	medicines       MedicineService
	submissions     SubmissionService
	recommendations RecommendationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.FarmerGroup{},
		&model.Medicine{},
		&model.StockLot{},
		&model.StockMovement{},
		&model.Submission{},
		&model.SubmissionItem{},
		&model.DistributionRecord{},
		&model.DistributionItem{},
		&model.Notification{},
		&model.AuditLog{},
	))

	env := &testEnv{
		db:               db,
		submissionRepo:   repository.NewSubmissionRepository(db),
		medicineRepo:     repository.NewMedicineRepository(db),
		stockRepo:        repository.NewStockRepository(db),
		farmerGroupRepo:  repository.NewFarmerGroupRepository(db),
		distributionRepo: repository.NewDistributionRepository(db),
		notificationRepo: repository.NewNotificationRepository(db),
		auditRepo:        repository.NewAuditRepository(db),
		userRepo:         repository.NewUserRepository(db),
	}

	txManager := repository.NewTransactionManager(db)
	env.medicines = NewMedicineService(env.medicineRepo, env.stockRepo, env.auditRepo, txManager)
	notifications := NewNotificationService(env.notificationRepo, env.userRepo, nil)
	env.submissions = NewSubmissionService(env.submissionRepo, env.farmerGroupRepo, env.distributionRepo, env.auditRepo, txManager, env.medicines, notifications)
	env.recommendations = NewRecommendationService(env.submissionRepo, env.medicineRepo, env.stockRepo)

	return env
}

func (e *testEnv) createUser(t *testing.T, role string) *model.User {
	t.Helper()
	user := &model.User{
		Username: strings.ToLower(role) + "-" + uuid.NewString()[:8],
		Email:    uuid.NewString()[:8] + "@dinas.go.id",
		Phone:    "0812000000",
		Password: "hashed",
		Role:     role,
	}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func (e *testEnv) createFarmerGroup(t *testing.T, active bool) *model.FarmerGroup {
	t.Helper()
	group := &model.FarmerGroup{
		Name:       "Tani Makmur " + uuid.NewString()[:8],
		LeaderName: "Pak Budi",
		Village:    "Sukamaju",
		District:   "Cianjur",
		Commodity:  "padi",
		IsActive:   active,
	}
	require.NoError(t, e.db.Create(group).Error)
	return group
}

func (e *testEnv) createMedicine(t *testing.T, category, unit string, targetPests []string, stock float64, expiry time.Time) *model.Medicine {
	t.Helper()
	medicine := &model.Medicine{
		Code:         "MED-" + uuid.NewString()[:8],
		Name:         "Obat " + uuid.NewString()[:8],
		Category:     category,
		Unit:         unit,
		PricePerUnit: decimal.NewFromInt(50000),
		TargetPests:  targetPests,
		IsActive:     true,
	}
	require.NoError(t, e.db.Create(medicine).Error)

	if stock > 0 {
		qty := decimal.NewFromFloat(stock)
		lot := &model.StockLot{
			MedicineID:        medicine.ID,
			BatchNumber:       "BATCH-" + uuid.NewString()[:8],
			InitialQuantity:   qty,
			RemainingQuantity: qty,
			ExpiryDate:        expiry,
		}
		require.NoError(t, e.db.Create(lot).Error)
	}
	return medicine
}

func (e *testEnv) createSubmission(t *testing.T, submitter *model.User, medicine *model.Medicine, requested float64) *model.Submission {
	t.Helper()
	group := e.createFarmerGroup(t, true)

	submissionType := model.TypePPLRegular
	if submitter.Role == model.RolePOPT {
		submissionType = model.TypePOPTScheduled
	}

	submission, err := e.submissions.CreateSubmission(context.Background(), CreateSubmissionRequest{
		SubmissionType: submissionType,
		FarmerGroupID:  group.ID.String(),
		Village:        "Sukamaju",
		District:       "Cianjur",
		AffectedArea:   5.0,
		TotalArea:      10.0,
		PestTypes:      []string{"wereng coklat"},
		Items: []SubmissionItemRequest{
			{MedicineID: medicine.ID.String(), RequestedQuantity: requested},
		},
	}, submitter.ID.String(), submitter.Role)
	require.NoError(t, err)
	return submission
}

func TestCreateSubmission(t *testing.T) {
	env := newTestEnv(t)
	ppl := env.createUser(t, model.RolePPL)
	dinas := env.createUser(t, model.RoleDinas)
	medicine := env.createMedicine(t, model.CategoryInsektisida, "liter", []string{"wereng coklat"}, 100, time.Now().AddDate(1, 0, 0))

	submission := env.createSubmission(t, ppl, medicine, 10)

	assert.Equal(t, model.StatusPending, submission.Status)
	assert.Equal(t, model.TypePPLRegular, submission.SubmissionType)
	assert.Equal(t, model.PriorityMedium, submission.Priority)
	assert.True(t, strings.HasPrefix(submission.SubmissionNumber, "SUB-"+time.Now().Format("200601")+"-"))
	require.Len(t, submission.Items, 1)
	assert.Equal(t, "liter", submission.Items[0].Unit)
	assert.True(t, submission.Items[0].RequestedQuantity.Equal(decimal.NewFromInt(10)))

	// Reviewers were notified about the new submission
	notifications, total, err := env.notificationRepo.ListByRecipient(context.Background(), dinas.ID, false, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, model.NotifNewSubmission, notifications[0].Type)
}

func TestCreateSubmissionNumbersAreSequential(t *testing.T) {
	env := newTestEnv(t)
	ppl := env.createUser(t, model.RolePPL)
	medicine := env.createMedicine(t, model.CategoryInsektisida, "liter", []string{"wereng coklat"}, 100, time.Now().AddDate(1, 0, 0))

	first := env.createSubmission(t, ppl, medicine, 5)
	second := env.createSubmission(t, ppl, medicine, 5)

	prefix := "SUB-" + time.Now().Format("200601") + "-"
	assert.Equal(t, prefix+"0001", first.SubmissionNumber)
	assert.Equal(t, prefix+"0002", second.SubmissionNumber)
}

func TestCreateSubmissionTypeRoleCompatibility(t *testing.T) {
	env := newTestEnv(t)
	ppl := env.createUser(t, model.RolePPL)
	group := env.createFarmerGroup(t, true)
	medicine := env.createMedicine(t, model.CategoryInsektisida, "liter", []string{"wereng coklat"}, 100, time.Now().AddDate(1, 0, 0))

	_, err := env.submissions.CreateSubmission(context.Background(), CreateSubmissionRequest{
		SubmissionType: model.TypePOPTEmergency,
		FarmerGroupID:  group.ID.String(),
		Village:        "Sukamaju",
		District:       "Cianjur",
		AffectedArea:   5.0,
		TotalArea:      10.0,
		PestTypes:      []string{"wereng coklat"},
		Items:          []SubmissionItemRequest{{MedicineID: medicine.ID.String(), RequestedQuantity: 5}},
	}, ppl.ID.String(), ppl.Role)

	assert.ErrorIs(t, err, ErrInvalidSubmissionType)
}

func TestCreateSubmissionPOPTDerivesEmergencyType(t *testing.T) {
	env := newTestEnv(t)
	popt := env.createUser(t, model.RolePOPT)
	group := env.createFarmerGroup(t, true)
	medicine := env.createMedicine(t, model.CategoryInsektisida, "liter", []string{"wereng coklat"}, 100, time.Now().AddDate(1, 0, 0))

	submission, err := env.submissions.CreateSubmission(context.Background(), CreateSubmissionRequest{
		ActivityType:  model.ActivityEmergencyResponse,
		FarmerGroupID: group.ID.String(),
		Village:       "Sukamaju",
		District:      "Cianjur",
		AffectedArea:  5.0,
		TotalArea:     10.0,
		PestTypes:     []string{"wereng coklat"},
		Items:         []SubmissionItemRequest{{MedicineID: medicine.ID.String(), RequestedQuantity: 5}},
	}, popt.ID.String(), popt.Role)
	require.NoError(t, err)

	assert.Equal(t, model.TypePOPTEmergency, submission.SubmissionType)
	// Emergency submissions get the HIGH priority floor
	assert.Equal(t, model.PriorityHigh, submission.Priority)
}

func TestCreateSubmissionAffectedAreaExceedsTotal(t *testing.T) {
	env := newTestEnv(t)
	ppl := env.createUser(t, model.RolePPL)
	group := env.createFarmerGroup(t, true)
	medicine := env.createMedicine(t, model.CategoryInsektisida, "liter", []string{"wereng coklat"}, 100, time.Now().AddDate(1, 0, 0))

	_, err := env.submissions.CreateSubmission(context.Background(), CreateSubmissionRequest{
		SubmissionType: model.TypePPLRegular,
		FarmerGroupID:  group.ID.String(),
		Village:        "Sukamaju",
		District:       "Cianjur",
		AffectedArea:   12.0,
		TotalArea:      10.0,
		PestTypes:      []string{"wereng coklat"},
		Items:          []SubmissionItemRequest{{MedicineID: medicine.ID.String(), RequestedQuantity: 5}},
	}, ppl.ID.String(), ppl.Role)

	assert.ErrorIs(t, err, ErrMissingRequiredFields)
}

func TestCreateSubmissionRejectsInactiveMedicine(t *testing.T) {
	env := newTestEnv(t)
	ppl := env.createUser(t, model.RolePPL)
	group := env.createFarmerGroup(t, true)
	medicine := env.createMedicine(t, model.CategoryInsektisida, "liter", []string{"wereng coklat"}, 100, time.Now().AddDate(1, 0, 0))
	require.NoError(t, env.db.Model(medicine).Update("is_active", false).Error)

	_, err := env.submissions.CreateSubmission(context.Background(), CreateSubmissionRequest{
		SubmissionType: model.TypePPLRegular,
		FarmerGroupID:  group.ID.String(),
		Village:        "Sukamaju",
		District:       "Cianjur",
		AffectedArea:   5.0,
		TotalArea:      10.0,
		PestTypes:      []string{"wereng coklat"},
		Items:          []SubmissionItemRequest{{MedicineID: medicine.ID.String(), RequestedQuantity: 5}},
	}, ppl.ID.String(), ppl.Role)

	assert.ErrorIs(t, err, ErrMedicineInactive)

	// Nothing was persisted
	var count int64
	env.db.Model(&model.Submission{}).Count(&count)
	assert.Zero(t, count)
}

func TestCreateSubmissionRejectsInactiveFarmerGroup(t *testing.T) {
	env := newTestEnv(t)
	ppl := env.createUser(t, model.RolePPL)
	group := env.createFarmerGroup(t, false)
	medicine := env.createMedicine(t, model.CategoryInsektisida, "liter", []string{"wereng coklat"}, 100, time.Now().AddDate(1, 0, 0))

	_, err := env.submissions.CreateSubmission(context.Background(), CreateSubmissionRequest{
		SubmissionType: model.TypePPLRegular,
		FarmerGroupID:  group.ID.String(),
		Village:        "Sukamaju",
		District:       "Cianjur",
		AffectedArea:   5.0,
		TotalArea:      10.0,
		PestTypes:      []string{"wereng coklat"},
		Items:          []SubmissionItemRequest{{MedicineID: medicine.ID.String(), RequestedQuantity: 5}},
	}, ppl.ID.String(), ppl.Role)

	assert.ErrorIs(t, err, ErrFarmerGroupNotFound)
}

func TestUpdateStatusFullLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ppl := env.createUser(t, model.RolePPL)
	dinas := env.createUser(t, model.RoleDinas)
	popt := env.createUser(t, model.RolePOPT)
	medicine := env.createMedicine(t, model.CategoryInsektisida, "liter", []string{"wereng coklat"}, 100, time.Now().AddDate(1, 0, 0))

	submission := env.createSubmission(t, ppl, medicine, 10)

	// PENDING -> UNDER_REVIEW stamps the reviewer
	submission, err := env.submissions.UpdateStatus(ctx, submission.ID.String(), UpdateStatusRequest{
		Status: model.StatusUnderReview,
	}, dinas.ID.String(), dinas.Role)
	require.NoError(t, err)
	assert.Equal(t, model.StatusUnderReview, submission.Status)
	require.NotNil(t, submission.ReviewerID)
	assert.Equal(t, dinas.ID, *submission.ReviewerID)
	assert.NotNil(t, submission.ReviewedAt)

	// UNDER_REVIEW -> APPROVED reconciles and allocates stock
	submission, err = env.submissions.UpdateStatus(ctx, submission.ID.String(), UpdateStatusRequest{
		Status: model.StatusApproved,
		ApprovedItems: []ApprovedItemInput{
			{ItemID: submission.Items[0].ID.String(), ApprovedQuantity: 8},
		},
	}, dinas.ID.String(), dinas.Role)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, submission.Status)
	assert.True(t, submission.Items[0].ApprovedQuantity.Equal(decimal.NewFromInt(8)))

	remaining, err := env.stockRepo.TotalStock(ctx, medicine.ID)
	require.NoError(t, err)
	assert.True(t, remaining.Equal(decimal.NewFromInt(92)), "got %s", remaining)

	movements, _, err := env.stockRepo.ListMovements(ctx, medicine.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, model.MovementAllocation, movements[0].MovementType)
	assert.True(t, movements[0].QuantityChanged.Equal(decimal.NewFromInt(-8)))

	// APPROVED -> DISTRIBUTED copies quantities and writes the berita acara
	submission, err = env.submissions.UpdateStatus(ctx, submission.ID.String(), UpdateStatusRequest{
		Status: model.StatusDistributed,
	}, popt.ID.String(), popt.Role)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDistributed, submission.Status)
	assert.True(t, submission.Items[0].DistributedQuantity.Equal(decimal.NewFromInt(8)))
	require.NotNil(t, submission.DistributorID)
	assert.Equal(t, popt.ID, *submission.DistributorID)

	record, err := env.distributionRepo.FindBySubmissionID(ctx, submission.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(record.RecordNumber, "BA-"+time.Now().Format("20060102")+"-"))
	require.Len(t, record.Items, 1)
	assert.True(t, record.Items[0].Quantity.Equal(decimal.NewFromInt(8)))
	// 8 × 50000
	assert.True(t, record.TotalValue.Equal(decimal.NewFromInt(400000)), "got %s", record.TotalValue)

	// DISTRIBUTED -> COMPLETED is terminal
	submission, err = env.submissions.UpdateStatus(ctx, submission.ID.String(), UpdateStatusRequest{
		Status: model.StatusCompleted,
	}, dinas.ID.String(), dinas.Role)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, submission.Status)

	_, err = env.submissions.UpdateStatus(ctx, submission.ID.String(), UpdateStatusRequest{
		Status: model.StatusDistributed,
	}, dinas.ID.String(), dinas.Role)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
}

func TestUpdateStatusPartialApproval(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ppl := env.createUser(t, model.RolePPL)
	dinas := env.createUser(t, model.RoleDinas)
	medicine := env.createMedicine(t, model.CategoryInsektisida, "liter", []string{"wereng coklat"}, 6, time.Now().AddDate(1, 0, 0))

	submission := env.createSubmission(t, ppl, medicine, 10)

	_, err := env.submissions.UpdateStatus(ctx, submission.ID.String(), UpdateStatusRequest{
		Status: model.StatusUnderReview,
	}, dinas.ID.String(), dinas.Role)
	require.NoError(t, err)

	// Requested 10, only 6 in stock: approving 8 must fail the transition
	submission, err = env.submissions.GetSubmission(ctx, submission.ID.String(), dinas.ID.String(), dinas.Role)
	require.NoError(t, err)

	_, err = env.submissions.UpdateStatus(ctx, submission.ID.String(), UpdateStatusRequest{
		Status: model.StatusPartiallyApproved,
		ApprovedItems: []ApprovedItemInput{
			{ItemID: submission.Items[0].ID.String(), ApprovedQuantity: 8},
		},
	}, dinas.ID.String(), dinas.Role)
	require.ErrorIs(t, err, ErrInvalidApprovalData)
	assert.Contains(t, err.Error(), "exceeds available stock")

	// The failed transition changed nothing
	unchanged, err := env.submissions.GetSubmission(ctx, submission.ID.String(), dinas.ID.String(), dinas.Role)
	require.NoError(t, err)
	assert.Equal(t, model.StatusUnderReview, unchanged.Status)
	assert.True(t, unchanged.Items[0].ApprovedQuantity.IsZero())

	// Approving within stock succeeds
	submission, err = env.submissions.UpdateStatus(ctx, submission.ID.String(), UpdateStatusRequest{
		Status: model.StatusPartiallyApproved,
		ApprovedItems: []ApprovedItemInput{
			{ItemID: submission.Items[0].ID.String(), ApprovedQuantity: 6},
		},
	}, dinas.ID.String(), dinas.Role)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPartiallyApproved, submission.Status)
	assert.True(t, submission.Items[0].ApprovedQuantity.Equal(decimal.NewFromInt(6)))
}

func TestUpdateStatusRejectionRequiresNote(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ppl := env.createUser(t, model.RolePPL)
	dinas := env.createUser(t, model.RoleDinas)
	medicine := env.createMedicine(t, model.CategoryInsektisida, "liter", []string{"wereng coklat"}, 100, time.Now().AddDate(1, 0, 0))

	submission := env.createSubmission(t, ppl, medicine, 10)

	_, err := env.submissions.UpdateStatus(ctx, submission.ID.String(), UpdateStatusRequest{
		Status: model.StatusUnderReview,
	}, dinas.ID.String(), dinas.Role)
	require.NoError(t, err)

	_, err = env.submissions.UpdateStatus(ctx, submission.ID.String(), UpdateStatusRequest{
		Status: model.StatusRejected,
		Note:   "too short",
	}, dinas.ID.String(), dinas.Role)
	assert.ErrorIs(t, err, ErrMissingRequiredFields)

	// The minimum counts characters, not bytes: nine runes in eleven bytes
	_, err = env.submissions.UpdateStatus(ctx, submission.ID.String(), UpdateStatusRequest{
		Status: model.StatusRejected,
		Note:   "ditolak ✗",
	}, dinas.ID.String(), dinas.Role)
	assert.ErrorIs(t, err, ErrMissingRequiredFields)

	submission, err = env.submissions.UpdateStatus(ctx, submission.ID.String(), UpdateStatusRequest{
		Status: model.StatusRejected,
		Note:   "stock reserved for the emergency response in the northern district",
	}, dinas.ID.String(), dinas.Role)
	require.NoError(t, err)
	assert.Equal(t, model.StatusRejected, submission.Status)
	assert.NotEmpty(t, submission.ReviewNote)
}

func TestUpdateStatusApprovalNeedsItems(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ppl := env.createUser(t, model.RolePPL)
	dinas := env.createUser(t, model.RoleDinas)
	medicine := env.createMedicine(t, model.CategoryInsektisida, "liter", []string{"wereng coklat"}, 100, time.Now().AddDate(1, 0, 0))

	submission := env.createSubmission(t, ppl, medicine, 10)

	_, err := env.submissions.UpdateStatus(ctx, submission.ID.String(), UpdateStatusRequest{
		Status: model.StatusUnderReview,
	}, dinas.ID.String(), dinas.Role)
	require.NoError(t, err)

	_, err = env.submissions.UpdateStatus(ctx, submission.ID.String(), UpdateStatusRequest{
		Status: model.StatusApproved,
	}, dinas.ID.String(), dinas.Role)
	assert.ErrorIs(t, err, ErrInvalidApprovalData)

	// Items from another submission are refused
	_, err = env.submissions.UpdateStatus(ctx, submission.ID.String(), UpdateStatusRequest{
		Status: model.StatusApproved,
		ApprovedItems: []ApprovedItemInput{
			{ItemID: uuid.NewString(), ApprovedQuantity: 5},
		},
	}, dinas.ID.String(), dinas.Role)
	assert.ErrorIs(t, err, ErrInvalidApprovalData)
}

func TestUpdateStatusRoleGating(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ppl := env.createUser(t, model.RolePPL)
	medicine := env.createMedicine(t, model.CategoryInsektisida, "liter", []string{"wereng coklat"}, 100, time.Now().AddDate(1, 0, 0))

	submission := env.createSubmission(t, ppl, medicine, 10)

	// PPL cannot drive review transitions
	_, err := env.submissions.UpdateStatus(ctx, submission.ID.String(), UpdateStatusRequest{
		Status: model.StatusUnderReview,
	}, ppl.ID.String(), ppl.Role)
	assert.ErrorIs(t, err, ErrUnauthorizedAction)

	// Skipping review entirely is an invalid transition
	dinas := env.createUser(t, model.RoleDinas)
	_, err = env.submissions.UpdateStatus(ctx, submission.ID.String(), UpdateStatusRequest{
		Status: model.StatusApproved,
		ApprovedItems: []ApprovedItemInput{
			{ItemID: submission.Items[0].ID.String(), ApprovedQuantity: 5},
		},
	}, dinas.ID.String(), dinas.Role)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
}

func TestGetSubmissionOwnershipScope(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, model.RolePPL)
	other := env.createUser(t, model.RolePPL)
	dinas := env.createUser(t, model.RoleDinas)
	medicine := env.createMedicine(t, model.CategoryInsektisida, "liter", []string{"wereng coklat"}, 100, time.Now().AddDate(1, 0, 0))

	submission := env.createSubmission(t, owner, medicine, 10)

	_, err := env.submissions.GetSubmission(ctx, submission.ID.String(), other.ID.String(), other.Role)
	assert.ErrorIs(t, err, ErrUnauthorizedAction)

	_, err = env.submissions.GetSubmission(ctx, submission.ID.String(), owner.ID.String(), owner.Role)
	assert.NoError(t, err)

	_, err = env.submissions.GetSubmission(ctx, submission.ID.String(), dinas.ID.String(), dinas.Role)
	assert.NoError(t, err)
}

func TestListSubmissionsScopesFieldOfficers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	first := env.createUser(t, model.RolePPL)
	second := env.createUser(t, model.RolePPL)
	dinas := env.createUser(t, model.RoleDinas)
	medicine := env.createMedicine(t, model.CategoryInsektisida, "liter", []string{"wereng coklat"}, 100, time.Now().AddDate(1, 0, 0))

	env.createSubmission(t, first, medicine, 5)
	env.createSubmission(t, second, medicine, 5)

	mine, total, err := env.submissions.ListSubmissions(ctx, SubmissionFilter{}, first.ID.String(), first.Role)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, mine, 1)
	assert.Equal(t, first.ID, mine[0].SubmitterID)

	all, total, err := env.submissions.ListSubmissions(ctx, SubmissionFilter{}, dinas.ID.String(), dinas.Role)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, all, 2)
}

func TestDeleteSubmissionRules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ppl := env.createUser(t, model.RolePPL)
	dinas := env.createUser(t, model.RoleDinas)
	admin := env.createUser(t, model.RoleAdmin)
	medicine := env.createMedicine(t, model.CategoryInsektisida, "liter", []string{"wereng coklat"}, 100, time.Now().AddDate(1, 0, 0))

	submission := env.createSubmission(t, ppl, medicine, 10)

	// Only administrators may delete
	err := env.submissions.DeleteSubmission(ctx, submission.ID.String(), dinas.ID.String(), dinas.Role)
	assert.ErrorIs(t, err, ErrUnauthorizedAction)

	// Reviewed submissions cannot be deleted
	_, err = env.submissions.UpdateStatus(ctx, submission.ID.String(), UpdateStatusRequest{
		Status: model.StatusUnderReview,
	}, dinas.ID.String(), dinas.Role)
	require.NoError(t, err)
	err = env.submissions.DeleteSubmission(ctx, submission.ID.String(), admin.ID.String(), admin.Role)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)

	// A PENDING submission deletes cleanly, items included
	pending := env.createSubmission(t, ppl, medicine, 5)
	require.NoError(t, env.submissions.DeleteSubmission(ctx, pending.ID.String(), admin.ID.String(), admin.Role))

	_, err = env.submissions.GetSubmission(ctx, pending.ID.String(), admin.ID.String(), admin.Role)
	assert.ErrorIs(t, err, ErrSubmissionNotFound)

	var itemCount int64
	env.db.Model(&model.SubmissionItem{}).Where("submission_id = ?", pending.ID).Count(&itemCount)
	assert.Zero(t, itemCount)
}

func TestExpireStale(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ppl := env.createUser(t, model.RolePPL)
	medicine := env.createMedicine(t, model.CategoryInsektisida, "liter", []string{"wereng coklat"}, 100, time.Now().AddDate(1, 0, 0))

	stale := env.createSubmission(t, ppl, medicine, 5)
	fresh := env.createSubmission(t, ppl, medicine, 5)

	// Backdate one submission past the cutoff
	require.NoError(t, env.db.Model(&model.Submission{}).
		Where("id = ?", stale.ID).
		Update("created_at", time.Now().AddDate(0, 0, -40)).Error)

	expired, err := env.submissions.ExpireStale(ctx, time.Now().AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.Equal(t, 1, expired)

	got, err := env.submissions.GetSubmission(ctx, stale.ID.String(), ppl.ID.String(), ppl.Role)
	require.NoError(t, err)
	assert.Equal(t, model.StatusExpired, got.Status)

	got, err = env.submissions.GetSubmission(ctx, fresh.ID.String(), ppl.ID.String(), ppl.Role)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, got.Status)
}
