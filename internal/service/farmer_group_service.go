package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"sidopi/internal/model"
	"sidopi/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateFarmerGroupRequest struct {
	Name        string  `json:"name" binding:"required"`
	LeaderName  string  `json:"leader_name" binding:"required"`
	Phone       string  `json:"phone"`
	Village     string  `json:"village" binding:"required"`
	District    string  `json:"district" binding:"required"`
	Commodity   string  `json:"commodity"`
	MemberCount int     `json:"member_count" binding:"min=0"`
	LandArea    float64 `json:"land_area" binding:"min=0"`
}

type UpdateFarmerGroupRequest struct {
	Name        string   `json:"name"`
	LeaderName  string   `json:"leader_name"`
	Phone       string   `json:"phone"`
	Village     string   `json:"village"`
	District    string   `json:"district"`
	Commodity   string   `json:"commodity"`
	MemberCount *int     `json:"member_count" binding:"omitempty,min=0"`
	LandArea    *float64 `json:"land_area" binding:"omitempty,min=0"`
	IsActive    *bool    `json:"is_active"`
}

// --- Interface ---

type FarmerGroupService interface {
	CreateFarmerGroup(ctx context.Context, userID string, req CreateFarmerGroupRequest) (*model.FarmerGroup, error)
	UpdateFarmerGroup(ctx context.Context, userID, id string, req UpdateFarmerGroupRequest) (*model.FarmerGroup, error)
	DeleteFarmerGroup(ctx context.Context, userID, id string) error
	GetFarmerGroup(ctx context.Context, id string) (*model.FarmerGroup, error)
	ListFarmerGroups(ctx context.Context, page, limit int, search, district string) ([]model.FarmerGroup, int64, error)
}

type farmerGroupService struct {
	repo      repository.FarmerGroupRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
}

func NewFarmerGroupService(
	repo repository.FarmerGroupRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) FarmerGroupService {
	return &farmerGroupService{repo: repo, auditRepo: auditRepo, txManager: txManager}
}

// --- Implementation ---

func (s *farmerGroupService) CreateFarmerGroup(ctx context.Context, userID string, req CreateFarmerGroupRequest) (*model.FarmerGroup, error) {
	group := &model.FarmerGroup{
		Name:        req.Name,
		LeaderName:  req.LeaderName,
		Phone:       req.Phone,
		Village:     req.Village,
		District:    req.District,
		Commodity:   req.Commodity,
		MemberCount: req.MemberCount,
		LandArea:    req.LandArea,
		IsActive:    true,
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, group); err != nil {
			return fmt.Errorf("failed to create farmer group: %w", err)
		}

		details, _ := json.Marshal(req)
		audit := &model.AuditLog{
			UserID:     parseUserID(userID),
			Action:     model.ActionCreateFarmerGroup,
			EntityID:   group.ID.String(),
			EntityName: group.Name,
			Details:    string(details),
		}
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return group, nil
}

func (s *farmerGroupService) UpdateFarmerGroup(ctx context.Context, userID, id string, req UpdateFarmerGroupRequest) (*model.FarmerGroup, error) {
	groupID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid farmer group id: %w", err)
	}

	group, err := s.repo.FindByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFarmerGroupNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if req.Name != "" {
		group.Name = req.Name
	}
	if req.LeaderName != "" {
		group.LeaderName = req.LeaderName
	}
	if req.Phone != "" {
		group.Phone = req.Phone
	}
	if req.Village != "" {
		group.Village = req.Village
	}
	if req.District != "" {
		group.District = req.District
	}
	if req.Commodity != "" {
		group.Commodity = req.Commodity
	}
	if req.MemberCount != nil {
		group.MemberCount = *req.MemberCount
	}
	if req.LandArea != nil {
		group.LandArea = *req.LandArea
	}
	if req.IsActive != nil {
		group.IsActive = *req.IsActive
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Update(txCtx, group); err != nil {
			return fmt.Errorf("failed to update farmer group: %w", err)
		}

		details, _ := json.Marshal(req)
		audit := &model.AuditLog{
			UserID:     parseUserID(userID),
			Action:     model.ActionUpdateFarmerGroup,
			EntityID:   group.ID.String(),
			EntityName: group.Name,
			Details:    string(details),
		}
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return group, nil
}

func (s *farmerGroupService) DeleteFarmerGroup(ctx context.Context, userID, id string) error {
	groupID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid farmer group id: %w", err)
	}

	group, err := s.repo.FindByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFarmerGroupNotFound
		}
		return fmt.Errorf("database error: %w", err)
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Delete(txCtx, groupID); err != nil {
			return fmt.Errorf("failed to delete farmer group: %w", err)
		}

		audit := &model.AuditLog{
			UserID:     parseUserID(userID),
			Action:     model.ActionDeleteFarmerGroup,
			EntityID:   group.ID.String(),
			EntityName: group.Name,
			Details:    `{"deleted": true}`,
		}
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
}

func (s *farmerGroupService) GetFarmerGroup(ctx context.Context, id string) (*model.FarmerGroup, error) {
	groupID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid farmer group id: %w", err)
	}

	group, err := s.repo.FindByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFarmerGroupNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return group, nil
}

func (s *farmerGroupService) ListFarmerGroups(ctx context.Context, page, limit int, search, district string) ([]model.FarmerGroup, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.repo.List(ctx, page, limit, search, district)
}
