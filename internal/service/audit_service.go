package service

import (
	"context"

	"sidopi/internal/model"
	"sidopi/internal/repository"
)

// AuditService exposes the audit trail read-only; entries are written by the
// services that perform the audited actions
type AuditService interface {
	ListAuditLogs(ctx context.Context, page, limit int, action string) ([]model.AuditLog, int64, error)
}

type auditService struct {
	repo repository.AuditRepository
}

func NewAuditService(repo repository.AuditRepository) AuditService {
	return &auditService{repo: repo}
}

func (s *auditService) ListAuditLogs(ctx context.Context, page, limit int, action string) ([]model.AuditLog, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.repo.List(ctx, page, limit, action)
}
