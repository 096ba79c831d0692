package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"sidopi/internal/model"
	"sidopi/internal/repository"
	ws "sidopi/internal/websocket"

	"github.com/google/uuid"
)

// Websocket payload for live clients
type SubmissionEvent struct {
	Event            string `json:"event"`
	SubmissionID     string `json:"submission_id"`
	SubmissionNumber string `json:"submission_number"`
	Status           string `json:"status"`
	PreviousStatus   string `json:"previous_status,omitempty"`
	Priority         string `json:"priority"`
}

// NotificationService is the NotificationSink of the submission core: it
// persists per-recipient notifications and broadcasts the event to connected
// websocket clients. Delivery failures are logged, never propagated — a
// missed notification must not fail a committed transition.
type NotificationService interface {
	NotifyNewSubmission(ctx context.Context, submission *model.Submission)
	NotifyStatusChange(ctx context.Context, submission *model.Submission, previousStatus string)
	ListNotifications(ctx context.Context, recipientID string, unreadOnly bool, page, limit int) ([]model.Notification, int64, error)
	MarkRead(ctx context.Context, id, recipientID string) error
	MarkAllRead(ctx context.Context, recipientID string) error
}

type notificationService struct {
	notificationRepo repository.NotificationRepository
	userRepo         repository.UserRepository
	hub              *ws.Hub
}

func NewNotificationService(
	notificationRepo repository.NotificationRepository,
	userRepo repository.UserRepository,
	hub *ws.Hub,
) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		hub:              hub,
	}
}

// NotifyNewSubmission fans out to every DINAS/ADMIN account
func (s *notificationService) NotifyNewSubmission(ctx context.Context, submission *model.Submission) {
	reviewers, err := s.userRepo.ListByRoles(ctx, model.RoleDinas, model.RoleAdmin)
	if err != nil {
		log.Printf("notification: failed to list reviewers: %v", err)
		return
	}

	title := "Pengajuan baru " + submission.SubmissionNumber
	message := fmt.Sprintf("New %s submission from %s, %s (%s priority)",
		submission.SubmissionType, submission.Village, submission.District, submission.Priority)

	for _, reviewer := range reviewers {
		n := &model.Notification{
			RecipientID:  reviewer.ID,
			Type:         model.NotifNewSubmission,
			Title:        title,
			Message:      message,
			SubmissionID: &submission.ID,
		}
		if err := s.notificationRepo.Create(ctx, n); err != nil {
			log.Printf("notification: failed to persist for %s: %v", reviewer.Username, err)
		}
	}

	s.broadcast(SubmissionEvent{
		Event:            "new_submission",
		SubmissionID:     submission.ID.String(),
		SubmissionNumber: submission.SubmissionNumber,
		Status:           submission.Status,
		Priority:         submission.Priority,
	})
}

// NotifyStatusChange informs the submitter about the review outcome
func (s *notificationService) NotifyStatusChange(ctx context.Context, submission *model.Submission, previousStatus string) {
	title := "Pengajuan " + submission.SubmissionNumber
	message := fmt.Sprintf("Submission %s moved from %s to %s",
		submission.SubmissionNumber, previousStatus, submission.Status)

	n := &model.Notification{
		RecipientID:  submission.SubmitterID,
		Type:         model.NotifStatusChange,
		Title:        title,
		Message:      message,
		SubmissionID: &submission.ID,
	}
	if err := s.notificationRepo.Create(ctx, n); err != nil {
		log.Printf("notification: failed to persist status change: %v", err)
	}

	s.broadcast(SubmissionEvent{
		Event:            "status_change",
		SubmissionID:     submission.ID.String(),
		SubmissionNumber: submission.SubmissionNumber,
		Status:           submission.Status,
		PreviousStatus:   previousStatus,
		Priority:         submission.Priority,
	})
}

func (s *notificationService) ListNotifications(ctx context.Context, recipientID string, unreadOnly bool, page, limit int) ([]model.Notification, int64, error) {
	rid, err := uuid.Parse(recipientID)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid recipient id: %w", err)
	}
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.notificationRepo.ListByRecipient(ctx, rid, unreadOnly, page, limit)
}

func (s *notificationService) MarkRead(ctx context.Context, id, recipientID string) error {
	nid, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid notification id: %w", err)
	}
	rid, err := uuid.Parse(recipientID)
	if err != nil {
		return fmt.Errorf("invalid recipient id: %w", err)
	}
	return s.notificationRepo.MarkRead(ctx, nid, rid)
}

func (s *notificationService) MarkAllRead(ctx context.Context, recipientID string) error {
	rid, err := uuid.Parse(recipientID)
	if err != nil {
		return fmt.Errorf("invalid recipient id: %w", err)
	}
	return s.notificationRepo.MarkAllRead(ctx, rid)
}

func (s *notificationService) broadcast(event SubmissionEvent) {
	if s.hub == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("notification: failed to marshal event: %v", err)
		return
	}
	s.hub.Broadcast <- payload
}
