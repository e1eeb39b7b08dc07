package notification

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

var ErrNotFound = errors.New("notification not found")

type (
	Repository interface {
		CreateNotification(ctx context.Context, notif Notification, exec ...core.DBExecutor) (Notification, error)
		QueryNotificationsByUser(ctx context.Context, userID string, exec ...core.DBExecutor) ([]Notification, error)
		GetNotificationByID(ctx context.Context, id string, exec ...core.DBExecutor) (Notification, error)
		// MarkNotificationRead records the read time; an already-read
		// notification keeps its original read time.
		MarkNotificationRead(ctx context.Context, id string, t time.Time, exec ...core.DBExecutor) (Notification, error)
		DeleteNotificationByID(ctx context.Context, id string, exec ...core.DBExecutor) error
	}

	ServiceInterface interface {
		Create(ctx context.Context, senderID string, nn NewNotification) (Notification, error)
		QueryByUser(ctx context.Context, userID string) ([]Notification, error)
		GetByID(ctx context.Context, id string) (Notification, error)
		MarkRead(ctx context.Context, id string) (Notification, error)
		Delete(ctx context.Context, id string) error
	}

	Service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, senderID string, nn NewNotification) (Notification, error) {
	notif := Notification{
		SenderID:    senderID,
		RecipientID: nn.RecipientID,
		Subject:     nn.Subject,
		Body:        nn.Body,
		CreatedAt:   time.Now().UTC(),
	}
	return svc.repo.CreateNotification(ctx, notif)
}

func (svc *Service) QueryByUser(ctx context.Context, userID string) ([]Notification, error) {
	return svc.repo.QueryNotificationsByUser(ctx, userID)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Notification, error) {
	return svc.repo.GetNotificationByID(ctx, id)
}

func (svc *Service) MarkRead(ctx context.Context, id string) (Notification, error) {
	return svc.repo.MarkNotificationRead(ctx, id, time.Now().UTC())
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteNotificationByID(ctx, id)
}
