package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/notification"
)

type notificationRow struct {
	ID          string    `db:"id"`
	SenderID    string    `db:"sender_id"`
	RecipientID string    `db:"recipient_id"`
	Subject     string    `db:"subject"`
	Body        string    `db:"body"`
	ReadAt      null.Time `db:"read_at"`
	CreatedAt   time.Time `db:"created_at"`
}

func (r notificationRow) model() notification.Notification {
	return notification.Notification{
		ID:          r.ID,
		SenderID:    r.SenderID,
		RecipientID: r.RecipientID,
		Subject:     r.Subject,
		Body:        r.Body,
		ReadAt:      r.ReadAt.Time,
		CreatedAt:   r.CreatedAt,
	}
}

type notificationRepository struct {
	db *sqlx.DB
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(db *sqlx.DB) *notificationRepository {
	return &notificationRepository{db: db}
}

func (repo notificationRepository) CreateNotification(ctx context.Context, notif notification.Notification, exec ...core.DBExecutor) (notification.Notification, error) {
	notif.ID = uuid.New().String()
	_, err := ext(repo.db, exec).ExecContext(ctx,
		`INSERT INTO notification (id, sender_id, recipient_id, subject, body, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		notif.ID, notif.SenderID, notif.RecipientID, notif.Subject, notif.Body, notif.CreatedAt.UTC())
	if err != nil {
		return notification.Notification{}, errors.Wrap(err, "inserting notification")
	}
	return notif, nil
}

func (repo notificationRepository) QueryNotificationsByUser(ctx context.Context, userID string, exec ...core.DBExecutor) ([]notification.Notification, error) {
	var rows []notificationRow
	err := sqlx.SelectContext(ctx, ext(repo.db, exec), &rows,
		`SELECT * FROM notification WHERE sender_id = $1 OR recipient_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "querying notifications")
	}
	notifs := make([]notification.Notification, 0, len(rows))
	for _, r := range rows {
		notifs = append(notifs, r.model())
	}
	return notifs, nil
}

func (repo notificationRepository) GetNotificationByID(ctx context.Context, id string, exec ...core.DBExecutor) (notification.Notification, error) {
	if _, err := uuid.Parse(id); err != nil {
		return notification.Notification{}, notification.ErrNotFound
	}
	var row notificationRow
	err := sqlx.GetContext(ctx, ext(repo.db, exec), &row, `SELECT * FROM notification WHERE id = $1`, id)
	if err != nil {
		return notification.Notification{}, trapNoRowsErr(err, notification.ErrNotFound, "finding notification by ID")
	}
	return row.model(), nil
}

func (repo notificationRepository) MarkNotificationRead(ctx context.Context, id string, t time.Time, exec ...core.DBExecutor) (notification.Notification, error) {
	if _, err := uuid.Parse(id); err != nil {
		return notification.Notification{}, notification.ErrNotFound
	}
	// keep the first read time
	_, err := ext(repo.db, exec).ExecContext(ctx,
		`UPDATE notification SET read_at = $1 WHERE id = $2 AND read_at IS NULL`, t.UTC(), id)
	if err != nil {
		return notification.Notification{}, errors.Wrap(err, "marking notification read")
	}
	return repo.GetNotificationByID(ctx, id, exec...)
}

func (repo notificationRepository) DeleteNotificationByID(ctx context.Context, id string, exec ...core.DBExecutor) error {
	if _, err := ext(repo.db, exec).ExecContext(ctx, `DELETE FROM notification WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting notification")
	}
	return nil
}
