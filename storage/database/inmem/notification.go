package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/notification"
)

type notificationRepository struct {
	db *DB
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(db *DB) *notificationRepository {
	return &notificationRepository{db: db}
}

func (repo *notificationRepository) CreateNotification(_ context.Context, notif notification.Notification, _ ...core.DBExecutor) (notification.Notification, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	notif.ID = uuid.New().String()
	repo.db.notifications[notif.ID] = &notif
	return notif, nil
}

func (repo *notificationRepository) QueryNotificationsByUser(_ context.Context, userID string, _ ...core.DBExecutor) ([]notification.Notification, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	notifs := make([]notification.Notification, 0)
	for _, notif := range repo.db.notifications {
		if notif.Involves(userID) {
			notifs = append(notifs, *notif)
		}
	}
	sort.Slice(notifs, func(i, j int) bool { return notifs[i].CreatedAt.After(notifs[j].CreatedAt) })
	return notifs, nil
}

func (repo *notificationRepository) GetNotificationByID(_ context.Context, id string, _ ...core.DBExecutor) (notification.Notification, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if notif, ok := repo.db.notifications[id]; ok {
		return *notif, nil
	}
	return notification.Notification{}, notification.ErrNotFound
}

func (repo *notificationRepository) MarkNotificationRead(_ context.Context, id string, t time.Time, _ ...core.DBExecutor) (notification.Notification, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	notif, ok := repo.db.notifications[id]
	if !ok {
		return notification.Notification{}, notification.ErrNotFound
	}
	// keep the first read time
	if notif.ReadAt.IsZero() {
		notif.ReadAt = t.UTC()
	}
	return *notif, nil
}

func (repo *notificationRepository) DeleteNotificationByID(_ context.Context, id string, _ ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	delete(repo.db.notifications, id)
	return nil
}
