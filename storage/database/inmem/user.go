package inmemdb

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/account"
)

type userRepository struct {
	db *DB
}

var _ account.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) *userRepository {
	return &userRepository{db: db}
}

func (repo *userRepository) CheckEmailUniqueness(_ context.Context, email string, _ ...core.DBExecutor) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, usr := range repo.db.users {
		if usr.Email == email {
			return account.ErrEmailExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(_ context.Context, usr account.User, _ ...core.DBExecutor) (account.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, u := range repo.db.users {
		if u.Email == usr.Email {
			return account.User{}, account.ErrEmailExists
		}
	}
	usr.ID = uuid.New().String()
	repo.db.users[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) GetUserByID(_ context.Context, id string, _ ...core.DBExecutor) (account.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if usr, ok := repo.db.users[id]; ok {
		return *usr, nil
	}
	return account.User{}, account.ErrNotFound
}

func (repo *userRepository) GetUserByEmail(_ context.Context, email string, _ ...core.DBExecutor) (account.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, usr := range repo.db.users {
		if usr.Email == email {
			return *usr, nil
		}
	}
	return account.User{}, account.ErrNotFound
}

func (repo *userRepository) SetUserSchool(_ context.Context, id, schoolID string, _ ...core.DBExecutor) (account.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	usr, ok := repo.db.users[id]
	if !ok {
		return account.User{}, account.ErrNotFound
	}
	if usr.SchoolID.Valid {
		return account.User{}, account.ErrSchoolAlreadySet
	}
	usr.SchoolID.SetValid(schoolID)
	usr.UpdatedAt = time.Now().UTC()
	return *usr, nil
}

func (repo *userRepository) SetUserLastLogin(_ context.Context, id string, t time.Time, _ ...core.DBExecutor) (account.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	usr, ok := repo.db.users[id]
	if !ok {
		return account.User{}, account.ErrNotFound
	}
	usr.LastLogin = t
	return *usr, nil
}
