package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/account"
)

type userRow struct {
	ID           string      `db:"id"`
	Name         string      `db:"name"`
	Email        string      `db:"email"`
	Role         string      `db:"role"`
	SchoolID     null.String `db:"school_id"`
	IsActive     bool        `db:"is_active"`
	PasswordHash []byte      `db:"password_hash"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
	LastLogin    null.Time   `db:"last_login"`
}

func (r userRow) model() account.User {
	return account.User{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		Role:         r.Role,
		SchoolID:     r.SchoolID,
		IsActive:     r.IsActive,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		LastLogin:    r.LastLogin.Time,
	}
}

type userRepository struct {
	db *sqlx.DB
}

var _ account.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

func (repo userRepository) CheckEmailUniqueness(ctx context.Context, email string, exec ...core.DBExecutor) error {
	var exists bool
	err := sqlx.GetContext(ctx, ext(repo.db, exec), &exists,
		`SELECT EXISTS (SELECT 1 FROM "user" WHERE email = $1)`, email)
	if err != nil {
		return errors.Wrap(err, "checking account uniqueness")
	}
	if exists {
		return account.ErrEmailExists
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr account.User, exec ...core.DBExecutor) (account.User, error) {
	usr.ID = uuid.New().String()
	_, err := ext(repo.db, exec).ExecContext(ctx,
		`INSERT INTO "user" (id, name, email, role, school_id, is_active, password_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		usr.ID, usr.Name, usr.Email, usr.Role, usr.SchoolID, usr.IsActive, usr.PasswordHash,
		usr.CreatedAt.UTC(), usr.UpdatedAt.UTC())
	if err != nil {
		if isUniqueViolation(err, "user_email_key") {
			return account.User{}, account.ErrEmailExists
		}
		return account.User{}, errors.Wrap(err, "inserting account")
	}
	return usr, nil
}

func (repo userRepository) GetUserByID(ctx context.Context, id string, exec ...core.DBExecutor) (account.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return account.User{}, account.ErrNotFound
	}
	var row userRow
	err := sqlx.GetContext(ctx, ext(repo.db, exec), &row, `SELECT * FROM "user" WHERE id = $1`, id)
	if err != nil {
		return account.User{}, trapNoRowsErr(err, account.ErrNotFound, "finding account by ID")
	}
	return row.model(), nil
}

func (repo userRepository) GetUserByEmail(ctx context.Context, email string, exec ...core.DBExecutor) (account.User, error) {
	var row userRow
	err := sqlx.GetContext(ctx, ext(repo.db, exec), &row, `SELECT * FROM "user" WHERE email = $1`, email)
	if err != nil {
		return account.User{}, trapNoRowsErr(err, account.ErrNotFound, "finding account by email")
	}
	return row.model(), nil
}

// SetUserSchool sets school_id iff it is still NULL; losing a concurrent
// onboarding race surfaces as ErrSchoolAlreadySet, never a second write.
func (repo userRepository) SetUserSchool(ctx context.Context, id, schoolID string, exec ...core.DBExecutor) (account.User, error) {
	e := ext(repo.db, exec)
	res, err := e.ExecContext(ctx,
		`UPDATE "user" SET school_id = $1, updated_at = $2 WHERE id = $3 AND school_id IS NULL`,
		schoolID, time.Now().UTC(), id)
	if err != nil {
		return account.User{}, errors.Wrap(err, "assigning school")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return account.User{}, errors.Wrap(err, "assigning school")
	}
	if n == 0 {
		// either the account is gone or the school was already set
		if _, err = repo.GetUserByID(ctx, id, exec...); err != nil {
			return account.User{}, err
		}
		return account.User{}, account.ErrSchoolAlreadySet
	}
	return repo.GetUserByID(ctx, id, exec...)
}

func (repo userRepository) SetUserLastLogin(ctx context.Context, id string, t time.Time, exec ...core.DBExecutor) (account.User, error) {
	_, err := ext(repo.db, exec).ExecContext(ctx,
		`UPDATE "user" SET last_login = $1 WHERE id = $2`, t.UTC(), id)
	if err != nil {
		return account.User{}, errors.Wrap(err, "setting lastLogin")
	}
	return repo.GetUserByID(ctx, id, exec...)
}
