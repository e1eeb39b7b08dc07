package account

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

var (
	// errors
	ErrNotFound    = errors.New("account not found")
	ErrEmailExists = errors.New("an account with this email already exists")
	// ErrAuthenticationFailed is deliberately generic: it must not reveal
	// whether the email exists.
	ErrAuthenticationFailed = errors.New("invalid credentials")
	ErrAccountDeactivated   = errors.New("account deactivated")
	ErrSchoolAlreadySet     = errors.New("a school is already assigned to this account")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, exec ...core.DBExecutor) error
		CreateUser(ctx context.Context, usr User, exec ...core.DBExecutor) (User, error)
		GetUserByID(ctx context.Context, id string, exec ...core.DBExecutor) (User, error)
		GetUserByEmail(ctx context.Context, email string, exec ...core.DBExecutor) (User, error)
		// SetUserSchool atomically sets school_id iff it is still NULL;
		// returns ErrSchoolAlreadySet otherwise.
		SetUserSchool(ctx context.Context, id, schoolID string, exec ...core.DBExecutor) (User, error)
		SetUserLastLogin(ctx context.Context, id string, t time.Time, exec ...core.DBExecutor) (User, error)
	}

	ServiceInterface interface {
		CheckUniqueness(ctx context.Context, email string) error
		Register(ctx context.Context, nu NewUser) (User, error)
		CreateAdmin(ctx context.Context, na NewAdmin) (User, error)
		GetByID(ctx context.Context, id string) (User, error)
		Authenticate(ctx context.Context, email, pwd string) (User, error)
		AssignSchool(ctx context.Context, usr User, schoolID string) (User, error)
	}

	Service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) CheckUniqueness(ctx context.Context, email string) error {
	if err := svc.repo.CheckEmailUniqueness(ctx, email); err != nil {
		if errors.Cause(err) == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Register(ctx context.Context, nu NewUser) (User, error) {
	now := time.Now().UTC()
	usr := User{
		Name:      nu.Name,
		Email:     nu.Email,
		Role:      nu.Role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	return svc.repo.CreateUser(ctx, usr)
}

func (svc *Service) CreateAdmin(ctx context.Context, na NewAdmin) (User, error) {
	now := time.Now().UTC()
	usr := User{
		Name:      na.Name,
		Email:     na.Email,
		Role:      RoleAdmin,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(na.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	return svc.repo.CreateUser(ctx, usr)
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

// Authenticate checks the credentials and records the login time.
// All credential failures collapse into ErrAuthenticationFailed.
func (svc *Service) Authenticate(ctx context.Context, email, pwd string) (User, error) {
	usr, err := svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return User{}, ErrAuthenticationFailed
		}
		return User{}, errors.Wrap(err, "finding account by email")
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return User{}, ErrAuthenticationFailed
	}
	if !usr.IsActive {
		return User{}, ErrAccountDeactivated
	}
	usr, err = svc.repo.SetUserLastLogin(ctx, usr.ID, time.Now().UTC())
	if err != nil {
		return User{}, errors.Wrap(err, "setting lastLogin")
	}
	return usr, nil
}

// AssignSchool completes onboarding. The school assignment is write-once;
// callers must re-issue the session token afterwards, the one in flight
// still carries has_school=false.
func (svc *Service) AssignSchool(ctx context.Context, usr User, schoolID string) (User, error) {
	if usr.HasSchool() {
		return User{}, core.NewValidationError(ErrSchoolAlreadySet, core.FieldError{Field: "school_id", Error: ErrSchoolAlreadySet.Error()})
	}
	updated, err := svc.repo.SetUserSchool(ctx, usr.ID, schoolID)
	if err != nil {
		if errors.Cause(err) == ErrSchoolAlreadySet {
			return User{}, core.NewValidationError(err, core.FieldError{Field: "school_id", Error: err.Error()})
		}
		return User{}, errors.Wrap(err, "assigning school")
	}
	return updated, nil
}
