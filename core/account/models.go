package account

import (
	"time"

	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"
)

// Roles form a fixed closed set; a User carries exactly one and it never
// changes after creation.
const (
	RoleAdmin   = "ADMIN"
	RoleTeacher = "TEACHER"
	RoleParent  = "PARENT"
	RoleStudent = "STUDENT"
)

var AllRoles = []string{RoleAdmin, RoleTeacher, RoleParent, RoleStudent}

// RegisterableRoles are the roles self-registration may pick; ADMIN accounts
// are only created through the admin CLI.
var RegisterableRoles = []string{RoleTeacher, RoleParent, RoleStudent}

// User is the authenticated identity. SchoolID is the only mutable field:
// it is set once by onboarding and never cleared.
type User struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	Role         string      `json:"role"`
	SchoolID     null.String `json:"school_id"`
	IsActive     bool        `json:"is_active"`
	PasswordHash []byte      `json:"-"`
	CreatedAt    time.Time   `json:"created_at"` // UTC
	UpdatedAt    time.Time   `json:"updated_at"` // UTC
	LastLogin    time.Time   `json:"last_login"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsTeacher() bool {
	return u.Role == RoleTeacher
}

func (u *User) IsParent() bool {
	return u.Role == RoleParent
}

func (u *User) IsStudent() bool {
	return u.Role == RoleStudent
}

// HasSchool reports whether onboarding has completed for this User.
func (u *User) HasSchool() bool {
	return u.SchoolID.Valid && u.SchoolID.String != ""
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Role            string `json:"role" validate:"required,registerablerole"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

// NewAdmin is the CLI-only variant of NewUser; the role is implied.
type NewAdmin struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}
