package guardian

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

// Parent is the guardian profile attached to a PARENT account.
// Linking is impossible without one.
type Parent struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// Link attaches a Parent to a Student. A given (parent, student) pair exists
// at most once; the store enforces this with a unique constraint so that
// concurrent attempts fail closed.
type Link struct {
	ID        string    `json:"id"`
	ParentID  string    `json:"parent_id"`
	StudentID string    `json:"student_id"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// LinkRequest carries the linking secret (NISN) and the claimed birth date.
type LinkRequest struct {
	NISN      string `json:"nisn" validate:"required,len=10,digits"`
	BirthDate string `json:"birth_date" validate:"required"`
}

func (lr *LinkRequest) Validate(ctx context.Context, validate *validator.Validate) error {
	lr.NISN = core.CleanString(lr.NISN)
	lr.BirthDate = core.CleanString(lr.BirthDate)
	return validate.StructCtx(ctx, lr)
}
