package student

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
)

// Student is a learner record owned by the teacher that registered it.
// BirthDate starts out unset; once recorded (by the teacher or by the first
// successful guardian link) it is ground truth and is never silently
// overwritten.
type Student struct {
	ID        string    `json:"id"`
	NISN      string    `json:"nisn"`
	Name      string    `json:"name"`
	Grade     string    `json:"grade"`
	BirthDate null.Time `json:"birth_date"`
	TeacherID string    `json:"teacher_id"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// OwnerID satisfies the authz.Owned predicate.
func (s Student) OwnerID() string { return s.TeacherID }

// NewStudent contains information needed to register a new Student.
type NewStudent struct {
	NISN      string `json:"nisn" validate:"required,len=10,digits"`
	Name      string `json:"name" validate:"required"`
	Grade     string `json:"grade"`
	BirthDate string `json:"birth_date" validate:"omitempty,dateonly"`
}

func (ns *NewStudent) Validate(ctx context.Context, validate *validator.Validate, svc ServiceInterface) error {
	ns.NISN = core.CleanString(ns.NISN)
	ns.Name = core.CleanString(ns.Name)
	ns.Grade = core.CleanString(ns.Grade)
	ns.BirthDate = core.CleanString(ns.BirthDate)

	if err := validate.StructCtx(ctx, ns); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, ns.NISN)
}

// UpdateStudent defines what information may be provided to modify an existing
// Student. NISN and BirthDate are deliberately absent: the NISN is the linking
// secret and the birth date, once recorded, is ground truth for guardian
// verification.
type UpdateStudent struct {
	Name  string `json:"name"`
	Grade string `json:"grade"`
}

func (us *UpdateStudent) Validate(ctx context.Context, orig Student, validate *validator.Validate) error {
	if name := core.CleanString(us.Name); name != "" {
		us.Name = name
	} else {
		us.Name = orig.Name
	}
	if grade := core.CleanString(us.Grade); grade != "" {
		us.Grade = grade
	} else {
		us.Grade = orig.Grade
	}
	return validate.StructCtx(ctx, us)
}
