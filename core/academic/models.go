package academic

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

// Subject is a course taught by the owning teacher.
type Subject struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	TeacherID string    `json:"teacher_id"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

func (s Subject) OwnerID() string { return s.TeacherID }

// Assessment is a graded piece of work for a student in a subject.
// It is owned by the teacher that recorded it, not by the subject's teacher;
// the two are the same in practice since only the owner may write.
type Assessment struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	SubjectID string    `json:"subject_id"`
	StudentID string    `json:"student_id"`
	Score     float64   `json:"score"`
	TeacherID string    `json:"teacher_id"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

func (a Assessment) OwnerID() string { return a.TeacherID }

// ReportCard is a per-term summary for a student.
type ReportCard struct {
	ID        string    `json:"id"`
	StudentID string    `json:"student_id"`
	Term      string    `json:"term"`
	Remarks   string    `json:"remarks"`
	TeacherID string    `json:"teacher_id"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

func (r ReportCard) OwnerID() string { return r.TeacherID }

type NewSubject struct {
	Name string `json:"name" validate:"required,alphanum_"`
}

func (ns *NewSubject) Validate(ctx context.Context, validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	return validate.StructCtx(ctx, ns)
}

// UpdateSubject defines what information may be provided to modify an existing Subject.
type UpdateSubject struct {
	Name string `json:"name" validate:"required,alphanum_"`
}

func (us *UpdateSubject) Validate(ctx context.Context, orig Subject, validate *validator.Validate) error {
	if name := core.CleanString(us.Name); name != "" {
		us.Name = name
	} else {
		us.Name = orig.Name
	}
	return validate.StructCtx(ctx, us)
}

type NewAssessment struct {
	Title     string  `json:"title" validate:"required"`
	SubjectID string  `json:"subject_id" validate:"required,uuid4"`
	StudentID string  `json:"student_id" validate:"required,uuid4"`
	Score     float64 `json:"score" validate:"min=0,max=100"`
}

func (na *NewAssessment) Validate(ctx context.Context, validate *validator.Validate) error {
	na.Title = core.CleanString(na.Title)
	return validate.StructCtx(ctx, na)
}

// UpdateAssessment allows re-grading and re-titling; the subject and student
// an assessment belongs to are fixed at creation.
type UpdateAssessment struct {
	Title string   `json:"title"`
	Score *float64 `json:"score" validate:"omitempty,min=0,max=100"`
}

func (ua *UpdateAssessment) Validate(ctx context.Context, orig Assessment, validate *validator.Validate) error {
	if title := core.CleanString(ua.Title); title != "" {
		ua.Title = title
	} else {
		ua.Title = orig.Title
	}
	return validate.StructCtx(ctx, ua)
}

type NewReportCard struct {
	StudentID string `json:"student_id" validate:"required,uuid4"`
	Term      string `json:"term" validate:"required"`
	Remarks   string `json:"remarks"`
}

func (nr *NewReportCard) Validate(ctx context.Context, validate *validator.Validate) error {
	nr.Term = core.CleanString(nr.Term)
	nr.Remarks = core.CleanString(nr.Remarks)
	return validate.StructCtx(ctx, nr)
}

// UpdateReportCard defines what information may be provided to modify an
// existing ReportCard; the student it covers is fixed at creation.
type UpdateReportCard struct {
	Term    string `json:"term"`
	Remarks string `json:"remarks"`
}

func (ur *UpdateReportCard) Validate(ctx context.Context, orig ReportCard, validate *validator.Validate) error {
	if term := core.CleanString(ur.Term); term != "" {
		ur.Term = term
	} else {
		ur.Term = orig.Term
	}
	if remarks := core.CleanString(ur.Remarks); remarks != "" {
		ur.Remarks = remarks
	} else {
		ur.Remarks = orig.Remarks
	}
	return validate.StructCtx(ctx, ur)
}
