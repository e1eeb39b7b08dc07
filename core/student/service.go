package student

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
)

var (
	// errors
	ErrNotFound   = errors.New("student not found")
	ErrNISNExists = errors.New("a student with this NISN already exists")
)

type (
	Repository interface {
		CheckNISNUniqueness(ctx context.Context, nisn string, exec ...core.DBExecutor) error
		CreateStudent(ctx context.Context, std Student, exec ...core.DBExecutor) (Student, error)
		QueryStudentsByTeacher(ctx context.Context, teacherID string, exec ...core.DBExecutor) ([]Student, error)
		GetStudentByID(ctx context.Context, id string, exec ...core.DBExecutor) (Student, error)
		GetStudentByNISN(ctx context.Context, nisn string, exec ...core.DBExecutor) (Student, error)
		UpdateStudent(ctx context.Context, std Student, exec ...core.DBExecutor) (Student, error)
		DeleteStudentByID(ctx context.Context, id string, exec ...core.DBExecutor) error
	}

	ServiceInterface interface {
		CheckUniqueness(ctx context.Context, nisn string) error
		Create(ctx context.Context, teacherID string, ns NewStudent) (Student, error)
		QueryByTeacher(ctx context.Context, teacherID string) ([]Student, error)
		GetByID(ctx context.Context, id string) (Student, error)
		GetByNISN(ctx context.Context, nisn string) (Student, error)
		Update(ctx context.Context, orig Student, us UpdateStudent) (Student, error)
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

func (svc *Service) CheckUniqueness(ctx context.Context, nisn string) error {
	if err := svc.repo.CheckNISNUniqueness(ctx, nisn); err != nil {
		if errors.Cause(err) == ErrNISNExists {
			return core.NewValidationError(err, core.FieldError{Field: "nisn", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, teacherID string, ns NewStudent) (Student, error) {
	now := time.Now().UTC()
	std := Student{
		NISN:      ns.NISN,
		Name:      ns.Name,
		Grade:     ns.Grade,
		TeacherID: teacherID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if ns.BirthDate != "" {
		bd, err := time.Parse(core.BirthDateLayout, ns.BirthDate)
		if err != nil {
			return Student{}, core.NewValidationError(err, core.FieldError{Field: "birth_date", Error: "invalid date"})
		}
		std.BirthDate = null.TimeFrom(bd.UTC())
	}
	return svc.repo.CreateStudent(ctx, std)
}

func (svc *Service) QueryByTeacher(ctx context.Context, teacherID string) ([]Student, error) {
	return svc.repo.QueryStudentsByTeacher(ctx, teacherID)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

func (svc *Service) GetByNISN(ctx context.Context, nisn string) (Student, error) {
	return svc.repo.GetStudentByNISN(ctx, core.CleanString(nisn))
}

func (svc *Service) Update(ctx context.Context, orig Student, us UpdateStudent) (Student, error) {
	orig.Name = us.Name
	orig.Grade = us.Grade
	orig.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateStudent(ctx, orig)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteStudentByID(ctx, id)
}
