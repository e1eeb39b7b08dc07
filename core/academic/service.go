package academic

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

var (
	// errors
	ErrSubjectNotFound    = errors.New("subject not found")
	ErrAssessmentNotFound = errors.New("assessment not found")
	ErrReportCardNotFound = errors.New("report card not found")
)

type (
	Repository interface {
		CreateSubject(ctx context.Context, sub Subject, exec ...core.DBExecutor) (Subject, error)
		QuerySubjectsByTeacher(ctx context.Context, teacherID string, exec ...core.DBExecutor) ([]Subject, error)
		GetSubjectByID(ctx context.Context, id string, exec ...core.DBExecutor) (Subject, error)
		UpdateSubject(ctx context.Context, sub Subject, exec ...core.DBExecutor) (Subject, error)
		DeleteSubjectByID(ctx context.Context, id string, exec ...core.DBExecutor) error

		CreateAssessment(ctx context.Context, ass Assessment, exec ...core.DBExecutor) (Assessment, error)
		QueryAssessmentsByTeacher(ctx context.Context, teacherID string, exec ...core.DBExecutor) ([]Assessment, error)
		GetAssessmentByID(ctx context.Context, id string, exec ...core.DBExecutor) (Assessment, error)
		UpdateAssessment(ctx context.Context, ass Assessment, exec ...core.DBExecutor) (Assessment, error)
		DeleteAssessmentByID(ctx context.Context, id string, exec ...core.DBExecutor) error

		CreateReportCard(ctx context.Context, rc ReportCard, exec ...core.DBExecutor) (ReportCard, error)
		QueryReportCardsByTeacher(ctx context.Context, teacherID string, exec ...core.DBExecutor) ([]ReportCard, error)
		GetReportCardByID(ctx context.Context, id string, exec ...core.DBExecutor) (ReportCard, error)
		UpdateReportCard(ctx context.Context, rc ReportCard, exec ...core.DBExecutor) (ReportCard, error)
		DeleteReportCardByID(ctx context.Context, id string, exec ...core.DBExecutor) error
	}

	ServiceInterface interface {
		CreateSubject(ctx context.Context, teacherID string, ns NewSubject) (Subject, error)
		QuerySubjects(ctx context.Context, teacherID string) ([]Subject, error)
		GetSubject(ctx context.Context, id string) (Subject, error)
		UpdateSubject(ctx context.Context, orig Subject, us UpdateSubject) (Subject, error)
		DeleteSubject(ctx context.Context, id string) error

		CreateAssessment(ctx context.Context, teacherID string, na NewAssessment) (Assessment, error)
		QueryAssessments(ctx context.Context, teacherID string) ([]Assessment, error)
		GetAssessment(ctx context.Context, id string) (Assessment, error)
		UpdateAssessment(ctx context.Context, orig Assessment, ua UpdateAssessment) (Assessment, error)
		DeleteAssessment(ctx context.Context, id string) error

		CreateReportCard(ctx context.Context, teacherID string, nr NewReportCard) (ReportCard, error)
		QueryReportCards(ctx context.Context, teacherID string) ([]ReportCard, error)
		GetReportCard(ctx context.Context, id string) (ReportCard, error)
		UpdateReportCard(ctx context.Context, orig ReportCard, ur UpdateReportCard) (ReportCard, error)
		DeleteReportCard(ctx context.Context, id string) error
	}

	Service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) CreateSubject(ctx context.Context, teacherID string, ns NewSubject) (Subject, error) {
	now := time.Now().UTC()
	sub := Subject{
		Name:      ns.Name,
		TeacherID: teacherID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateSubject(ctx, sub)
}

func (svc *Service) QuerySubjects(ctx context.Context, teacherID string) ([]Subject, error) {
	return svc.repo.QuerySubjectsByTeacher(ctx, teacherID)
}

func (svc *Service) GetSubject(ctx context.Context, id string) (Subject, error) {
	return svc.repo.GetSubjectByID(ctx, id)
}

func (svc *Service) UpdateSubject(ctx context.Context, orig Subject, us UpdateSubject) (Subject, error) {
	orig.Name = us.Name
	orig.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateSubject(ctx, orig)
}

func (svc *Service) DeleteSubject(ctx context.Context, id string) error {
	return svc.repo.DeleteSubjectByID(ctx, id)
}

func (svc *Service) CreateAssessment(ctx context.Context, teacherID string, na NewAssessment) (Assessment, error) {
	now := time.Now().UTC()
	ass := Assessment{
		Title:     na.Title,
		SubjectID: na.SubjectID,
		StudentID: na.StudentID,
		Score:     na.Score,
		TeacherID: teacherID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateAssessment(ctx, ass)
}

func (svc *Service) QueryAssessments(ctx context.Context, teacherID string) ([]Assessment, error) {
	return svc.repo.QueryAssessmentsByTeacher(ctx, teacherID)
}

func (svc *Service) GetAssessment(ctx context.Context, id string) (Assessment, error) {
	return svc.repo.GetAssessmentByID(ctx, id)
}

func (svc *Service) UpdateAssessment(ctx context.Context, orig Assessment, ua UpdateAssessment) (Assessment, error) {
	orig.Title = ua.Title
	if ua.Score != nil {
		orig.Score = *ua.Score
	}
	orig.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateAssessment(ctx, orig)
}

func (svc *Service) DeleteAssessment(ctx context.Context, id string) error {
	return svc.repo.DeleteAssessmentByID(ctx, id)
}

func (svc *Service) CreateReportCard(ctx context.Context, teacherID string, nr NewReportCard) (ReportCard, error) {
	now := time.Now().UTC()
	rc := ReportCard{
		StudentID: nr.StudentID,
		Term:      nr.Term,
		Remarks:   nr.Remarks,
		TeacherID: teacherID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateReportCard(ctx, rc)
}

func (svc *Service) QueryReportCards(ctx context.Context, teacherID string) ([]ReportCard, error) {
	return svc.repo.QueryReportCardsByTeacher(ctx, teacherID)
}

func (svc *Service) GetReportCard(ctx context.Context, id string) (ReportCard, error) {
	return svc.repo.GetReportCardByID(ctx, id)
}

func (svc *Service) UpdateReportCard(ctx context.Context, orig ReportCard, ur UpdateReportCard) (ReportCard, error) {
	orig.Term = ur.Term
	orig.Remarks = ur.Remarks
	orig.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateReportCard(ctx, orig)
}

func (svc *Service) DeleteReportCard(ctx context.Context, id string) error {
	return svc.repo.DeleteReportCardByID(ctx, id)
}
