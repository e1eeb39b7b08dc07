package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/academic"
)

type subjectRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	TeacherID string    `db:"teacher_id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type assessmentRow struct {
	ID        string    `db:"id"`
	Title     string    `db:"title"`
	SubjectID string    `db:"subject_id"`
	StudentID string    `db:"student_id"`
	Score     float64   `db:"score"`
	TeacherID string    `db:"teacher_id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type reportCardRow struct {
	ID        string    `db:"id"`
	StudentID string    `db:"student_id"`
	Term      string    `db:"term"`
	Remarks   string    `db:"remarks"`
	TeacherID string    `db:"teacher_id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type academicRepository struct {
	db *sqlx.DB
}

var _ academic.Repository = (*academicRepository)(nil) // interface compliance check

func NewAcademicRepository(db *sqlx.DB) *academicRepository {
	return &academicRepository{db: db}
}

// Subjects

func (repo academicRepository) CreateSubject(ctx context.Context, sub academic.Subject, exec ...core.DBExecutor) (academic.Subject, error) {
	sub.ID = uuid.New().String()
	_, err := ext(repo.db, exec).ExecContext(ctx,
		`INSERT INTO subject (id, name, teacher_id, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		sub.ID, sub.Name, sub.TeacherID, sub.CreatedAt.UTC(), sub.UpdatedAt.UTC())
	if err != nil {
		return academic.Subject{}, errors.Wrap(err, "inserting subject")
	}
	return sub, nil
}

func (repo academicRepository) QuerySubjectsByTeacher(ctx context.Context, teacherID string, exec ...core.DBExecutor) ([]academic.Subject, error) {
	var rows []subjectRow
	err := sqlx.SelectContext(ctx, ext(repo.db, exec), &rows,
		`SELECT * FROM subject WHERE teacher_id = $1 ORDER BY name`, teacherID)
	if err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}
	subjects := make([]academic.Subject, 0, len(rows))
	for _, r := range rows {
		subjects = append(subjects, academic.Subject(r))
	}
	return subjects, nil
}

func (repo academicRepository) GetSubjectByID(ctx context.Context, id string, exec ...core.DBExecutor) (academic.Subject, error) {
	if _, err := uuid.Parse(id); err != nil {
		return academic.Subject{}, academic.ErrSubjectNotFound
	}
	var row subjectRow
	err := sqlx.GetContext(ctx, ext(repo.db, exec), &row, `SELECT * FROM subject WHERE id = $1`, id)
	if err != nil {
		return academic.Subject{}, trapNoRowsErr(err, academic.ErrSubjectNotFound, "finding subject by ID")
	}
	return academic.Subject(row), nil
}

func (repo academicRepository) UpdateSubject(ctx context.Context, sub academic.Subject, exec ...core.DBExecutor) (academic.Subject, error) {
	_, err := ext(repo.db, exec).ExecContext(ctx,
		`UPDATE subject SET name = $1, updated_at = $2 WHERE id = $3`,
		sub.Name, sub.UpdatedAt.UTC(), sub.ID)
	if err != nil {
		return academic.Subject{}, errors.Wrap(err, "updating subject")
	}
	return sub, nil
}

func (repo academicRepository) DeleteSubjectByID(ctx context.Context, id string, exec ...core.DBExecutor) error {
	if _, err := ext(repo.db, exec).ExecContext(ctx, `DELETE FROM subject WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting subject")
	}
	return nil
}

// Assessments

func (repo academicRepository) CreateAssessment(ctx context.Context, ass academic.Assessment, exec ...core.DBExecutor) (academic.Assessment, error) {
	ass.ID = uuid.New().String()
	_, err := ext(repo.db, exec).ExecContext(ctx,
		`INSERT INTO assessment (id, title, subject_id, student_id, score, teacher_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		ass.ID, ass.Title, ass.SubjectID, ass.StudentID, ass.Score, ass.TeacherID,
		ass.CreatedAt.UTC(), ass.UpdatedAt.UTC())
	if err != nil {
		return academic.Assessment{}, errors.Wrap(err, "inserting assessment")
	}
	return ass, nil
}

func (repo academicRepository) QueryAssessmentsByTeacher(ctx context.Context, teacherID string, exec ...core.DBExecutor) ([]academic.Assessment, error) {
	var rows []assessmentRow
	err := sqlx.SelectContext(ctx, ext(repo.db, exec), &rows,
		`SELECT * FROM assessment WHERE teacher_id = $1 ORDER BY created_at DESC`, teacherID)
	if err != nil {
		return nil, errors.Wrap(err, "querying assessments")
	}
	asses := make([]academic.Assessment, 0, len(rows))
	for _, r := range rows {
		asses = append(asses, academic.Assessment(r))
	}
	return asses, nil
}

func (repo academicRepository) GetAssessmentByID(ctx context.Context, id string, exec ...core.DBExecutor) (academic.Assessment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return academic.Assessment{}, academic.ErrAssessmentNotFound
	}
	var row assessmentRow
	err := sqlx.GetContext(ctx, ext(repo.db, exec), &row, `SELECT * FROM assessment WHERE id = $1`, id)
	if err != nil {
		return academic.Assessment{}, trapNoRowsErr(err, academic.ErrAssessmentNotFound, "finding assessment by ID")
	}
	return academic.Assessment(row), nil
}

func (repo academicRepository) UpdateAssessment(ctx context.Context, ass academic.Assessment, exec ...core.DBExecutor) (academic.Assessment, error) {
	_, err := ext(repo.db, exec).ExecContext(ctx,
		`UPDATE assessment SET title = $1, score = $2, updated_at = $3 WHERE id = $4`,
		ass.Title, ass.Score, ass.UpdatedAt.UTC(), ass.ID)
	if err != nil {
		return academic.Assessment{}, errors.Wrap(err, "updating assessment")
	}
	return ass, nil
}

func (repo academicRepository) DeleteAssessmentByID(ctx context.Context, id string, exec ...core.DBExecutor) error {
	if _, err := ext(repo.db, exec).ExecContext(ctx, `DELETE FROM assessment WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting assessment")
	}
	return nil
}

// Report cards

func (repo academicRepository) CreateReportCard(ctx context.Context, rc academic.ReportCard, exec ...core.DBExecutor) (academic.ReportCard, error) {
	rc.ID = uuid.New().String()
	_, err := ext(repo.db, exec).ExecContext(ctx,
		`INSERT INTO report_card (id, student_id, term, remarks, teacher_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rc.ID, rc.StudentID, rc.Term, rc.Remarks, rc.TeacherID, rc.CreatedAt.UTC(), rc.UpdatedAt.UTC())
	if err != nil {
		return academic.ReportCard{}, errors.Wrap(err, "inserting report card")
	}
	return rc, nil
}

func (repo academicRepository) QueryReportCardsByTeacher(ctx context.Context, teacherID string, exec ...core.DBExecutor) ([]academic.ReportCard, error) {
	var rows []reportCardRow
	err := sqlx.SelectContext(ctx, ext(repo.db, exec), &rows,
		`SELECT * FROM report_card WHERE teacher_id = $1 ORDER BY created_at DESC`, teacherID)
	if err != nil {
		return nil, errors.Wrap(err, "querying report cards")
	}
	cards := make([]academic.ReportCard, 0, len(rows))
	for _, r := range rows {
		cards = append(cards, academic.ReportCard(r))
	}
	return cards, nil
}

func (repo academicRepository) GetReportCardByID(ctx context.Context, id string, exec ...core.DBExecutor) (academic.ReportCard, error) {
	if _, err := uuid.Parse(id); err != nil {
		return academic.ReportCard{}, academic.ErrReportCardNotFound
	}
	var row reportCardRow
	err := sqlx.GetContext(ctx, ext(repo.db, exec), &row, `SELECT * FROM report_card WHERE id = $1`, id)
	if err != nil {
		return academic.ReportCard{}, trapNoRowsErr(err, academic.ErrReportCardNotFound, "finding report card by ID")
	}
	return academic.ReportCard(row), nil
}

func (repo academicRepository) UpdateReportCard(ctx context.Context, rc academic.ReportCard, exec ...core.DBExecutor) (academic.ReportCard, error) {
	_, err := ext(repo.db, exec).ExecContext(ctx,
		`UPDATE report_card SET term = $1, remarks = $2, updated_at = $3 WHERE id = $4`,
		rc.Term, rc.Remarks, rc.UpdatedAt.UTC(), rc.ID)
	if err != nil {
		return academic.ReportCard{}, errors.Wrap(err, "updating report card")
	}
	return rc, nil
}

func (repo academicRepository) DeleteReportCardByID(ctx context.Context, id string, exec ...core.DBExecutor) error {
	if _, err := ext(repo.db, exec).ExecContext(ctx, `DELETE FROM report_card WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting report card")
	}
	return nil
}
