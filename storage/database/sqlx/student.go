package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/student"
)

type studentRow struct {
	ID        string    `db:"id"`
	NISN      string    `db:"nisn"`
	Name      string    `db:"name"`
	Grade     string    `db:"grade"`
	BirthDate null.Time `db:"birth_date"`
	TeacherID string    `db:"teacher_id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r studentRow) model() student.Student {
	return student.Student(r)
}

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) *studentRepository {
	return &studentRepository{db: db}
}

func (repo studentRepository) CheckNISNUniqueness(ctx context.Context, nisn string, exec ...core.DBExecutor) error {
	var exists bool
	err := sqlx.GetContext(ctx, ext(repo.db, exec), &exists,
		`SELECT EXISTS (SELECT 1 FROM student WHERE nisn = $1)`, nisn)
	if err != nil {
		return errors.Wrap(err, "checking student uniqueness")
	}
	if exists {
		return student.ErrNISNExists
	}
	return nil
}

func (repo studentRepository) CreateStudent(ctx context.Context, std student.Student, exec ...core.DBExecutor) (student.Student, error) {
	std.ID = uuid.New().String()
	_, err := ext(repo.db, exec).ExecContext(ctx,
		`INSERT INTO student (id, nisn, name, grade, birth_date, teacher_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		std.ID, std.NISN, std.Name, std.Grade, std.BirthDate, std.TeacherID,
		std.CreatedAt.UTC(), std.UpdatedAt.UTC())
	if err != nil {
		if isUniqueViolation(err, "student_nisn_key") {
			return student.Student{}, student.ErrNISNExists
		}
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return std, nil
}

func (repo studentRepository) QueryStudentsByTeacher(ctx context.Context, teacherID string, exec ...core.DBExecutor) ([]student.Student, error) {
	var rows []studentRow
	err := sqlx.SelectContext(ctx, ext(repo.db, exec), &rows,
		`SELECT * FROM student WHERE teacher_id = $1 ORDER BY name`, teacherID)
	if err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	students := make([]student.Student, 0, len(rows))
	for _, r := range rows {
		students = append(students, r.model())
	}
	return students, nil
}

func (repo studentRepository) GetStudentByID(ctx context.Context, id string, exec ...core.DBExecutor) (student.Student, error) {
	if _, err := uuid.Parse(id); err != nil {
		return student.Student{}, student.ErrNotFound
	}
	var row studentRow
	err := sqlx.GetContext(ctx, ext(repo.db, exec), &row, `SELECT * FROM student WHERE id = $1`, id)
	if err != nil {
		return student.Student{}, trapNoRowsErr(err, student.ErrNotFound, "finding student by ID")
	}
	return row.model(), nil
}

func (repo studentRepository) GetStudentByNISN(ctx context.Context, nisn string, exec ...core.DBExecutor) (student.Student, error) {
	var row studentRow
	err := sqlx.GetContext(ctx, ext(repo.db, exec), &row, `SELECT * FROM student WHERE nisn = $1`, nisn)
	if err != nil {
		return student.Student{}, trapNoRowsErr(err, student.ErrNotFound, "finding student by NISN")
	}
	return row.model(), nil
}

func (repo studentRepository) UpdateStudent(ctx context.Context, std student.Student, exec ...core.DBExecutor) (student.Student, error) {
	_, err := ext(repo.db, exec).ExecContext(ctx,
		`UPDATE student SET name = $1, grade = $2, updated_at = $3 WHERE id = $4`,
		std.Name, std.Grade, std.UpdatedAt.UTC(), std.ID)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	return std, nil
}

func (repo studentRepository) DeleteStudentByID(ctx context.Context, id string, exec ...core.DBExecutor) error {
	if _, err := ext(repo.db, exec).ExecContext(ctx, `DELETE FROM student WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return nil
}
