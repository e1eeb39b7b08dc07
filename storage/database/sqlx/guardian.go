package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/guardian"
	"github.com/trezcool/darasa/core/student"
)

type parentRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Phone     string    `db:"phone"`
	CreatedAt time.Time `db:"created_at"`
}

type guardianRepository struct {
	db *sqlx.DB
}

var _ guardian.Repository = (*guardianRepository)(nil) // interface compliance check

func NewGuardianRepository(db *sqlx.DB) *guardianRepository {
	return &guardianRepository{db: db}
}

func (repo guardianRepository) CreateParent(ctx context.Context, par guardian.Parent, exec ...core.DBExecutor) (guardian.Parent, error) {
	par.ID = uuid.New().String()
	_, err := ext(repo.db, exec).ExecContext(ctx,
		`INSERT INTO parent (id, user_id, phone, created_at) VALUES ($1, $2, $3, $4)`,
		par.ID, par.UserID, par.Phone, par.CreatedAt.UTC())
	if err != nil {
		return guardian.Parent{}, errors.Wrap(err, "inserting parent")
	}
	return par, nil
}

func (repo guardianRepository) GetParentByUserID(ctx context.Context, userID string, exec ...core.DBExecutor) (guardian.Parent, error) {
	var row parentRow
	err := sqlx.GetContext(ctx, ext(repo.db, exec), &row, `SELECT * FROM parent WHERE user_id = $1`, userID)
	if err != nil {
		return guardian.Parent{}, trapNoRowsErr(err, guardian.ErrParentProfileMissing, "finding parent by user ID")
	}
	return guardian.Parent(row), nil
}

func (repo guardianRepository) LinkExists(ctx context.Context, parentID, studentID string, exec ...core.DBExecutor) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, ext(repo.db, exec), &exists,
		`SELECT EXISTS (SELECT 1 FROM parent_link WHERE parent_id = $1 AND student_id = $2)`, parentID, studentID)
	if err != nil {
		return false, errors.Wrap(err, "checking existing link")
	}
	return exists, nil
}

// CreateLink inserts the link row and, when birthDate is non-nil, records the
// student's birth date in the same transaction, so a half-linked state cannot
// exist. The birth-date write is guarded with `birth_date IS NULL`: losing
// the first-write race leaves the winner's date in place and this attempt
// fails closed instead of overwriting.
func (repo guardianRepository) CreateLink(ctx context.Context, parentID, studentID string, birthDate *time.Time) (guardian.Link, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return guardian.Link{}, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	link := guardian.Link{
		ID:        uuid.New().String(),
		ParentID:  parentID,
		StudentID: studentID,
		CreatedAt: time.Now().UTC(),
	}

	if birthDate != nil {
		res, err := tx.ExecContext(ctx,
			`UPDATE student SET birth_date = $1, updated_at = $2 WHERE id = $3 AND birth_date IS NULL`,
			birthDate.UTC(), time.Now().UTC(), studentID)
		if err != nil {
			return guardian.Link{}, errors.Wrap(err, "recording birth date")
		}
		n, err := res.RowsAffected()
		if err != nil {
			return guardian.Link{}, errors.Wrap(err, "recording birth date")
		}
		if n == 0 {
			// a concurrent link recorded a birth date after our check;
			// fail closed and let the caller re-verify against it
			return guardian.Link{}, guardian.ErrVerificationFailed
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO parent_link (id, parent_id, student_id, created_at) VALUES ($1, $2, $3, $4)`,
		link.ID, link.ParentID, link.StudentID, link.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "parent_link_pair_uniq") {
			return guardian.Link{}, guardian.ErrAlreadyLinked
		}
		return guardian.Link{}, errors.Wrap(err, "inserting link")
	}

	if err = tx.Commit(); err != nil {
		return guardian.Link{}, errors.Wrap(err, "committing link")
	}
	return link, nil
}

func (repo guardianRepository) QueryLinkedStudents(ctx context.Context, parentID string, exec ...core.DBExecutor) ([]student.Student, error) {
	var rows []studentRow
	err := sqlx.SelectContext(ctx, ext(repo.db, exec), &rows,
		`SELECT s.* FROM student s
		 JOIN parent_link pl ON pl.student_id = s.id
		 WHERE pl.parent_id = $1
		 ORDER BY s.name`, parentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying linked students")
	}
	students := make([]student.Student, 0, len(rows))
	for _, r := range rows {
		students = append(students, r.model())
	}
	return students, nil
}

func (repo guardianRepository) ParentUserLinkedToTeacher(ctx context.Context, parentUserID, teacherID string, exec ...core.DBExecutor) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, ext(repo.db, exec), &exists,
		`SELECT EXISTS (
		    SELECT 1 FROM parent_link pl
		    JOIN parent p ON p.id = pl.parent_id
		    JOIN student s ON s.id = pl.student_id
		    WHERE p.user_id = $1 AND s.teacher_id = $2)`, parentUserID, teacherID)
	if err != nil {
		return false, errors.Wrap(err, "checking parent-teacher link")
	}
	return exists, nil
}
