package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/school"
)

type schoolRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Address   string    `db:"address"`
	Type      string    `db:"type"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r schoolRow) model() school.School {
	return school.School(r)
}

type schoolRepository struct {
	db *sqlx.DB
}

var _ school.Repository = (*schoolRepository)(nil) // interface compliance check

func NewSchoolRepository(db *sqlx.DB) *schoolRepository {
	return &schoolRepository{db: db}
}

func (repo schoolRepository) CreateSchool(ctx context.Context, sch school.School, exec ...core.DBExecutor) (school.School, error) {
	sch.ID = uuid.New().String()
	_, err := ext(repo.db, exec).ExecContext(ctx,
		`INSERT INTO school (id, name, address, type, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		sch.ID, sch.Name, sch.Address, sch.Type, sch.CreatedAt.UTC(), sch.UpdatedAt.UTC())
	if err != nil {
		return school.School{}, errors.Wrap(err, "inserting school")
	}
	return sch, nil
}

func (repo schoolRepository) QueryAllSchools(ctx context.Context, exec ...core.DBExecutor) ([]school.School, error) {
	var rows []schoolRow
	err := sqlx.SelectContext(ctx, ext(repo.db, exec), &rows, `SELECT * FROM school ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(err, "querying schools")
	}
	schools := make([]school.School, 0, len(rows))
	for _, r := range rows {
		schools = append(schools, r.model())
	}
	return schools, nil
}

func (repo schoolRepository) GetSchoolByID(ctx context.Context, id string, exec ...core.DBExecutor) (school.School, error) {
	if _, err := uuid.Parse(id); err != nil {
		return school.School{}, school.ErrNotFound
	}
	var row schoolRow
	err := sqlx.GetContext(ctx, ext(repo.db, exec), &row, `SELECT * FROM school WHERE id = $1`, id)
	if err != nil {
		return school.School{}, trapNoRowsErr(err, school.ErrNotFound, "finding school by ID")
	}
	return row.model(), nil
}

func (repo schoolRepository) UpdateSchool(ctx context.Context, sch school.School, exec ...core.DBExecutor) (school.School, error) {
	_, err := ext(repo.db, exec).ExecContext(ctx,
		`UPDATE school SET name = $1, address = $2, type = $3, updated_at = $4 WHERE id = $5`,
		sch.Name, sch.Address, sch.Type, sch.UpdatedAt.UTC(), sch.ID)
	if err != nil {
		return school.School{}, errors.Wrap(err, "updating school")
	}
	return sch, nil
}

func (repo schoolRepository) DeleteSchoolByID(ctx context.Context, id string, exec ...core.DBExecutor) error {
	if _, err := ext(repo.db, exec).ExecContext(ctx, `DELETE FROM school WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting school")
	}
	return nil
}
