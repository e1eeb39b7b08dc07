package school

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

var ErrNotFound = errors.New("school not found")

type (
	Repository interface {
		CreateSchool(ctx context.Context, sch School, exec ...core.DBExecutor) (School, error)
		QueryAllSchools(ctx context.Context, exec ...core.DBExecutor) ([]School, error)
		GetSchoolByID(ctx context.Context, id string, exec ...core.DBExecutor) (School, error)
		UpdateSchool(ctx context.Context, sch School, exec ...core.DBExecutor) (School, error)
		DeleteSchoolByID(ctx context.Context, id string, exec ...core.DBExecutor) error
	}

	ServiceInterface interface {
		Create(ctx context.Context, ns NewSchool) (School, error)
		QueryAll(ctx context.Context) ([]School, error)
		GetByID(ctx context.Context, id string) (School, error)
		Update(ctx context.Context, orig School, us UpdateSchool) (School, error)
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

func (svc *Service) Create(ctx context.Context, ns NewSchool) (School, error) {
	now := time.Now().UTC()
	sch := School{
		Name:      ns.Name,
		Address:   ns.Address,
		Type:      ns.Type,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateSchool(ctx, sch)
}

func (svc *Service) QueryAll(ctx context.Context) ([]School, error) {
	return svc.repo.QueryAllSchools(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id string) (School, error) {
	return svc.repo.GetSchoolByID(ctx, id)
}

func (svc *Service) Update(ctx context.Context, orig School, us UpdateSchool) (School, error) {
	orig.Name = us.Name
	orig.Address = us.Address
	orig.Type = us.Type
	orig.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateSchool(ctx, orig)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteSchoolByID(ctx, id)
}
