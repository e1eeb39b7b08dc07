package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/account"
	"github.com/trezcool/darasa/core/authz"
	"github.com/trezcool/darasa/core/student"
)

type studentApi struct {
	deps ServerDeps
}

func registerStudentAPI(g *echo.Group, deps ServerDeps) {
	api := studentApi{deps: deps}

	sg := g.Group("/students")
	sg.POST("", api.create)
	sg.GET("", api.query)
	sg.GET("/:id", api.retrieve)
	sg.PUT("/:id", api.update)
	sg.DELETE("/:id", api.destroy)
}

// Handlers

func (api *studentApi) create(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.deps.AccountSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if !(ctxUsr.IsTeacher() || ctxUsr.IsAdmin()) {
		return errHttpForbidden
	}

	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(ctx.Request().Context(), api.deps.Validate, api.deps.StudentSvc); err != nil {
		return err
	}

	std, err := api.deps.StudentSvc.Create(ctx.Request().Context(), ctxUsr.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, std)
}

func (api *studentApi) query(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.deps.AccountSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	students, err := api.deps.StudentSvc.QueryByTeacher(ctx.Request().Context(), ctxUsr.ID)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	if students == nil {
		students = []student.Student{}
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	std, _, err := api.load(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *studentApi) update(ctx echo.Context) error {
	std, _, err := api.load(ctx)
	if err != nil {
		return err
	}

	var data student.UpdateStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}
	if err := data.Validate(ctx.Request().Context(), std, api.deps.Validate); err != nil {
		return err
	}

	std, err = api.deps.StudentSvc.Update(ctx.Request().Context(), std, data)
	if err != nil {
		return errors.Wrap(err, "updating student")
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *studentApi) destroy(ctx echo.Context) error {
	std, _, err := api.load(ctx)
	if err != nil {
		return err
	}
	if err = api.deps.StudentSvc.Delete(ctx.Request().Context(), std.ID); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// load fetches the target first and authorizes second: an absent student is
// 404 for everybody, an existing one owned by somebody else is 403.
func (api *studentApi) load(ctx echo.Context) (student.Student, account.User, error) {
	ctxUsr, err := getContextUser(ctx, api.deps.AccountSvc)
	if err != nil {
		return student.Student{}, account.User{}, errors.Wrap(err, "getting context user")
	}
	std, err := api.deps.StudentSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return student.Student{}, account.User{}, errHttpNotFound
		}
		return student.Student{}, account.User{}, errors.Wrap(err, "finding student by ID")
	}
	if err = authz.AuthorizeOwned(ctxUsr, std); err != nil {
		return student.Student{}, account.User{}, err
	}
	return std, ctxUsr, nil
}
