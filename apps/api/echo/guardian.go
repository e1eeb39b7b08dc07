package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/guardian"
	"github.com/trezcool/darasa/core/student"
)

type guardianApi struct {
	deps ServerDeps
}

func registerGuardianAPI(g *echo.Group, deps ServerDeps) {
	api := guardianApi{deps: deps}

	gg := g.Group("/guardian")
	gg.POST("/links", api.link)
	gg.GET("/links", api.linkedStudents)
}

// Handlers

// link runs the NISN + birth date verification protocol. Each failure kind
// surfaces with its own status and message; parents need to know whether to
// fix a typo or call the school.
func (api *guardianApi) link(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.deps.AccountSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data guardian.LinkRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LinkRequest")
	}
	if err := data.Validate(ctx.Request().Context(), api.deps.Validate); err != nil {
		return err
	}

	std, err := api.deps.GuardianSvc.Link(ctx.Request().Context(), ctxUsr, data)
	if err != nil {
		return httpErr(err)
	}
	return ctx.JSON(http.StatusCreated, std)
}

func (api *guardianApi) linkedStudents(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.deps.AccountSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	students, err := api.deps.GuardianSvc.LinkedStudents(ctx.Request().Context(), ctxUsr)
	if err != nil {
		return httpErr(err)
	}
	if students == nil {
		students = []student.Student{}
	}
	return ctx.JSON(http.StatusOK, students)
}
