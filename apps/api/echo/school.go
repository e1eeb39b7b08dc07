package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/account"
	"github.com/trezcool/darasa/core/authz"
	"github.com/trezcool/darasa/core/school"
)

type schoolApi struct {
	deps ServerDeps
}

func registerSchoolAPI(g *echo.Group, deps ServerDeps) {
	api := schoolApi{deps: deps}

	sg := g.Group("/schools")
	sg.GET("", api.query)
	sg.POST("", api.create)
	sg.POST("/select", api.selectSchool)
	sg.GET("/:id", api.retrieve)
	sg.PUT("/:id", api.update)
	sg.DELETE("/:id", api.destroy)
}

// Handlers

// create registers a new school. An un-onboarded TEACHER creating one is
// immediately assigned to it and gets a fresh token; the one they logged in
// with still says has_school=false.
func (api *schoolApi) create(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.deps.AccountSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if !(ctxUsr.IsAdmin() || (ctxUsr.IsTeacher() && !ctxUsr.HasSchool())) {
		return errHttpForbidden
	}

	var data school.NewSchool
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSchool")
	}
	if err := data.Validate(ctx.Request().Context(), api.deps.Validate); err != nil {
		return err
	}

	sch, err := api.deps.SchoolSvc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating school")
	}

	if ctxUsr.IsTeacher() {
		if err = api.assignAndRefresh(ctx, ctxUsr, sch.ID); err != nil {
			return err
		}
	}
	return ctx.JSON(http.StatusCreated, sch)
}

func (api *schoolApi) query(ctx echo.Context) error {
	schools, err := api.deps.SchoolSvc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying schools")
	}
	if schools == nil {
		schools = []school.School{}
	}
	return ctx.JSON(http.StatusOK, schools)
}

// selectSchool is the TEACHER onboarding flow; the assignment is write-once,
// so no other role may acquire a SchoolID here.
func (api *schoolApi) selectSchool(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.deps.AccountSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if !ctxUsr.IsTeacher() {
		return errHttpForbidden
	}

	var data SelectSchoolRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SelectSchoolRequest")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	if _, err = api.deps.SchoolSvc.GetByID(ctx.Request().Context(), data.SchoolID); err != nil {
		if errors.Cause(err) == school.ErrNotFound {
			return core.NewValidationError(err, core.FieldError{Field: "school_id", Error: err.Error()})
		}
		return errors.Wrap(err, "finding school")
	}

	if err = api.assignAndRefresh(ctx, ctxUsr, data.SchoolID); err != nil {
		return err
	}
	usr, _ := ctx.Get(contextUserKey).(account.User)
	return ctx.JSON(http.StatusOK, usr)
}

func (api *schoolApi) retrieve(ctx echo.Context) error {
	sch, ctxUsr, err := api.load(ctx)
	if err != nil {
		return err
	}
	if err = authz.AuthorizeSchool(ctxUsr, sch, false /* write */); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sch)
}

func (api *schoolApi) update(ctx echo.Context) error {
	sch, ctxUsr, err := api.load(ctx)
	if err != nil {
		return err
	}
	if err = authz.AuthorizeSchool(ctxUsr, sch, true /* write */); err != nil {
		return err
	}

	var data school.UpdateSchool
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSchool")
	}
	if err := data.Validate(ctx.Request().Context(), sch, api.deps.Validate); err != nil {
		return err
	}

	sch, err = api.deps.SchoolSvc.Update(ctx.Request().Context(), sch, data)
	if err != nil {
		return errors.Wrap(err, "updating school")
	}
	return ctx.JSON(http.StatusOK, sch)
}

func (api *schoolApi) destroy(ctx echo.Context) error {
	sch, ctxUsr, err := api.load(ctx)
	if err != nil {
		return err
	}
	if err = authz.AuthorizeSchool(ctxUsr, sch, true /* write */); err != nil {
		return err
	}
	if err = api.deps.SchoolSvc.Delete(ctx.Request().Context(), sch.ID); err != nil {
		return errors.Wrap(err, "deleting school")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// load fetches the target school first so that an absent one reads as 404
// before any ownership decision is made.
func (api *schoolApi) load(ctx echo.Context) (school.School, account.User, error) {
	ctxUsr, err := getContextUser(ctx, api.deps.AccountSvc)
	if err != nil {
		return school.School{}, account.User{}, errors.Wrap(err, "getting context user")
	}
	sch, err := api.deps.SchoolSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == school.ErrNotFound {
			return school.School{}, account.User{}, errHttpNotFound
		}
		return school.School{}, account.User{}, errors.Wrap(err, "finding school by ID")
	}
	return sch, ctxUsr, nil
}

// assignAndRefresh completes onboarding and re-issues the session cookie so
// the has_school claim catches up right away.
func (api *schoolApi) assignAndRefresh(ctx echo.Context, ctxUsr account.User, schoolID string) error {
	usr, err := api.deps.AccountSvc.AssignSchool(ctx.Request().Context(), ctxUsr, schoolID)
	if err != nil {
		return err
	}
	ctx.Set(contextUserKey, usr)

	token, err := GenerateToken(api.deps.Conf, GetUserClaims(api.deps.Conf, usr))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	setSessionCookie(ctx, api.deps.Conf, token)
	return nil
}

type SelectSchoolRequest struct {
	SchoolID string `json:"school_id" validate:"required,uuid4"`
}

func (sr *SelectSchoolRequest) Validate(validate *validator.Validate) error {
	sr.SchoolID = core.CleanString(sr.SchoolID)
	return validate.Struct(sr)
}
