package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/account"
	"github.com/trezcool/darasa/core/guardian"
	"github.com/trezcool/darasa/core/school"
	"github.com/trezcool/darasa/core/student"
)

type accountApi struct {
	deps ServerDeps
}

func registerAccountAPI(g *echo.Group, deps ServerDeps) {
	api := accountApi{deps: deps}

	ag := g.Group("/accounts")

	// un-authed endpoints; the gate admits these
	ag.POST("/register", api.register)
	ag.POST("/login", api.login)
	ag.POST("/logout", api.logout)

	ag.GET("/me", api.me)
}

// Handlers

func (api *accountApi) register(ctx echo.Context) error {
	var data RegisterRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RegisterRequest")
	}
	data.Phone = core.CleanString(data.Phone)
	if err := data.NewUser.Validate(ctx.Request().Context(), api.deps.Validate, api.deps.AccountSvc); err != nil {
		return err
	}

	usr, err := api.deps.AccountSvc.Register(ctx.Request().Context(), data.NewUser)
	if err != nil {
		if errors.Cause(err) == account.ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return errors.Wrap(err, "registering account")
	}

	// a PARENT account cannot link students without a guardian profile
	if usr.IsParent() {
		if _, err = api.deps.GuardianSvc.CreateProfile(ctx.Request().Context(), usr.ID, data.Phone); err != nil {
			return errors.Wrap(err, "creating parent profile")
		}
	}

	return ctx.JSON(http.StatusCreated, usr)
}

func (api *accountApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	usr, err := authenticate(ctx, data.Email, data.Password, api.deps.AccountSvc)
	if err != nil {
		return err
	}
	token, err := GenerateToken(api.deps.Conf, GetUserClaims(api.deps.Conf, usr))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	setSessionCookie(ctx, api.deps.Conf, token)

	resp := LoginResponse{Token: token, User: usr}
	switch {
	case usr.IsTeacher() && usr.HasSchool():
		sch, err := api.deps.SchoolSvc.GetByID(ctx.Request().Context(), usr.SchoolID.String)
		if err == nil {
			resp.School = &sch
		} else if errors.Cause(err) != school.ErrNotFound {
			return errors.Wrap(err, "finding school")
		}
	case usr.IsParent():
		students, err := api.deps.GuardianSvc.LinkedStudents(ctx.Request().Context(), usr)
		if err != nil && errors.Cause(err) != guardian.ErrParentProfileMissing {
			return errors.Wrap(err, "querying linked students")
		}
		if students == nil {
			students = []student.Student{}
		}
		resp.Students = students
	}

	return ctx.JSON(http.StatusOK, resp)
}

func (api *accountApi) logout(ctx echo.Context) error {
	// stateless sessions: logout only clears the cookie, tokens already
	// issued stay valid until they expire
	clearSessionCookie(ctx, api.deps.Conf)
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Logged out."})
}

func (api *accountApi) me(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.deps.AccountSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	return ctx.JSON(http.StatusOK, usr)
}

type (
	RegisterRequest struct {
		account.NewUser
		Phone string `json:"phone"`
	}

	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token    string            `json:"token"`
		User     account.User      `json:"user"`
		School   *school.School    `json:"school,omitempty"`
		Students []student.Student `json:"students,omitempty"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return validate.Struct(lr)
}
