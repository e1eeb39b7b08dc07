package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/academic"
	"github.com/trezcool/darasa/core/account"
	"github.com/trezcool/darasa/core/authz"
)

type academicApi struct {
	deps ServerDeps
}

func registerAcademicAPI(g *echo.Group, deps ServerDeps) {
	api := academicApi{deps: deps}

	sg := g.Group("/subjects")
	sg.POST("", api.createSubject)
	sg.GET("", api.querySubjects)
	sg.GET("/:id", api.retrieveSubject)
	sg.PUT("/:id", api.updateSubject)
	sg.DELETE("/:id", api.destroySubject)

	ag := g.Group("/assessments")
	ag.POST("", api.createAssessment)
	ag.GET("", api.queryAssessments)
	ag.GET("/:id", api.retrieveAssessment)
	ag.PUT("/:id", api.updateAssessment)
	ag.DELETE("/:id", api.destroyAssessment)

	rg := g.Group("/report-cards")
	rg.POST("", api.createReportCard)
	rg.GET("", api.queryReportCards)
	rg.GET("/:id", api.retrieveReportCard)
	rg.PUT("/:id", api.updateReportCard)
	rg.DELETE("/:id", api.destroyReportCard)
}

func (api *academicApi) teacher(ctx echo.Context) (account.User, error) {
	ctxUsr, err := getContextUser(ctx, api.deps.AccountSvc)
	if err != nil {
		return account.User{}, errors.Wrap(err, "getting context user")
	}
	if !(ctxUsr.IsTeacher() || ctxUsr.IsAdmin()) {
		return account.User{}, errHttpForbidden
	}
	return ctxUsr, nil
}

// Subjects

func (api *academicApi) createSubject(ctx echo.Context) error {
	ctxUsr, err := api.teacher(ctx)
	if err != nil {
		return err
	}

	var data academic.NewSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubject")
	}
	if err := data.Validate(ctx.Request().Context(), api.deps.Validate); err != nil {
		return err
	}

	sub, err := api.deps.AcademicSvc.CreateSubject(ctx.Request().Context(), ctxUsr.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating subject")
	}
	return ctx.JSON(http.StatusCreated, sub)
}

func (api *academicApi) querySubjects(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.deps.AccountSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	subjects, err := api.deps.AcademicSvc.QuerySubjects(ctx.Request().Context(), ctxUsr.ID)
	if err != nil {
		return errors.Wrap(err, "querying subjects")
	}
	if subjects == nil {
		subjects = []academic.Subject{}
	}
	return ctx.JSON(http.StatusOK, subjects)
}

func (api *academicApi) retrieveSubject(ctx echo.Context) error {
	sub, _, err := api.loadSubject(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *academicApi) updateSubject(ctx echo.Context) error {
	sub, _, err := api.loadSubject(ctx)
	if err != nil {
		return err
	}

	var data academic.UpdateSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSubject")
	}
	if err := data.Validate(ctx.Request().Context(), sub, api.deps.Validate); err != nil {
		return err
	}

	sub, err = api.deps.AcademicSvc.UpdateSubject(ctx.Request().Context(), sub, data)
	if err != nil {
		return errors.Wrap(err, "updating subject")
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *academicApi) destroySubject(ctx echo.Context) error {
	sub, _, err := api.loadSubject(ctx)
	if err != nil {
		return err
	}
	if err = api.deps.AcademicSvc.DeleteSubject(ctx.Request().Context(), sub.ID); err != nil {
		return errors.Wrap(err, "deleting subject")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *academicApi) loadSubject(ctx echo.Context) (academic.Subject, account.User, error) {
	ctxUsr, err := getContextUser(ctx, api.deps.AccountSvc)
	if err != nil {
		return academic.Subject{}, account.User{}, errors.Wrap(err, "getting context user")
	}
	sub, err := api.deps.AcademicSvc.GetSubject(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == academic.ErrSubjectNotFound {
			return academic.Subject{}, account.User{}, errHttpNotFound
		}
		return academic.Subject{}, account.User{}, errors.Wrap(err, "finding subject by ID")
	}
	if err = authz.AuthorizeOwned(ctxUsr, sub); err != nil {
		return academic.Subject{}, account.User{}, err
	}
	return sub, ctxUsr, nil
}

// Assessments

func (api *academicApi) createAssessment(ctx echo.Context) error {
	ctxUsr, err := api.teacher(ctx)
	if err != nil {
		return err
	}

	var data academic.NewAssessment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssessment")
	}
	if err := data.Validate(ctx.Request().Context(), api.deps.Validate); err != nil {
		return err
	}

	ass, err := api.deps.AcademicSvc.CreateAssessment(ctx.Request().Context(), ctxUsr.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating assessment")
	}
	return ctx.JSON(http.StatusCreated, ass)
}

func (api *academicApi) queryAssessments(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.deps.AccountSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	asses, err := api.deps.AcademicSvc.QueryAssessments(ctx.Request().Context(), ctxUsr.ID)
	if err != nil {
		return errors.Wrap(err, "querying assessments")
	}
	if asses == nil {
		asses = []academic.Assessment{}
	}
	return ctx.JSON(http.StatusOK, asses)
}

func (api *academicApi) retrieveAssessment(ctx echo.Context) error {
	ass, _, err := api.loadAssessment(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ass)
}

func (api *academicApi) updateAssessment(ctx echo.Context) error {
	ass, _, err := api.loadAssessment(ctx)
	if err != nil {
		return err
	}

	var data academic.UpdateAssessment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateAssessment")
	}
	if err := data.Validate(ctx.Request().Context(), ass, api.deps.Validate); err != nil {
		return err
	}

	ass, err = api.deps.AcademicSvc.UpdateAssessment(ctx.Request().Context(), ass, data)
	if err != nil {
		return errors.Wrap(err, "updating assessment")
	}
	return ctx.JSON(http.StatusOK, ass)
}

func (api *academicApi) destroyAssessment(ctx echo.Context) error {
	ass, _, err := api.loadAssessment(ctx)
	if err != nil {
		return err
	}
	if err = api.deps.AcademicSvc.DeleteAssessment(ctx.Request().Context(), ass.ID); err != nil {
		return errors.Wrap(err, "deleting assessment")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *academicApi) loadAssessment(ctx echo.Context) (academic.Assessment, account.User, error) {
	ctxUsr, err := getContextUser(ctx, api.deps.AccountSvc)
	if err != nil {
		return academic.Assessment{}, account.User{}, errors.Wrap(err, "getting context user")
	}
	ass, err := api.deps.AcademicSvc.GetAssessment(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == academic.ErrAssessmentNotFound {
			return academic.Assessment{}, account.User{}, errHttpNotFound
		}
		return academic.Assessment{}, account.User{}, errors.Wrap(err, "finding assessment by ID")
	}
	if err = authz.AuthorizeOwned(ctxUsr, ass); err != nil {
		return academic.Assessment{}, account.User{}, err
	}
	return ass, ctxUsr, nil
}

// Report cards

func (api *academicApi) createReportCard(ctx echo.Context) error {
	ctxUsr, err := api.teacher(ctx)
	if err != nil {
		return err
	}

	var data academic.NewReportCard
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewReportCard")
	}
	if err := data.Validate(ctx.Request().Context(), api.deps.Validate); err != nil {
		return err
	}

	rc, err := api.deps.AcademicSvc.CreateReportCard(ctx.Request().Context(), ctxUsr.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating report card")
	}
	return ctx.JSON(http.StatusCreated, rc)
}

func (api *academicApi) queryReportCards(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.deps.AccountSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	cards, err := api.deps.AcademicSvc.QueryReportCards(ctx.Request().Context(), ctxUsr.ID)
	if err != nil {
		return errors.Wrap(err, "querying report cards")
	}
	if cards == nil {
		cards = []academic.ReportCard{}
	}
	return ctx.JSON(http.StatusOK, cards)
}

func (api *academicApi) retrieveReportCard(ctx echo.Context) error {
	rc, _, err := api.loadReportCard(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rc)
}

func (api *academicApi) updateReportCard(ctx echo.Context) error {
	rc, _, err := api.loadReportCard(ctx)
	if err != nil {
		return err
	}

	var data academic.UpdateReportCard
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateReportCard")
	}
	if err := data.Validate(ctx.Request().Context(), rc, api.deps.Validate); err != nil {
		return err
	}

	rc, err = api.deps.AcademicSvc.UpdateReportCard(ctx.Request().Context(), rc, data)
	if err != nil {
		return errors.Wrap(err, "updating report card")
	}
	return ctx.JSON(http.StatusOK, rc)
}

func (api *academicApi) destroyReportCard(ctx echo.Context) error {
	rc, _, err := api.loadReportCard(ctx)
	if err != nil {
		return err
	}
	if err = api.deps.AcademicSvc.DeleteReportCard(ctx.Request().Context(), rc.ID); err != nil {
		return errors.Wrap(err, "deleting report card")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *academicApi) loadReportCard(ctx echo.Context) (academic.ReportCard, account.User, error) {
	ctxUsr, err := getContextUser(ctx, api.deps.AccountSvc)
	if err != nil {
		return academic.ReportCard{}, account.User{}, errors.Wrap(err, "getting context user")
	}
	rc, err := api.deps.AcademicSvc.GetReportCard(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == academic.ErrReportCardNotFound {
			return academic.ReportCard{}, account.User{}, errHttpNotFound
		}
		return academic.ReportCard{}, account.User{}, errors.Wrap(err, "finding report card by ID")
	}
	if err = authz.AuthorizeOwned(ctxUsr, rc); err != nil {
		return academic.ReportCard{}, account.User{}, err
	}
	return rc, ctxUsr, nil
}
