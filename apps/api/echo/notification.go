package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/account"
	"github.com/trezcool/darasa/core/authz"
	"github.com/trezcool/darasa/core/notification"
)

type notificationApi struct {
	deps ServerDeps
}

func registerNotificationAPI(g *echo.Group, deps ServerDeps) {
	api := notificationApi{deps: deps}

	ng := g.Group("/notifications")
	ng.POST("", api.create)
	ng.GET("", api.query)
	ng.GET("/:id", api.retrieve)
	ng.POST("/:id/read", api.markRead)
	ng.DELETE("/:id", api.destroy)
}

// Handlers

func (api *notificationApi) create(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.deps.AccountSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data notification.NewNotification
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewNotification")
	}
	if err := data.Validate(ctx.Request().Context(), api.deps.Validate); err != nil {
		return err
	}

	recipient, err := api.deps.AccountSvc.GetByID(ctx.Request().Context(), data.RecipientID)
	if err != nil {
		if errors.Cause(err) == account.ErrNotFound {
			return core.NewValidationError(err, core.FieldError{Field: "recipient_id", Error: "recipient not found"})
		}
		return errors.Wrap(err, "finding recipient")
	}

	if err = api.deps.Authorizer.AuthorizeNotificationCreate(ctx.Request().Context(), ctxUsr, recipient); err != nil {
		return err
	}

	notif, err := api.deps.NotifSvc.Create(ctx.Request().Context(), ctxUsr.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating notification")
	}
	return ctx.JSON(http.StatusCreated, notif)
}

func (api *notificationApi) query(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.deps.AccountSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	notifs, err := api.deps.NotifSvc.QueryByUser(ctx.Request().Context(), ctxUsr.ID)
	if err != nil {
		return errors.Wrap(err, "querying notifications")
	}
	if notifs == nil {
		notifs = []notification.Notification{}
	}
	return ctx.JSON(http.StatusOK, notifs)
}

func (api *notificationApi) retrieve(ctx echo.Context) error {
	notif, _, err := api.load(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, notif)
}

func (api *notificationApi) markRead(ctx echo.Context) error {
	notif, ctxUsr, err := api.load(ctx)
	if err != nil {
		return err
	}
	// only the recipient reads a notification
	if !(ctxUsr.IsAdmin() || notif.RecipientID == ctxUsr.ID) {
		return errHttpForbidden
	}

	notif, err = api.deps.NotifSvc.MarkRead(ctx.Request().Context(), notif.ID)
	if err != nil {
		return errors.Wrap(err, "marking notification read")
	}
	return ctx.JSON(http.StatusOK, notif)
}

func (api *notificationApi) destroy(ctx echo.Context) error {
	notif, _, err := api.load(ctx)
	if err != nil {
		return err
	}
	if err = api.deps.NotifSvc.Delete(ctx.Request().Context(), notif.ID); err != nil {
		return errors.Wrap(err, "deleting notification")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *notificationApi) load(ctx echo.Context) (notification.Notification, account.User, error) {
	ctxUsr, err := getContextUser(ctx, api.deps.AccountSvc)
	if err != nil {
		return notification.Notification{}, account.User{}, errors.Wrap(err, "getting context user")
	}
	notif, err := api.deps.NotifSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == notification.ErrNotFound {
			return notification.Notification{}, account.User{}, errHttpNotFound
		}
		return notification.Notification{}, account.User{}, errors.Wrap(err, "finding notification by ID")
	}
	if err = authz.AuthorizeNotificationAccess(ctxUsr, notif); err != nil {
		return notification.Notification{}, account.User{}, err
	}
	return notif, ctxUsr, nil
}
