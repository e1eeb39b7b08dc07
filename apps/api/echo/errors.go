package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/account"
	"github.com/trezcool/darasa/core/guardian"
)

var (
	errUnauthorized         = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errAuthenticationFailed = echo.NewHTTPError(http.StatusBadRequest, "invalid credentials")
	errAccountDeactivated   = echo.NewHTTPError(http.StatusForbidden, "account deactivated")
	errOnboardingRequired   = echo.NewHTTPError(http.StatusForbidden, "school selection required")
	errHttpForbidden        = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound         = echo.NewHTTPError(http.StatusNotFound, "not found")

	// parent-student linking failures keep distinct user-reportable messages
	errParentProfileMissing = echo.NewHTTPError(http.StatusBadRequest, "parent profile missing")
	errStudentNotFound      = echo.NewHTTPError(http.StatusNotFound, "student not found")
	errAlreadyLinked        = echo.NewHTTPError(http.StatusConflict, "student already linked to this account")
	errInvalidBirthDate     = echo.NewHTTPError(http.StatusBadRequest, "invalid birth date")
	errVerificationFailed   = echo.NewHTTPError(http.StatusBadRequest, "student verification failed")
)

// httpErr maps domain errors to their HTTP counterparts; anything unmapped
// flows through unchanged and lands in the error handler.
func httpErr(err error) error {
	switch cause := errors.Cause(err); cause {
	case account.ErrNotFound:
		return errHttpNotFound
	case guardian.ErrParentProfileMissing:
		return errParentProfileMissing
	case guardian.ErrStudentNotFound:
		return errStudentNotFound
	case guardian.ErrAlreadyLinked:
		return errAlreadyLinked
	case guardian.ErrInvalidDate:
		return errInvalidBirthDate
	case guardian.ErrVerificationFailed:
		return errVerificationFailed
	default:
		if core.IsNotFound(cause) {
			return errHttpNotFound
		}
		if core.IsForbidden(cause) {
			return errHttpForbidden
		}
		return err
	}
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		case *core.NotFoundError:
			code = http.StatusNotFound
			message = origErr.Error()
		case *core.ForbiddenError:
			code = http.StatusForbidden
			message = origErr.Error()
		default: // any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg

			var usr account.User
			if claims, cErr := getContextClaims(ctx); cErr == nil {
				usr.ID = claims.Subject
				usr.Email = claims.Email
			}
			logger.Error(msg, errors.Wrap(err, msg), usr)

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug {
			message = err.Error()
		} else if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
