package echoapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/account"
)

// publicPaths require no session at all.
var publicPaths = map[string]bool{
	"/":                      true,
	"/login":                 true,
	"/register":              true,
	"/api/accounts/login":    true,
	"/api/accounts/register": true,
	"/api/accounts/logout":   true,
}

// onboardingPaths stay reachable for a teacher that has not selected a school
// yet; everything else is blocked until onboarding completes.
var onboardingPaths = map[string]bool{
	"/onboarding":         true,
	"/api/schools":        true,
	"/api/schools/select": true,
	"/api/accounts/me":    true,
}

// accessGate is the single authentication choke point. It admits public
// paths, verifies the session cookie for everything else and enforces the
// teacher onboarding detour off the coarse has_school claim. Fine-grained
// authorization stays with the handlers.
func accessGate(conf *core.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			path := ctx.Request().URL.Path
			if publicPaths[path] {
				return next(ctx)
			}

			cookie, err := ctx.Cookie(conf.Server.CookieName)
			if err != nil || cookie.Value == "" {
				return rejectUnauthenticated(ctx, path)
			}
			claims, err := VerifyToken(conf, cookie.Value)
			if err != nil {
				clearSessionCookie(ctx, conf)
				return rejectUnauthenticated(ctx, path)
			}
			ctx.Set(contextClaimsKey, claims)

			if claims.Role == account.RoleTeacher && !claims.HasSchool && !onboardingPaths[path] {
				return rejectUnonboarded(ctx, path)
			}
			return next(ctx)
		}
	}
}

// API routes get JSON errors, page routes get redirected.
func isAPIPath(path string) bool {
	return strings.HasPrefix(path, "/api/")
}

func rejectUnauthenticated(ctx echo.Context, path string) error {
	if isAPIPath(path) {
		return errUnauthorized
	}
	return ctx.Redirect(http.StatusSeeOther, "/login")
}

func rejectUnonboarded(ctx echo.Context, path string) error {
	if isAPIPath(path) {
		return errOnboardingRequired
	}
	return ctx.Redirect(http.StatusSeeOther, "/onboarding")
}
