package echoapi

import (
	"net/http"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/account"
)

const (
	contextClaimsKey = "sessionClaims"
	contextUserKey   = "user"
)

// Claims represents the authorization claims transmitted via a session JWT.
// HasSchool is a snapshot taken at signing time: the gate routes on it, while
// everything security-relevant re-reads the live account.
type Claims struct {
	jwt.StandardClaims
	Email     string `json:"email,omitempty"`
	Role      string `json:"role,omitempty"`
	HasSchool bool   `json:"has_school"`
}

// GetUserClaims derives session Claims from a User; the token expires
// JWTExpirationDelta (24h) from now.
func GetUserClaims(conf *core.Config, usr account.User) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   usr.ID,
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Email:     usr.Email,
		Role:      usr.Role,
		HasSchool: usr.HasSchool(),
	}
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func GenerateToken(conf *core.Config, claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString(conf.SecretKey)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

// VerifyToken parses and verifies a session token. It fails closed: malformed
// structure, a bad signature and an expired timestamp all collapse into the
// same errUnauthorized so callers cannot probe which check failed.
func VerifyToken(conf *core.Config, token string) (*Claims, error) {
	claims := new(Claims)
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errUnauthorized
		}
		return conf.SecretKey, nil
	})
	if err != nil || !parsed.Valid {
		return nil, errUnauthorized
	}
	return claims, nil
}

// setSessionCookie (re-)issues the session cookie. Token replacement is the
// only way session state ever changes; there is no in-place refresh.
func setSessionCookie(ctx echo.Context, conf *core.Config, token string) {
	ctx.SetCookie(&http.Cookie{
		Name:     conf.Server.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(conf.Server.JWTExpirationDelta / time.Second),
		HttpOnly: true,
		Secure:   !conf.Debug,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(ctx echo.Context, conf *core.Config) {
	ctx.SetCookie(&http.Cookie{
		Name:     conf.Server.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   !conf.Debug,
		SameSite: http.SameSiteLaxMode,
	})
}

func authenticate(ctx echo.Context, email, pwd string, svc account.ServiceInterface) (account.User, error) {
	usr, err := svc.Authenticate(ctx.Request().Context(), email, pwd)
	if err != nil {
		switch errors.Cause(err) {
		case account.ErrAuthenticationFailed:
			return account.User{}, errAuthenticationFailed
		case account.ErrAccountDeactivated:
			return account.User{}, errAccountDeactivated
		}
		return account.User{}, errors.Wrap(err, "authenticating")
	}
	return usr, nil
}

// getContextClaims returns the raw token claims stashed by the access gate.
func getContextClaims(ctx echo.Context) (Claims, error) {
	if claims, ok := ctx.Get(contextClaimsKey).(*Claims); ok {
		return *claims, nil
	}
	return Claims{}, errUnauthorized
}

// getContextUser re-loads the live account for the session; role and school
// always come from the store, never from the token.
func getContextUser(ctx echo.Context, svc account.ServiceInterface) (account.User, error) {
	if usr, ok := ctx.Get(contextUserKey).(account.User); ok {
		return usr, nil
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return account.User{}, err
	}

	usr, err := svc.GetByID(ctx.Request().Context(), claims.Subject)
	if err != nil {
		if errors.Cause(err) == account.ErrNotFound {
			return account.User{}, errUnauthorized
		}
		return account.User{}, errors.Wrap(err, "finding account by ID")
	}
	ctx.Set(contextUserKey, usr)
	return usr, nil
}
