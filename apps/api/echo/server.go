package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/academic"
	"github.com/trezcool/darasa/core/account"
	"github.com/trezcool/darasa/core/authz"
	"github.com/trezcool/darasa/core/guardian"
	"github.com/trezcool/darasa/core/notification"
	"github.com/trezcool/darasa/core/school"
	"github.com/trezcool/darasa/core/student"
)

// translator is package-level so the error handler can translate
// validator.ValidationErrors without threading it through every handler.
var translator ut.Translator

type (
	ServerDeps struct {
		Conf        *core.Config
		Logger      core.Logger
		AccountSvc  account.ServiceInterface
		SchoolSvc   school.ServiceInterface
		StudentSvc  student.ServiceInterface
		AcademicSvc academic.ServiceInterface
		NotifSvc    notification.ServiceInterface
		GuardianSvc guardian.ServiceInterface
		Authorizer  *authz.Authorizer
		Validate    *validator.Validate
		Translator  ut.Translator
	}

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		errs     chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		errs:     make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	translator = deps.Translator
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.signalShutdown)
	s.app.Debug = conf.Debug
	s.app.HideBanner = true

	// single authentication choke point: every route below goes through the gate
	s.app.Use(accessGate(conf))

	s.app.GET("/", home)
	s.app.GET("/login", loginPage)
	s.app.GET("/register", registerPage)
	s.app.GET("/onboarding", onboardingPage)

	api := s.app.Group("/api")
	registerAccountAPI(api, s.deps)
	registerSchoolAPI(api, s.deps)
	registerStudentAPI(api, s.deps)
	registerAcademicAPI(api, s.deps)
	registerNotificationAPI(api, s.deps)
	registerGuardianAPI(api, s.deps)
}

func (s *Server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	if err := s.app.Start(s.deps.Conf.Server.Address()); err != nil && err != http.ErrServerClosed {
		s.errs <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errs
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) signalShutdown() {
	s.shutdown <- syscall.SIGTERM
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Darasa API!")
}

func loginPage(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Log in")
}

func registerPage(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Register")
}

func onboardingPage(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Select your school")
}
