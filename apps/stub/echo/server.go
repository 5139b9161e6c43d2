// Package echostub is a development stand-in for the school-administration
// backend's auth endpoints, so the portal can run without the real service.
package echostub

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/user"
	"github.com/trezcool/shule/services/auth"
)

type (
	Options struct {
		Addr           string
		DisableReqLogs bool
		Users          *Directory
		Logger         core.Logger
	}

	Server interface {
		http.Handler
		Start()
		Stop(ctx context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts: opts,
		app:  echo.New(),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(core.Conf.Debug || core.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger)
	s.app.Debug = core.Conf.Debug

	s.app.GET("/health", health)

	ag := s.app.Group("/auth")
	ag.POST("/login", s.login)
	ag.GET("/me", s.me, middleware.JWTWithConfig(appJWTConfig))
}

func (s *server) Start() {
	s.app.Logger.Fatal(s.app.Start(s.opts.Addr))
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"status": "healthy"})
}

func (s *server) login(ctx echo.Context) error {
	data := new(user.Credentials)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(); err != nil {
		return err
	}

	usr, err := s.opts.Users.Authenticate(*data)
	if err != nil {
		return err
	}
	token, err := GenerateToken(GetUserClaims(usr))
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, authsvc.LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        usr,
	})
}

func (s *server) me(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	usr, ok := s.opts.Users.GetByID(claims.Subject, claims.SchoolCode)
	if !ok {
		return errUnauthorized
	}
	return ctx.JSON(http.StatusOK, usr)
}
