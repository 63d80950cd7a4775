package router

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"crm/internal/auth"
	"crm/internal/config"
	"crm/internal/dashboard"
	"crm/internal/handler"
	"crm/internal/logging"
)

// SchemaEnsurer prepares the database before a request touches it.
type SchemaEnsurer interface {
	Ensure(ctx context.Context) error
}

// APIBodyLimit caps the request body of every /api route.
const APIBodyLimit = "1M"

// Handlers groups every handler the router mounts.
type Handlers struct {
	CRM    *handler.CRMHandler
	Auth   *handler.AuthHandler
	Report *handler.ReportHandler
	Web    *handler.WebHandler
	Seed   *handler.SeedHandler
}

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	logger *zap.Logger,
	schema SchemaEnsurer,
	jwtService *auth.JWTService,
	h Handlers,
) {
	e.HideBanner = true
	e.HTTPErrorHandler = handler.ErrorHandler(logger)
	e.Validator = &CustomValidator{validator: validator.New()}
	e.Renderer = dashboard.NewRenderer()

	e.Use(middleware.RequestID())
	e.Use(logging.RequestLogger(logger))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// middleware is attached per route so unmatched methods under /api still answer 405
	guard := SchemaGuard(schema)
	open := []echo.MiddlewareFunc{middleware.BodyLimit(APIBodyLimit), guard}
	secured := append([]echo.MiddlewareFunc{}, open...)
	if cfg.AuthRequired {
		secured = append(secured, echojwt.WithConfig(echojwt.Config{
			ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
				claims, err := jwtService.ValidateToken(token)
				if err != nil {
					return nil, err
				}
				return claims, nil
			},
		}))
	}

	api := e.Group("/api")

	// the .php paths keep old front ends working
	for _, path := range []string{"/login", "/login.php"} {
		api.POST(path, h.Auth.Login, open...)
	}
	api.POST("/auth/refresh", h.Auth.Refresh, open...)
	api.POST("/auth/logout", h.Auth.Logout, open...)

	for _, path := range []string{"/crm", "/crm.php"} {
		api.GET(path, h.CRM.Snapshot, secured...)
		api.POST(path, h.CRM.Save, secured...)
		api.DELETE(path, h.CRM.Delete, secured...)
	}
	api.GET("/report", h.Report.Report, secured...)
	api.GET("/export.xlsx", h.Report.Export, secured...)

	if cfg.Development() && h.Seed != nil {
		api.POST("/seed/demo", h.Seed.SeedDemo, secured...)
	}

	// Server-rendered dashboard
	e.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusSeeOther, "/dashboard")
	})
	e.GET("/login", h.Web.LoginPage)
	e.POST("/login", h.Web.Login, guard)
	e.POST("/logout", h.Web.Logout)

	web := e.Group("/dashboard", guard, h.Web.RequireSession)
	web.GET("", h.Web.Dashboard)
	web.POST("/:entity", h.Web.Save)
	web.POST("/:entity/:id/delete", h.Web.Delete)
}

// SchemaGuard makes sure the schema exists before the wrapped handler runs.
// A failed bootstrap answers 500 and is retried by the next request.
func SchemaGuard(schema SchemaEnsurer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := schema.Ensure(c.Request().Context()); err != nil {
				return err
			}
			return next(c)
		}
	}
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
