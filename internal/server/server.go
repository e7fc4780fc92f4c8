// Package server exposes the project and journal services over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/ldi/tasker/internal/service"
)

// DefaultCORSOrigin is the front end origin allowed when none is configured.
const DefaultCORSOrigin = "http://localhost:8080"

type Config struct {
	// Logger is used as the echo logger. Nil means a WARN logger on stdout.
	Logger      *log.Logger
	CORSOrigins []string
}

type Server struct {
	echo     *echo.Echo
	projects *service.ProjectService
	journal  *service.JournalService
}

func New(projects *service.ProjectService, journal *service.JournalService, conf Config) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	if conf.Logger != nil {
		e.Logger = conf.Logger
	} else {
		e.Logger.SetLevel(log.WARN)
	}

	s := &Server{echo: e, projects: projects, journal: journal}
	e.HTTPErrorHandler = s.handleError

	origins := conf.CORSOrigins
	if len(origins) == 0 {
		origins = []string{DefaultCORSOrigin}
	}
	e.Use(middleware.Recover())
	e.Use(logRequests)
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: origins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		MaxAge:       3600,
	}))

	s.routes()
	return s
}

func (s *Server) routes() {
	e := s.echo

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	project := e.Group("/project")
	project.POST("/newProject", s.createProject)
	project.GET("/all", s.listProjects)
	project.GET("/:id", s.getProject)
	project.PUT("/updateProject/:id", s.updateProject)
	project.DELETE("/:id", s.deleteProject)

	journal := e.Group("/journal")
	journal.GET("/all", s.listJournalEntries)
	journal.POST("/newJournalEntry", s.createJournalEntry)
	journal.PUT("/updateJournalEntry/:id", s.updateJournalEntry)
	journal.GET("/:id", s.getJournalEntry)
	journal.DELETE("/:id", s.deleteJournalEntry)
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on addr until Shutdown is called, at which point it returns
// http.ErrServerClosed.
func (s *Server) Start(addr string) error {
	for _, r := range s.echo.Routes() {
		s.echo.Logger.Debugf("route %s %s", r.Method, r.Path)
	}
	s.echo.Logger.Infof("listening on %s", addr)
	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func logRequests(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		meth := c.Request().Method
		path := c.Request().URL
		begin := time.Now()
		c.Logger().Infof("< request %s %s", meth, path)

		err := next(c)

		c.Logger().Infof(
			"> response status = %d (for %s %s) in %v / error = %v",
			c.Response().Status, meth, path, time.Since(begin), err,
		)
		return err
	}
}
