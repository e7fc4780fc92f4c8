package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/ldi/tasker/internal/apperr"
	"github.com/ldi/tasker/internal/validate"
	"github.com/ldi/tasker/pkg/models"
)

func (s *Server) createProject(c echo.Context) error {
	var req models.NewProjectRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	p, err := s.projects.CreateProject(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (s *Server) listProjects(c echo.Context) error {
	projects, err := s.projects.GetAllProjects(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, projects)
}

func (s *Server) getProject(c echo.Context) error {
	p, err := s.projects.GetProjectByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (s *Server) updateProject(c echo.Context) error {
	var req models.UpdateProjectRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	id, err := pathID(c, req.ID, "Project")
	if err != nil {
		return err
	}
	req.ID = &id

	p, err := s.projects.UpdateProject(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (s *Server) deleteProject(c echo.Context) error {
	if err := s.projects.DeleteProject(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) listJournalEntries(c echo.Context) error {
	entries, err := s.journal.GetAllJournalEntries(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entries)
}

func (s *Server) createJournalEntry(c echo.Context) error {
	var req models.NewJournalEntryRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	e, err := s.journal.CreateJournalEntry(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, e)
}

func (s *Server) updateJournalEntry(c echo.Context) error {
	var req models.EditJournalEntryRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	id, err := pathID(c, req.ID, "Journal entry")
	if err != nil {
		return err
	}
	req.ID = &id

	e, err := s.journal.EditJournalEntry(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, e)
}

func (s *Server) getJournalEntry(c echo.Context) error {
	e, err := s.journal.GetJournalEntryByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, e)
}

func (s *Server) deleteJournalEntry(c echo.Context) error {
	if err := s.journal.DeleteJournalEntry(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// pathID reconciles the :id path parameter with the id in the body. A blank
// body id takes the path id; two different ids are rejected.
func pathID(c echo.Context, bodyID *string, kind string) (string, error) {
	id := c.Param("id")
	if validate.Blank(bodyID) {
		return id, nil
	}
	if *bodyID != id {
		return "", apperr.InvalidRequest("%s ID in path (%s) does not match the request body (%s)", kind, id, *bodyID)
	}
	return id, nil
}
