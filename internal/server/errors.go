package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/ldi/tasker/internal/apperr"
)

type errorResponse struct {
	ErrorCode    int    `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
}

func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, msg := classify(err)
	if status >= http.StatusInternalServerError {
		c.Logger().Error(err)
	} else {
		c.Logger().Debugf("%d: %v", status, err)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, errorResponse{ErrorCode: status, ErrorMessage: msg})
	}
	if err != nil {
		c.Logger().Error(err)
	}
}

func classify(err error) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprint(he.Message)
	}

	switch apperr.KindOf(err) {
	case apperr.KindInvalidRequest, apperr.KindDuplicateEntry:
		return http.StatusBadRequest, apperr.Message(err)
	case apperr.KindNotFound:
		return http.StatusNotFound, apperr.Message(err)
	default:
		return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
	}
}
