package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"airbnb-dashboard/models"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func (svc *APIService) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code, msg := statusFor(err)
	if code >= http.StatusInternalServerError {
		svc.logger.Error("[api] %s %s: %v", c.Request().Method, c.Request().URL.Path, err)
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, ErrorResponse{
		Message: msg,
		Code:    code,
	})
}

func statusFor(err error) (int, string) {
	var (
		invalid *models.InvalidCategoryError
		empty   *models.EmptyViewError
		httpErr *echo.HTTPError
	)
	switch {
	case errors.As(err, &invalid):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.As(err, &empty):
		return http.StatusNotFound, err.Error()
	case errors.As(err, &httpErr):
		return httpErr.Code, fmt.Sprint(httpErr.Message)
	default:
		return http.StatusInternalServerError, err.Error()
	}
}
