package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "crm/internal/errors"
)

// OKResponse is the success envelope without a payload.
type OKResponse struct {
	OK bool `json:"ok"`
}

// DataResponse is the success envelope with a payload.
type DataResponse struct {
	OK   bool        `json:"ok"`
	Data interface{} `json:"data"`
}

func ok(c echo.Context, status int) error {
	return c.JSON(status, OKResponse{OK: true})
}

func okData(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, DataResponse{OK: true, Data: data})
}

// readJSONObject returns the request body, which must be a JSON object.
// An empty body is read as {}.
func readJSONObject(c echo.Context) ([]byte, error) {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return nil, apperrors.ErrInvalidJSON
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return []byte("{}"), nil
	}
	var object map[string]json.RawMessage
	if err := json.Unmarshal(body, &object); err != nil || object == nil {
		return nil, apperrors.ErrInvalidJSON
	}
	return body, nil
}

// ErrorHandler renders every error as {ok:false, message}. Server errors are
// logged with their cause; the client only sees a generic message.
func ErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, message := resolveError(err)
		if status >= http.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.Int("status", status),
				zap.Error(err),
			)
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, apperrors.ErrorResponse{OK: false, Message: message})
		}
		if writeErr != nil {
			logger.Warn("write error response", zap.Error(writeErr))
		}
	}
}

func resolveError(err error) (int, string) {
	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		message := fmt.Sprint(echoErr.Message)
		if message == http.StatusText(echoErr.Code) {
			message = strings.ToLower(message)
		}
		return echoErr.Code, message
	}

	var httpErr *apperrors.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode, httpErr.Message
	}

	mapped := apperrors.MapErrorToHTTP(err)
	return mapped.StatusCode, mapped.Message
}
