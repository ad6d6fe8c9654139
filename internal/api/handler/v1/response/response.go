package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/Spok95/practice-fund/internal/auth"
	"github.com/Spok95/practice-fund/internal/recompute"
)

// Err — тело любой ошибки API.
type Err struct {
	HTTPStatusCode int               `json:"-"`
	StatusText     string            `json:"status"`
	ErrorText      string            `json:"error,omitempty"`
	Fields         map[string]string `json:"fields,omitempty"`
	RequestID      string            `json:"request_id,omitempty"`

	Cause error `json:"-"`
}

func (e *Err) Error() string { return e.ErrorText }

func RenderErr(c *gin.Context, e *Err) {
	if e.Cause != nil {
		_ = c.Error(e.Cause)
	}
	if id, ok := c.Get(RequestIDKey); ok {
		e.RequestID, _ = id.(string)
	}
	c.AbortWithStatusJSON(e.HTTPStatusCode, e)
}

// RequestIDKey — ключ gin-контекста, под которым middleware кладёт идентификатор запроса.
const RequestIDKey = "request_id"

func ErrBadRequest(err error) *Err {
	e := &Err{HTTPStatusCode: http.StatusBadRequest, StatusText: "Bad request", ErrorText: err.Error()}
	var fields validation.Errors
	if errors.As(err, &fields) {
		e.ErrorText = "invalid request"
		e.Fields = make(map[string]string, len(fields))
		for k, v := range fields {
			e.Fields[k] = v.Error()
		}
	}
	return e
}

func ErrUnauthorized(err error) *Err {
	return &Err{HTTPStatusCode: http.StatusUnauthorized, StatusText: "Unauthorized", ErrorText: err.Error()}
}

func ErrPermissionDenied(err error) *Err {
	return &Err{HTTPStatusCode: http.StatusForbidden, StatusText: "Permission denied", ErrorText: err.Error()}
}

func ErrNotFound(err error) *Err {
	return &Err{HTTPStatusCode: http.StatusNotFound, StatusText: "Resource not found", ErrorText: err.Error()}
}

func ErrConflict(err error) *Err {
	return &Err{HTTPStatusCode: http.StatusConflict, StatusText: "Conflict", ErrorText: err.Error()}
}

func ErrUnavailable(err error) *Err {
	return &Err{HTTPStatusCode: http.StatusServiceUnavailable, StatusText: "Service unavailable", ErrorText: err.Error()}
}

// ErrInternalServerError не раскрывает причину клиенту; она уходит в лог через c.Error.
func ErrInternalServerError(err error) *Err {
	return &Err{HTTPStatusCode: http.StatusInternalServerError, StatusText: "Internal server error", Cause: err}
}

// FromError выбирает ответ по категории ошибки сервиса.
func FromError(err error) *Err {
	switch {
	case errors.Is(err, auth.ErrWrongPassword), errors.Is(err, auth.ErrInvalidToken):
		return ErrUnauthorized(err)
	case errors.Is(err, auth.ErrForbidden):
		return ErrPermissionDenied(err)
	case errors.Is(err, auth.ErrNotConfigured):
		return ErrUnavailable(err)
	case errors.Is(err, recompute.ErrValidation):
		return ErrBadRequest(err)
	case errors.Is(err, recompute.ErrNotFound):
		return ErrNotFound(err)
	case errors.Is(err, recompute.ErrConflict):
		return ErrConflict(err)
	}
	return ErrInternalServerError(err)
}
