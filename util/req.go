package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/navbryce/next-social-be/metrics"
	"go.uber.org/zap"
)

type ErrorKind string

const (
	KindValidation      ErrorKind = "validation"
	KindUnauthenticated ErrorKind = "unauthenticated"
	KindNotFound        ErrorKind = "not_found"
	KindForbidden       ErrorKind = "forbidden"
	KindConflict        ErrorKind = "conflict"
	KindInternal        ErrorKind = "internal"
)

// HTTPError is returned by controllers and route handlers. Message is for logs;
// UserMessage, when set, is sent to the client as errorMessage.
type HTTPError struct {
	Kind        ErrorKind
	Message     string
	UserMessage string
	Cause       error
}

func (he *HTTPError) Error() string {
	if he.Cause != nil {
		return fmt.Sprintf("%v (kind=%v): %v", he.Message, he.Kind, he.Cause)
	}
	return fmt.Sprintf("%v (kind=%v)", he.Message, he.Kind)
}

func (he *HTTPError) Unwrap() error {
	return he.Cause
}

func BuildDbHTTPErr(err error) *HTTPError {
	return &HTTPError{
		Kind:    KindInternal,
		Message: "database error",
		Cause:   err,
	}
}

func BuildInternalHTTPErr(msg string, err error) *HTTPError {
	return &HTTPError{
		Kind:    KindInternal,
		Message: msg,
		Cause:   err,
	}
}

func BuildJSONBindHTTPErr(err error) *HTTPError {
	return &HTTPError{
		Kind:    KindValidation,
		Message: "malformed request body",
		Cause:   err,
	}
}

func BuildValidationHTTPErr(msg string) *HTTPError {
	return &HTTPError{
		Kind:    KindValidation,
		Message: msg,
	}
}

func BuildNotFoundHTTPErr(what string) *HTTPError {
	return &HTTPError{
		Kind:    KindNotFound,
		Message: what + " not found",
	}
}

func BuildForbiddenHTTPErr(msg string) *HTTPError {
	return &HTTPError{
		Kind:    KindForbidden,
		Message: msg,
	}
}

// AsHTTPError returns the *HTTPError in err's chain or wraps err as internal.
func AsHTTPError(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return BuildInternalHTTPErr("unexpected error", err)
}

type HandlerOpts struct {
	// Name labels logs and metrics. Defaults to the route path.
	Name string
}

/*
HandlerWrapper adapts a handler returning (response, error) to gin.

Errors are answered with status 200 and {"error": true, "kind": ...} so clients
only ever branch on the body. A nil response is answered with {"ok": "ok"}.
*/
func HandlerWrapper(handler func(c *gin.Context) (interface{}, *HTTPError), opts *HandlerOpts) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := opts.Name
		if name == "" {
			name = c.FullPath()
		}
		res, httpErr := handler(c)
		if httpErr != nil {
			HandleHTTPErrorRes(c, name, httpErr)
			return
		}
		metrics.HandlerResults.WithLabelValues(name, "ok").Inc()
		if res == nil {
			c.JSON(http.StatusOK, gin.H{"ok": "ok"})
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

/*
HandleHTTPErrorRes handles creating the appropriate response for the HTTP error.
break the route after calling this function
*/
func HandleHTTPErrorRes(c *gin.Context, name string, err *HTTPError) {
	metrics.HandlerResults.WithLabelValues(name, string(err.Kind)).Inc()
	if err.Kind == KindInternal {
		Log.Error("handler_failed", zap.String("handler", name), zap.String("message", err.Message), zap.Error(err.Cause))
	} else {
		Log.Debug("handler_rejected", zap.String("handler", name), zap.String("kind", string(err.Kind)), zap.String("message", err.Message))
	}
	body := gin.H{
		"error": true,
		"kind":  err.Kind,
	}
	if err.UserMessage != "" {
		body["errorMessage"] = err.UserMessage
	}
	c.JSON(http.StatusOK, body)
}
