package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	applogger "PatientPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Recover turns a handler panic into a 500 with an ERR_PANIC body. Nothing
// is written if the handler already committed a response.
func Recover(l *applogger.Logger) echo.MiddlewareFunc {
	if l == nil {
		l = applogger.NewNop()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				if r == http.ErrAbortHandler {
					panic(r)
				}
				l.Error("http handler panic",
					applogger.String("method", c.Request().Method),
					applogger.String("route", c.Path()),
					applogger.String("panic", fmt.Sprint(r)),
					applogger.String("stack", string(debug.Stack())),
				)
				if c.Response().Committed {
					return
				}
				err = c.JSON(http.StatusInternalServerError, map[string]any{
					"status":  http.StatusInternalServerError,
					"message": http.StatusText(http.StatusInternalServerError),
					"data":    []map[string]string{{"code": "ERR_PANIC", "message": "unexpected server error"}},
				})
			}()
			return next(c)
		}
	}
}
