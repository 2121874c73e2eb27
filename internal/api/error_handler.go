package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/stockpeek/edge-gateway/internal/service"
	"github.com/stockpeek/edge-gateway/internal/util"
)

// ErrorHandler maps the error taxonomy onto HTTP outcomes: auth
// failures to 401/429 with a machine-readable reason, upstream
// failures passed through with the provider's status, everything
// unexpected to 500.
func ErrorHandler(log *zap.SugaredLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var rateErr *service.RateLimitError
		if errors.As(err, &rateErr) {
			retryAfter := int(rateErr.RetryAfter.Seconds())
			c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))
			c.JSON(http.StatusTooManyRequests, map[string]interface{}{
				"error":      "too many login attempts",
				"retryAfter": retryAfter,
			})
			return
		}

		var upstreamErr *service.UpstreamError
		if errors.As(err, &upstreamErr) {
			c.JSON(upstreamErr.Status, map[string]interface{}{
				"error":  upstreamErr.Error(),
				"status": upstreamErr.Status,
			})
			return
		}

		if isUnauthorizedError(err) {
			c.JSON(http.StatusUnauthorized, map[string]string{"error": err.Error()})
			return
		}

		var respErr util.ResponseError
		if errors.As(err, &respErr) {
			c.JSON(respErr.Status, map[string]string{"error": respErr.Msg})
			return
		}

		he, ok := err.(*echo.HTTPError)
		if ok {
			if he.Code == http.StatusInternalServerError {
				log.Errorw("HTTP error", "error", err, "uri", c.Request().RequestURI)
			}
			if err := c.JSON(he.Code, map[string]string{"error": fmt.Sprintf("%v", he.Message)}); err != nil {
				log.Errorw("failed to write json response", "error", err)
			}
			return
		}

		log.Errorw("unhandled error", "error", err, "uri", c.Request().RequestURI)
		c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

func isUnauthorizedError(err error) bool {
	return errors.Is(err, service.ErrTokenExpired) ||
		errors.Is(err, service.ErrTokenInvalid) ||
		errors.Is(err, service.ErrInvalidCredentials)
}
