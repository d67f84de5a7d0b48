package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/kisaansahayak/sahayak/internal/domain"
)

// RateLimitMessage is the error text sent with 429 responses.
const RateLimitMessage = domain.RateLimitMessage

// errorHandler renders every unhandled error as {error, code}.
func errorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := errorBody(err)
		if status >= http.StatusInternalServerError {
			logger.Error("unhandled error", zap.String("path", c.Request().URL.Path), zap.Error(err))
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(status)
		} else {
			werr = c.JSON(status, body)
		}
		if werr != nil {
			logger.Error("failed to write error response", zap.Error(werr))
		}
	}
}

func errorBody(err error) (int, domain.ErrorResponse) {
	var gw *domain.GatewayError
	if errors.As(err, &gw) {
		return gw.Status, domain.ErrorResponse{Error: gw.Message, Code: gw.Code}
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		switch he.Code {
		case http.StatusNotFound, http.StatusMethodNotAllowed:
			return http.StatusNotFound, domain.ErrorResponse{Error: "Route not found", Code: domain.ErrorCodeNotFound}
		case http.StatusTooManyRequests:
			return http.StatusTooManyRequests, domain.ErrorResponse{Error: RateLimitMessage, Code: domain.ErrorCodeRateLimited}
		case http.StatusRequestEntityTooLarge:
			return he.Code, domain.ErrorResponse{Error: "Request body too large", Code: domain.ErrorCodeInvalidRequest}
		case http.StatusBadRequest:
			return he.Code, domain.ErrorResponse{Error: "Invalid request", Code: domain.ErrorCodeInvalidRequest}
		}
	}

	return http.StatusInternalServerError, domain.ErrorResponse{Error: "Something went wrong!", Code: domain.ErrorCodeUnhandled}
}
