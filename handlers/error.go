package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"bagcount-gateway/device"
	"bagcount-gateway/repositories/base"
	"bagcount-gateway/utils"

	"github.com/labstack/echo/v4"
)

var errorLogger *slog.Logger

// SetErrorLogger sets the logger for error handling.
func SetErrorLogger(logger *slog.Logger) {
	errorLogger = logger.With("component", "error_handler")
}

// CustomHTTPErrorHandler is the central error handler for the Echo application.
func CustomHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	// Domain errors first: AppError carries its own status code.
	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		if internalErr := appErr.Unwrap(); internalErr != nil && errorLogger != nil {
			errorLogger.Info("Error handled",
				"status_code", appErr.Code,
				"error_message", appErr.Message,
				slog.Any("internal_error", internalErr))
		}
		c.JSON(appErr.Code, utils.ErrorResponse(appErr.Message))
		return
	}

	// Repository errors map to 404/409; device failures to 502.
	switch {
	case base.IsEntityNotFound(err):
		c.JSON(http.StatusNotFound, utils.ErrorResponse(err.Error()))
		return
	case base.IsDuplicateEntity(err):
		c.JSON(http.StatusConflict, utils.ErrorResponse(err.Error()))
		return
	case errors.Is(err, device.ErrDeviceUnreachable):
		c.JSON(http.StatusBadGateway, utils.ErrorResponse(err.Error()))
		return
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		c.JSON(httpErr.Code, utils.ErrorResponse(fmt.Sprintf("%v", httpErr.Message)))
		return
	}

	if errorLogger != nil {
		errorLogger.Error("Unhandled error occurred",
			"error_type", fmt.Sprintf("%T", err),
			"error_message", err.Error())
	}
	c.JSON(http.StatusInternalServerError, utils.ErrorResponse("An unexpected internal error occurred."))
}
