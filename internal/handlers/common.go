package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"weathercover/internal/apiutil"
	"weathercover/internal/engine"

	"github.com/gofiber/fiber/v3"
)

// userID extracts the caller identity set by the gateway.
func userID(c fiber.Ctx) string {
	return c.Get("X-User-ID")
}

// parseID parses a numeric path parameter.
func parseID(c fiber.Ctx, name string) (uint64, error) {
	return strconv.ParseUint(c.Params(name), 10, 64)
}

// handleError maps engine sentinels onto HTTP statuses. Anything
// unrecognized is an internal error.
func handleError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, engine.ErrUnauthorized):
		return c.Status(http.StatusForbidden).JSON(
			apiutil.CreateErrorResponse("FORBIDDEN", err.Error()))
	case errors.Is(err, engine.ErrNoShares):
		return c.Status(http.StatusForbidden).JSON(
			apiutil.CreateErrorResponse("NO_SHARES", err.Error()))
	case errors.Is(err, engine.ErrNotFound):
		return c.Status(http.StatusNotFound).JSON(
			apiutil.CreateErrorResponse("NOT_FOUND", err.Error()))
	case errors.Is(err, engine.ErrInvalidInput):
		return c.Status(http.StatusBadRequest).JSON(
			apiutil.CreateErrorResponse("INVALID_REQUEST", err.Error()))
	case errors.Is(err, engine.ErrInvalidStatus):
		return c.Status(http.StatusConflict).JSON(
			apiutil.CreateErrorResponse("INVALID_STATUS", err.Error()))
	case errors.Is(err, engine.ErrWindowClosed):
		return c.Status(http.StatusConflict).JSON(
			apiutil.CreateErrorResponse("WINDOW_CLOSED", err.Error()))
	case errors.Is(err, engine.ErrWindowOpen):
		return c.Status(http.StatusConflict).JSON(
			apiutil.CreateErrorResponse("WINDOW_OPEN", err.Error()))
	case errors.Is(err, engine.ErrInsufficientLiquidity):
		return c.Status(http.StatusConflict).JSON(
			apiutil.CreateErrorResponse("INSUFFICIENT_LIQUIDITY", err.Error()))
	case errors.Is(err, engine.ErrInsufficientShares):
		return c.Status(http.StatusConflict).JSON(
			apiutil.CreateErrorResponse("INSUFFICIENT_SHARES", err.Error()))
	case errors.Is(err, engine.ErrAlreadyVoted):
		return c.Status(http.StatusConflict).JSON(
			apiutil.CreateErrorResponse("ALREADY_VOTED", err.Error()))
	case errors.Is(err, engine.ErrConditionsNotMet):
		return c.Status(http.StatusUnprocessableEntity).JSON(
			apiutil.CreateErrorResponse("CONDITIONS_NOT_MET", err.Error()))
	default:
		return c.Status(http.StatusInternalServerError).JSON(
			apiutil.CreateErrorResponse("INTERNAL_ERROR", err.Error()))
	}
}
