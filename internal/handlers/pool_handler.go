package handlers

import (
	"log/slog"
	"net/http"

	"weathercover/internal/apiutil"
	"weathercover/internal/models"
	"weathercover/internal/services"

	"github.com/gofiber/fiber/v3"
)

type PoolHandler struct {
	poolService *services.PoolService
}

func NewPoolHandler(poolService *services.PoolService) *PoolHandler {
	return &PoolHandler{poolService: poolService}
}

func (h *PoolHandler) Register(app *fiber.App) {
	group := app.Group("/insurance/api/v1/pool")

	group.Get("/stats", h.GetStats)
	group.Post("/deposit", h.Deposit)
	group.Post("/withdraw", h.Withdraw)
	group.Get("/position", h.GetOwnPosition)
	group.Post("/fees/withdraw", h.WithdrawProtocolFees) // owner only
}

// GetStats returns the pool-level counters.
func (h *PoolHandler) GetStats(c fiber.Ctx) error {
	return c.JSON(apiutil.CreateSuccessResponse(h.poolService.Stats()))
}

// Deposit adds the caller's capital to the pool.
func (h *PoolHandler) Deposit(c fiber.Ctx) error {
	var req models.DepositRequest
	if err := c.Bind().Body(&req); err != nil {
		slog.Error("error parsing request", "error", err)
		return c.Status(http.StatusBadRequest).JSON(
			apiutil.CreateErrorResponse("INVALID_REQUEST", "Invalid request body: "+err.Error()))
	}
	if err := req.Validate(); err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			apiutil.CreateErrorResponse("VALIDATION_FAILED", err.Error()))
	}

	provider := userID(c)
	if provider == "" {
		return c.Status(http.StatusUnauthorized).JSON(
			apiutil.CreateErrorResponse("UNAUTHORIZED", "User ID is required"))
	}

	position, err := h.poolService.Deposit(c.Context(), provider, req)
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(apiutil.CreateSuccessResponse(position))
}

// Withdraw burns the caller's shares and pays out their current value.
func (h *PoolHandler) Withdraw(c fiber.Ctx) error {
	var req models.WithdrawRequest
	if err := c.Bind().Body(&req); err != nil {
		slog.Error("error parsing request", "error", err)
		return c.Status(http.StatusBadRequest).JSON(
			apiutil.CreateErrorResponse("INVALID_REQUEST", "Invalid request body: "+err.Error()))
	}
	if err := req.Validate(); err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			apiutil.CreateErrorResponse("VALIDATION_FAILED", err.Error()))
	}

	provider := userID(c)
	if provider == "" {
		return c.Status(http.StatusUnauthorized).JSON(
			apiutil.CreateErrorResponse("UNAUTHORIZED", "User ID is required"))
	}

	position, amount, err := h.poolService.Withdraw(c.Context(), provider, req)
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(apiutil.CreateSuccessResponse(fiber.Map{
		"position": position,
		"amount":   amount,
	}))
}

// GetOwnPosition returns the caller's position and its current value.
func (h *PoolHandler) GetOwnPosition(c fiber.Ctx) error {
	provider := userID(c)
	if provider == "" {
		return c.Status(http.StatusUnauthorized).JSON(
			apiutil.CreateErrorResponse("UNAUTHORIZED", "User ID is required"))
	}

	position, err := h.poolService.Position(provider)
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(apiutil.CreateSuccessResponse(fiber.Map{
		"position": position,
		"value":    h.poolService.ProviderValue(provider),
	}))
}

// WithdrawProtocolFees pays the accrued protocol fees to the owner.
func (h *PoolHandler) WithdrawProtocolFees(c fiber.Ctx) error {
	amount, err := h.poolService.WithdrawProtocolFees(c.Context(), userID(c))
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(apiutil.CreateSuccessResponse(fiber.Map{"amount": amount}))
}
