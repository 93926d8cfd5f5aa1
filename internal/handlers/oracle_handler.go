package handlers

import (
	"log/slog"
	"net/http"
	"net/url"

	"weathercover/internal/apiutil"
	"weathercover/internal/models"
	"weathercover/internal/services"

	"github.com/gofiber/fiber/v3"
)

type OracleHandler struct {
	oracleService *services.OracleService
	claimService  *services.ClaimService
}

func NewOracleHandler(oracleService *services.OracleService, claimService *services.ClaimService) *OracleHandler {
	return &OracleHandler{
		oracleService: oracleService,
		claimService:  claimService,
	}
}

func (h *OracleHandler) Register(app *fiber.App) {
	group := app.Group("/insurance/api/v1/oracle")

	group.Post("/readings", h.SubmitReading) // authority only
	group.Get("/readings/:location", h.GetReading)
	group.Post("/cycle", h.RunCycle) // authority only
	group.Get("/price", h.GetPrice)
	group.Post("/price", h.SetPrice)         // authority only
	group.Post("/authority", h.SetAuthority) // owner only
}

// SubmitReading stores a reading for a location, either one trusted
// value or the median of exactly three.
func (h *OracleHandler) SubmitReading(c fiber.Ctx) error {
	var req models.SubmitReadingRequest
	if err := c.Bind().Body(&req); err != nil {
		slog.Error("error parsing request", "error", err)
		return c.Status(http.StatusBadRequest).JSON(
			apiutil.CreateErrorResponse("INVALID_REQUEST", "Invalid request body: "+err.Error()))
	}
	if err := req.Validate(); err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			apiutil.CreateErrorResponse("VALIDATION_FAILED", err.Error()))
	}

	reading, err := h.oracleService.SubmitReading(c.Context(), userID(c), req)
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(apiutil.CreateSuccessResponse(reading))
}

// GetReading returns the latest reading for a location.
func (h *OracleHandler) GetReading(c fiber.Ctx) error {
	location, err := url.PathUnescape(c.Params("location"))
	if err != nil || location == "" {
		return c.Status(http.StatusBadRequest).JSON(
			apiutil.CreateErrorResponse("INVALID_REQUEST", "Invalid location"))
	}

	reading, err := h.oracleService.GetReading(location)
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(apiutil.CreateSuccessResponse(reading))
}

// RunCycle sweeps all active policies, claiming triggered ones and
// expiring past-due ones.
func (h *OracleHandler) RunCycle(c fiber.Ctx) error {
	result, err := h.claimService.RunCycle(c.Context(), userID(c))
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(apiutil.CreateSuccessResponse(result))
}

// GetPrice returns the stored reference price in USD.
func (h *OracleHandler) GetPrice(c fiber.Ctx) error {
	price, err := h.oracleService.GetPrice(c.Context())
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(apiutil.CreateSuccessResponse(fiber.Map{"price_usd": price}))
}

// SetPrice stores the reference asset price in USD.
func (h *OracleHandler) SetPrice(c fiber.Ctx) error {
	var req models.SetPriceRequest
	if err := c.Bind().Body(&req); err != nil {
		slog.Error("error parsing request", "error", err)
		return c.Status(http.StatusBadRequest).JSON(
			apiutil.CreateErrorResponse("INVALID_REQUEST", "Invalid request body: "+err.Error()))
	}
	if err := req.Validate(); err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			apiutil.CreateErrorResponse("VALIDATION_FAILED", err.Error()))
	}

	if err := h.oracleService.SetPrice(c.Context(), userID(c), req); err != nil {
		return handleError(c, err)
	}

	return c.JSON(apiutil.CreateSuccessResponse(fiber.Map{"price_usd": req.PriceUSD}))
}

// SetAuthority reassigns the data-authority identity.
func (h *OracleHandler) SetAuthority(c fiber.Ctx) error {
	var req models.SetAuthorityRequest
	if err := c.Bind().Body(&req); err != nil {
		slog.Error("error parsing request", "error", err)
		return c.Status(http.StatusBadRequest).JSON(
			apiutil.CreateErrorResponse("INVALID_REQUEST", "Invalid request body: "+err.Error()))
	}
	if err := req.Validate(); err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			apiutil.CreateErrorResponse("VALIDATION_FAILED", err.Error()))
	}

	if err := h.oracleService.SetAuthority(c.Context(), userID(c), req); err != nil {
		return handleError(c, err)
	}

	return c.JSON(apiutil.CreateSuccessResponse(fiber.Map{"authority": req.Authority}))
}
