package handlers

import (
	"log/slog"
	"net/http"

	"weathercover/internal/apiutil"
	"weathercover/internal/models"
	"weathercover/internal/services"

	"github.com/gofiber/fiber/v3"
)

type PolicyHandler struct {
	policyService *services.PolicyService
	claimService  *services.ClaimService
}

func NewPolicyHandler(policyService *services.PolicyService, claimService *services.ClaimService) *PolicyHandler {
	return &PolicyHandler{
		policyService: policyService,
		claimService:  claimService,
	}
}

func (h *PolicyHandler) Register(app *fiber.App) {
	group := app.Group("/insurance/api/v1/policies")

	group.Post("/", h.PurchasePolicy)          // POST /policies - buy coverage
	group.Get("/my", h.GetOwnPolicies)         // GET /policies/my - caller's policies
	group.Get("/:id", h.GetPolicy)             // GET /policies/:id
	group.Get("/:id/claimable", h.IsClaimable) // GET /policies/:id/claimable
	group.Post("/:id/claim", h.ProcessClaim)   // POST /policies/:id/claim - authority settles
	group.Post("/:id/cancel", h.CancelPolicy)  // POST /policies/:id/cancel - holder, early window
	group.Post("/:id/expire", h.ExpirePolicy)  // POST /policies/:id/expire - permissionless
	group.Post("/:id/transfer", h.TransferReceipt)
}

// PurchasePolicy handles the purchase of a new policy for the caller.
func (h *PolicyHandler) PurchasePolicy(c fiber.Ctx) error {
	var req models.PurchasePolicyRequest
	if err := c.Bind().Body(&req); err != nil {
		slog.Error("error parsing request", "error", err)
		return c.Status(http.StatusBadRequest).JSON(
			apiutil.CreateErrorResponse("INVALID_REQUEST", "Invalid request body: "+err.Error()))
	}
	if err := req.Validate(); err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			apiutil.CreateErrorResponse("VALIDATION_FAILED", err.Error()))
	}

	holder := userID(c)
	if holder == "" {
		return c.Status(http.StatusUnauthorized).JSON(
			apiutil.CreateErrorResponse("UNAUTHORIZED", "User ID is required"))
	}

	policy, err := h.policyService.Purchase(c.Context(), holder, req)
	if err != nil {
		return handleError(c, err)
	}

	return c.Status(http.StatusCreated).JSON(apiutil.CreateSuccessResponse(policy))
}

// GetPolicy returns one policy by id.
func (h *PolicyHandler) GetPolicy(c fiber.Ctx) error {
	policyID, err := parseID(c, "id")
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			apiutil.CreateErrorResponse("INVALID_REQUEST", "Invalid policy id"))
	}

	policy, err := h.policyService.Get(policyID)
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(apiutil.CreateSuccessResponse(policy))
}

// GetOwnPolicies returns every policy the caller has purchased.
func (h *PolicyHandler) GetOwnPolicies(c fiber.Ctx) error {
	holder := userID(c)
	if holder == "" {
		return c.Status(http.StatusUnauthorized).JSON(
			apiutil.CreateErrorResponse("UNAUTHORIZED", "User ID is required"))
	}

	return c.JSON(apiutil.CreateSuccessResponse(h.policyService.ByHolder(holder)))
}

// IsClaimable reports whether the policy would pay out against the
// latest stored reading.
func (h *PolicyHandler) IsClaimable(c fiber.Ctx) error {
	policyID, err := parseID(c, "id")
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			apiutil.CreateErrorResponse("INVALID_REQUEST", "Invalid policy id"))
	}

	return c.JSON(apiutil.CreateSuccessResponse(fiber.Map{
		"policy_id": policyID,
		"claimable": h.claimService.IsClaimable(policyID),
	}))
}

// ProcessClaim settles a claim with the observed value asserted by the
// data authority.
func (h *PolicyHandler) ProcessClaim(c fiber.Ctx) error {
	policyID, err := parseID(c, "id")
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			apiutil.CreateErrorResponse("INVALID_REQUEST", "Invalid policy id"))
	}

	var req models.ProcessClaimRequest
	if err := c.Bind().Body(&req); err != nil {
		slog.Error("error parsing request", "error", err)
		return c.Status(http.StatusBadRequest).JSON(
			apiutil.CreateErrorResponse("INVALID_REQUEST", "Invalid request body: "+err.Error()))
	}

	result, err := h.claimService.Process(c.Context(), userID(c), policyID, req.ObservedValue)
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(apiutil.CreateSuccessResponse(fiber.Map{
		"policy": result.Policy,
		"payout": result.Payout,
	}))
}

// CancelPolicy cancels the caller's policy inside the cancellation window.
func (h *PolicyHandler) CancelPolicy(c fiber.Ctx) error {
	policyID, err := parseID(c, "id")
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			apiutil.CreateErrorResponse("INVALID_REQUEST", "Invalid policy id"))
	}

	policy, refund, err := h.policyService.Cancel(c.Context(), userID(c), policyID)
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(apiutil.CreateSuccessResponse(fiber.Map{
		"policy": policy,
		"refund": refund,
	}))
}

// ExpirePolicy settles a policy past its end time. Anyone may call it.
func (h *PolicyHandler) ExpirePolicy(c fiber.Ctx) error {
	policyID, err := parseID(c, "id")
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			apiutil.CreateErrorResponse("INVALID_REQUEST", "Invalid policy id"))
	}

	policy, err := h.policyService.Expire(c.Context(), policyID)
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(apiutil.CreateSuccessResponse(policy))
}

// TransferReceipt moves the policy receipt to another identity.
func (h *PolicyHandler) TransferReceipt(c fiber.Ctx) error {
	policyID, err := parseID(c, "id")
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			apiutil.CreateErrorResponse("INVALID_REQUEST", "Invalid policy id"))
	}

	var req models.TransferReceiptRequest
	if err := c.Bind().Body(&req); err != nil {
		slog.Error("error parsing request", "error", err)
		return c.Status(http.StatusBadRequest).JSON(
			apiutil.CreateErrorResponse("INVALID_REQUEST", "Invalid request body: "+err.Error()))
	}
	if err := req.Validate(); err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			apiutil.CreateErrorResponse("VALIDATION_FAILED", err.Error()))
	}

	policy, err := h.policyService.Transfer(c.Context(), userID(c), policyID, req)
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(apiutil.CreateSuccessResponse(policy))
}
