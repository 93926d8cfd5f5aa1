package handlers

import (
	"log/slog"
	"net/http"

	"weathercover/internal/apiutil"
	"weathercover/internal/models"
	"weathercover/internal/services"

	"github.com/gofiber/fiber/v3"
)

type GovernanceHandler struct {
	governanceService *services.GovernanceService
}

func NewGovernanceHandler(governanceService *services.GovernanceService) *GovernanceHandler {
	return &GovernanceHandler{governanceService: governanceService}
}

func (h *GovernanceHandler) Register(app *fiber.App) {
	group := app.Group("/insurance/api/v1/governance")

	group.Get("/params", h.GetParams)
	group.Get("/proposals", h.ListProposals)
	group.Post("/proposals", h.CreateProposal)
	group.Get("/proposals/:id", h.GetProposal)
	group.Post("/proposals/:id/vote", h.Vote)
	group.Post("/proposals/:id/execute", h.Execute) // permissionless after deadline
}

// GetParams returns the live governable parameters.
func (h *GovernanceHandler) GetParams(c fiber.Ctx) error {
	return c.JSON(apiutil.CreateSuccessResponse(h.governanceService.Params()))
}

// ListProposals returns all proposals in creation order.
func (h *GovernanceHandler) ListProposals(c fiber.Ctx) error {
	return c.JSON(apiutil.CreateSuccessResponse(h.governanceService.List()))
}

// CreateProposal creates a pending proposal for a parameter change.
func (h *GovernanceHandler) CreateProposal(c fiber.Ctx) error {
	var req models.CreateProposalRequest
	if err := c.Bind().Body(&req); err != nil {
		slog.Error("error parsing request", "error", err)
		return c.Status(http.StatusBadRequest).JSON(
			apiutil.CreateErrorResponse("INVALID_REQUEST", "Invalid request body: "+err.Error()))
	}
	if err := req.Validate(); err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			apiutil.CreateErrorResponse("VALIDATION_FAILED", err.Error()))
	}

	proposer := userID(c)
	if proposer == "" {
		return c.Status(http.StatusUnauthorized).JSON(
			apiutil.CreateErrorResponse("UNAUTHORIZED", "User ID is required"))
	}

	proposal, err := h.governanceService.Propose(c.Context(), proposer, req)
	if err != nil {
		return handleError(c, err)
	}

	return c.Status(http.StatusCreated).JSON(apiutil.CreateSuccessResponse(proposal))
}

// GetProposal returns one proposal by id.
func (h *GovernanceHandler) GetProposal(c fiber.Ctx) error {
	proposalID, err := parseID(c, "id")
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			apiutil.CreateErrorResponse("INVALID_REQUEST", "Invalid proposal id"))
	}

	proposal, err := h.governanceService.Get(proposalID)
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(apiutil.CreateSuccessResponse(proposal))
}

// Vote records the caller's share-weighted vote.
func (h *GovernanceHandler) Vote(c fiber.Ctx) error {
	proposalID, err := parseID(c, "id")
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			apiutil.CreateErrorResponse("INVALID_REQUEST", "Invalid proposal id"))
	}

	var req models.VoteRequest
	if err := c.Bind().Body(&req); err != nil {
		slog.Error("error parsing request", "error", err)
		return c.Status(http.StatusBadRequest).JSON(
			apiutil.CreateErrorResponse("INVALID_REQUEST", "Invalid request body: "+err.Error()))
	}

	voter := userID(c)
	if voter == "" {
		return c.Status(http.StatusUnauthorized).JSON(
			apiutil.CreateErrorResponse("UNAUTHORIZED", "User ID is required"))
	}

	proposal, err := h.governanceService.Vote(c.Context(), voter, proposalID, req.Support)
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(apiutil.CreateSuccessResponse(proposal))
}

// Execute finalizes a proposal once its deadline has passed.
func (h *GovernanceHandler) Execute(c fiber.Ctx) error {
	proposalID, err := parseID(c, "id")
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			apiutil.CreateErrorResponse("INVALID_REQUEST", "Invalid proposal id"))
	}

	proposal, err := h.governanceService.Execute(c.Context(), proposalID)
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(apiutil.CreateSuccessResponse(proposal))
}
