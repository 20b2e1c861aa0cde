package handlers

import (
	"errors"
	"strconv"

	"rewardhub/internal/adapters/persistence/models"
	"rewardhub/internal/core/domain"
	"rewardhub/internal/core/services"
	"rewardhub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// AssetHandler handles physical asset allocation endpoints
type AssetHandler struct {
	assetService *services.AssetService
}

// NewAssetHandler creates a new asset handler
func NewAssetHandler(assetService *services.AssetService) *AssetHandler {
	return &AssetHandler{assetService: assetService}
}

// MyAllocations lists the authenticated member's allocations
// @Summary My allocations
// @Description List the authenticated member's physical asset allocations
// @Tags Asset
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /assets/my-allocations [get]
func (h *AssetHandler) MyAllocations(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	allocations, err := h.assetService.ListByUser(c.Context(), userID)
	if err != nil {
		return response.InternalServerError(c, "Failed to list allocations")
	}

	allocationResponses := make([]*models.AllocationResponse, len(allocations))
	for i, a := range allocations {
		allocationResponses[i] = a.ToResponse()
	}

	return response.Success(c, "Allocations retrieved successfully", fiber.Map{
		"allocations": allocationResponses,
	})
}

// RiskReport returns the allocation's current risk classification
// @Summary Allocation risk report
// @Description Get the current maintenance risk level for an allocation
// @Tags Asset
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Allocation ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /assets/allocations/{id}/risk [get]
func (h *AssetHandler) RiskReport(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid ID")
	}

	report, err := h.assetService.RiskReport(c.Context(), uint(id))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAllocationNotFound):
			return response.NotFound(c, "Allocation not found")
		default:
			return response.InternalServerError(c, "Failed to build risk report")
		}
	}

	return response.Success(c, "Risk report retrieved successfully", fiber.Map{
		"report": report,
	})
}

// BuybackQuote returns the platform's buyback terms for a completed allocation
// @Summary Buyback quote
// @Description Get the market value and maximum offer for a completed allocation
// @Tags Asset
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Allocation ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /assets/allocations/{id}/buyback-quote [get]
func (h *AssetHandler) BuybackQuote(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid ID")
	}

	quote, err := h.assetService.QuoteBuyback(c.Context(), uint(id))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAllocationNotFound):
			return response.NotFound(c, "Allocation not found")
		case errors.Is(err, domain.ErrBuybackNotCompleted):
			return response.Conflict(c, "Allocation must be COMPLETED to quote buyback")
		default:
			return response.InternalServerError(c, "Failed to quote buyback")
		}
	}

	return response.Success(c, "Buyback quote retrieved successfully", fiber.Map{
		"quote": quote,
	})
}

// BuybackRequest represents a buyback request body
type BuybackRequest struct {
	Offer decimal.Decimal `json:"offer"`
}

// RequestBuyback submits a buyback offer for a completed allocation
// @Summary Request buyback
// @Description Submit a buyback offer; offers above the ceiling are rejected
// @Tags Asset
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Allocation ID"
// @Param body body BuybackRequest true "Offer"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /assets/allocations/{id}/buyback [post]
func (h *AssetHandler) RequestBuyback(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid ID")
	}

	var req BuybackRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	quote, err := h.assetService.RequestBuyback(c.Context(), uint(id), req.Offer)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidAmount):
			return response.BadRequest(c, "Offer must be greater than zero")
		case errors.Is(err, domain.ErrAllocationNotFound):
			return response.NotFound(c, "Allocation not found")
		case errors.Is(err, domain.ErrBuybackNotCompleted):
			return response.Conflict(c, "Allocation must be COMPLETED to request buyback")
		case errors.Is(err, domain.ErrBuybackOfferTooHigh):
			return response.BadRequest(c, "Offer exceeds the maximum allowed offer")
		default:
			return response.InternalServerError(c, "Failed to process buyback request")
		}
	}

	return response.Success(c, "Buyback offer accepted", fiber.Map{
		"quote": quote,
	})
}

// AllocateRequest represents an admin asset allocation request
type AllocateRequest struct {
	UserID                  uint   `json:"user_id"`
	AssetType               string `json:"asset_type"`
	MaintenancePeriodMonths int    `json:"maintenance_period_months"`
}

// Allocate grants an available asset to a member (Admin only)
// @Summary Allocate asset
// @Description Allocate the first available asset of a type to a member (Admin only)
// @Tags Asset
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body AllocateRequest true "Allocation data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/assets/allocate [post]
func (h *AssetHandler) Allocate(c *fiber.Ctx) error {
	var req AllocateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.UserID == 0 {
		return response.BadRequest(c, "User ID is required")
	}

	input := &services.AllocateAssetInput{
		UserID:                  req.UserID,
		AssetType:               req.AssetType,
		MaintenancePeriodMonths: req.MaintenancePeriodMonths,
	}

	allocation, err := h.assetService.AllocateAsset(c.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnknownAssetType):
			return response.BadRequest(c, "Unknown asset type")
		case errors.Is(err, domain.ErrUserNotFound):
			return response.NotFound(c, "User not found")
		case errors.Is(err, domain.ErrAssetNotAvailable):
			return response.Conflict(c, "No available asset of this type")
		default:
			return response.InternalServerError(c, "Failed to allocate asset")
		}
	}

	return response.Created(c, "Asset allocated successfully", fiber.Map{
		"allocation": allocation.ToResponse(),
	})
}

// EvaluateAllocation runs the maintenance check for one allocation (Admin only)
// @Summary Evaluate allocation
// @Description Run the maintenance check for a single allocation (Admin only)
// @Tags Asset
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Allocation ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/assets/allocations/{id}/evaluate [post]
func (h *AssetHandler) EvaluateAllocation(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid ID")
	}

	result, err := h.assetService.EvaluateAllocation(c.Context(), uint(id))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAllocationNotFound):
			return response.NotFound(c, "Allocation not found")
		default:
			return response.InternalServerError(c, "Failed to evaluate allocation")
		}
	}

	return response.Success(c, "Allocation evaluated", fiber.Map{
		"result": result,
	})
}

// RunMaintenance triggers the monthly maintenance run (Admin only)
// @Summary Run maintenance
// @Description Manually trigger the monthly asset maintenance run (Admin only)
// @Tags Asset
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /admin/assets/run-maintenance [post]
func (h *AssetHandler) RunMaintenance(c *fiber.Ctx) error {
	result, err := h.assetService.ProcessAllEligibleAllocations(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to run maintenance")
	}

	return response.Success(c, "Maintenance run completed", fiber.Map{
		"result": result,
	})
}

// Recover restocks a forfeited allocation's asset (Admin only)
// @Summary Recover forfeited allocation
// @Description Transition a forfeited allocation to RECOVERED and restock the asset (Admin only)
// @Tags Asset
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Allocation ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/assets/allocations/{id}/recover [post]
func (h *AssetHandler) Recover(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid ID")
	}

	allocation, err := h.assetService.RecoverForfeited(c.Context(), uint(id))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAllocationNotFound):
			return response.NotFound(c, "Allocation not found")
		case errors.Is(err, domain.ErrRecoveryNotForfeited):
			return response.Conflict(c, "Allocation must be FORFEITED to be recovered")
		default:
			return response.InternalServerError(c, "Failed to recover allocation")
		}
	}

	return response.Success(c, "Allocation recovered successfully", fiber.Map{
		"allocation": allocation.ToResponse(),
	})
}
