package handlers

import (
	"errors"
	"strconv"

	"rewardhub/internal/adapters/persistence/models"
	"rewardhub/internal/core/domain"
	"rewardhub/internal/core/services"
	"rewardhub/internal/pkg/pagination"
	"rewardhub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// CommissionHandler handles purchase and commission endpoints
type CommissionHandler struct {
	commissionService *services.CommissionService
}

// NewCommissionHandler creates a new commission handler
func NewCommissionHandler(commissionService *services.CommissionService) *CommissionHandler {
	return &CommissionHandler{commissionService: commissionService}
}

// PurchaseRequest represents a package purchase request body
type PurchaseRequest struct {
	PackageType string          `json:"package_type"`
	Amount      decimal.Decimal `json:"amount"`
}

// CreatePurchase handles a member's package purchase
// @Summary Purchase a package
// @Description Record a package purchase and pay out upline commissions
// @Tags Commission
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body PurchaseRequest true "Purchase data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /purchases [post]
func (h *CommissionHandler) CreatePurchase(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req PurchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.PackageType == "" {
		return response.BadRequest(c, "Package type is required")
	}

	input := &services.PurchaseInput{
		BuyerID:     userID,
		PackageType: req.PackageType,
		Amount:      req.Amount,
	}

	result, err := h.commissionService.ProcessPurchase(c.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidAmount):
			return response.BadRequest(c, "Package amount must be greater than zero")
		case errors.Is(err, domain.ErrUserNotFound):
			return response.NotFound(c, "Buyer not found")
		default:
			return response.InternalServerError(c, "Failed to process purchase")
		}
	}

	commissionResponses := make([]*models.CommissionResponse, len(result.Commissions))
	for i, cm := range result.Commissions {
		commissionResponses[i] = cm.ToResponse()
	}

	return response.Created(c, "Purchase processed successfully", fiber.Map{
		"order":       result.Order,
		"commissions": commissionResponses,
	})
}

// MyCommissions lists the authenticated member's commissions
// @Summary My commissions
// @Description List the authenticated member's commissions with pagination
// @Tags Commission
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /commissions/my [get]
func (h *CommissionHandler) MyCommissions(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)

	commissions, total, err := h.commissionService.ListByEarner(c.Context(), userID, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list commissions")
	}

	commissionResponses := make([]*models.CommissionResponse, len(commissions))
	for i, cm := range commissions {
		commissionResponses[i] = cm.ToResponse()
	}

	return response.Success(c, "Commissions retrieved successfully",
		pagination.NewResponse(commissionResponses, params, total))
}

// MarkPaid transitions a commission to PAID (Admin only)
// @Summary Mark commission paid
// @Description Transition a PENDING commission to PAID (Admin only)
// @Tags Commission
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Commission ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/commissions/{id}/pay [patch]
func (h *CommissionHandler) MarkPaid(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid ID")
	}

	commission, err := h.commissionService.MarkPaid(c.Context(), uint(id))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrCommissionNotFound):
			return response.NotFound(c, "Commission not found")
		case errors.Is(err, domain.ErrCommissionNotPending):
			return response.Conflict(c, "Commission is not in PENDING status")
		default:
			return response.InternalServerError(c, "Failed to mark commission paid")
		}
	}

	return response.Success(c, "Commission marked paid", fiber.Map{
		"commission": commission.ToResponse(),
	})
}

// RunTeamVolumeBonuses triggers the monthly team-volume bonus run (Admin only)
// @Summary Run team-volume bonuses
// @Description Manually trigger the monthly team-volume bonus run (Admin only)
// @Tags Commission
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /admin/commissions/run-team-volume [post]
func (h *CommissionHandler) RunTeamVolumeBonuses(c *fiber.Ctx) error {
	result, err := h.commissionService.ProcessMonthlyTeamVolumeBonuses(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to run team-volume bonuses")
	}

	return response.Success(c, "Team-volume bonus run completed", fiber.Map{
		"result": result,
	})
}
