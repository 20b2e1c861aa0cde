package handlers

import (
	"errors"
	"strconv"

	"rewardhub/internal/adapters/persistence/models"
	"rewardhub/internal/adapters/persistence/repositories"
	"rewardhub/internal/core/domain"
	"rewardhub/internal/core/services"
	"rewardhub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// TierHandler handles tier master data and qualification endpoints
type TierHandler struct {
	tierService *services.TierService
	tierRepo    repositories.TierRepository
}

// NewTierHandler creates a new tier handler
func NewTierHandler(tierService *services.TierService, tierRepo repositories.TierRepository) *TierHandler {
	return &TierHandler{
		tierService: tierService,
		tierRepo:    tierRepo,
	}
}

// ListTiers lists all tiers
// @Summary List tiers
// @Description Get the tier ladder with requirements and rates
// @Tags Tier
// @Accept json
// @Produce json
// @Success 200 {object} response.Response
// @Router /tiers [get]
func (h *TierHandler) ListTiers(c *fiber.Ctx) error {
	tiers, err := h.tierRepo.List(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list tiers")
	}

	return response.Success(c, "Tiers retrieved successfully", fiber.Map{
		"tiers": tiers,
	})
}

// MyStatus returns the authenticated member's tier qualification
// @Summary My tier status
// @Description Get the authenticated member's current tier standing
// @Tags Tier
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /tiers/my-status [get]
func (h *TierHandler) MyStatus(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	q, err := h.tierService.GetStatus(c.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrQualificationNotFound):
			return response.NotFound(c, "Tier qualification not found")
		default:
			return response.InternalServerError(c, "Failed to get tier status")
		}
	}

	return response.Success(c, "Tier status retrieved successfully", fiber.Map{
		"qualification": q,
	})
}

// Evaluate runs an advancement check for the authenticated member
// @Summary Evaluate my tier
// @Description Check whether the authenticated member advances a tier
// @Tags Tier
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /tiers/evaluate [post]
func (h *TierHandler) Evaluate(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	result, err := h.tierService.Evaluate(c.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			return response.NotFound(c, "User not found")
		case errors.Is(err, domain.ErrTierNotFound):
			return response.NotFound(c, "Tier configuration missing")
		default:
			return response.InternalServerError(c, "Failed to evaluate tier")
		}
	}

	return response.Success(c, "Tier evaluation completed", fiber.Map{
		"result": result,
	})
}

// RunSweep triggers the monthly maintain/downgrade sweep (Admin only)
// @Summary Run tier sweep
// @Description Manually trigger the monthly tier maintain/downgrade sweep (Admin only)
// @Tags Tier
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /admin/tiers/run-sweep [post]
func (h *TierHandler) RunSweep(c *fiber.Ctx) error {
	result, err := h.tierService.SweepMonthly(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to run tier sweep")
	}

	return response.Success(c, "Tier sweep completed", fiber.Map{
		"result": result,
	})
}

// UpdateTierRequest represents update tier request
type UpdateTierRequest struct {
	Name                    *string          `json:"name"`
	RequiredActiveReferrals *int             `json:"required_active_referrals"`
	RequiredTeamVolume      *decimal.Decimal `json:"required_team_volume"`
	TeamVolumeBonusRate     *float64         `json:"team_volume_bonus_rate"`
	AchievementBonus        *decimal.Decimal `json:"achievement_bonus"`
	DirectReferralRate      *float64         `json:"direct_referral_rate"`
	Level2Rate              *float64         `json:"level2_rate"`
	Level3Rate              *float64         `json:"level3_rate"`
	IsActive                *bool            `json:"is_active"`
}

// UpdateTier updates tier master data (Admin only)
// @Summary Update tier
// @Description Update a tier's requirements and rates (Admin only)
// @Tags Tier
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Tier ID"
// @Param body body UpdateTierRequest true "Tier data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/tiers/{id} [put]
func (h *TierHandler) UpdateTier(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid ID")
	}

	var req UpdateTierRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	tier, err := h.tierRepo.GetByID(c.Context(), uint(id))
	if err != nil {
		return response.NotFound(c, "Tier not found")
	}

	applyTierUpdate(tier, &req)

	if err := h.tierService.UpdateTier(c.Context(), tier); err != nil {
		switch {
		case errors.Is(err, domain.ErrTierNotMonotonic):
			return response.BadRequest(c, "Tier requirements must stay between the adjacent ranks")
		default:
			return response.InternalServerError(c, "Failed to update tier")
		}
	}

	return response.Success(c, "Tier updated successfully", fiber.Map{
		"tier": tier,
	})
}

func applyTierUpdate(tier *models.Tier, req *UpdateTierRequest) {
	if req.Name != nil {
		tier.Name = *req.Name
	}
	if req.RequiredActiveReferrals != nil {
		tier.RequiredActiveReferrals = *req.RequiredActiveReferrals
	}
	if req.RequiredTeamVolume != nil {
		tier.RequiredTeamVolume = *req.RequiredTeamVolume
	}
	if req.TeamVolumeBonusRate != nil {
		tier.TeamVolumeBonusRate = *req.TeamVolumeBonusRate
	}
	if req.AchievementBonus != nil {
		tier.AchievementBonus = *req.AchievementBonus
	}
	if req.DirectReferralRate != nil {
		tier.DirectReferralRate = *req.DirectReferralRate
	}
	if req.Level2Rate != nil {
		tier.Level2Rate = *req.Level2Rate
	}
	if req.Level3Rate != nil {
		tier.Level3Rate = *req.Level3Rate
	}
	if req.IsActive != nil {
		tier.IsActive = *req.IsActive
	}
}
