package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/streakforge/streak_api/dto"
	"github.com/streakforge/streak_api/shared"
)

type StreakHandler struct {
	streakSvc StreakServiceInterface
}

func NewStreakHandler(streakSvc StreakServiceInterface) *StreakHandler {
	return &StreakHandler{
		streakSvc: streakSvc,
	}
}

// @Summary Record activity
// @Description Record one day of qualifying activity for the authenticated user
// @Tags streak
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Success 200 {object} shared.Response{data=dto.RecordActivityResult}
// @Router /api/v1/streak/activity [post]
func (h *StreakHandler) RecordActivity(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)
	tier, _ := c.Locals(shared.Tier).(string)

	result := h.streakSvc.RecordActivity(userID, tier)
	if !result.Success {
		return shared.ResponseJSON(c, fiber.StatusInternalServerError, "Activity not recorded", result)
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", result)
}

// @Summary Get streak status
// @Description Get the caller's streak record plus next-milestone projection
// @Tags streak
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Success 200 {object} shared.Response{data=dto.StreakStatusResponse}
// @Router /api/v1/streak/status [get]
func (h *StreakHandler) GetStatus(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	status, err := h.streakSvc.GetStatus(userID)
	if err != nil {
		return err
	}
	if status == nil {
		return shared.ResponseNotFound(c)
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", status)
}

// @Summary Get streak history
// @Description Get the caller's streak audit trail, newest first
// @Tags streak
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param limit query int false "Limit results (default 50)"
// @Success 200 {object} shared.Response{data=dto.StreakHistoryResponse}
// @Router /api/v1/streak/history [get]
func (h *StreakHandler) GetHistory(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	req := dto.StreakHistoryRequest{}
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil {
			req.Limit = parsed
		}
	}

	if err := dto.GetValidator().Struct(req); err != nil {
		appErr := shared.NewBadRequestError(err, "Invalid history request")
		appErr.Data = dto.FormatValidationErrors(err)
		return appErr
	}

	history, err := h.streakSvc.GetHistory(userID, req.Limit)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", history)
}

// @Summary Preview milestone rewards
// @Description Get the reward table for the caller's tier with achievement state
// @Tags streak
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Success 200 {object} shared.Response{data=dto.MilestonePreviewResponse}
// @Router /api/v1/streak/milestones [get]
func (h *StreakHandler) GetMilestones(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)
	tier, _ := c.Locals(shared.Tier).(string)

	preview, err := h.streakSvc.GetMilestonePreview(userID, tier)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", preview)
}

// @Summary Get streak leaderboard
// @Description Get the users with the longest running streaks
// @Tags streak
// @Accept json
// @Produce json
// @Param limit query int false "Limit results (default 50)"
// @Success 200 {object} shared.Response{data=dto.StreakLeaderboardResponse}
// @Router /api/v1/streak/leaderboard [get]
func (h *StreakHandler) GetLeaderboard(c *fiber.Ctx) error {
	req := dto.StreakLeaderboardRequest{}
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil {
			req.Limit = parsed
		}
	}

	if err := dto.GetValidator().Struct(req); err != nil {
		appErr := shared.NewBadRequestError(err, "Invalid leaderboard request")
		appErr.Data = dto.FormatValidationErrors(err)
		return appErr
	}

	leaderboard, err := h.streakSvc.GetLeaderboard(req.Limit)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", leaderboard)
}
