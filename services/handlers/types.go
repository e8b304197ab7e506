package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/streakforge/streak_api/dto"
)

type AuthServiceInterface interface {
	RequiredAuth() fiber.Handler
}

type JWTServiceInterface interface {
	ExtractTokenFromHeader(authHeader string) (string, error)
	VerifyJWTToken(token string) (string, string, error)
}

type StreakServiceInterface interface {
	RecordActivity(userID, tier string) *dto.RecordActivityResult
	GetStatus(userID string) (*dto.StreakStatusResponse, error)
	GetHistory(userID string, limit int) (*dto.StreakHistoryResponse, error)
	GetMilestonePreview(userID, tier string) (*dto.MilestonePreviewResponse, error)
	GetLeaderboard(limit int) (*dto.StreakLeaderboardResponse, error)
}
