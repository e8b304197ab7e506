package services

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	log "github.com/sirupsen/logrus"

	"github.com/streakforge/streak_api/services/handlers"
	"github.com/streakforge/streak_api/shared"
)

type HttpService struct {
	context.DefaultService

	authSvc       *AuthMiddleware
	streakSvc     *StreakService
	monitoringSvc *MonitoringService

	port   int
	server *fiber.App
}

const HTTP_SVC = "http_svc"

func (svc HttpService) Id() string {
	return HTTP_SVC
}

func (svc *HttpService) Configure(ctx *context.Context) error {
	if port := os.Getenv("HTTP_PORT"); port != "" {
		var err error
		if svc.port, err = strconv.Atoi(port); err != nil {
			return err
		}
	} else {
		svc.port = 8000
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *HttpService) Start() error {
	svc.authSvc = svc.Service(AUTH_MIDDLEWARE_SVC).(*AuthMiddleware)
	svc.streakSvc = svc.Service(STREAK_SVC).(*StreakService)
	svc.monitoringSvc = svc.Service(MONITORING_SVC).(*MonitoringService)

	svc.server = fiber.New(fiber.Config{
		ErrorHandler: svc.handleError,
	})

	svc.server.Use(recover.New())
	svc.server.Use(cors.New(cors.Config{
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	svc.server.Use(MonitoringMiddleware(svc.monitoringSvc))

	svc.server.Get("/ping", svc.ping)

	streakHandler := handlers.NewStreakHandler(svc.streakSvc)

	v1 := svc.server.Group("/api/v1")
	v1.Get("/ping", svc.ping)
	v1.Get("/streak/leaderboard", streakHandler.GetLeaderboard)

	streak := v1.Group("/streak", svc.authSvc.RequiredAuth())
	streak.Post("/activity", streakHandler.RecordActivity)
	streak.Get("/status", streakHandler.GetStatus)
	streak.Get("/history", streakHandler.GetHistory)
	streak.Get("/milestones", streakHandler.GetMilestones)

	log.WithField("port", svc.port).Info("HTTP server starting")
	return svc.server.Listen(fmt.Sprintf(":%v", svc.port))
}

func (svc *HttpService) Shutdown() {
	if svc.server != nil {
		_ = svc.server.Shutdown()
	}
}

// @Summary Ping
// @Description This endpoint checks the health of the service
// @Tags health
// @Accept  json
// @Produce json
// @Success 200 {object} shared.Response{data=string}
// @Router /ping [get]
func (svc *HttpService) ping(c *fiber.Ctx) error {
	c.Set("Cache-Control", "max-age=10")

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", "pong")
}

func (svc *HttpService) handleError(c *fiber.Ctx, err error) error {
	if err == nil {
		return nil
	}

	if appErr, ok := shared.GetAppError(err); ok {
		return shared.ResponseJSON(c, appErr.StatusCode, appErr.Message, appErr.Data)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return shared.ResponseJSON(c, fiberErr.Code, fiberErr.Message, nil)
	}

	return shared.ResponseInternalError(c, err)
}
