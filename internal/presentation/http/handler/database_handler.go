package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/tillpoint-api/internal/application/service"
	"github.com/sangkips/tillpoint-api/internal/presentation/http/dto/request"
	"github.com/sangkips/tillpoint-api/internal/presentation/http/dto/response"
)

// DatabaseHandler exposes the OTP-gated database administration endpoints.
// Routes are restricted to admins.
type DatabaseHandler struct {
	databaseService *service.DatabaseService
}

func NewDatabaseHandler(databaseService *service.DatabaseService) *DatabaseHandler {
	return &DatabaseHandler{databaseService: databaseService}
}

// RequestOTP emails a one-time code to the calling admin
func (h *DatabaseHandler) RequestOTP(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	sent, err := h.databaseService.RequestOTP(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}

	response.OK(c, "Verification code sent", sent)
}

// Clear wipes business data once the code and typed confirmation check out
func (h *DatabaseHandler) Clear(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req request.ClearDatabaseRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.databaseService.Clear(c.Request.Context(), userID, req.OTP, req.Confirmation); err != nil {
		fail(c, err)
		return
	}

	response.OK(c, "Database cleared successfully", nil)
}

func (h *DatabaseHandler) Stats(c *gin.Context) {
	stats, err := h.databaseService.Stats(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}

	response.OK(c, "Database statistics retrieved successfully", stats)
}
