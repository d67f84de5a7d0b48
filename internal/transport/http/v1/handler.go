// Package v1 provides the public chat gateway handlers.
package v1

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kisaansahayak/sahayak/internal/domain"
	"github.com/kisaansahayak/sahayak/internal/service"
)

// Handler handles HTTP requests.
type Handler struct {
	service *service.Service
}

// NewHandler creates a new handler.
func NewHandler(service *service.Service) *Handler {
	return &Handler{
		service: service,
	}
}

// RegisterRoutes registers the public API routes on the /api group.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/chat", h.Chat)
	g.GET("/chat/history/:sessionId", h.GetHistory)
	g.GET("/tips", h.GetTips)
	g.GET("/health", h.Health)
}

// Chat forwards one message to the RAG service.
// POST /api/chat
func (h *Handler) Chat(c echo.Context) error {
	var req domain.ChatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, domain.ErrorResponse{
			Error: "Message is required and must be a non-empty string",
			Code:  domain.ErrorCodeInvalidMessage,
		})
	}

	resp, err := h.service.Chat(c.Request().Context(), &req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// GetHistory returns the server-side history of a session.
// GET /api/chat/history/:sessionId
func (h *Handler) GetHistory(c echo.Context) error {
	return c.JSON(http.StatusOK, h.service.History(c.Param("sessionId")))
}

// GetTips returns the farming tips.
// GET /api/tips
func (h *Handler) GetTips(c echo.Context) error {
	return c.JSON(http.StatusOK, h.service.Tips())
}

// Health returns health status.
// GET /api/health
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, h.service.Health())
}

func writeError(c echo.Context, err error) error {
	var gw *domain.GatewayError
	if errors.As(err, &gw) {
		return c.JSON(gw.Status, domain.ErrorResponse{Error: gw.Message, Code: gw.Code})
	}
	return err
}
