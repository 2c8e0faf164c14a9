package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// CommentHandler exposes ticket comments to any authenticated principal.
type CommentHandler struct {
	comments *service.CommentService
}

// NewCommentHandler constructs handler.
func NewCommentHandler(comments *service.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

// Create POST /api/comments.
func (h *CommentHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateCommentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	comment, err := h.comments.Create(c.UserContext(), currentPrincipal(c), req.TicketID, req.Body)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewCommentResponse(comment)})
}

// List GET /api/comments/:ticketId.
func (h *CommentHandler) List(c *fiber.Ctx) error {
	comments, err := h.comments.List(c.UserContext(), currentPrincipal(c), c.Params("ticketId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCommentResponses(comments)})
}
