package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	TicketID string `json:"ticketId" validate:"required"`
	Body     string `json:"body" validate:"required,max=4000"`
}

// CommentResponse view.
type CommentResponse struct {
	ID        string    `json:"id"`
	TicketID  string    `json:"ticketId"`
	Body      string    `json:"body"`
	AuthorID  string    `json:"authorId"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
}

// DepartmentResponse view.
type DepartmentResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// NewCommentResponse maps a comment.
func NewCommentResponse(c *domain.Comment) CommentResponse {
	return CommentResponse{
		ID:        c.ID,
		TicketID:  c.TicketID,
		Body:      c.Body,
		AuthorID:  c.AuthorID,
		Author:    c.AuthorName,
		CreatedAt: c.CreatedAt,
	}
}

// NewCommentResponses maps a slice, never returning nil.
func NewCommentResponses(items []domain.Comment) []CommentResponse {
	out := make([]CommentResponse, 0, len(items))
	for i := range items {
		out = append(out, NewCommentResponse(&items[i]))
	}
	return out
}

// NewDepartmentResponses maps departments.
func NewDepartmentResponses(items []domain.Department) []DepartmentResponse {
	out := make([]DepartmentResponse, 0, len(items))
	for _, d := range items {
		out = append(out, DepartmentResponse{ID: d.ID, Name: d.Name})
	}
	return out
}
