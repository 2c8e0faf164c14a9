package repository

import (
	"context"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CommentRepository manages ticket thread comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.Comment, error)
	DeleteByTicket(ctx context.Context, ticketID string) (int64, error)
	DeleteByAuthor(ctx context.Context, authorID string) (int64, error)
}

type commentRepository struct {
	db DBTX
}

// NewCommentRepository builds repository.
func NewCommentRepository(db DBTX) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	const query = `
        INSERT INTO comments (id, ticket_id, author_id, body)
        VALUES ($1,$2,$3,$4)
        RETURNING created_at`
	return r.db.QueryRow(ctx, query,
		comment.ID,
		comment.TicketID,
		comment.AuthorID,
		comment.Body,
	).Scan(&comment.CreatedAt)
}

func (r *commentRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Comment, error) {
	const query = `
        SELECT c.id, c.ticket_id, c.author_id, p.user_name, c.body, c.created_at
        FROM comments c JOIN principals p ON p.id = c.author_id
        WHERE c.ticket_id=$1 ORDER BY c.created_at ASC`
	rows, err := r.db.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Comment
	for rows.Next() {
		var comment domain.Comment
		if err := rows.Scan(
			&comment.ID,
			&comment.TicketID,
			&comment.AuthorID,
			&comment.AuthorName,
			&comment.Body,
			&comment.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, comment)
	}
	return result, rows.Err()
}

func (r *commentRepository) DeleteByTicket(ctx context.Context, ticketID string) (int64, error) {
	cmd, err := r.db.Exec(ctx, `DELETE FROM comments WHERE ticket_id=$1`, ticketID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *commentRepository) DeleteByAuthor(ctx context.Context, authorID string) (int64, error) {
	cmd, err := r.db.Exec(ctx, `DELETE FROM comments WHERE author_id=$1`, authorID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
