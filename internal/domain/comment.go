package domain

import "time"

// Comment is a message on a ticket thread.
type Comment struct {
	ID         string
	Body       string
	CreatedAt  time.Time
	TicketID   string
	AuthorID   string
	AuthorName string
}
