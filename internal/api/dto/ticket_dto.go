package dto

import (
	"time"

	"github.com/spec-kit/ticketdesk/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Subject     string                `json:"subject" validate:"required"`
	Description string                `json:"description" validate:"required"`
	Category    domain.TicketCategory `json:"category" validate:"required"`
	Priority    domain.TicketPriority `json:"priority" validate:"required"`
}

// UpdateTicketRequest carries optional ticket fields; absent fields are left
// untouched.
type UpdateTicketRequest struct {
	Subject     *string                `json:"subject"`
	Description *string                `json:"description"`
	Category    *domain.TicketCategory `json:"category"`
	Priority    *domain.TicketPriority `json:"priority"`
	Status      *domain.TicketStatus   `json:"status"`
}

// TicketResponse is the outward view of a ticket, including the derived
// overdue flag.
type TicketResponse struct {
	ID          string                `json:"id"`
	OwnerID     string                `json:"ownerId"`
	Subject     string                `json:"subject"`
	Description string                `json:"description"`
	Category    domain.TicketCategory `json:"category"`
	Priority    domain.TicketPriority `json:"priority"`
	Status      domain.TicketStatus   `json:"status"`
	IsOverdue   bool                  `json:"isOverdue"`
	CreatedAt   time.Time             `json:"createdAt"`
	UpdatedAt   time.Time             `json:"updatedAt"`
}

// NewTicketResponse maps a ticket, computing the overdue flag at now.
func NewTicketResponse(ticket *domain.Ticket, now time.Time) TicketResponse {
	return TicketResponse{
		ID:          ticket.ID,
		OwnerID:     ticket.OwnerID,
		Subject:     ticket.Subject,
		Description: ticket.Description,
		Category:    ticket.Category,
		Priority:    ticket.Priority,
		Status:      ticket.Status,
		IsOverdue:   ticket.IsOverdue(now),
		CreatedAt:   ticket.CreatedAt,
		UpdatedAt:   ticket.UpdatedAt,
	}
}
