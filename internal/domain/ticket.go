package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "Open"
	TicketStatusInProgress TicketStatus = "In Progress"
	TicketStatusResolved   TicketStatus = "Resolved"
)

// TicketStatuses lists all statuses in reporting order.
var TicketStatuses = []TicketStatus{TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved}

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "Low"
	TicketPriorityMedium TicketPriority = "Medium"
	TicketPriorityHigh   TicketPriority = "High"
)

// TicketCategory enumerates the supported request categories.
type TicketCategory string

const (
	TicketCategoryTechnical TicketCategory = "Technical"
	TicketCategoryBilling   TicketCategory = "Billing"
	TicketCategoryGeneral   TicketCategory = "General"
)

// ValidStatus reports whether s is a known status.
func ValidStatus(s TicketStatus) bool {
	return s == TicketStatusOpen || s == TicketStatusInProgress || s == TicketStatusResolved
}

// ValidPriority reports whether p is a known priority.
func ValidPriority(p TicketPriority) bool {
	return p == TicketPriorityLow || p == TicketPriorityMedium || p == TicketPriorityHigh
}

// ValidCategory reports whether c is a known category.
func ValidCategory(c TicketCategory) bool {
	return c == TicketCategoryTechnical || c == TicketCategoryBilling || c == TicketCategoryGeneral
}

// overdueAfter is how long an open ticket may sit before it counts as overdue.
const overdueAfter = 24 * time.Hour

// Ticket is the aggregate for support requests. Every ticket belongs to
// exactly one owner; all access is scoped by OwnerID.
type Ticket struct {
	ID          string
	OwnerID     string
	Subject     string
	Description string
	Category    TicketCategory
	Priority    TicketPriority
	Status      TicketStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsOverdue reports whether the ticket is still open more than 24 hours
// after creation. Computed on demand, never persisted.
func (t *Ticket) IsOverdue(now time.Time) bool {
	return t.Status == TicketStatusOpen && now.Sub(t.CreatedAt) > overdueAfter
}

// TicketStats holds per-status counts for one owner. Statuses with no
// tickets are reported as zero, not omitted.
type TicketStats struct {
	Open       int `json:"Open"`
	InProgress int `json:"In Progress"`
	Resolved   int `json:"Resolved"`
	Total      int `json:"total"`
}
