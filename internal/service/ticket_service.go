package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/ticketdesk/internal/cache"
	"github.com/spec-kit/ticketdesk/internal/domain"
	"github.com/spec-kit/ticketdesk/internal/events"
	"github.com/spec-kit/ticketdesk/internal/repository"
	apperrors "github.com/spec-kit/ticketdesk/pkg/util"
)

// TicketService coordinates owner-scoped ticket workflows. Validation runs
// before any mutation; an invalid field fails the whole operation with
// nothing persisted.
type TicketService struct {
	tickets    repository.TicketRepository
	stats      *cache.TicketStatsCache
	dispatcher events.Dispatcher
}

// TicketDependencies bundles requirements for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	StatsCache *cache.TicketStatsCache
	Dispatcher events.Dispatcher
}

// TicketCreateInput describes the ticket creation payload.
type TicketCreateInput struct {
	Subject     string
	Description string
	Category    domain.TicketCategory
	Priority    domain.TicketPriority
}

// TicketUpdateInput carries optional fields for partial update. A nil field
// is absent and leaves the stored value untouched.
type TicketUpdateInput struct {
	Subject     *string
	Description *string
	Category    *domain.TicketCategory
	Priority    *domain.TicketPriority
	Status      *domain.TicketStatus
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		stats:      deps.StatsCache,
		dispatcher: deps.Dispatcher,
	}
}

// Create validates and persists a new ticket for the owner. Duplicate
// subjects per owner are rejected.
func (s *TicketService) Create(ctx context.Context, ownerID string, input TicketCreateInput) (*domain.Ticket, error) {
	subject := strings.TrimSpace(input.Subject)
	description := strings.TrimSpace(input.Description)

	if err := validateSubject(subject); err != nil {
		return nil, err
	}
	if err := validateDescription(description); err != nil {
		return nil, err
	}
	if input.Category == "" {
		return nil, apperrors.NewValidationError("Category is required", nil)
	}
	if !domain.ValidCategory(input.Category) {
		return nil, apperrors.NewValidationError("Category must be one of Technical, Billing, General", nil)
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}
	if !domain.ValidPriority(priority) {
		return nil, apperrors.NewValidationError("Priority must be one of Low, Medium, High", nil)
	}

	exists, err := s.tickets.SubjectExists(ctx, ownerID, subject)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if exists {
		return nil, apperrors.NewConflict("Ticket with this subject already exists")
	}

	ticket := &domain.Ticket{
		OwnerID:     ownerID,
		Subject:     subject,
		Description: description,
		Category:    input.Category,
		Priority:    priority,
		Status:      domain.TicketStatusOpen,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		// The unique index backs the pre-check against concurrent creates.
		return nil, apperrors.MapError(err)
	}

	s.stats.Invalidate(ctx, ownerID)
	s.publish(ctx, events.Event{
		Type:    events.EventTicketCreated,
		ActorID: ownerID,
		Payload: events.TicketCreatedPayload{
			TicketID: ticket.ID,
			Subject:  ticket.Subject,
			Category: ticket.Category,
			Priority: ticket.Priority,
		},
	})
	return ticket, nil
}

// List returns the owner's tickets, newest first.
func (s *TicketService) List(ctx context.Context, ownerID string) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// Get fetches a single ticket owned by the requester. Absent and not-owned
// are indistinguishable to the caller.
func (s *TicketService) Get(ctx context.Context, ownerID, ticketID string) (*domain.Ticket, error) {
	if _, err := uuid.Parse(ticketID); err != nil {
		return nil, apperrors.NewValidationError("Invalid ticket id", nil)
	}
	ticket, err := s.tickets.GetByOwner(ctx, ownerID, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("Ticket")
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// Update applies the supplied fields to an owned ticket. Every supplied
// field is validated before any of them is written; status transitions are
// unconstrained within the enum.
func (s *TicketService) Update(ctx context.Context, ownerID, ticketID string, input TicketUpdateInput) (*domain.Ticket, error) {
	ticket, err := s.Get(ctx, ownerID, ticketID)
	if err != nil {
		return nil, err
	}

	subject := ticket.Subject
	if input.Subject != nil {
		subject = strings.TrimSpace(*input.Subject)
		if err := validateSubject(subject); err != nil {
			return nil, err
		}
	}
	description := ticket.Description
	if input.Description != nil {
		description = strings.TrimSpace(*input.Description)
		if err := validateDescription(description); err != nil {
			return nil, err
		}
	}
	if input.Category != nil && !domain.ValidCategory(*input.Category) {
		return nil, apperrors.NewValidationError("Category must be one of Technical, Billing, General", nil)
	}
	if input.Priority != nil && !domain.ValidPriority(*input.Priority) {
		return nil, apperrors.NewValidationError("Priority must be one of Low, Medium, High", nil)
	}
	if input.Status != nil && !domain.ValidStatus(*input.Status) {
		return nil, apperrors.NewValidationError("Status must be one of Open, In Progress, Resolved", nil)
	}

	oldStatus := ticket.Status
	ticket.Subject = subject
	ticket.Description = description
	if input.Category != nil {
		ticket.Category = *input.Category
	}
	if input.Priority != nil {
		ticket.Priority = *input.Priority
	}
	if input.Status != nil {
		ticket.Status = *input.Status
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("Ticket")
		}
		return nil, apperrors.MapError(err)
	}

	s.stats.Invalidate(ctx, ownerID)
	if input.Status != nil && oldStatus != ticket.Status {
		s.publish(ctx, events.Event{
			Type:    events.EventTicketStatusChanged,
			ActorID: ownerID,
			Payload: events.TicketStatusChangedPayload{
				TicketID:  ticket.ID,
				OldStatus: oldStatus,
				NewStatus: ticket.Status,
			},
		})
	}
	return ticket, nil
}

// Delete removes an owned ticket. A second delete of the same id reports
// not found.
func (s *TicketService) Delete(ctx context.Context, ownerID, ticketID string) error {
	if _, err := uuid.Parse(ticketID); err != nil {
		return apperrors.NewValidationError("Invalid ticket id", nil)
	}
	if err := s.tickets.DeleteByOwner(ctx, ownerID, ticketID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("Ticket")
		}
		return apperrors.MapError(err)
	}

	s.stats.Invalidate(ctx, ownerID)
	s.publish(ctx, events.Event{
		Type:    events.EventTicketDeleted,
		ActorID: ownerID,
		Payload: events.TicketDeletedPayload{TicketID: ticketID},
	})
	return nil
}

// Stats returns per-status counts for the owner's tickets, served from the
// cache when fresh.
func (s *TicketService) Stats(ctx context.Context, ownerID string) (domain.TicketStats, error) {
	if cached := s.stats.Get(ctx, ownerID); cached != nil {
		return *cached, nil
	}

	counts, err := s.tickets.CountByStatus(ctx, ownerID)
	if err != nil {
		return domain.TicketStats{}, apperrors.MapError(err)
	}

	stats := domain.TicketStats{
		Open:       counts[domain.TicketStatusOpen],
		InProgress: counts[domain.TicketStatusInProgress],
		Resolved:   counts[domain.TicketStatusResolved],
	}
	stats.Total = stats.Open + stats.InProgress + stats.Resolved

	s.stats.Set(ctx, ownerID, stats)
	return stats, nil
}

func validateSubject(subject string) error {
	if subject == "" {
		return apperrors.NewValidationError("Subject cannot be empty", nil)
	}
	if len(subject) < 3 {
		return apperrors.NewValidationError("Subject must be at least 3 characters", nil)
	}
	return nil
}

func validateDescription(description string) error {
	if description == "" {
		return apperrors.NewValidationError("Description is required", nil)
	}
	if len(description) < 10 {
		return apperrors.NewValidationError("Description must be at least 10 characters", nil)
	}
	return nil
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.Timestamp = time.Now()
	_ = s.dispatcher.Publish(ctx, event)
}
