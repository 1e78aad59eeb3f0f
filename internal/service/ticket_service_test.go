package service_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticketdesk/internal/domain"
	"github.com/spec-kit/ticketdesk/internal/service"
	apperrors "github.com/spec-kit/ticketdesk/pkg/util"
)

func newTicketService(tickets *memoryTicketRepo) *service.TicketService {
	return service.NewTicketService(service.TicketDependencies{TicketRepo: tickets})
}

func validInput() service.TicketCreateInput {
	return service.TicketCreateInput{
		Subject:     "Printer broken",
		Description: "Office printer jams on every print job",
		Category:    domain.TicketCategoryTechnical,
		Priority:    domain.TicketPriorityHigh,
	}
}

func TestCreateTicketDefaults(t *testing.T) {
	ctx := context.Background()
	svc := newTicketService(newMemoryTicketRepo())
	owner := uuid.NewString()

	input := validInput()
	input.Priority = ""
	ticket, err := svc.Create(ctx, owner, input)
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatusOpen, ticket.Status)
	require.Equal(t, domain.TicketPriorityMedium, ticket.Priority)
	require.Equal(t, owner, ticket.OwnerID)
}

func TestCreateTicketTrimsFields(t *testing.T) {
	ctx := context.Background()
	svc := newTicketService(newMemoryTicketRepo())

	input := validInput()
	input.Subject = "  Printer broken  "
	input.Description = "  Office printer jams on every print job  "
	ticket, err := svc.Create(ctx, uuid.NewString(), input)
	require.NoError(t, err)
	require.Equal(t, "Printer broken", ticket.Subject)
	require.Equal(t, "Office printer jams on every print job", ticket.Description)
}

func TestCreateTicketSubjectLength(t *testing.T) {
	ctx := context.Background()
	svc := newTicketService(newMemoryTicketRepo())
	owner := uuid.NewString()

	input := validInput()
	input.Subject = " ab "
	_, err := svc.Create(ctx, owner, input)
	requireStatus(t, err, http.StatusBadRequest)

	input.Subject = "abc"
	_, err = svc.Create(ctx, owner, input)
	require.NoError(t, err)

	input = validInput()
	input.Subject = "   "
	_, err = svc.Create(ctx, owner, input)
	requireStatus(t, err, http.StatusBadRequest)
}

func TestCreateTicketDescriptionLength(t *testing.T) {
	ctx := context.Background()
	svc := newTicketService(newMemoryTicketRepo())

	input := validInput()
	input.Description = "too short"
	_, err := svc.Create(ctx, uuid.NewString(), input)
	requireStatus(t, err, http.StatusBadRequest)
}

func TestCreateTicketInvalidEnums(t *testing.T) {
	ctx := context.Background()
	svc := newTicketService(newMemoryTicketRepo())
	owner := uuid.NewString()

	input := validInput()
	input.Category = "Sales"
	_, err := svc.Create(ctx, owner, input)
	requireStatus(t, err, http.StatusBadRequest)

	input = validInput()
	input.Category = ""
	_, err = svc.Create(ctx, owner, input)
	requireStatus(t, err, http.StatusBadRequest)

	input = validInput()
	input.Priority = "Urgent"
	_, err = svc.Create(ctx, owner, input)
	requireStatus(t, err, http.StatusBadRequest)
}

func TestCreateTicketDuplicateSubjectPerOwner(t *testing.T) {
	ctx := context.Background()
	svc := newTicketService(newMemoryTicketRepo())
	owner := uuid.NewString()
	other := uuid.NewString()

	_, err := svc.Create(ctx, owner, validInput())
	require.NoError(t, err)

	_, err = svc.Create(ctx, owner, validInput())
	requireStatus(t, err, http.StatusConflict)
	require.EqualError(t, apperrors.ToDomainError(err), "Ticket with this subject already exists")

	// a different owner may reuse the subject
	_, err = svc.Create(ctx, other, validInput())
	require.NoError(t, err)
}

func TestListIsOwnerScopedAndNewestFirst(t *testing.T) {
	ctx := context.Background()
	svc := newTicketService(newMemoryTicketRepo())
	owner := uuid.NewString()
	other := uuid.NewString()

	first, err := svc.Create(ctx, owner, validInput())
	require.NoError(t, err)

	input := validInput()
	input.Subject = "VPN down"
	second, err := svc.Create(ctx, owner, input)
	require.NoError(t, err)

	_, err = svc.Create(ctx, other, validInput())
	require.NoError(t, err)

	tickets, err := svc.List(ctx, owner)
	require.NoError(t, err)
	require.Len(t, tickets, 2)
	require.Equal(t, second.ID, tickets[0].ID)
	require.Equal(t, first.ID, tickets[1].ID)
	for _, ticket := range tickets {
		require.Equal(t, owner, ticket.OwnerID)
	}
}

func TestGetTicketScoping(t *testing.T) {
	ctx := context.Background()
	svc := newTicketService(newMemoryTicketRepo())
	owner := uuid.NewString()
	other := uuid.NewString()

	ticket, err := svc.Create(ctx, owner, validInput())
	require.NoError(t, err)

	got, err := svc.Get(ctx, owner, ticket.ID)
	require.NoError(t, err)
	require.Equal(t, ticket.ID, got.ID)

	// guessing another user's id yields not found, not forbidden
	_, err = svc.Get(ctx, other, ticket.ID)
	requireStatus(t, err, http.StatusNotFound)

	_, err = svc.Get(ctx, owner, "not-a-uuid")
	requireStatus(t, err, http.StatusBadRequest)

	_, err = svc.Get(ctx, owner, uuid.NewString())
	requireStatus(t, err, http.StatusNotFound)
}

func TestUpdateTicketPartialFields(t *testing.T) {
	ctx := context.Background()
	svc := newTicketService(newMemoryTicketRepo())
	owner := uuid.NewString()

	ticket, err := svc.Create(ctx, owner, validInput())
	require.NoError(t, err)

	status := domain.TicketStatusResolved
	updated, err := svc.Update(ctx, owner, ticket.ID, service.TicketUpdateInput{Status: &status})
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatusResolved, updated.Status)
	require.Equal(t, ticket.Subject, updated.Subject)
	require.Equal(t, ticket.Priority, updated.Priority)

	// a resolved ticket may be reopened; transitions are unconstrained
	status = domain.TicketStatusOpen
	updated, err = svc.Update(ctx, owner, ticket.ID, service.TicketUpdateInput{Status: &status})
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatusOpen, updated.Status)
}

func TestUpdateTicketInvalidFieldLeavesNothingChanged(t *testing.T) {
	ctx := context.Background()
	svc := newTicketService(newMemoryTicketRepo())
	owner := uuid.NewString()

	ticket, err := svc.Create(ctx, owner, validInput())
	require.NoError(t, err)

	subject := "New subject"
	badPriority := domain.TicketPriority("Critical")
	_, err = svc.Update(ctx, owner, ticket.ID, service.TicketUpdateInput{
		Subject:  &subject,
		Priority: &badPriority,
	})
	requireStatus(t, err, http.StatusBadRequest)

	// verify via a subsequent read that no field was touched
	stored, err := svc.Get(ctx, owner, ticket.ID)
	require.NoError(t, err)
	require.Equal(t, ticket.Subject, stored.Subject)
	require.Equal(t, ticket.Priority, stored.Priority)

	badStatus := domain.TicketStatus("Closed")
	_, err = svc.Update(ctx, owner, ticket.ID, service.TicketUpdateInput{Status: &badStatus})
	requireStatus(t, err, http.StatusBadRequest)

	shortSubject := "ab"
	_, err = svc.Update(ctx, owner, ticket.ID, service.TicketUpdateInput{Subject: &shortSubject})
	requireStatus(t, err, http.StatusBadRequest)
}

func TestUpdateTicketOwnerScoped(t *testing.T) {
	ctx := context.Background()
	svc := newTicketService(newMemoryTicketRepo())
	owner := uuid.NewString()

	ticket, err := svc.Create(ctx, owner, validInput())
	require.NoError(t, err)

	subject := "Hijacked"
	_, err = svc.Update(ctx, uuid.NewString(), ticket.ID, service.TicketUpdateInput{Subject: &subject})
	requireStatus(t, err, http.StatusNotFound)
}

func TestDeleteTicketTwice(t *testing.T) {
	ctx := context.Background()
	svc := newTicketService(newMemoryTicketRepo())
	owner := uuid.NewString()

	ticket, err := svc.Create(ctx, owner, validInput())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, owner, ticket.ID))
	requireStatus(t, svc.Delete(ctx, owner, ticket.ID), http.StatusNotFound)
}

func TestDeleteTicketOwnerScoped(t *testing.T) {
	ctx := context.Background()
	svc := newTicketService(newMemoryTicketRepo())
	owner := uuid.NewString()

	ticket, err := svc.Create(ctx, owner, validInput())
	require.NoError(t, err)

	requireStatus(t, svc.Delete(ctx, uuid.NewString(), ticket.ID), http.StatusNotFound)
	requireStatus(t, svc.Delete(ctx, owner, "not-a-uuid"), http.StatusBadRequest)
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	svc := newTicketService(newMemoryTicketRepo())
	owner := uuid.NewString()
	other := uuid.NewString()

	stats, err := svc.Stats(ctx, owner)
	require.NoError(t, err)
	require.Equal(t, domain.TicketStats{}, stats)

	ticket, err := svc.Create(ctx, owner, validInput())
	require.NoError(t, err)

	input := validInput()
	input.Subject = "VPN down"
	second, err := svc.Create(ctx, owner, input)
	require.NoError(t, err)

	_, err = svc.Create(ctx, other, validInput())
	require.NoError(t, err)

	stats, err = svc.Stats(ctx, owner)
	require.NoError(t, err)
	require.Equal(t, domain.TicketStats{Open: 2, Total: 2}, stats)

	status := domain.TicketStatusResolved
	_, err = svc.Update(ctx, owner, ticket.ID, service.TicketUpdateInput{Status: &status})
	require.NoError(t, err)
	status = domain.TicketStatusInProgress
	_, err = svc.Update(ctx, owner, second.ID, service.TicketUpdateInput{Status: &status})
	require.NoError(t, err)

	stats, err = svc.Stats(ctx, owner)
	require.NoError(t, err)
	require.Equal(t, domain.TicketStats{Open: 0, InProgress: 1, Resolved: 1, Total: 2}, stats)
	require.Equal(t, stats.Total, stats.Open+stats.InProgress+stats.Resolved)
}
