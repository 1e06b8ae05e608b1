//go:build integration

package main_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RG-1903/Urban-Drive-sub000/internal/application"
	draftDomain "github.com/RG-1903/Urban-Drive-sub000/internal/domain/draft"
	"github.com/RG-1903/Urban-Drive-sub000/internal/repository"
	"github.com/RG-1903/Urban-Drive-sub000/pkg/events"
)

// TestWizardFlow_DeepLinkToConfirmation walks a deep-linked draft from entry
// to a confirmed reservation against a real database, and verifies the
// confirmation event lands on the wizard topic.
func TestWizardFlow_DeepLinkToConfirmation(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stubs := startStubCollaborators(t)
	defer stubs.Close()

	stack := setupWizardStack(t, infra.DB, infra.KafkaBrokers, stubs)
	defer stack.Cleanup()

	ctx := context.Background()
	userID := uuid.New()
	pickup := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	ret := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

	resp, err := stack.Service.StartWizard(ctx, userID, "test-token", application.StartWizardRequest{
		VehicleID: &stubs.VehicleID,
		PreselectedDates: &application.PreselectedDates{
			PickupDate: pickup,
			PickupTime: "10:00",
			ReturnDate: ret,
			ReturnTime: "10:00",
		},
	})
	require.NoError(t, err)
	require.Equal(t, int(draftDomain.StepPayment), resp.Draft.Step)

	dto, err := stack.Service.Advance(ctx, userID, "test-token", resp.Draft.ID, application.DraftUpdate{
		Payment: &draftDomain.PaymentDetails{Method: "card", CardholderName: "Jane Doe", CardLast4: "4242"},
	})
	require.NoError(t, err)
	assert.Equal(t, int(draftDomain.StepConfirmed), dto.Step)
	require.NotNil(t, dto.ReservationID)
	assert.Equal(t, stubs.ReservationID, *dto.ReservationID)

	// The stored row carries the reservation.
	var model repository.DraftModel
	require.NoError(t, infra.DB.Where("id = ?", resp.Draft.ID).First(&model).Error)
	require.NotNil(t, model.ReservationID)
	assert.Equal(t, stubs.ReservationID, *model.ReservationID)
	assert.Equal(t, int(draftDomain.StepConfirmed), model.Step)

	// The confirmation event is on the wizard topic.
	ce := consumeOneEvent(t, infra.KafkaBrokers, events.TopicWizardEvents,
		events.WizardReservationConfirmed, 15*time.Second)

	var confirmed events.ReservationConfirmedEvent
	require.NoError(t, ce.ParseData(&confirmed))
	assert.Equal(t, resp.Draft.ID, confirmed.DraftID)
	assert.Equal(t, userID, confirmed.UserID)
	assert.Equal(t, stubs.ReservationID, confirmed.ReservationID)
	assert.Equal(t, int64(30000), confirmed.ChargedAmountCents)
}

// TestSessionRevoked_DiscardsActiveDrafts verifies that a session revocation
// on the auth topic removes the user's unfinished drafts while finalized
// drafts stay as receipts.
func TestSessionRevoked_DiscardsActiveDrafts(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stubs := startStubCollaborators(t)
	defer stubs.Close()

	stack := setupWizardStack(t, infra.DB, infra.KafkaBrokers, stubs)
	defer stack.Cleanup()
	defer func() { _ = stack.Consumer.Close() }()

	userID := uuid.New()
	firstDraft := uuid.New()
	secondDraft := uuid.New()
	seedActiveDraft(t, infra.DB, firstDraft, userID)
	seedActiveDraft(t, infra.DB, secondDraft, userID)

	otherUserDraft := uuid.New()
	seedActiveDraft(t, infra.DB, otherUserDraft, uuid.New())

	// Start the consumer.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = stack.Consumer.Start(ctx) }()
	time.Sleep(3 * time.Second) // Wait for consumer group join.

	evt := events.SessionRevokedEvent{
		UserID:     userID,
		SessionID:  uuid.New(),
		Reason:     "logout",
		OccurredAt: time.Now().UTC(),
	}
	publishTestEvent(t, infra.KafkaBrokers, events.TopicAuthEvents,
		"service-auth", events.AuthSessionRevoked, evt)

	waitForDraftGone(t, infra.DB, firstDraft, 15*time.Second)
	waitForDraftGone(t, infra.DB, secondDraft, 15*time.Second)

	// The other user's draft is untouched.
	var count int64
	require.NoError(t, infra.DB.Model(&repository.DraftModel{}).Where("id = ?", otherUserDraft).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
