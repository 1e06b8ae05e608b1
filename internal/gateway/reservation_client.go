package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	draftDomain "github.com/RG-1903/Urban-Drive-sub000/internal/domain/draft"
	"github.com/RG-1903/Urban-Drive-sub000/pkg/domain"
)

// genericSubmissionMessage is surfaced when the reservation service gives no
// usable message of its own.
const genericSubmissionMessage = "We couldn't complete your reservation. Please try again."

// CreateReservationRequest is the payload for the reservation-creation endpoint.
type CreateReservationRequest struct {
	VehicleID       uuid.UUID              `json:"vehicle_id"`
	StartDate       time.Time              `json:"start_date"`
	EndDate         time.Time              `json:"end_date"`
	PickupLocation  string                 `json:"pickup_location"`
	ReturnLocation  string                 `json:"return_location"`
	Protection      draftDomain.Protection `json:"protection"`
	Extras          []draftDomain.Extra    `json:"extras"`
	PaymentMethod   string                 `json:"payment_method"`
	TotalPriceCents int64                  `json:"total_price_cents"`
	Currency        string                 `json:"currency"`
}

// ReservationConfirmation is the authoritative result of a successful submission.
type ReservationConfirmation struct {
	ReservationID      uuid.UUID `json:"reservation_id"`
	ChargedAmountCents int64     `json:"charged_amount_cents"`
}

// ReservationClient submits completed drafts to the reservation service.
type ReservationClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewReservationClient creates a ReservationClient for the given base URL.
func NewReservationClient(baseURL string, logger *zap.Logger) *ReservationClient {
	return &ReservationClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
}

// CreateReservation issues a single reservation-creation request. The
// idempotency key (the draft ID) lets the server deduplicate user-triggered
// retries; there is no automatic retry here. Failures come back as
// user-displayable submission errors, preferring the server's own message.
func (c *ReservationClient) CreateReservation(ctx context.Context, token, idempotencyKey string, req CreateReservationRequest) (*ReservationConfirmation, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal reservation request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/reservations", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build reservation request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Idempotency-Key", idempotencyKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error("reservation request failed", zap.Error(err))
		return nil, domain.NewSubmissionError(genericSubmissionMessage)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated {
		var envelope struct {
			Data ReservationConfirmation `json:"data"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
			c.logger.Error("failed to decode reservation response", zap.Error(err))
			return nil, domain.NewSubmissionError(genericSubmissionMessage)
		}
		return &envelope.Data, nil
	}

	message := genericSubmissionMessage
	var serverErr struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&serverErr); err == nil {
		if serverErr.Error != "" {
			message = serverErr.Error
		} else if serverErr.Message != "" {
			message = serverErr.Message
		}
	}

	c.logger.Warn("reservation rejected",
		zap.Int("status", resp.StatusCode),
		zap.String("message", message),
	)
	return nil, domain.NewSubmissionError(message)
}
