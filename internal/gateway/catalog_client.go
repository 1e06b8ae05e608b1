package gateway

import (
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

// CatalogClient fetches vehicles from the catalog service.
type CatalogClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewCatalogClient creates a CatalogClient for the given base URL.
func NewCatalogClient(baseURL string, logger *zap.Logger) *CatalogClient {
	return &CatalogClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

type vehiclePayload struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	PerDayRateCents int64     `json:"per_day_rate_cents"`
	Category        string    `json:"category"`
	ImageURL        string    `json:"image_url"`
	Description     string    `json:"description"`
}

// FetchVehicle retrieves a vehicle by ID. The caller's bearer token is passed
// explicitly so every outbound request carries the current identity.
func (c *CatalogClient) FetchVehicle(ctx context.Context, token string, id uuid.UUID) (*draftDomain.VehicleSelection, error) {
	url := fmt.Sprintf("%s/api/v1/vehicles/%s", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		var envelope struct {
			Data vehiclePayload `json:"data"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
			return nil, fmt.Errorf("failed to decode vehicle response: %w", err)
		}
		return &draftDomain.VehicleSelection{
			ID:              envelope.Data.ID,
			Name:            envelope.Data.Name,
			PerDayRateCents: envelope.Data.PerDayRateCents,
			Category:        envelope.Data.Category,
			ImageURL:        envelope.Data.ImageURL,
			Description:     envelope.Data.Description,
		}, nil
	case http.StatusNotFound:
		return nil, domain.NewNotFoundError("Vehicle", id.String())
	default:
		c.logger.Warn("unexpected catalog response",
			zap.Int("status", resp.StatusCode),
			zap.String("vehicle_id", id.String()),
		)
		return nil, fmt.Errorf("catalog returned status %d", resp.StatusCode)
	}
}
