//go:build integration

package main_test

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/RG-1903/Urban-Drive-sub000/internal/application"
	draftDomain "github.com/RG-1903/Urban-Drive-sub000/internal/domain/draft"
	wizardEvents "github.com/RG-1903/Urban-Drive-sub000/internal/events"
	"github.com/RG-1903/Urban-Drive-sub000/internal/gateway"
	"github.com/RG-1903/Urban-Drive-sub000/internal/repository"
	"github.com/RG-1903/Urban-Drive-sub000/pkg/events"
	"github.com/RG-1903/Urban-Drive-sub000/pkg/kafka"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	KafkaBrokers []string
	Cleanup      func()
}

// wizardStack holds wired-up wizard service components.
type wizardStack struct {
	Service  *application.WizardService
	Consumer *wizardEvents.SessionEventConsumer
	Cleanup  func()
}

// setupContainers starts PostgreSQL and Kafka testcontainers and returns a connected GORM DB.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_wizard",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=test_wizard sslmode=disable", pgHost, pgPort.Port())

	// Poll until GORM can actually connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			return false
		}
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error)
	require.NoError(t, db.AutoMigrate(&repository.DraftModel{}))

	// Start Kafka container using confluent-local (supports KRaft natively).
	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	createTopics(t, kafkaBrokers, events.TopicWizardEvents, events.TopicAuthEvents)

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}

	return &testInfra{
		DB:           db,
		KafkaBrokers: kafkaBrokers,
		Cleanup:      cleanup,
	}
}

// stubCollaborators serves the catalog and reservation endpoints the wizard
// calls out to, backed by httptest.
type stubCollaborators struct {
	CatalogURL     string
	ReservationURL string
	VehicleID      uuid.UUID
	ReservationID  uuid.UUID
	Close          func()
}

func startStubCollaborators(t *testing.T) *stubCollaborators {
	t.Helper()
	vehicleID := uuid.New()
	reservationID := uuid.New()

	catalog := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/vehicles/"+vehicleID.String() {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"data":{"id":%q,"name":"Compact Sedan","per_day_rate_cents":10000,"category":"economy"}}`, vehicleID)
	}))

	reservations := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Idempotency-Key") == "" {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error":"missing idempotency key"}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		fmt.Fprintf(w, `{"data":{"reservation_id":%q,"charged_amount_cents":30000}}`, reservationID)
	}))

	return &stubCollaborators{
		CatalogURL:     catalog.URL,
		ReservationURL: reservations.URL,
		VehicleID:      vehicleID,
		ReservationID:  reservationID,
		Close: func() {
			catalog.Close()
			reservations.Close()
		},
	}
}

// setupWizardStack wires up the full wizard service stack.
func setupWizardStack(t *testing.T, db *gorm.DB, brokers []string, stubs *stubCollaborators) *wizardStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	repo := repository.NewGormDraftRepository(db)
	pricing := draftDomain.NewStandardPricingStrategy()
	availability := draftDomain.NewAlwaysAvailableChecker()
	catalog := gateway.NewCatalogClient(stubs.CatalogURL, logger)
	reservations := gateway.NewReservationClient(stubs.ReservationURL, logger)
	producer := kafka.NewProducer(brokers, logger)
	service := application.NewWizardService(repo, pricing, availability, catalog, reservations, producer, logger)

	groupID := fmt.Sprintf("test-wizard-%s", uuid.New().String()[:8])
	consumer := wizardEvents.NewSessionEventConsumer(brokers, groupID, service, logger)

	return &wizardStack{
		Service:  service,
		Consumer: consumer,
		Cleanup:  func() { _ = producer.Close() },
	}
}

// seedActiveDraft inserts an unfinished draft at the journey step.
func seedActiveDraft(t *testing.T, db *gorm.DB, draftID, userID uuid.UUID) {
	t.Helper()
	now := time.Now().UTC()
	model := repository.DraftModel{
		ID:        draftID,
		UserID:    userID,
		Step:      int(draftDomain.StepJourney),
		Currency:  "USD",
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, db.Create(&model).Error, "failed to seed draft")
}

// publishTestEvent publishes a CloudEvent to Kafka.
func publishTestEvent(t *testing.T, brokers []string, topic, source, eventType string, data interface{}) {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	producer := kafka.NewProducer(brokers, logger)
	defer func() { _ = producer.Close() }()

	ce, err := kafka.NewCloudEvent(source, eventType, data)
	require.NoError(t, err, "failed to create cloud event")

	err = producer.PublishEvent(context.Background(), topic, ce)
	require.NoError(t, err, "failed to publish event")
}

// waitForDraftGone polls the drafts table until the row disappears.
func waitForDraftGone(t *testing.T, db *gorm.DB, draftID uuid.UUID, timeout time.Duration) {
	t.Helper()
	require.Eventually(t, func() bool {
		var count int64
		if err := db.Model(&repository.DraftModel{}).Where("id = ?", draftID).Count(&count).Error; err != nil {
			return false
		}
		return count == 0
	}, timeout, 200*time.Millisecond, "draft %s was not removed", draftID)
}

// consumeOneEvent reads from a Kafka topic until it finds an event of the expected type.
func consumeOneEvent(t *testing.T, brokers []string, topic, expectedType string, timeout time.Duration) kafka.CloudEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	groupID := fmt.Sprintf("test-assert-%s", uuid.New().String()[:8])
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafkago.FirstOffset,
	})
	defer func() { _ = reader.Close() }()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				t.Fatalf("timed out waiting for event type %q on topic %q", expectedType, topic)
			}
			continue
		}
		ce, err := kafka.ParseCloudEvent(msg.Value)
		if err != nil {
			continue
		}
		if ce.Type == expectedType {
			return ce
		}
	}
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	err = controllerConn.CreateTopics(topicConfigs...)
	require.NoError(t, err, "failed to create Kafka topics")

	// Give Kafka a moment to propagate topic metadata.
	time.Sleep(1 * time.Second)
}
