package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"

	"catalog-quality-service/internal/models"
)

const (
	SubjectProductNormalized = "catalog.product.normalized"
	SubjectImportCompleted   = "catalog.import.completed"
)

// ProductNormalizedEvent is emitted after a normalized record is
// persisted (or re-persisted under the same content hash).
type ProductNormalizedEvent struct {
	EventID           string `json:"eventId"`
	EventType         string `json:"eventType"`
	TenantID          string `json:"tenantId"`
	RecordID          string `json:"recordId"`
	ContentHash       string `json:"contentHash"`
	Title             string `json:"title"`
	Status            string `json:"status"`
	CompletenessScore int    `json:"completenessScore"`
	SeoScore          *int   `json:"seoScore,omitempty"`
	Timestamp         string `json:"timestamp"`
}

// ImportCompletedEvent is emitted once per import run with batch stats.
type ImportCompletedEvent struct {
	EventID      string `json:"eventId"`
	EventType    string `json:"eventType"`
	TenantID     string `json:"tenantId"`
	TotalRows    int    `json:"totalRows"`
	Normalized   int    `json:"normalized"`
	Failed       int    `json:"failed"`
	Duplicates   int    `json:"duplicates"`
	Persisted    int    `json:"persisted"`
	ValidateOnly bool   `json:"validateOnly"`
	ProcessingMs int64  `json:"processingMs"`
	Timestamp    string `json:"timestamp"`
}

// Publisher sends catalog quality events over NATS. A nil Publisher is
// valid and drops every publish, so callers never need to branch on
// whether events are enabled.
type Publisher struct {
	conn   *nats.Conn
	logger *logrus.Entry
}

// NewPublisher connects to NATS. Returns nil (no error) when natsURL
// is empty, which disables events.
func NewPublisher(natsURL string, logger *logrus.Logger) (*Publisher, error) {
	if natsURL == "" {
		return nil, nil
	}

	conn, err := nats.Connect(natsURL,
		nats.Name("catalog-quality-service"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &Publisher{
		conn:   conn,
		logger: logger.WithField("component", "quality-events"),
	}, nil
}

// Close drains the NATS connection.
func (p *Publisher) Close() {
	if p == nil || p.conn == nil {
		return
	}
	if err := p.conn.Drain(); err != nil {
		p.logger.WithError(err).Warn("Failed to drain NATS connection")
	}
}

// PublishProductNormalized publishes a catalog.product.normalized event
func (p *Publisher) PublishProductNormalized(tenantID string, record *models.ProductRecord) {
	if p == nil {
		return
	}
	event := ProductNormalizedEvent{
		EventID:           uuid.New().String(),
		EventType:         SubjectProductNormalized,
		TenantID:          tenantID,
		RecordID:          record.ID.String(),
		ContentHash:       record.ContentHash,
		Title:             record.Title,
		Status:            string(record.Status),
		CompletenessScore: record.CompletenessScore,
		SeoScore:          record.SeoScore,
		Timestamp:         time.Now().UTC().Format(time.RFC3339),
	}
	p.publish(SubjectProductNormalized, event, logrus.Fields{
		"tenantID":    tenantID,
		"recordID":    event.RecordID,
		"contentHash": event.ContentHash,
	})
}

// PublishImportCompleted publishes a catalog.import.completed event
func (p *Publisher) PublishImportCompleted(tenantID string, report *models.ImportReport) {
	if p == nil {
		return
	}
	event := ImportCompletedEvent{
		EventID:      uuid.New().String(),
		EventType:    SubjectImportCompleted,
		TenantID:     tenantID,
		TotalRows:    report.TotalRows,
		Normalized:   report.NormalizedCount,
		Failed:       report.FailedCount,
		Duplicates:   report.DuplicateCount,
		Persisted:    report.PersistedCount,
		ValidateOnly: report.ValidateOnly,
		ProcessingMs: report.ProcessingMs,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
	}
	p.publish(SubjectImportCompleted, event, logrus.Fields{
		"tenantID":  tenantID,
		"totalRows": report.TotalRows,
		"persisted": report.PersistedCount,
	})
}

// publish marshals and sends asynchronously to not block request flow.
func (p *Publisher) publish(subject string, event interface{}, fields logrus.Fields) {
	go func() {
		payload, err := json.Marshal(event)
		if err != nil {
			p.logger.WithFields(fields).WithError(err).Error("Failed to marshal event")
			return
		}
		if err := p.conn.Publish(subject, payload); err != nil {
			p.logger.WithFields(fields).WithField("subject", subject).WithError(err).Error("Failed to publish event")
			return
		}
		p.logger.WithFields(fields).WithField("subject", subject).Info("Event published successfully")
	}()
}
