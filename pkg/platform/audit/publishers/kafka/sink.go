// Package kafka fans audit events out to a Kafka/Redpanda topic for
// downstream compliance consumers. Optional; wired only when brokers are
// configured.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"

	"skillaudit/pkg/platform/audit"
)

type Sink struct {
	client *kgo.Client
	topic  string
}

// New connects a producer to the given brokers. The event key is the
// report id so per-report ordering is preserved within a partition.
func New(brokers []string, topic string) (*Sink, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}
	return &Sink{client: client, topic: topic}, nil
}

type wireEvent struct {
	Category      string `json:"category"`
	Action        string `json:"action"`
	Timestamp     string `json:"timestamp"`
	ActorID       string `json:"actor_id,omitempty"`
	ReportID      string `json:"report_id,omitempty"`
	CenterCode    string `json:"center_code,omitempty"`
	FinancialYear string `json:"financial_year,omitempty"`
	Detail        string `json:"detail,omitempty"`
	RequestID     string `json:"request_id,omitempty"`
}

func (s *Sink) Deliver(ctx context.Context, e audit.Event) error {
	we := wireEvent{
		Category:      string(e.Category),
		Action:        string(e.Action),
		Timestamp:     e.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		CenterCode:    e.CenterCode,
		FinancialYear: e.FinancialYear,
		Detail:        e.Detail,
		RequestID:     e.RequestID,
	}
	if !e.ActorID.IsZero() {
		we.ActorID = e.ActorID.String()
	}
	if !e.ReportID.IsZero() {
		we.ReportID = e.ReportID.String()
	}

	payload, err := json.Marshal(we)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	record := &kgo.Record{
		Key:   []byte(we.ReportID),
		Value: payload,
	}
	// Synchronous produce: the worker already runs off the request path,
	// so delivery latency is acceptable in exchange for a real error.
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

func (s *Sink) Close() {
	s.client.Close()
}
