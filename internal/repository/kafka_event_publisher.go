package repository

import (
	"context"
	"fmt"

	"github.com/NimaArnar/CryptoMarket-Dashboard/internal/domain/models"
	domrepo "github.com/NimaArnar/CryptoMarket-Dashboard/internal/domain/repository"
	applogger "github.com/NimaArnar/CryptoMarket-Dashboard/pkg/logger"
)

// messagePublisher is satisfied by *kafka.Producer.
type messagePublisher interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	Close() error
}

// KafkaEventPublisher implements EventPublisher for Kafka.
type KafkaEventPublisher struct {
	producer         messagePublisher
	topicCorrections string
	topicStatus      string
	l                *applogger.Logger
}

var _ domrepo.EventPublisher = (*KafkaEventPublisher)(nil)

// NewKafkaEventPublisher creates a Kafka publisher.
func NewKafkaEventPublisher(p messagePublisher, topicCorrections, topicStatus string, l *applogger.Logger) *KafkaEventPublisher {
	if l == nil {
		l = applogger.Nop()
	}
	return &KafkaEventPublisher{producer: p, topicCorrections: topicCorrections, topicStatus: topicStatus, l: l}
}

// PublishCorrection sends ev keyed by asset.
func (p *KafkaEventPublisher) PublishCorrection(ctx context.Context, ev models.CorrectionEvent) error {
	if err := p.producer.Publish(ctx, p.topicCorrections, []byte(ev.Asset), ev); err != nil {
		p.l.Error("kafka publish correction error",
			applogger.String("topic", p.topicCorrections),
			applogger.String("asset", ev.Asset),
			applogger.Error(err),
		)
		return fmt.Errorf("publish correction: %w", err)
	}
	return nil
}

// PublishSummary sends s keyed by run id.
func (p *KafkaEventPublisher) PublishSummary(ctx context.Context, s models.LoadSummary) error {
	if err := p.producer.Publish(ctx, p.topicStatus, []byte(s.RunID), s); err != nil {
		p.l.Error("kafka publish summary error",
			applogger.String("topic", p.topicStatus),
			applogger.String("run_id", s.RunID),
			applogger.Error(err),
		)
		return fmt.Errorf("publish summary: %w", err)
	}
	return nil
}

func (p *KafkaEventPublisher) Close() error { return p.producer.Close() }
