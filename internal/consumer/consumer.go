package consumer

import (
	"context"
	"encoding/json"

	"github.com/IBM/sarama"

	"github.com/tableguild/tableguild/config"
	"github.com/tableguild/tableguild/internal/model"
	"github.com/tableguild/tableguild/internal/service"
	"github.com/tableguild/tableguild/middleware/log"
	"go.uber.org/zap"
)

// BroadcastConsumer persists broadcast events from the broker and fans
// them out over the websocket hub.
type BroadcastConsumer struct {
	broadcastService service.IBroadcastService
	logger           *log.Logger
}

func NewBroadcastConsumer(broadcastService service.IBroadcastService, logger *log.Logger) *BroadcastConsumer {
	return &BroadcastConsumer{
		broadcastService: broadcastService,
		logger:           logger,
	}
}

// Setup is run at the beginning of a new session, before ConsumeClaim.
func (c *BroadcastConsumer) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

// Cleanup is run at the end of a session, once all ConsumeClaim goroutines
// have exited.
func (c *BroadcastConsumer) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

// ConsumeClaim processes broadcast events from one partition.
func (c *BroadcastConsumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		var broadcast model.Broadcast
		if err := json.Unmarshal(message.Value, &broadcast); err != nil {
			c.logger.WarnContext(session.Context(), "discarding malformed broadcast event",
				zap.String("topic", message.Topic), zap.Error(err))
			session.MarkMessage(message, "")
			continue
		}

		if err := c.broadcastService.StoreAndDeliver(session.Context(), &broadcast); err != nil {
			c.logger.ErrorContext(session.Context(), "failed to store broadcast event",
				zap.String("broadcast_id", broadcast.ID), zap.Error(err))
			// Mark anyway so a poison event cannot wedge the partition.
			session.MarkMessage(message, "")
			continue
		}

		session.MarkMessage(message, "")
	}
	return nil
}

// Start joins the consumer group and consumes until the context ends.
func Start(ctx context.Context, cfg *config.KafkaConfig, consumer *BroadcastConsumer, logger *log.Logger) error {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Consumer.Group.Rebalance.Strategy = sarama.NewBalanceStrategyRoundRobin()
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest

	client, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.GroupID, saramaConfig)
	if err != nil {
		return err
	}

	go func() {
		defer client.Close()
		for {
			if err := client.Consume(ctx, []string{cfg.Topic}, consumer); err != nil {
				logger.ErrorContext(ctx, "consumer group error", zap.Error(err))
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()
	return nil
}
