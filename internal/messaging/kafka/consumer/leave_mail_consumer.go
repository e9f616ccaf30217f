package consumer

import (
	"context"
	"encoding/json"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/TaiVuViet-153/HR-Portal/internal/events"
	"github.com/TaiVuViet-153/HR-Portal/internal/notification"
)

// ConsumeLeaveRequestEvents turns leave request events into emails to
// the requesting user. Undecodable messages and events without a
// recipient are committed and dropped; send failures leave the offset
// uncommitted so the broker redelivers.
func ConsumeLeaveRequestEvents(
	ctx context.Context,
	reader *kafkago.Reader,
	sender notification.Sender,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.leave_request")
	log.Info("leave request consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("leave request consumer stopped")
				return
			}
			log.Error("fetch leave request message failed", zap.Error(err))
			continue
		}

		var event events.LeaveRequestEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode leave request event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if event.Email == "" {
			log.Warn("leave request event has no recipient, skipping",
				zap.Int("request_id", event.RequestID),
				zap.String("event_type", event.EventType),
			)
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		subject, body, err := notification.RenderLeaveMail(event)
		if err != nil {
			log.Error("render leave request mail failed",
				zap.Int("request_id", event.RequestID),
				zap.String("event_type", event.EventType),
				zap.Error(err),
			)
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		err = sender.Send(ctx, notification.EmailMessage{
			To:       []string{event.Email},
			Subject:  subject,
			HTMLBody: body,
		})
		if err != nil {
			log.Error("send leave request mail failed",
				zap.Int("request_id", event.RequestID),
				zap.String("event_type", event.EventType),
				zap.String("recipient", event.Email),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit leave request message failed", zap.Error(err))
			continue
		}

		log.Info("leave request mail sent",
			zap.Int("request_id", event.RequestID),
			zap.String("event_type", event.EventType),
			zap.String("recipient", event.Email),
		)
	}
}
