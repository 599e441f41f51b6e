package syncer

import (
  "context"
  "encoding/json"

  "hydra.local/social-aggregator/config"
  "hydra.local/social-aggregator/models"
)

type EventSink interface {
  ApprovalChanged(ctx context.Context, event *models.ApprovalChanged) error
}

type Publisher interface {
  Publish(subject string, data []byte) error
}

// NatsSink publishes approval changes for the nats workers to mirror.
type NatsSink struct {
  Conn Publisher
}

func (s *NatsSink) ApprovalChanged(ctx context.Context, event *models.ApprovalChanged) error {
  data, err := json.Marshal(event)
  if err != nil {
    return err
  }
  return s.Conn.Publish(config.NATS_APPROVAL_CHANGED, data)
}
