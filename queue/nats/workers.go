package nats

import (
  "hydra.local/social-aggregator/app"
  "hydra.local/social-aggregator/common"
  "hydra.local/social-aggregator/queue/nats/workers"
)

type Workers struct {
  NatsContext *common.NatsContext
  Hydra       *app.App
}

func NewWorkers(natsContext *common.NatsContext, hydra *app.App) *Workers {
  return &Workers{
    NatsContext: natsContext,
    Hydra:       hydra,
  }
}

func (h *Workers) Subscribe() error {
  return workers.NewApprovals(h.NatsContext, h.Hydra.Mirror).Subscribe()
}
