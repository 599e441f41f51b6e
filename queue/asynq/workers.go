package asynq

import (
  "hydra.local/social-aggregator/app"
  "hydra.local/social-aggregator/common"
  "hydra.local/social-aggregator/queue/asynq/workers"
)

type Workers struct {
  AnsqContext *common.AnsqServerContext
  Hydra       *app.App
}

func NewWorkers(ansqContext *common.AnsqServerContext, hydra *app.App) *Workers {
  return &Workers{
    AnsqContext: ansqContext,
    Hydra:       hydra,
  }
}

func (h *Workers) Register() error {
  workers.NewSync(h.AnsqContext, h.Hydra).Register()
  return nil
}
