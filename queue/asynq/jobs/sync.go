package jobs

import (
  "encoding/json"

  "github.com/hibiken/asynq"

  "hydra.local/social-aggregator/config"
)

type PlatformPayload struct {
  Platform   string   `json:"platform"`
  RequestIDs []string `json:"request_ids,omitempty"`
}

type AggregatorPayload struct {
  RequestIDs []string `json:"request_ids,omitempty"`
  UnifyOnly  bool     `json:"unify_only"`
}

type Sync struct{}

func (h *Sync) Platform(platform string, requestIDs []string) (*asynq.Task, error) {
  payload, err := json.Marshal(PlatformPayload{platform, requestIDs})
  if err != nil {
    return nil, err
  }
  return asynq.NewTask(config.ASYNQ_JOBS_SYNC_PLATFORM, payload), nil
}

func (h *Sync) Aggregator(requestIDs []string, unifyOnly bool) (*asynq.Task, error) {
  payload, err := json.Marshal(AggregatorPayload{requestIDs, unifyOnly})
  if err != nil {
    return nil, err
  }
  return asynq.NewTask(config.ASYNQ_JOBS_SYNC_AGGREGATOR, payload), nil
}
