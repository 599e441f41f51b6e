package workers

import (
  "context"
  "encoding/json"
  "errors"

  "github.com/hibiken/asynq"
  "github.com/sirupsen/logrus"

  "hydra.local/social-aggregator/app"
  "hydra.local/social-aggregator/common"
  "hydra.local/social-aggregator/config"
  "hydra.local/social-aggregator/queue/asynq/jobs"
)

type Sync struct {
  AnsqContext *common.AnsqServerContext
  Hydra       *app.App
}

func NewSync(ansqContext *common.AnsqServerContext, hydra *app.App) *Sync {
  return &Sync{
    AnsqContext: ansqContext,
    Hydra:       hydra,
  }
}

func (h *Sync) Platform(ctx context.Context, t *asynq.Task) error {
  var payload jobs.PlatformPayload
  if err := json.Unmarshal(t.Payload(), &payload); err != nil {
    return err
  }
  log := common.GetLogger().WithField("platform", payload.Platform)

  service, err := h.Hydra.Service(payload.Platform)
  if err != nil {
    log.Warnln("sync job dropped", err)
    return nil
  }
  results, err := service.SyncDatabase(ctx, payload.RequestIDs)
  if errors.Is(err, common.ErrSyncLocked) {
    log.Infoln("sync already running")
    return nil
  }
  if err != nil {
    return err
  }
  log.WithField("requests", len(results)).Infoln("sync job finished")
  return nil
}

func (h *Sync) Aggregator(ctx context.Context, t *asynq.Task) error {
  var payload jobs.AggregatorPayload
  if err := json.Unmarshal(t.Payload(), &payload); err != nil {
    return err
  }

  results, err := h.Hydra.Aggregator.SyncDatabase(ctx, payload.RequestIDs, payload.UnifyOnly)
  if errors.Is(err, common.ErrSyncLocked) {
    common.GetLogger().Infoln("aggregator sync already running")
    return nil
  }
  if err != nil {
    return err
  }
  for _, result := range results {
    common.GetLogger().WithFields(logrus.Fields{
      "service": result.Service,
      "unified": result.Unified,
    }).Infoln("aggregator sync job finished")
  }
  return nil
}

func (h *Sync) Register() error {
  h.AnsqContext.Mux.HandleFunc(config.ASYNQ_JOBS_SYNC_PLATFORM, h.Platform)
  h.AnsqContext.Mux.HandleFunc(config.ASYNQ_JOBS_SYNC_AGGREGATOR, h.Aggregator)
  return nil
}
