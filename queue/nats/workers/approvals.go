package workers

import (
  "context"
  "encoding/json"
  "fmt"
  "time"

  "github.com/nats-io/nats.go"

  "hydra.local/social-aggregator/common"
  "hydra.local/social-aggregator/config"
  "hydra.local/social-aggregator/models"
  "hydra.local/social-aggregator/syncer"
)

const (
  lockTTL   = 5 * time.Second
  lockRetry = 100 * time.Millisecond
)

type Approvals struct {
  NatsContext *common.NatsContext
  Locker      common.Locker
  Mirror      syncer.EventSink
  // how long a held record lock is waited for, lockTTL when zero
  Wait time.Duration
}

func NewApprovals(natsContext *common.NatsContext, mirror syncer.EventSink) *Approvals {
  return &Approvals{
    NatsContext: natsContext,
    Locker: &common.RedisLocker{
      Rdb: natsContext.Rdb,
    },
    Mirror: mirror,
  }
}

func (h *Approvals) Subscribe() error {
  _, err := h.NatsContext.Conn.QueueSubscribe(config.NATS_APPROVAL_CHANGED, config.NATS_APPROVAL_GROUP, h.Apply)
  return err
}

func (h *Approvals) Apply(m *nats.Msg) {
  h.Handle(h.NatsContext.Ctx, m.Data)
}

// Handle mirrors one approval change; changes of the same record are applied one at a time.
func (h *Approvals) Handle(ctx context.Context, data []byte) {
  var event *models.ApprovalChanged
  if err := json.Unmarshal(data, &event); err != nil || event == nil {
    common.GetLogger().Warnln("approval event unreadable", string(data))
    return
  }

  release, ok := h.acquire(ctx, fmt.Sprintf(config.LOCKS_APPROVAL_MIRROR, event.Platform, event.NativeID))
  if !ok {
    common.GetLogger().WithField("native_id", event.NativeID).Errorln("approval event dropped, record still locked")
    return
  }
  defer release()

  if err := h.Mirror.ApprovalChanged(ctx, event); err != nil {
    common.GetLogger().WithField("native_id", event.NativeID).Errorln("approval not mirrored", err)
  }
}

func (h *Approvals) acquire(ctx context.Context, key string) (release func(), ok bool) {
  wait := h.Wait
  if wait == 0 {
    wait = lockTTL
  }
  deadline := time.Now().Add(wait)
  for {
    release, ok = h.Locker.Acquire(ctx, key, lockTTL)
    if ok || time.Now().After(deadline) {
      return
    }
    select {
    case <-ctx.Done():
      return
    case <-time.After(lockRetry):
    }
  }
}
