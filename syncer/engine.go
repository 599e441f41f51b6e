package syncer

import (
  "context"
  "fmt"
  "time"

  "github.com/rs/xid"
  "github.com/sirupsen/logrus"
  "github.com/tidwall/gjson"

  "hydra.local/social-aggregator/common"
  "hydra.local/social-aggregator/models"
)

type Adapter interface {
  Platform() string
  FetchPage(ctx context.Context, request *models.SyncRequest, cursor string) ([]gjson.Result, error)
  NativeID(raw gjson.Result) (string, bool)
  Decode(raw gjson.Result) (models.PlatformRecord, error)
}

type RecordStore interface {
  Exists(ctx context.Context, nativeID string) (bool, error)
  Persist(ctx context.Context, records []models.PlatformRecord) error
}

type RequestStore interface {
  Requests(ctx context.Context) ([]*models.SyncRequest, error)
  Save(ctx context.Context, request *models.SyncRequest) error
}

type RequestResult struct {
  RequestID string  `json:"request_id"`
  Skipped   string  `json:"skipped,omitempty"`
  Fetched   int     `json:"fetched"`
  Persisted int     `json:"persisted"`
  LastMaxID string  `json:"last_max_id,omitempty"`
  Duration  float64 `json:"duration"`
}

type Engine struct {
  Adapter     Adapter
  Records     RecordStore
  Requests    RequestStore
  AutoApprove bool
  Now         func() time.Time
  NewID       func() string
}

func (e *Engine) now() time.Time {
  if e.Now != nil {
    return e.Now()
  }
  return time.Now()
}

func (e *Engine) newID() string {
  if e.NewID != nil {
    return e.NewID()
  }
  return xid.New().String()
}

// SyncAll runs the configured requests in order and stops at the first failing one.
// Without a filter, requests still cooling down are skipped; a filter always runs its requests.
func (e *Engine) SyncAll(ctx context.Context, onlyRequestIDs []string) (results []*RequestResult, err error) {
  requests, err := e.Requests.Requests(ctx)
  if err != nil {
    return
  }
  filter := map[string]bool{}
  for _, id := range onlyRequestIDs {
    filter[id] = true
  }
  log := common.GetLogger().WithField("platform", e.Adapter.Platform())

  for _, request := range requests {
    if len(filter) > 0 && !filter[request.ID] {
      continue
    }
    if len(filter) == 0 && request.IsCoolingDown(e.now()) {
      results = append(results, &RequestResult{RequestID: request.ID, Skipped: "cooling down"})
      continue
    }
    if request.MappedEntity != e.Adapter.Platform() {
      log.WithField("request_id", request.ID).Debugln("unknown mapped entity", request.MappedEntity)
      results = append(results, &RequestResult{RequestID: request.ID, Skipped: "unknown mapped entity"})
      continue
    }

    result, err := e.sync(ctx, request, log.WithField("request_id", request.ID))
    results = append(results, result)
    if err != nil {
      return results, err
    }
  }
  return
}

func (e *Engine) sync(ctx context.Context, request *models.SyncRequest, log *logrus.Entry) (*RequestResult, error) {
  start := e.now()
  result := &RequestResult{RequestID: request.ID}

  cursor, _ := request.Cursor()
  page, err := e.Adapter.FetchPage(ctx, request, cursor)
  if err != nil {
    return result, e.fail(ctx, request, err, log)
  }
  result.Fetched = len(page)

  lastMaxID := request.LastMaxID
  var staged []models.PlatformRecord
  seen := map[string]bool{}
  for _, raw := range page {
    nativeID, ok := e.Adapter.NativeID(raw)
    if !ok {
      return result, e.fail(ctx, request, &common.MalformedResponseError{
        Platform: e.Adapter.Platform(),
        Reason:   "record without native id",
        Body:     raw.Raw,
      }, log)
    }
    if seen[nativeID] {
      continue
    }
    seen[nativeID] = true

    exists, err := e.Records.Exists(ctx, nativeID)
    if err != nil {
      return result, e.fail(ctx, request, err, log)
    }
    if exists {
      continue
    }
    record, err := e.Adapter.Decode(raw)
    if err != nil {
      return result, e.fail(ctx, request, err, log)
    }
    record.SetIdentity(e.newID(), request.ID, raw.Raw)
    record.SetApproved(e.AutoApprove)
    staged = append(staged, record)
    lastMaxID = MaxID(lastMaxID, nativeID)
  }

  if err := e.Records.Persist(ctx, staged); err != nil {
    return result, e.fail(ctx, request, err, log)
  }
  result.Persisted = len(staged)

  request.LastExecutionDuration = e.now().Sub(start).Seconds()
  request.LastMaxID = lastMaxID
  request.LastExecutionTime = e.now().Unix()
  result.LastMaxID = lastMaxID
  result.Duration = request.LastExecutionDuration
  if err := e.Requests.Save(ctx, request); err != nil {
    return result, err
  }
  log.WithFields(logrus.Fields{
    "fetched":   result.Fetched,
    "persisted": result.Persisted,
  }).Infoln("request synced")
  return result, nil
}

// fail records the failure sentinel; the cursor keeps the value of the last persisted batch.
func (e *Engine) fail(ctx context.Context, request *models.SyncRequest, cause error, log *logrus.Entry) error {
  request.LastExecutionDuration = models.FAILED_EXECUTION_DURATION
  if err := e.Requests.Save(ctx, request); err != nil {
    log.Errorln("request bookkeeping not saved", err)
  }
  log.Warnln("request failed", cause)
  return fmt.Errorf("sync request %v: %w", request.ID, cause)
}
