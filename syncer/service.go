package syncer

import (
  "context"
  "fmt"
  "time"

  "hydra.local/social-aggregator/common"
  "hydra.local/social-aggregator/config"
  "hydra.local/social-aggregator/credentials"
  "hydra.local/social-aggregator/models"
  "hydra.local/social-aggregator/repositories/platforms"
)

const syncLockTTL = 10 * time.Minute

type RequestCatalog interface {
  RequestStore
  Find(ctx context.Context, id string) (*models.SyncRequest, error)
}

type FeedStore interface {
  RecordStore
  Feed(ctx context.Context, onlyApproved bool, limit int, requestID string, orderField string) ([]models.PlatformRecord, error)
  Find(ctx context.Context, id string) (models.PlatformRecord, error)
  GetByNativeID(ctx context.Context, nativeID string) (models.PlatformRecord, error)
  UpdateApproved(ctx context.Context, record models.PlatformRecord, approved bool) error
}

type CredentialSource interface {
  Client(ctx context.Context) (platforms.Client, error)
  AutoApprove() bool
  IsCredentialValid(ctx context.Context) bool
  Authorize(ctx context.Context, callbackUrl string) (*platforms.AuthorizationParameters, error)
  CompleteAuthorization(ctx context.Context, session *platforms.AuthorizationParameters, params *platforms.CallbackParams) (*platforms.Token, error)
  Status() *credentials.Status
}

// PlatformService is the per-platform surface used by the aggregator, cli and api.
type PlatformService struct {
  Platform    string
  Records     FeedStore
  Requests    RequestCatalog
  Credentials CredentialSource
  Locker      common.Locker
  Events      EventSink
  Now         func() time.Time
}

func (s *PlatformService) SyncDatabase(ctx context.Context, requestIDs []string) ([]*RequestResult, error) {
  if s.Locker != nil {
    release, ok := s.Locker.Acquire(ctx, fmt.Sprintf(config.LOCKS_SYNC_PLATFORM, s.Platform), syncLockTTL)
    if !ok {
      return nil, common.ErrSyncLocked
    }
    defer release()
  }
  for _, id := range requestIDs {
    if _, err := s.Requests.Find(ctx, id); err != nil {
      return nil, err
    }
  }
  client, err := s.Credentials.Client(ctx)
  if err != nil {
    return nil, err
  }
  engine := &Engine{
    Adapter:     client,
    Records:     s.Records,
    Requests:    s.Requests,
    AutoApprove: s.Credentials.AutoApprove(),
    Now:         s.Now,
  }
  return engine.SyncAll(ctx, requestIDs)
}

// GetFeed orders by publish time unless request ids select per-request ordering and limits.
func (s *PlatformService) GetFeed(ctx context.Context, query *models.FeedQuery) ([]models.PlatformRecord, error) {
  if len(query.RequestIDs) == 0 {
    return s.Records.Feed(ctx, query.OnlyApproved, query.Limit, "", "")
  }
  var feed []models.PlatformRecord
  for _, id := range query.RequestIDs {
    request, err := s.Requests.Find(ctx, id)
    if err != nil {
      return nil, err
    }
    records, err := s.Records.Feed(ctx, query.OnlyApproved, query.Limit, request.ID, request.OrderField)
    if err != nil {
      return nil, err
    }
    feed = append(feed, records...)
  }
  return feed, nil
}

func (s *PlatformService) SetApproved(ctx context.Context, id string, approved bool, requestID string) (bool, error) {
  if requestID != "" {
    if _, err := s.Requests.Find(ctx, requestID); err != nil {
      return false, err
    }
  }
  record, err := s.Records.Find(ctx, id)
  if err != nil {
    return false, err
  }
  if requestID != "" && record.GetRequestID() != requestID {
    return false, &common.NotFoundError{
      Entity: fmt.Sprintf("%v record", s.Platform),
      Key:    fmt.Sprintf("%v in request %v", id, requestID),
    }
  }
  if err := s.Records.UpdateApproved(ctx, record, approved); err != nil {
    return false, err
  }
  if s.Events != nil {
    event := &models.ApprovalChanged{
      Platform: s.Platform,
      ID:       record.GetID(),
      NativeID: record.GetNativeID(),
      Approved: approved,
    }
    if err := s.Events.ApprovalChanged(ctx, event); err != nil {
      common.GetLogger().WithField("platform", s.Platform).Errorln("approval event not delivered", err)
    }
  }
  return approved, nil
}

func (s *PlatformService) IsCredentialValid(ctx context.Context) bool {
  return s.Credentials.IsCredentialValid(ctx)
}

func (s *PlatformService) GetAuthorizationParameters(ctx context.Context, callbackUrl string) (*platforms.AuthorizationParameters, error) {
  return s.Credentials.Authorize(ctx, callbackUrl)
}

func (s *PlatformService) GetAccessToken(
  ctx context.Context,
  session *platforms.AuthorizationParameters,
  params *platforms.CallbackParams,
) (*platforms.Token, error) {
  return s.Credentials.CompleteAuthorization(ctx, session, params)
}

func (s *PlatformService) CredentialStatus() *credentials.Status {
  return s.Credentials.Status()
}

// Original resolves a stored record by native id for the aggregator.
func (s *PlatformService) Original(ctx context.Context, nativeID string) (models.PlatformRecord, error) {
  return s.Records.GetByNativeID(ctx, nativeID)
}
