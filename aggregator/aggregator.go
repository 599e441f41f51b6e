package aggregator

import (
  "context"
  "time"

  "github.com/rs/xid"
  "github.com/sirupsen/logrus"

  "hydra.local/social-aggregator/common"
  "hydra.local/social-aggregator/config"
  "hydra.local/social-aggregator/models"
  "hydra.local/social-aggregator/syncer"
)

const syncLockTTL = 30 * time.Minute

type HarvestedService interface {
  OriginalFinder
  SyncDatabase(ctx context.Context, requestIDs []string) ([]*syncer.RequestResult, error)
  GetFeed(ctx context.Context, query *models.FeedQuery) ([]models.PlatformRecord, error)
}

type UnifiedStore interface {
  Find(ctx context.Context, id string) (*models.UnifiedEntity, error)
  GetByKey(ctx context.Context, key models.UnifiedKey) (*models.UnifiedEntity, error)
  ForeignKeys(ctx context.Context, entityType string) (map[string]bool, error)
  CreateInBatch(ctx context.Context, entities []*models.UnifiedEntity) error
  Feed(ctx context.Context, onlyApproved bool, limit int) ([]*models.UnifiedEntity, error)
  UpdateApproved(ctx context.Context, entity *models.UnifiedEntity, approved bool) error
  SaveApproval(ctx context.Context, entity *models.UnifiedEntity, original models.PlatformRecord, approved bool) error
}

type ServiceResult struct {
  Service  string                 `json:"service"`
  Requests []*syncer.RequestResult `json:"requests,omitempty"`
  Unified  int                    `json:"unified"`
}

type Aggregator struct {
  // harvest order
  Services    []string
  Harvested   map[string]HarvestedService
  Unified     UnifiedStore
  Converter   *Converter
  AutoApprove bool
  Locker      common.Locker
  NewID       func() string
}

func NewAggregator(unified UnifiedStore, autoApprove bool) *Aggregator {
  return &Aggregator{
    Harvested:   map[string]HarvestedService{},
    Unified:     unified,
    Converter:   NewConverter(),
    AutoApprove: autoApprove,
  }
}

// Harvest registers a platform service both as a feed source and as the resolver of its originals.
func (a *Aggregator) Harvest(platform string, service HarvestedService) {
  if _, ok := a.Harvested[platform]; !ok {
    a.Services = append(a.Services, platform)
  }
  a.Harvested[platform] = service
  a.Converter.Originals[platform] = service
}

func (a *Aggregator) newID() string {
  if a.NewID != nil {
    return a.NewID()
  }
  return xid.New().String()
}

// SyncDatabase syncs every harvested service, unless unifyOnly, and unifies its full feed.
// Each service is committed as its own batch; the first error stops the run.
func (a *Aggregator) SyncDatabase(ctx context.Context, requestIDs []string, unifyOnly bool) (results []*ServiceResult, err error) {
  if a.Locker != nil {
    release, ok := a.Locker.Acquire(ctx, config.LOCKS_SYNC_AGGREGATOR, syncLockTTL)
    if !ok {
      return nil, common.ErrSyncLocked
    }
    defer release()
  }

  for _, name := range a.Services {
    service := a.Harvested[name]
    result := &ServiceResult{Service: name}
    results = append(results, result)

    if !unifyOnly {
      result.Requests, err = service.SyncDatabase(ctx, requestIDs)
      if err != nil {
        return
      }
    }
    result.Unified, err = a.unify(ctx, name, service)
    if err != nil {
      return
    }
  }
  return
}

func (a *Aggregator) unify(ctx context.Context, name string, service HarvestedService) (int, error) {
  records, err := service.GetFeed(ctx, &models.FeedQuery{OnlyApproved: false})
  if err != nil {
    return 0, err
  }
  known, err := a.Unified.ForeignKeys(ctx, name)
  if err != nil {
    return 0, err
  }

  var entities []*models.UnifiedEntity
  for _, record := range records {
    if known[record.GetNativeID()] {
      continue
    }
    known[record.GetNativeID()] = true
    entity := a.Converter.ToUnified(record)
    entity.ID = a.newID()
    entity.Approved = a.AutoApprove
    entities = append(entities, entity)
  }
  if err := a.Unified.CreateInBatch(ctx, entities); err != nil {
    return 0, err
  }
  common.GetLogger().WithFields(logrus.Fields{
    "service": name,
    "unified": len(entities),
  }).Infoln("service unified")
  return len(entities), nil
}

// SetApproved writes the flag to the entity and its original together.
func (a *Aggregator) SetApproved(ctx context.Context, unifiedID string, approved bool) (bool, error) {
  entity, err := a.Unified.Find(ctx, unifiedID)
  if err != nil {
    return false, err
  }
  original, err := a.Converter.ToOriginal(ctx, entity)
  if err != nil {
    return false, err
  }
  if err := a.Unified.SaveApproval(ctx, entity, original, approved); err != nil {
    return false, err
  }
  return approved, nil
}

func (a *Aggregator) Feed(ctx context.Context, onlyApproved bool, limit int) ([]*models.UnifiedEntity, error) {
  return a.Unified.Feed(ctx, onlyApproved, limit)
}
