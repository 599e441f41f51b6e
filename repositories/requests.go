package repositories

import (
  "context"
  "errors"

  "gorm.io/gorm"

  "hydra.local/social-aggregator/common"
  "hydra.local/social-aggregator/models"
)

type RequestsRepository struct {
  Db       *gorm.DB
  Platform string
}

func (r *RequestsRepository) Requests(ctx context.Context) (requests []*models.SyncRequest, err error) {
  err = r.Db.WithContext(ctx).
    Where("platform = ?", r.Platform).
    Order("created_at asc").
    Find(&requests).Error
  return
}

func (r *RequestsRepository) Find(ctx context.Context, id string) (request *models.SyncRequest, err error) {
  err = r.Db.WithContext(ctx).Where("platform = ? AND id = ?", r.Platform, id).Take(&request).Error
  if errors.Is(err, gorm.ErrRecordNotFound) {
    err = &common.NotFoundError{Entity: "sync request", Key: id}
  }
  return
}

func (r *RequestsRepository) Save(ctx context.Context, request *models.SyncRequest) error {
  return r.Db.WithContext(ctx).Model(request).Updates(map[string]interface{}{
    "last_execution_time":     request.LastExecutionTime,
    "last_execution_duration": request.LastExecutionDuration,
    "last_max_id":             request.LastMaxID,
  }).Error
}

// Apply creates the request or replaces its definition, keeping bookkeeping intact.
func (r *RequestsRepository) Apply(ctx context.Context, request *models.SyncRequest) (err error) {
  request.Platform = r.Platform
  if request.Params == nil {
    request.Params = map[string]interface{}{}
  }
  var current models.SyncRequest
  result := r.Db.WithContext(ctx).Where("id = ?", request.ID).Take(&current)
  if errors.Is(result.Error, gorm.ErrRecordNotFound) {
    err = r.Db.WithContext(ctx).Create(request).Error
    return
  }
  if result.Error != nil {
    err = result.Error
    return
  }
  err = r.Db.WithContext(ctx).Model(&current).Updates(map[string]interface{}{
    "url":               request.Url,
    "params":            request.Params,
    "mapped_entity":     request.MappedEntity,
    "refresh_life_time": request.RefreshLifeTime,
    "order_field":       request.OrderField,
    "use_since_id":      request.UseSinceID,
  }).Error
  return
}

func (r *RequestsRepository) Delete(ctx context.Context, id string) error {
  result := r.Db.WithContext(ctx).Where("platform = ?", r.Platform).Delete(&models.SyncRequest{ID: id})
  if result.Error != nil {
    return result.Error
  }
  if result.RowsAffected == 0 {
    return &common.NotFoundError{Entity: "sync request", Key: id}
  }
  return nil
}
