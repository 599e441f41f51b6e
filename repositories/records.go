package repositories

import (
  "context"
  "errors"
  "fmt"

  "gorm.io/gorm"

  "hydra.local/social-aggregator/common"
  "hydra.local/social-aggregator/models"
)

var orderColumns = map[string]string{
  "":             "published_at",
  "published_at": "published_at",
  "publishedAt":  "published_at",
  "createdAt":    "published_at",
  "created_at":   "published_at",
  "createdTime":  "published_at",
  "native_id":    "native_id",
  "idStr":        "native_id",
  "id_str":       "native_id",
  "updated_at":   "updated_at",
}

func OrderColumn(field string) string {
  if column, ok := orderColumns[field]; ok {
    return column
  }
  return "published_at"
}

type RecordsRepository struct {
  Db       *gorm.DB
  Platform string
}

func (r *RecordsRepository) model() models.PlatformRecord {
  return models.NewRecord(r.Platform)
}

func (r *RecordsRepository) Exists(ctx context.Context, nativeID string) (bool, error) {
  var total int64
  err := r.Db.WithContext(ctx).Model(r.model()).Where("native_id = ?", nativeID).Count(&total).Error
  return total > 0, err
}

// Persist writes the batch in one transaction.
func (r *RecordsRepository) Persist(ctx context.Context, records []models.PlatformRecord) error {
  if len(records) == 0 {
    return nil
  }
  return r.Db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    for _, record := range records {
      if record.Platform() != r.Platform {
        return errors.New(fmt.Sprintf("%v record in %v store", record.Platform(), r.Platform))
      }
      if err := tx.Create(record).Error; err != nil {
        return err
      }
    }
    return nil
  })
}

func (r *RecordsRepository) Feed(
  ctx context.Context,
  onlyApproved bool,
  limit int,
  requestID string,
  orderField string,
) ([]models.PlatformRecord, error) {
  query := r.Db.WithContext(ctx).Model(r.model())
  if onlyApproved {
    query = query.Where("approved = ?", true)
  }
  if requestID != "" {
    query = query.Where("request_id = ?", requestID)
  }
  query = query.Order(fmt.Sprintf("%v DESC", OrderColumn(orderField)))
  if limit > 0 {
    query = query.Limit(limit)
  }
  return r.collect(query)
}

func (r *RecordsRepository) Find(ctx context.Context, id string) (models.PlatformRecord, error) {
  return r.take(r.Db.WithContext(ctx).Where("id = ?", id), id)
}

func (r *RecordsRepository) GetByNativeID(ctx context.Context, nativeID string) (models.PlatformRecord, error) {
  return r.take(r.Db.WithContext(ctx).Where("native_id = ?", nativeID), nativeID)
}

func (r *RecordsRepository) UpdateApproved(ctx context.Context, record models.PlatformRecord, approved bool) error {
  err := r.Db.WithContext(ctx).Model(stored(record)).Update("approved", approved).Error
  if err == nil {
    record.SetApproved(approved)
  }
  return err
}

// stored addresses a record by primary key only, so updates leave the caller's copy untouched until they succeed.
func stored(record models.PlatformRecord) models.PlatformRecord {
  key := models.NewRecord(record.Platform())
  key.SetIdentity(record.GetID(), "", "")
  return key
}

func (r *RecordsRepository) take(query *gorm.DB, key string) (models.PlatformRecord, error) {
  record := r.model()
  if record == nil {
    return nil, &common.ConfigurationError{Platform: r.Platform, Reason: "unknown platform"}
  }
  err := query.Take(record).Error
  if errors.Is(err, gorm.ErrRecordNotFound) {
    return nil, &common.NotFoundError{Entity: fmt.Sprintf("%v record", r.Platform), Key: key}
  }
  if err != nil {
    return nil, err
  }
  return record, nil
}

func (r *RecordsRepository) collect(query *gorm.DB) ([]models.PlatformRecord, error) {
  switch r.Platform {
  case models.PLATFORM_TWITTER:
    return collect[models.Tweet](query)
  case models.PLATFORM_FACEBOOK:
    return collect[models.FacebookPost](query)
  case models.PLATFORM_INSTAGRAM:
    return collect[models.InstagramMedia](query)
  case models.PLATFORM_YOUTUBE:
    return collect[models.YoutubeItem](query)
  }
  return nil, &common.ConfigurationError{Platform: r.Platform, Reason: "unknown platform"}
}

func collect[T any](query *gorm.DB) ([]models.PlatformRecord, error) {
  var rows []*T
  if err := query.Find(&rows).Error; err != nil {
    return nil, err
  }
  records := make([]models.PlatformRecord, 0, len(rows))
  for _, row := range rows {
    records = append(records, any(row).(models.PlatformRecord))
  }
  return records, nil
}
