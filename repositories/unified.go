package repositories

import (
  "context"
  "errors"
  "fmt"

  "gorm.io/gorm"

  "hydra.local/social-aggregator/common"
  "hydra.local/social-aggregator/models"
)

type UnifiedRepository struct {
  Db *gorm.DB
}

func (r *UnifiedRepository) Find(ctx context.Context, id string) (entity *models.UnifiedEntity, err error) {
  err = r.Db.WithContext(ctx).Where("id = ?", id).Take(&entity).Error
  if errors.Is(err, gorm.ErrRecordNotFound) {
    err = &common.NotFoundError{Entity: "unified entity", Key: id}
  }
  return
}

func (r *UnifiedRepository) GetByKey(ctx context.Context, key models.UnifiedKey) (entity *models.UnifiedEntity, err error) {
  err = r.Db.WithContext(ctx).
    Where("type = ? AND foreign_key = ?", key.Type, key.ForeignKey).
    Take(&entity).Error
  if errors.Is(err, gorm.ErrRecordNotFound) {
    err = &common.NotFoundError{Entity: "unified entity", Key: fmt.Sprintf("%v/%v", key.Type, key.ForeignKey)}
  }
  return
}

// ForeignKeys returns the foreign keys already unified for one type.
func (r *UnifiedRepository) ForeignKeys(ctx context.Context, entityType string) (map[string]bool, error) {
  var keys []string
  err := r.Db.WithContext(ctx).
    Model(&models.UnifiedEntity{}).
    Where("type = ?", entityType).
    Pluck("foreign_key", &keys).Error
  if err != nil {
    return nil, err
  }
  known := make(map[string]bool, len(keys))
  for _, key := range keys {
    known[key] = true
  }
  return known, nil
}

func (r *UnifiedRepository) CreateInBatch(ctx context.Context, entities []*models.UnifiedEntity) error {
  if len(entities) == 0 {
    return nil
  }
  return r.Db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    return tx.CreateInBatches(entities, 100).Error
  })
}

func (r *UnifiedRepository) Feed(ctx context.Context, onlyApproved bool, limit int) (entities []*models.UnifiedEntity, err error) {
  query := r.Db.WithContext(ctx).Model(&models.UnifiedEntity{})
  if onlyApproved {
    query = query.Where("approved = ?", true)
  }
  query = query.Order("created DESC")
  if limit > 0 {
    query = query.Limit(limit)
  }
  err = query.Find(&entities).Error
  return
}

func (r *UnifiedRepository) UpdateApproved(ctx context.Context, entity *models.UnifiedEntity, approved bool) error {
  err := r.Db.WithContext(ctx).Model(&models.UnifiedEntity{ID: entity.ID}).Update("approved", approved).Error
  if err == nil {
    entity.Approved = approved
  }
  return err
}

// SaveApproval writes the flag to the unified entity and its original in one transaction.
func (r *UnifiedRepository) SaveApproval(
  ctx context.Context,
  entity *models.UnifiedEntity,
  original models.PlatformRecord,
  approved bool,
) error {
  err := r.Db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    if err := tx.Model(&models.UnifiedEntity{ID: entity.ID}).Update("approved", approved).Error; err != nil {
      return err
    }
    return tx.Model(stored(original)).Update("approved", approved).Error
  })
  if err != nil {
    return err
  }
  entity.Approved = approved
  original.SetApproved(approved)
  return nil
}
