package aggregator

import (
  "context"

  "github.com/sirupsen/logrus"

  "hydra.local/social-aggregator/common"
  "hydra.local/social-aggregator/models"
)

// ApprovalMirror copies approval decisions made on platform records onto their unified entities.
// With a Converter the stored original decides the value, so late or reordered events converge.
type ApprovalMirror struct {
  Unified   UnifiedStore
  Converter *Converter
}

func (m *ApprovalMirror) ApprovalChanged(ctx context.Context, event *models.ApprovalChanged) error {
  log := common.GetLogger().WithFields(logrus.Fields{
    "platform":  event.Platform,
    "native_id": event.NativeID,
  })
  entity, err := m.Unified.GetByKey(ctx, models.UnifiedKey{Type: event.Platform, ForeignKey: event.NativeID})
  if common.IsNotFound(err) {
    log.Debugln("record not unified yet")
    return nil
  }
  if err != nil {
    return err
  }
  approved, err := m.approved(ctx, entity, event)
  if err != nil {
    return err
  }
  if entity.Approved == approved {
    return nil
  }
  if err := m.Unified.UpdateApproved(ctx, entity, approved); err != nil {
    return err
  }
  log.WithField("unified_id", entity.ID).Infoln("approval mirrored", approved)
  return nil
}

func (m *ApprovalMirror) approved(ctx context.Context, entity *models.UnifiedEntity, event *models.ApprovalChanged) (bool, error) {
  if m.Converter == nil {
    return event.Approved, nil
  }
  original, err := m.Converter.ToOriginal(ctx, entity)
  if common.IsNotFound(err) {
    return event.Approved, nil
  }
  if err != nil {
    return false, err
  }
  return original.IsApproved(), nil
}
