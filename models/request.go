package models

import (
  "time"

  "gorm.io/datatypes"
)

const FAILED_EXECUTION_DURATION = -1

type SyncRequest struct {
  ID                    string            `gorm:"size:64;primaryKey"`
  Platform              string            `gorm:"size:32;not null;index"`
  Url                   string            `gorm:"size:2000;not null"`
  Params                datatypes.JSONMap `gorm:"not null"`
  MappedEntity          string            `gorm:"size:32;not null"`
  RefreshLifeTime       int64             `gorm:"not null"`
  LastExecutionTime     int64             `gorm:"not null"`
  LastExecutionDuration float64           `gorm:"not null"`
  OrderField            string            `gorm:"size:64;not null"`
  LastMaxID             string            `gorm:"size:64;not null"`
  UseSinceID            bool              `gorm:"not null"`
  CreatedAt             time.Time         `gorm:"not null"`
  UpdatedAt             time.Time         `gorm:"not null"`
}

func (m *SyncRequest) TableName() string {
  return "hydra_sync_requests"
}

func (m *SyncRequest) IsCoolingDown(now time.Time) bool {
  return now.Unix() < m.LastExecutionTime+m.RefreshLifeTime
}

func (m *SyncRequest) HasFailed() bool {
  return m.LastExecutionDuration == FAILED_EXECUTION_DURATION
}

func (m *SyncRequest) Cursor() (cursor string, ok bool) {
  if !m.UseSinceID || m.LastMaxID == "" {
    return
  }
  return m.LastMaxID, true
}
