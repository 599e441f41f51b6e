package models

import (
  "time"
)

type UnifiedEntity struct {
  ID              string    `gorm:"size:20;primaryKey"`
  Type            string    `gorm:"size:32;not null;uniqueIndex:idx_hydra_unified_key,priority:1"`
  ForeignKey      string    `gorm:"size:64;not null;uniqueIndex:idx_hydra_unified_key,priority:2"`
  Created         time.Time `gorm:"not null;index"`
  Text            string    `gorm:"type:text;not null"`
  ImageUrl        string    `gorm:"size:1000"`
  VideoUrl        string    `gorm:"size:1000"`
  LinkUrl         string    `gorm:"size:1000"`
  ProfileImageUrl string    `gorm:"size:1000"`
  Approved        bool      `gorm:"not null;index"`
  CreatedAt       time.Time `gorm:"not null"`
  UpdatedAt       time.Time `gorm:"not null"`
}

func (m *UnifiedEntity) TableName() string {
  return "hydra_unified_entities"
}

type UnifiedKey struct {
  Type       string
  ForeignKey string
}

func (m *UnifiedEntity) Key() UnifiedKey {
  return UnifiedKey{m.Type, m.ForeignKey}
}
