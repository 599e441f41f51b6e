package models

import (
  "time"

  "gorm.io/gorm"
)

const (
  PLATFORM_TWITTER   = "twitter"
  PLATFORM_FACEBOOK  = "facebook"
  PLATFORM_INSTAGRAM = "instagram"
  PLATFORM_YOUTUBE   = "youtube"
)

var Platforms = []string{
  PLATFORM_TWITTER,
  PLATFORM_FACEBOOK,
  PLATFORM_INSTAGRAM,
  PLATFORM_YOUTUBE,
}

func IsPlatform(name string) bool {
  for _, platform := range Platforms {
    if platform == name {
      return true
    }
  }
  return false
}

// PlatformRecord is implemented only by Tweet, FacebookPost, InstagramMedia and YoutubeItem.
type PlatformRecord interface {
  Platform() string
  GetID() string
  GetNativeID() string
  GetRequestID() string
  IsApproved() bool
  SetApproved(approved bool)
  SetIdentity(id string, requestID string, raw string)
  GetPublishedAt() time.Time
  platformRecord()
}

type Record struct {
  ID          string    `gorm:"size:20;primaryKey"`
  NativeID    string    `gorm:"size:64;not null;uniqueIndex"`
  RequestID   string    `gorm:"size:64;not null;index"`
  Raw         string    `gorm:"type:text;not null"`
  Approved    bool      `gorm:"not null;index"`
  PublishedAt time.Time `gorm:"not null;index"`
  CreatedAt   time.Time `gorm:"not null"`
  UpdatedAt   time.Time `gorm:"not null"`
}

func (m *Record) GetID() string {
  return m.ID
}

func (m *Record) GetNativeID() string {
  return m.NativeID
}

func (m *Record) GetRequestID() string {
  return m.RequestID
}

func (m *Record) IsApproved() bool {
  return m.Approved
}

func (m *Record) SetApproved(approved bool) {
  m.Approved = approved
}

func (m *Record) SetIdentity(id string, requestID string, raw string) {
  m.ID = id
  m.RequestID = requestID
  m.Raw = raw
}

func (m *Record) GetPublishedAt() time.Time {
  return m.PublishedAt
}

func NewRecord(platform string) PlatformRecord {
  switch platform {
  case PLATFORM_TWITTER:
    return &Tweet{}
  case PLATFORM_FACEBOOK:
    return &FacebookPost{}
  case PLATFORM_INSTAGRAM:
    return &InstagramMedia{}
  case PLATFORM_YOUTUBE:
    return &YoutubeItem{}
  }
  return nil
}

type Hydra struct{}

func NewHydra() *Hydra {
  return &Hydra{}
}

func (m *Hydra) AutoMigrate(db *gorm.DB) error {
  return db.AutoMigrate(
    &Tweet{},
    &FacebookPost{},
    &InstagramMedia{},
    &YoutubeItem{},
    &SyncRequest{},
    &UnifiedEntity{},
  )
}
