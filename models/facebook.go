package models

const (
  FACEBOOK_TYPE_STATUS = "status"
  FACEBOOK_TYPE_PHOTO  = "photo"
  FACEBOOK_TYPE_LINK   = "link"
  FACEBOOK_TYPE_VIDEO  = "video"
)

type FacebookPost struct {
  Record
  Message  string `gorm:"type:text"`
  Story    string `gorm:"type:text"`
  FromID   string `gorm:"size:64"`
  FromName string `gorm:"size:255"`
  Picture  string `gorm:"size:1000"`
  Link     string `gorm:"size:1000"`
  Source   string `gorm:"size:1000"`
  Type     string `gorm:"size:32;not null"`
}

func (m *FacebookPost) TableName() string {
  return "hydra_facebook_posts"
}

func (m *FacebookPost) Platform() string {
  return PLATFORM_FACEBOOK
}

func (m *FacebookPost) platformRecord() {}
