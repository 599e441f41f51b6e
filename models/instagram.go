package models

type InstagramMedia struct {
  Record
  CaptionText                 string `gorm:"type:text"`
  UserID                      string `gorm:"size:64"`
  UserUsername                string `gorm:"size:255"`
  UserProfilePicture          string `gorm:"size:1000"`
  ImagesStandardResolutionUrl string `gorm:"size:1000"`
}

func (m *InstagramMedia) TableName() string {
  return "hydra_instagram_media"
}

func (m *InstagramMedia) Platform() string {
  return PLATFORM_INSTAGRAM
}

func (m *InstagramMedia) platformRecord() {}
