package models

type Tweet struct {
  Record
  Text                     string `gorm:"size:1000;not null"`
  Source                   string `gorm:"size:255;not null"`
  UserID                   string `gorm:"size:64;not null"`
  UserScreenName           string `gorm:"size:255;not null"`
  UserProfileImageUrlHttps string `gorm:"size:1000"`
  EntitiesMedia0MediaUrl   string `gorm:"size:1000"`
}

func (m *Tweet) TableName() string {
  return "hydra_twitter_tweets"
}

func (m *Tweet) Platform() string {
  return PLATFORM_TWITTER
}

func (m *Tweet) platformRecord() {}
