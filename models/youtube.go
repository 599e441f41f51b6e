package models

type YoutubeItem struct {
  Record
  SnippetTitle             string `gorm:"size:1000"`
  SnippetDescription       string `gorm:"type:text"`
  SnippetResourceIdVideoId string `gorm:"size:64"`
  SnippetThumbnailsHighUrl string `gorm:"size:1000"`
}

func (m *YoutubeItem) TableName() string {
  return "hydra_youtube_items"
}

func (m *YoutubeItem) Platform() string {
  return PLATFORM_YOUTUBE
}

func (m *YoutubeItem) platformRecord() {}
