package aggregator

import (
  "context"
  "fmt"

  "hydra.local/social-aggregator/common"
  "hydra.local/social-aggregator/models"
)

type OriginalFinder interface {
  Original(ctx context.Context, nativeID string) (models.PlatformRecord, error)
}

// Converter maps platform records to unified entities and back.
// The unified type of a record is its platform name.
type Converter struct {
  Originals map[string]OriginalFinder
}

func NewConverter() *Converter {
  return &Converter{Originals: map[string]OriginalFinder{}}
}

// ToUnified projects a record onto a new entity without touching the record.
// Identity and approval are left to the caller.
func ToUnified(record models.PlatformRecord) *models.UnifiedEntity {
  entity := &models.UnifiedEntity{
    Type:       record.Platform(),
    ForeignKey: record.GetNativeID(),
    Created:    record.GetPublishedAt(),
  }

  switch r := record.(type) {
  case *models.Tweet:
    entity.Text = r.Text
    entity.ImageUrl = r.EntitiesMedia0MediaUrl
    entity.ProfileImageUrl = r.UserProfileImageUrlHttps
  case *models.InstagramMedia:
    entity.Text = r.CaptionText
    entity.ImageUrl = r.ImagesStandardResolutionUrl
    entity.ProfileImageUrl = r.UserProfilePicture
  case *models.YoutubeItem:
    entity.Text = r.SnippetTitle
    entity.ImageUrl = r.SnippetThumbnailsHighUrl
    if r.SnippetResourceIdVideoId != "" {
      entity.VideoUrl = fmt.Sprintf("http://youtu.be/%v", r.SnippetResourceIdVideoId)
    }
  case *models.FacebookPost:
    switch r.Type {
    case models.FACEBOOK_TYPE_STATUS:
      entity.Text = r.Message
      if entity.Text == "" {
        entity.Text = r.Story
      }
      entity.ImageUrl = r.Picture
    case models.FACEBOOK_TYPE_PHOTO:
      entity.ImageUrl = r.Picture
    case models.FACEBOOK_TYPE_LINK:
      entity.ImageUrl = r.Picture
      entity.LinkUrl = r.Link
    case models.FACEBOOK_TYPE_VIDEO:
      entity.ImageUrl = r.Picture
      entity.VideoUrl = r.Source
    }
    if r.FromID != "" {
      entity.ProfileImageUrl = fmt.Sprintf("https://graph.facebook.com/%v/picture", r.FromID)
    }
  }
  return entity
}

func (c *Converter) ToUnified(record models.PlatformRecord) *models.UnifiedEntity {
  return ToUnified(record)
}

// ToOriginal resolves the stored record behind an entity by its type and foreign key.
func (c *Converter) ToOriginal(ctx context.Context, entity *models.UnifiedEntity) (models.PlatformRecord, error) {
  finder, ok := c.Originals[entity.Type]
  if !ok {
    return nil, &common.NotFoundError{
      Entity: "original store",
      Key:    entity.Type,
    }
  }
  record, err := finder.Original(ctx, entity.ForeignKey)
  if err != nil {
    return nil, err
  }
  if record.Platform() != entity.Type {
    return nil, &common.NotFoundError{
      Entity: fmt.Sprintf("%v record", entity.Type),
      Key:    entity.ForeignKey,
    }
  }
  return record, nil
}
