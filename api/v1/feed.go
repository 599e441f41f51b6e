package v1

import (
  "net/http"
  "strconv"

  "github.com/go-chi/chi/v5"

  "hydra.local/social-aggregator/api"
  "hydra.local/social-aggregator/api/v1/platforms"
  "hydra.local/social-aggregator/app"
  "hydra.local/social-aggregator/common"
)

type EntityInfo struct {
  ID              string `json:"id"`
  Type            string `json:"type"`
  ForeignKey      string `json:"foreign_key"`
  Text            string `json:"text"`
  ImageUrl        string `json:"image_url,omitempty"`
  VideoUrl        string `json:"video_url,omitempty"`
  LinkUrl         string `json:"link_url,omitempty"`
  ProfileImageUrl string `json:"profile_image_url,omitempty"`
  Approved        bool   `json:"approved"`
  Timestamp       int64  `json:"timestamp"`
}

type FeedHandler struct {
  ApiContext *common.ApiContext
  Hydra      *app.App
}

func NewFeedRouter(apiContext *common.ApiContext, hydra *app.App) http.Handler {
  h := FeedHandler{
    ApiContext: apiContext,
    Hydra:      hydra,
  }

  r := chi.NewRouter()
  r.Get("/", h.Listings)
  r.Post("/sync", h.Sync)
  r.Put("/{id}/approved", h.Approve)
  return r
}

func (h *FeedHandler) Listings(
  w http.ResponseWriter,
  r *http.Request,
) {
  response := &api.ResponseHandler{
    Writer: w,
  }

  var limit int
  if r.URL.Query().Has("limit") {
    limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
    if limit < 1 || limit > 1000 {
      response.Error(http.StatusForbidden, 1004, "limit not valid")
      return
    }
  }

  entities, err := h.Hydra.Aggregator.Feed(r.Context(), r.URL.Query().Get("only_approved") != "", limit)
  if err != nil {
    response.Fail(err)
    return
  }
  data := make([]*EntityInfo, len(entities))
  for i, entity := range entities {
    data[i] = &EntityInfo{
      ID:              entity.ID,
      Type:            entity.Type,
      ForeignKey:      entity.ForeignKey,
      Text:            entity.Text,
      ImageUrl:        entity.ImageUrl,
      VideoUrl:        entity.VideoUrl,
      LinkUrl:         entity.LinkUrl,
      ProfileImageUrl: entity.ProfileImageUrl,
      Approved:        entity.Approved,
      Timestamp:       entity.Created.Unix(),
    }
  }

  response.Json(data)
}

func (h *FeedHandler) Sync(
  w http.ResponseWriter,
  r *http.Request,
) {
  response := &api.ResponseHandler{
    Writer: w,
  }

  unifyOnly := r.URL.Query().Get("unify_only") != ""
  results, err := h.Hydra.Aggregator.SyncDatabase(r.Context(), platforms.SplitIDs(r.URL.Query().Get("request_ids")), unifyOnly)
  if err != nil {
    response.Fail(err)
    return
  }

  response.Json(results)
}

func (h *FeedHandler) Approve(
  w http.ResponseWriter,
  r *http.Request,
) {
  response := &api.ResponseHandler{
    Writer: w,
  }

  r.ParseForm()
  approved, err := strconv.ParseBool(r.Form.Get("approved"))
  if err != nil {
    response.Error(http.StatusForbidden, 1004, "approved not valid")
    return
  }

  approved, err = h.Hydra.Aggregator.SetApproved(r.Context(), chi.URLParam(r, "id"), approved)
  if err != nil {
    response.Fail(err)
    return
  }

  response.Json(map[string]bool{
    "approved": approved,
  })
}
