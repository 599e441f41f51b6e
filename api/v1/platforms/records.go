package platforms

import (
  "net/http"
  "strconv"
  "strings"

  "github.com/go-chi/chi/v5"

  "hydra.local/social-aggregator/api"
  "hydra.local/social-aggregator/app"
  "hydra.local/social-aggregator/common"
  "hydra.local/social-aggregator/models"
)

type RecordInfo struct {
  ID          string `json:"id"`
  Platform    string `json:"platform"`
  NativeID    string `json:"native_id"`
  RequestID   string `json:"request_id"`
  Approved    bool   `json:"approved"`
  PublishedAt int64  `json:"published_at"`
}

type RecordsHandler struct {
  ApiContext *common.ApiContext
  Hydra      *app.App
}

func NewRecordsRouter(apiContext *common.ApiContext, hydra *app.App) http.Handler {
  h := RecordsHandler{
    ApiContext: apiContext,
    Hydra:      hydra,
  }

  r := chi.NewRouter()
  r.Get("/", h.Listings)
  r.Post("/sync", h.Sync)
  r.Put("/{id}/approved", h.Approve)
  return r
}

func (h *RecordsHandler) Listings(
  w http.ResponseWriter,
  r *http.Request,
) {
  response := &api.ResponseHandler{
    Writer: w,
  }

  service, err := h.Hydra.Service(chi.URLParam(r, "platform"))
  if err != nil {
    response.Fail(err)
    return
  }

  query := &models.FeedQuery{
    OnlyApproved: r.URL.Query().Get("only_approved") != "",
    RequestIDs:   SplitIDs(r.URL.Query().Get("request_ids")),
  }
  if r.URL.Query().Has("limit") {
    query.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
    if query.Limit < 1 || query.Limit > 1000 {
      response.Error(http.StatusForbidden, 1004, "limit not valid")
      return
    }
  }

  records, err := service.GetFeed(r.Context(), query)
  if err != nil {
    response.Fail(err)
    return
  }
  data := make([]*RecordInfo, len(records))
  for i, record := range records {
    data[i] = &RecordInfo{
      ID:          record.GetID(),
      Platform:    record.Platform(),
      NativeID:    record.GetNativeID(),
      RequestID:   record.GetRequestID(),
      Approved:    record.IsApproved(),
      PublishedAt: record.GetPublishedAt().Unix(),
    }
  }

  response.Json(data)
}

func (h *RecordsHandler) Sync(
  w http.ResponseWriter,
  r *http.Request,
) {
  response := &api.ResponseHandler{
    Writer: w,
  }

  service, err := h.Hydra.Service(chi.URLParam(r, "platform"))
  if err != nil {
    response.Fail(err)
    return
  }

  results, err := service.SyncDatabase(r.Context(), SplitIDs(r.URL.Query().Get("request_ids")))
  if err != nil {
    response.Fail(err)
    return
  }

  response.Json(results)
}

func (h *RecordsHandler) Approve(
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

  service, err := h.Hydra.Service(chi.URLParam(r, "platform"))
  if err != nil {
    response.Fail(err)
    return
  }
  approved, err = service.SetApproved(r.Context(), chi.URLParam(r, "id"), approved, r.Form.Get("request_id"))
  if err != nil {
    response.Fail(err)
    return
  }

  response.Json(map[string]bool{
    "approved": approved,
  })
}

func SplitIDs(value string) []string {
  var ids []string
  for _, id := range strings.Split(value, ",") {
    if id = strings.TrimSpace(id); id != "" {
      ids = append(ids, id)
    }
  }
  return ids
}
