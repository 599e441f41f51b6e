package v1

import (
  "net/http"

  "github.com/go-chi/chi/v5"

  "hydra.local/social-aggregator/api/v1/platforms"
  "hydra.local/social-aggregator/app"
  "hydra.local/social-aggregator/common"
)

func NewPlatformsRouter(apiContext *common.ApiContext, hydra *app.App, sessions platforms.SessionStore) http.Handler {
  r := chi.NewRouter()
  r.Route("/{platform}", func(r chi.Router) {
    r.Mount("/records", platforms.NewRecordsRouter(apiContext, hydra))
    r.Mount("/auth", platforms.NewAuthRouter(apiContext, hydra, sessions))
  })
  return r
}
