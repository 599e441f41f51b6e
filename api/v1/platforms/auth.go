package platforms

import (
  "net/http"

  "github.com/go-chi/chi/v5"

  "hydra.local/social-aggregator/api"
  "hydra.local/social-aggregator/app"
  "hydra.local/social-aggregator/common"
  "hydra.local/social-aggregator/repositories/platforms"
)

type AuthHandler struct {
  ApiContext *common.ApiContext
  Hydra      *app.App
  Sessions   SessionStore
}

func NewAuthRouter(apiContext *common.ApiContext, hydra *app.App, sessions SessionStore) http.Handler {
  h := AuthHandler{
    ApiContext: apiContext,
    Hydra:      hydra,
    Sessions:   sessions,
  }

  r := chi.NewRouter()
  r.Get("/", h.Authorize)
  r.Get("/callback", h.Callback)
  r.Get("/status", h.Status)
  return r
}

func (h *AuthHandler) Authorize(
  w http.ResponseWriter,
  r *http.Request,
) {
  response := &api.ResponseHandler{
    Writer: w,
  }

  callbackUrl := r.URL.Query().Get("callback_url")
  if callbackUrl == "" {
    response.Error(http.StatusForbidden, 1004, "callback_url is empty")
    return
  }
  service, err := h.Hydra.Service(chi.URLParam(r, "platform"))
  if err != nil {
    response.Fail(err)
    return
  }

  parameters, err := service.GetAuthorizationParameters(r.Context(), callbackUrl)
  if err != nil {
    response.Fail(err)
    return
  }
  session := &AuthSession{
    Parameters:  parameters,
    CallbackUrl: callbackUrl,
  }
  if err := h.Sessions.Put(r.Context(), service.Platform, session); err != nil {
    response.Fail(err)
    return
  }

  response.Json(map[string]string{
    "url": parameters.Url,
  })
}

func (h *AuthHandler) Callback(
  w http.ResponseWriter,
  r *http.Request,
) {
  response := &api.ResponseHandler{
    Writer: w,
  }

  query := r.URL.Query()
  service, err := h.Hydra.Service(chi.URLParam(r, "platform"))
  if err != nil {
    response.Fail(err)
    return
  }

  params := &platforms.CallbackParams{
    Code:            query.Get("code"),
    State:           query.Get("state"),
    OAuthToken:      query.Get("oauth_token"),
    OAuthVerifier:   query.Get("oauth_verifier"),
    ShortLivedToken: query.Get("access_token"),
  }

  key := params.State
  if key == "" {
    key = params.OAuthToken
  }
  var session *AuthSession
  if key != "" {
    if session, err = h.Sessions.Take(r.Context(), service.Platform, key); err != nil {
      response.Fail(err)
      return
    }
    params.CallbackUrl = session.CallbackUrl
  } else if params.ShortLivedToken == "" {
    response.Error(http.StatusForbidden, 1004, "state is empty")
    return
  }

  var parameters *platforms.AuthorizationParameters
  if session != nil {
    parameters = session.Parameters
  }
  token, err := service.GetAccessToken(r.Context(), parameters, params)
  if err != nil {
    response.Fail(err)
    return
  }

  response.Json(map[string]interface{}{
    "expires_at": token.ExpiresAt,
  })
}

func (h *AuthHandler) Status(
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
  if r.URL.Query().Get("check") != "" {
    service.IsCredentialValid(r.Context())
  }

  response.Json(service.CredentialStatus())
}
