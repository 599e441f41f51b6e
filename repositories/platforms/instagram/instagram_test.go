package instagram

import (
  "context"
  "errors"
  "net/http"
  "net/http/httptest"
  "testing"

  "github.com/stretchr/testify/assert"
  "github.com/stretchr/testify/require"

  "hydra.local/social-aggregator/common"
  "hydra.local/social-aggregator/models"
  "hydra.local/social-aggregator/repositories/platforms"
)

func newClient(srv *httptest.Server) *Client {
  return New(platforms.Credentials{
    AppID:       "client",
    AppSecret:   "client-secret",
    AccessToken: "ig-token",
  }, platforms.Options{
    Host:       srv.URL,
    HttpClient: srv.Client(),
  })
}

func TestFetchPageAndDecode(t *testing.T) {
  srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
    assert.Equal(t, "/v1/tags/hydra/media/recent", r.URL.Path)
    assert.Equal(t, "ig-token", r.URL.Query().Get("access_token"))
    w.Write([]byte(`{"data": [
      {"id": "a_1", "caption": null, "created_time": "1380000000",
       "user": {"id": "7", "username": "hydra", "profile_picture": "http://u.jpg"},
       "images": {"standard_resolution": {"url": "http://i.jpg"}}},
      {"id": "a_2", "caption": {"text": "hi"}, "created_time": "1380000001", "tags": []}
    ]}`))
  }))
  defer srv.Close()
  c := newClient(srv)

  records, err := c.FetchPage(context.Background(), &models.SyncRequest{Url: "v1/tags/hydra/media/recent"}, "")
  require.NoError(t, err)
  require.Len(t, records, 2)

  record, err := c.Decode(records[0])
  require.NoError(t, err)
  media := record.(*models.InstagramMedia)
  assert.Equal(t, "a_1", media.NativeID)
  assert.Equal(t, "", media.CaptionText)
  assert.Equal(t, "hydra", media.UserUsername)
  assert.Equal(t, "http://u.jpg", media.UserProfilePicture)
  assert.Equal(t, "http://i.jpg", media.ImagesStandardResolutionUrl)
  assert.Equal(t, int64(1380000000), media.PublishedAt.Unix())

  record, err = c.Decode(records[1])
  require.NoError(t, err)
  assert.Equal(t, "hi", record.(*models.InstagramMedia).CaptionText)
}

func TestFetchPage_MissingData(t *testing.T) {
  srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
    w.Write([]byte(`{"meta": {"code": 200}}`))
  }))
  defer srv.Close()

  _, err := newClient(srv).FetchPage(context.Background(), &models.SyncRequest{Url: "v1/users/self/feed"}, "")

  var malformed *common.MalformedResponseError
  assert.True(t, errors.As(err, &malformed))
}

func TestAccessToken(t *testing.T) {
  srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
    require.NoError(t, r.ParseForm())
    assert.Equal(t, "/oauth/access_token", r.URL.Path)
    assert.Equal(t, "authorization_code", r.Form.Get("grant_type"))
    assert.Equal(t, "client", r.Form.Get("client_id"))
    assert.Equal(t, "client-secret", r.Form.Get("client_secret"))
    assert.Equal(t, "http://hydra.local/cb", r.Form.Get("redirect_uri"))
    w.Header().Set("Content-Type", "application/json")
    if r.Form.Get("code") != "good" {
      w.WriteHeader(http.StatusBadRequest)
      w.Write([]byte(`{"error_type":"OAuthException"}`))
      return
    }
    w.Write([]byte(`{"access_token":"ig-long","user":{"id":"7"}}`))
  }))
  defer srv.Close()
  c := newClient(srv)

  token, err := c.AccessToken(context.Background(), nil, &platforms.CallbackParams{
    CallbackUrl: "http://hydra.local/cb",
    Code:        "good",
  })
  require.NoError(t, err)
  assert.Equal(t, "ig-long", token.AccessToken)

  _, err = c.AccessToken(context.Background(), nil, &platforms.CallbackParams{
    CallbackUrl: "http://hydra.local/cb",
    Code:        "bad",
  })
  var authErr *common.AuthError
  require.True(t, errors.As(err, &authErr))
  assert.Equal(t, http.StatusBadRequest, authErr.Status)
}

func TestIsCredentialValid(t *testing.T) {
  srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
    assert.Equal(t, "/v1/users/self/feed", r.URL.Path)
    w.WriteHeader(http.StatusBadRequest)
  }))
  defer srv.Close()

  assert.False(t, newClient(srv).IsCredentialValid(context.Background()))
}
