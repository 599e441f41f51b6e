package syncer

import (
  "context"
  "errors"
  "sync"
  "time"

  "github.com/tidwall/gjson"

  "hydra.local/social-aggregator/common"
  "hydra.local/social-aggregator/credentials"
  "hydra.local/social-aggregator/models"
  "hydra.local/social-aggregator/repositories/platforms"
)

type fakeAdapter struct {
  pages   map[string][]string
  failing map[string]error
  calls   []string
  cursors []string
}

func (a *fakeAdapter) Platform() string { return models.PLATFORM_TWITTER }

func (a *fakeAdapter) FetchPage(ctx context.Context, request *models.SyncRequest, cursor string) ([]gjson.Result, error) {
  a.calls = append(a.calls, request.ID)
  a.cursors = append(a.cursors, cursor)
  if err, ok := a.failing[request.ID]; ok {
    return nil, err
  }
  var page []gjson.Result
  for _, raw := range a.pages[request.ID] {
    page = append(page, gjson.Parse(raw))
  }
  return page, nil
}

func (a *fakeAdapter) NativeID(raw gjson.Result) (string, bool) {
  id := raw.Get("id_str")
  return id.String(), id.Exists() && id.String() != ""
}

func (a *fakeAdapter) Decode(raw gjson.Result) (models.PlatformRecord, error) {
  tweet := &models.Tweet{Text: raw.Get("text").String()}
  tweet.NativeID = raw.Get("id_str").String()
  return tweet, nil
}

func (a *fakeAdapter) AuthorizationParameters(ctx context.Context, callbackUrl string) (*platforms.AuthorizationParameters, error) {
  return &platforms.AuthorizationParameters{Url: callbackUrl}, nil
}

func (a *fakeAdapter) AccessToken(ctx context.Context, session *platforms.AuthorizationParameters, params *platforms.CallbackParams) (*platforms.Token, error) {
  return &platforms.Token{AccessToken: "token"}, nil
}

func (a *fakeAdapter) IsCredentialValid(ctx context.Context) bool { return true }

type memoryRecords struct {
  mu       sync.Mutex
  records  []models.PlatformRecord
  failNext error
}

func (s *memoryRecords) Exists(ctx context.Context, nativeID string) (bool, error) {
  s.mu.Lock()
  defer s.mu.Unlock()
  for _, record := range s.records {
    if record.GetNativeID() == nativeID {
      return true, nil
    }
  }
  return false, nil
}

func (s *memoryRecords) Persist(ctx context.Context, records []models.PlatformRecord) error {
  s.mu.Lock()
  defer s.mu.Unlock()
  if s.failNext != nil {
    err := s.failNext
    s.failNext = nil
    return err
  }
  s.records = append(s.records, records...)
  return nil
}

func (s *memoryRecords) Feed(ctx context.Context, onlyApproved bool, limit int, requestID string, orderField string) ([]models.PlatformRecord, error) {
  s.mu.Lock()
  defer s.mu.Unlock()
  var feed []models.PlatformRecord
  for i := len(s.records) - 1; i >= 0; i-- {
    record := s.records[i]
    if onlyApproved && !record.IsApproved() {
      continue
    }
    if requestID != "" && record.GetRequestID() != requestID {
      continue
    }
    feed = append(feed, record)
    if limit > 0 && len(feed) == limit {
      break
    }
  }
  return feed, nil
}

func (s *memoryRecords) find(match func(models.PlatformRecord) bool, key string) (models.PlatformRecord, error) {
  s.mu.Lock()
  defer s.mu.Unlock()
  for _, record := range s.records {
    if match(record) {
      return record, nil
    }
  }
  return nil, &common.NotFoundError{Entity: "twitter record", Key: key}
}

func (s *memoryRecords) Find(ctx context.Context, id string) (models.PlatformRecord, error) {
  return s.find(func(r models.PlatformRecord) bool { return r.GetID() == id }, id)
}

func (s *memoryRecords) GetByNativeID(ctx context.Context, nativeID string) (models.PlatformRecord, error) {
  return s.find(func(r models.PlatformRecord) bool { return r.GetNativeID() == nativeID }, nativeID)
}

func (s *memoryRecords) UpdateApproved(ctx context.Context, record models.PlatformRecord, approved bool) error {
  record.SetApproved(approved)
  return nil
}

type memoryRequests struct {
  requests []*models.SyncRequest
  saved    map[string]models.SyncRequest
}

func newMemoryRequests(requests ...*models.SyncRequest) *memoryRequests {
  return &memoryRequests{requests: requests, saved: map[string]models.SyncRequest{}}
}

func (s *memoryRequests) Requests(ctx context.Context) ([]*models.SyncRequest, error) {
  return s.requests, nil
}

func (s *memoryRequests) Find(ctx context.Context, id string) (*models.SyncRequest, error) {
  for _, request := range s.requests {
    if request.ID == id {
      return request, nil
    }
  }
  return nil, &common.NotFoundError{Entity: "sync request", Key: id}
}

func (s *memoryRequests) Save(ctx context.Context, request *models.SyncRequest) error {
  s.saved[request.ID] = *request
  return nil
}

type fakeCredentials struct {
  client      platforms.Client
  err         error
  autoApprove bool
}

func (c *fakeCredentials) Client(ctx context.Context) (platforms.Client, error) {
  return c.client, c.err
}

func (c *fakeCredentials) AutoApprove() bool { return c.autoApprove }

func (c *fakeCredentials) IsCredentialValid(ctx context.Context) bool { return c.err == nil }

func (c *fakeCredentials) Authorize(ctx context.Context, callbackUrl string) (*platforms.AuthorizationParameters, error) {
  return c.client.AuthorizationParameters(ctx, callbackUrl)
}

func (c *fakeCredentials) CompleteAuthorization(ctx context.Context, session *platforms.AuthorizationParameters, params *platforms.CallbackParams) (*platforms.Token, error) {
  return c.client.AccessToken(ctx, session, params)
}

func (c *fakeCredentials) Status() *credentials.Status {
  return &credentials.Status{Platform: models.PLATFORM_TWITTER, State: credentials.STATE_CONFIGURED}
}

type recordingSink struct {
  events []*models.ApprovalChanged
  err    error
}

func (s *recordingSink) ApprovalChanged(ctx context.Context, event *models.ApprovalChanged) error {
  s.events = append(s.events, event)
  return s.err
}

var errUpstream = errors.New("upstream down")

func fixedClock(now time.Time) func() time.Time {
  return func() time.Time { return now }
}
