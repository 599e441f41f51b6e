package syncer

import (
  "context"
  "fmt"
  "sync"

  "hydra.local/social-aggregator/common"
  "hydra.local/social-aggregator/models"
)

// StaticRequests serves the api_requests of a config section; bookkeeping lives only in memory.
type StaticRequests struct {
  mu       sync.Mutex
  requests []*models.SyncRequest
}

func NewStaticRequests(platform string, urls []string) *StaticRequests {
  s := &StaticRequests{}
  for i, url := range urls {
    s.requests = append(s.requests, &models.SyncRequest{
      ID:           fmt.Sprintf("%v-%d", platform, i),
      Platform:     platform,
      Url:          url,
      Params:       map[string]interface{}{},
      MappedEntity: platform,
      OrderField:   "published_at",
    })
  }
  return s
}

func (s *StaticRequests) Requests(ctx context.Context) ([]*models.SyncRequest, error) {
  s.mu.Lock()
  defer s.mu.Unlock()
  requests := make([]*models.SyncRequest, len(s.requests))
  copy(requests, s.requests)
  return requests, nil
}

func (s *StaticRequests) Find(ctx context.Context, id string) (*models.SyncRequest, error) {
  s.mu.Lock()
  defer s.mu.Unlock()
  for _, request := range s.requests {
    if request.ID == id {
      return request, nil
    }
  }
  return nil, &common.NotFoundError{Entity: "sync request", Key: id}
}

func (s *StaticRequests) Save(ctx context.Context, request *models.SyncRequest) error {
  s.mu.Lock()
  defer s.mu.Unlock()
  for i, current := range s.requests {
    if current.ID == request.ID {
      s.requests[i] = request
      return nil
    }
  }
  return &common.NotFoundError{Entity: "sync request", Key: request.ID}
}
