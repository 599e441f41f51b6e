package syncer

import (
  "context"
  "errors"
  "fmt"
  "testing"
  "time"

  "github.com/stretchr/testify/assert"
  "github.com/stretchr/testify/require"

  "hydra.local/social-aggregator/common"
  "hydra.local/social-aggregator/config"
  "hydra.local/social-aggregator/models"
)

func seededService(t *testing.T) (*PlatformService, *memoryRecords, *recordingSink) {
  records := &memoryRecords{}
  for i, requestID := range []string{"a", "a", "b"} {
    tweet := &models.Tweet{}
    tweet.SetIdentity(fmt.Sprintf("r%d", i), requestID, "{}")
    tweet.NativeID = fmt.Sprintf("%d", 100+i)
    tweet.Approved = i != 1
    records.records = append(records.records, tweet)
  }
  sink := &recordingSink{}
  service := &PlatformService{
    Platform: models.PLATFORM_TWITTER,
    Records:  records,
    Requests: newMemoryRequests(
      &models.SyncRequest{ID: "a", MappedEntity: models.PLATFORM_TWITTER},
      &models.SyncRequest{ID: "b", MappedEntity: models.PLATFORM_TWITTER},
    ),
    Credentials: &fakeCredentials{client: &fakeAdapter{}, autoApprove: true},
    Locker:      &common.LocalLocker{},
    Events:      sink,
    Now:         fixedClock(time.Unix(1700000000, 0)),
  }
  return service, records, sink
}

func TestServiceSyncDatabase(t *testing.T) {
  service, records, _ := seededService(t)
  service.Credentials = &fakeCredentials{
    client:      &fakeAdapter{pages: map[string][]string{"a": tweets("200"), "b": tweets("201", "100")}},
    autoApprove: true,
  }

  results, err := service.SyncDatabase(context.Background(), nil)
  require.NoError(t, err)
  require.Len(t, results, 2)
  assert.Len(t, records.records, 5)
  assert.True(t, records.records[4].IsApproved())
}

func TestServiceSyncDatabaseHonorsLock(t *testing.T) {
  service, _, _ := seededService(t)
  release, ok := service.Locker.Acquire(context.Background(), fmt.Sprintf(config.LOCKS_SYNC_PLATFORM, "twitter"), time.Minute)
  require.True(t, ok)

  _, err := service.SyncDatabase(context.Background(), nil)
  assert.ErrorIs(t, err, common.ErrSyncLocked)

  release()
  _, err = service.SyncDatabase(context.Background(), nil)
  assert.NoError(t, err)
}

func TestServiceSyncDatabaseSurfacesCredentialErrors(t *testing.T) {
  service, _, _ := seededService(t)
  service.Credentials = &fakeCredentials{err: &common.ConfigurationError{Platform: "twitter", Reason: "missing"}}

  _, err := service.SyncDatabase(context.Background(), nil)
  var configErr *common.ConfigurationError
  assert.True(t, errors.As(err, &configErr))
}

func TestServiceSyncDatabaseRejectsUnknownRequest(t *testing.T) {
  service, records, _ := seededService(t)
  adapter := &fakeAdapter{pages: map[string][]string{"a": tweets("200")}}
  service.Credentials = &fakeCredentials{client: adapter, autoApprove: true}

  _, err := service.SyncDatabase(context.Background(), []string{"a", "typo"})

  assert.True(t, common.IsNotFound(err))
  assert.Len(t, records.records, 3)
  assert.Empty(t, adapter.calls)
}

func TestServiceGetFeed(t *testing.T) {
  ctx := context.Background()
  service, _, _ := seededService(t)

  feed, err := service.GetFeed(ctx, &models.FeedQuery{})
  require.NoError(t, err)
  assert.Len(t, feed, 3)

  feed, err = service.GetFeed(ctx, &models.FeedQuery{OnlyApproved: true, Limit: 1})
  require.NoError(t, err)
  require.Len(t, feed, 1)
  assert.Equal(t, "r2", feed[0].GetID())

  feed, err = service.GetFeed(ctx, &models.FeedQuery{RequestIDs: []string{"a", "b"}, Limit: 1})
  require.NoError(t, err)
  require.Len(t, feed, 2)
  assert.Equal(t, "a", feed[0].GetRequestID())
  assert.Equal(t, "b", feed[1].GetRequestID())

  _, err = service.GetFeed(ctx, &models.FeedQuery{RequestIDs: []string{"missing"}})
  assert.True(t, common.IsNotFound(err))
}

func TestServiceSetApproved(t *testing.T) {
  ctx := context.Background()
  service, records, sink := seededService(t)

  approved, err := service.SetApproved(ctx, "r1", true, "a")
  require.NoError(t, err)
  assert.True(t, approved)
  assert.True(t, records.records[1].IsApproved())
  require.Len(t, sink.events, 1)
  assert.Equal(t, &models.ApprovalChanged{
    Platform: models.PLATFORM_TWITTER,
    ID:       "r1",
    NativeID: "101",
    Approved: true,
  }, sink.events[0])
}

func TestServiceSetApprovedNotFound(t *testing.T) {
  ctx := context.Background()
  service, records, sink := seededService(t)

  _, err := service.SetApproved(ctx, "nope", false, "")
  assert.True(t, common.IsNotFound(err))

  _, err = service.SetApproved(ctx, "r0", false, "missing")
  assert.True(t, common.IsNotFound(err))

  _, err = service.SetApproved(ctx, "r2", false, "a")
  assert.True(t, common.IsNotFound(err))

  assert.True(t, records.records[0].IsApproved())
  assert.True(t, records.records[2].IsApproved())
  assert.Empty(t, sink.events)
}

func TestServiceSetApprovedIgnoresSinkFailure(t *testing.T) {
  service, records, sink := seededService(t)
  sink.err = errUpstream

  _, err := service.SetApproved(context.Background(), "r0", false, "")
  require.NoError(t, err)
  assert.False(t, records.records[0].IsApproved())
}

func TestStaticRequests(t *testing.T) {
  ctx := context.Background()
  requests := NewStaticRequests(models.PLATFORM_FACEBOOK, []string{"me/feed", "page/feed"})

  all, err := requests.Requests(ctx)
  require.NoError(t, err)
  require.Len(t, all, 2)
  assert.Equal(t, "facebook-1", all[1].ID)
  assert.Equal(t, models.PLATFORM_FACEBOOK, all[1].MappedEntity)
  assert.False(t, all[0].IsCoolingDown(time.Now()))

  all[0].LastExecutionTime = 42
  require.NoError(t, requests.Save(ctx, all[0]))
  found, err := requests.Find(ctx, "facebook-0")
  require.NoError(t, err)
  assert.Equal(t, int64(42), found.LastExecutionTime)

  _, err = requests.Find(ctx, "facebook-9")
  assert.True(t, common.IsNotFound(err))
}

type capturePublisher struct {
  subject string
  data    []byte
}

func (p *capturePublisher) Publish(subject string, data []byte) error {
  p.subject = subject
  p.data = data
  return nil
}

func TestNatsSink(t *testing.T) {
  publisher := &capturePublisher{}
  sink := &NatsSink{Conn: publisher}
  err := sink.ApprovalChanged(context.Background(), &models.ApprovalChanged{Platform: "twitter", ID: "x", NativeID: "9", Approved: true})
  require.NoError(t, err)
  assert.Equal(t, config.NATS_APPROVAL_CHANGED, publisher.subject)
  assert.JSONEq(t, `{"platform":"twitter","id":"x","native_id":"9","approved":true}`, string(publisher.data))
}
