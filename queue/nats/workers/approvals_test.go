package workers

import (
  "context"
  "testing"
  "time"

  "github.com/stretchr/testify/assert"
  "github.com/stretchr/testify/require"

  "hydra.local/social-aggregator/common"
  "hydra.local/social-aggregator/models"
)

type recordingMirror struct {
  events []*models.ApprovalChanged
}

func (m *recordingMirror) ApprovalChanged(ctx context.Context, event *models.ApprovalChanged) error {
  m.events = append(m.events, event)
  return nil
}

func TestApprovalsHandle(t *testing.T) {
  mirror := &recordingMirror{}
  h := &Approvals{Locker: &common.LocalLocker{}, Mirror: mirror}

  h.Handle(context.Background(), []byte(`{"platform":"twitter","id":"a","native_id":"42","approved":true}`))
  h.Handle(context.Background(), []byte(`not json`))

  require.Len(t, mirror.events, 1)
  assert.Equal(t, "42", mirror.events[0].NativeID)
  assert.True(t, mirror.events[0].Approved)
}

func TestApprovalsHandleWaitsForLockedRecord(t *testing.T) {
  mirror := &recordingMirror{}
  locker := &common.LocalLocker{}
  h := &Approvals{Locker: locker, Mirror: mirror, Wait: 2 * time.Second}

  release, ok := locker.Acquire(context.Background(), "hydra:locks:approval:twitter:42", 0)
  require.True(t, ok)
  time.AfterFunc(150*time.Millisecond, release)

  h.Handle(context.Background(), []byte(`{"platform":"twitter","native_id":"42","approved":false}`))
  require.Len(t, mirror.events, 1)
  assert.False(t, mirror.events[0].Approved)
}

func TestApprovalsHandleGivesUpOnStuckLock(t *testing.T) {
  mirror := &recordingMirror{}
  locker := &common.LocalLocker{}
  h := &Approvals{Locker: locker, Mirror: mirror, Wait: 200 * time.Millisecond}

  release, ok := locker.Acquire(context.Background(), "hydra:locks:approval:twitter:42", 0)
  require.True(t, ok)
  defer release()

  h.Handle(context.Background(), []byte(`{"platform":"twitter","native_id":"42","approved":false}`))
  assert.Empty(t, mirror.events)
}
