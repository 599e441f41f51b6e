package models

import (
  "testing"
  "time"

  "github.com/stretchr/testify/assert"
)

func TestSyncRequest_IsCoolingDown(t *testing.T) {
  now := time.Unix(1700000000, 0)
  request := &SyncRequest{
    RefreshLifeTime:   3600,
    LastExecutionTime: now.Unix() - 1800,
  }
  assert.True(t, request.IsCoolingDown(now))

  request.LastExecutionTime = now.Unix() - 3600
  assert.False(t, request.IsCoolingDown(now))
}

func TestSyncRequest_Cursor(t *testing.T) {
  request := &SyncRequest{LastMaxID: "42"}
  _, ok := request.Cursor()
  assert.False(t, ok)

  request.UseSinceID = true
  cursor, ok := request.Cursor()
  assert.True(t, ok)
  assert.Equal(t, "42", cursor)

  request.LastMaxID = ""
  _, ok = request.Cursor()
  assert.False(t, ok)
}

func TestNewRecord(t *testing.T) {
  for _, platform := range Platforms {
    record := NewRecord(platform)
    if assert.NotNil(t, record) {
      assert.Equal(t, platform, record.Platform())
    }
  }
  assert.Nil(t, NewRecord("myspace"))
}
