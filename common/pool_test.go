package common

import (
  "context"
  "testing"
  "time"

  "github.com/stretchr/testify/assert"
)

func TestLocalLocker(t *testing.T) {
  locker := &LocalLocker{}
  ctx := context.Background()

  release, ok := locker.Acquire(ctx, "sync:twitter", time.Minute)
  assert.True(t, ok)

  _, ok = locker.Acquire(ctx, "sync:twitter", time.Minute)
  assert.False(t, ok)

  _, ok = locker.Acquire(ctx, "sync:youtube", time.Minute)
  assert.True(t, ok)

  release()
  _, ok = locker.Acquire(ctx, "sync:twitter", time.Minute)
  assert.True(t, ok)
}

func TestGetEnvArray(t *testing.T) {
  t.Setenv("HYDRA_TEST_QUEUE", "hydra_sync,6; default,1 ;")

  assert.Equal(t, []string{"hydra_sync,6", "default,1"}, GetEnvArray("HYDRA_TEST_QUEUE"))
  assert.Equal(t, 7, GetEnvIntOr("HYDRA_TEST_MISSING", 7))
  assert.Equal(t, "x", GetEnvStringOr("HYDRA_TEST_MISSING", "x"))
}
