package common

import (
  "errors"
  "fmt"
)

var ErrSyncLocked = errors.New("sync already running")

type AuthError struct {
  Platform string
  Status   int
  Body     string
}

func (e *AuthError) Error() string {
  return fmt.Sprintf("%v authorization failed: status[%d] body[%v]", e.Platform, e.Status, e.Body)
}

type ApiError struct {
  Platform string
  Status   int
  Body     string
}

func (e *ApiError) Error() string {
  return fmt.Sprintf("%v request was unsuccessful: status[%d] body[%v]", e.Platform, e.Status, e.Body)
}

type MalformedResponseError struct {
  Platform string
  Reason   string
  Body     string
}

func (e *MalformedResponseError) Error() string {
  return fmt.Sprintf("%v response malformed: %v body[%v]", e.Platform, e.Reason, e.Body)
}

type NotFoundError struct {
  Entity string
  Key    string
}

func (e *NotFoundError) Error() string {
  return fmt.Sprintf("%v not found: %v", e.Entity, e.Key)
}

type ConfigurationError struct {
  Platform string
  Reason   string
}

func (e *ConfigurationError) Error() string {
  return fmt.Sprintf("%v not configured: %v", e.Platform, e.Reason)
}

func IsNotFound(err error) bool {
  var target *NotFoundError
  return errors.As(err, &target)
}
