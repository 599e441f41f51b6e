package common

import (
  "os"
  "runtime"
  "time"

  log "github.com/sirupsen/logrus"
)

var logger = log.New()

func init() {
  logger.Out = os.Stdout
  logger.Formatter = &log.JSONFormatter{
    TimestampFormat: time.RFC3339Nano,
  }
  level, err := log.ParseLevel(GetEnvStringOr("LOG_LEVEL", "info"))
  if err != nil {
    level = log.InfoLevel
  }
  logger.SetLevel(level)
}

func GetLogger() *log.Entry {
  function, file, line, _ := runtime.Caller(1)
  entry := logger.WithFields(log.Fields{
    "function": runtime.FuncForPC(function).Name(),
    "file":     file,
    "line":     line,
  })
  return entry
}
