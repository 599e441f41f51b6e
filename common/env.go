package common

import (
  "os"
  "strconv"
  "strings"
)

func GetEnvString(key string) string {
  return os.Getenv(key)
}

func GetEnvStringOr(key string, fallback string) string {
  if value, ok := os.LookupEnv(key); ok && value != "" {
    return value
  }
  return fallback
}

func GetEnvInt(key string) int {
  value, _ := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
  return value
}

func GetEnvIntOr(key string, fallback int) int {
  value, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
  if err != nil {
    return fallback
  }
  return value
}

func GetEnvBool(key string) bool {
  value, _ := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
  return value
}

// items are separated by ";" so a single item may carry commas
func GetEnvArray(key string) []string {
  var items []string
  for _, item := range strings.Split(os.Getenv(key), ";") {
    item = strings.TrimSpace(item)
    if item != "" {
      items = append(items, item)
    }
  }
  return items
}
