package common

import (
  "errors"
  "fmt"
  "strconv"
  "strings"
  "time"

  "github.com/tidwall/gjson"
)

type DateParser func(value gjson.Result) (time.Time, error)

func layoutParser(layouts ...string) DateParser {
  return func(value gjson.Result) (t time.Time, err error) {
    raw := strings.TrimSpace(value.String())
    if raw == "" {
      err = errors.New("empty date value")
      return
    }
    for _, layout := range layouts {
      if t, err = time.Parse(layout, raw); err == nil {
        return
      }
    }
    err = errors.New(fmt.Sprintf("date [%v] does not match %v", raw, layouts))
    return
  }
}

// twitter uses the ruby layout for created_at
var ParseRubyDate = layoutParser(time.RubyDate, time.RFC1123Z, time.RFC822Z)

// graph api sends offsets without a colon
var ParseGraphDate = layoutParser("2006-01-02T15:04:05-0700", time.RFC3339, time.RFC1123Z)

var ParseISODate = layoutParser(time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.000Z")

func ParseEpochDate(value gjson.Result) (t time.Time, err error) {
  var seconds int64
  switch value.Type {
  case gjson.Number:
    seconds = value.Int()
  case gjson.String:
    seconds, err = strconv.ParseInt(strings.TrimSpace(value.Str), 10, 64)
    if err != nil {
      return
    }
  default:
    err = errors.New(fmt.Sprintf("epoch [%v] is not a number", value.Raw))
    return
  }
  t = time.Unix(seconds, 0).UTC()
  return
}
