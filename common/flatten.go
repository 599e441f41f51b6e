package common

import (
  "strconv"

  "github.com/tidwall/gjson"
)

// FlatMap keeps leaf values in the order they were met during a depth-first walk.
type FlatMap struct {
  Keys   []string
  Values map[string]gjson.Result
}

func Flatten(value gjson.Result, glue string) *FlatMap {
  m := &FlatMap{
    Values: map[string]gjson.Result{},
  }
  m.walk("", value, glue)
  return m
}

func FlattenBytes(data []byte, glue string) *FlatMap {
  return Flatten(gjson.ParseBytes(data), glue)
}

func (m *FlatMap) walk(prefix string, value gjson.Result, glue string) {
  if !value.IsObject() && !value.IsArray() {
    m.set(prefix, value)
    return
  }
  join := func(segment string) string {
    if prefix == "" {
      return segment
    }
    return prefix + glue + segment
  }
  if value.IsArray() {
    index := 0
    value.ForEach(func(_, child gjson.Result) bool {
      m.walk(join(strconv.Itoa(index)), child, glue)
      index++
      return true
    })
    return
  }
  value.ForEach(func(key, child gjson.Result) bool {
    m.walk(join(key.String()), child, glue)
    return true
  })
}

func (m *FlatMap) set(key string, value gjson.Result) {
  if _, ok := m.Values[key]; !ok {
    m.Keys = append(m.Keys, key)
  }
  m.Values[key] = value
}

func (m *FlatMap) Len() int {
  return len(m.Keys)
}

func (m *FlatMap) Has(key string) bool {
  _, ok := m.Values[key]
  return ok
}

func (m *FlatMap) Get(key string) gjson.Result {
  return m.Values[key]
}

// String returns "" for missing and null leaves.
func (m *FlatMap) String(key string) string {
  value, ok := m.Values[key]
  if !ok || value.Type == gjson.Null {
    return ""
  }
  return value.String()
}

func (m *FlatMap) Map() map[string]interface{} {
  out := make(map[string]interface{}, len(m.Keys))
  for _, key := range m.Keys {
    out[key] = m.Values[key].Value()
  }
  return out
}
