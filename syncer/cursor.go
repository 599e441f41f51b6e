package syncer

import (
  "math/big"
  "strings"
)

func parseID(id string) (*big.Int, bool) {
  if id == "" {
    return nil, false
  }
  return new(big.Int).SetString(id, 10)
}

// CompareIDs orders decimal ids numerically at any length and falls back to text order otherwise.
func CompareIDs(a, b string) int {
  x, okA := parseID(a)
  y, okB := parseID(b)
  if okA && okB {
    return x.Cmp(y)
  }
  return strings.Compare(a, b)
}

func MaxID(current, candidate string) string {
  if current == "" || CompareIDs(candidate, current) > 0 {
    return candidate
  }
  return current
}
