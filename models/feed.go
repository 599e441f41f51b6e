package models

type FeedQuery struct {
  OnlyApproved bool
  Limit        int
  RequestIDs   []string
}

type ApprovalChanged struct {
  Platform string `json:"platform"`
  ID       string `json:"id"`
  NativeID string `json:"native_id"`
  Approved bool   `json:"approved"`
}
