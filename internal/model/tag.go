package model

// Tag is a per-user label attached to snippets through the snippet_tags
// join table. Names are normalized to lowercase on write and unique per
// (user_id, name) — attaching "TODO" and "todo" yields the same tag row.
type Tag struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}
