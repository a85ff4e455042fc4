package models

import "time"

// DocumentItem is one entry of a named per-user sub-collection. The payload
// is opaque: the proxy validates only that it is a non-null JSON object and
// passes it through untouched apart from the timestamp stamps.
type DocumentItem struct {
	ID        string                 `json:"id"`
	Data      map[string]interface{} `json:"data"`
	CreatedAt time.Time              `json:"createdAt"`
	UpdatedAt time.Time              `json:"updatedAt"`
}
