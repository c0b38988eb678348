package admin

import "codeberg.org/askrouter/server/internal/curated"

type ReloadResponse struct {
	Status string        `json:"status"`
	Stats  curated.Stats `json:"stats"`
}

// header carrying the admin key
const KeyHeader = "X-Admin-Key"
