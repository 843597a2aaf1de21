package domain

import "time"

type ContentStatus string

const (
	ContentPending  ContentStatus = "PENDING"
	ContentApproved ContentStatus = "APPROVED"
	ContentRejected ContentStatus = "REJECTED"
)

// Content is the advertiser's creative. Moderation happens elsewhere; a hold
// may only reference content that is already APPROVED.
type Content struct {
	ID         int64         `json:"id"`
	UploaderID int64         `json:"uploader_id"`
	Title      string        `json:"title"`
	Status     ContentStatus `json:"status"`
	CreatedAt  time.Time     `json:"created_at"`
}
