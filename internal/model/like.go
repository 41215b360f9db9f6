package model

import "time"

// Like records that Username liked the post PostID. The pair is unique
// in the `likes` table.
type Like struct {
	ID        uint64    // likes.id
	PostID    uint64    // likes.post_id
	Username  string    // likes.username
	CreatedAt time.Time // likes.created_at
}
