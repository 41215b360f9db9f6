package model

import "time"

// Comment is a reply attached to a post. Like posts, the author is
// fixed at creation time.
type Comment struct {
	ID        uint64    // comments.id
	PostID    uint64    // comments.post_id
	Content   string    // comments.content
	Author    string    // comments.author
	CreatedAt time.Time // comments.created_at
	UpdatedAt time.Time // comments.last_modified
}

// AuthorName returns the username recorded as the comment's author.
func (c *Comment) AuthorName() string {
	if c == nil {
		return ""
	}
	return c.Author
}
