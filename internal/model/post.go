package model

import "time"

// Post is a blog entry written by a single user. Author holds the
// creator's username; it is set when the row is inserted and no update
// statement ever touches it.
type Post struct {
	ID        uint64    // posts.id
	Title     string    // posts.title
	Content   string    // posts.content
	Author    string    // posts.author
	CreatedAt time.Time // posts.created_at
	UpdatedAt time.Time // posts.last_modified
}

// AuthorName returns the username recorded as the post's author.
func (p *Post) AuthorName() string {
	if p == nil {
		return ""
	}
	return p.Author
}
