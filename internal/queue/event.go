// Package queue defines message payloads exchanged over the message broker.
package queue

// ActivityQueue is the durable queue carrying ActivityEvent messages.
const ActivityQueue = "blog.activity"

// Activity kinds.
const (
	KindUserRegistered = "user.registered"
	KindPostCreated    = "post.created"
	KindPostEdited     = "post.edited"
	KindPostDeleted    = "post.deleted"
	KindCommentCreated = "comment.created"
	KindCommentEdited  = "comment.edited"
	KindCommentDeleted = "comment.deleted"
	KindLikeToggled    = "like.toggled"
)

// ActivityEvent is published after a blog mutation has been applied. It
// contains enough information for downstream consumers to log or notify
// without querying the primary database.
type ActivityEvent struct {
	Kind       string `json:"kind"`
	Username   string `json:"username"`
	PostID     uint64 `json:"post_id,omitempty"`
	CommentID  uint64 `json:"comment_id,omitempty"`
	Liked      *bool  `json:"liked,omitempty"`
	OccurredAt string `json:"occurred_at"`
}
