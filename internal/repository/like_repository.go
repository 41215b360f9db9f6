package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/iliyamo/multi-user-blog/internal/model"
)

// LikeRepo records which users liked which posts. The (post_id,
// username) pair is unique.
type LikeRepo struct {
	db *sql.DB
}

func NewLikeRepo(db *sql.DB) *LikeRepo {
	return &LikeRepo{db: db}
}

// CountByPost returns the number of likes on a post.
func (r *LikeRepo) CountByPost(ctx context.Context, postID uint64) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM likes WHERE post_id = ?", postID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count likes: %w", err)
	}
	return n, nil
}

// ListByPost returns the likes of a post in the order they were given.
func (r *LikeRepo) ListByPost(ctx context.Context, postID uint64) ([]*model.Like, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, post_id, username, created_at FROM likes WHERE post_id = ? ORDER BY id", postID)
	if err != nil {
		return nil, fmt.Errorf("list likes: %w", err)
	}
	defer rows.Close()

	out := []*model.Like{}
	for rows.Next() {
		l := new(model.Like)
		if err := rows.Scan(&l.ID, &l.PostID, &l.Username, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Exists reports whether username has liked the post.
func (r *LikeRepo) Exists(ctx context.Context, postID uint64, username string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM likes WHERE post_id = ? AND username = ?", postID, username).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("select like: %w", err)
	}
	return n > 0, nil
}

// Toggle removes the like of username on the post if present, otherwise
// records one. It returns true when the post is liked afterwards.
func (r *LikeRepo) Toggle(ctx context.Context, postID uint64, username string) (liked bool, err error) {
	err = withTx(ctx, r.db, func(tx DBTX) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM likes WHERE post_id = ? AND username = ?", postID, username)
		if err != nil {
			return fmt.Errorf("delete like: %w", err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			liked = false
			return nil
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO likes (post_id, username, created_at) VALUES (?, ?, ?)",
			postID, username, time.Now().UTC().Truncate(time.Second))
		if err != nil && !isDuplicateKey(err) {
			return fmt.Errorf("insert like: %w", err)
		}
		// a concurrent toggle that inserted first leaves the post liked too
		liked = true
		return nil
	})
	return liked, err
}
