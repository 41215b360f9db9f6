// This file defines the post repository. Posts are listed newest first on
// the front page and loaded individually on their permalink. Deleting a
// post also removes its comments and likes.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/multi-user-blog/internal/model"
)

// FrontPageLimit is the number of posts shown on the front page.
const FrontPageLimit = 10

// PostRepo encapsulates all database queries related to posts.
type PostRepo struct {
	db *sql.DB
}

func NewPostRepo(db *sql.DB) *PostRepo {
	return &PostRepo{db: db}
}

const postColumns = "id, title, content, author, created_at, last_modified"

// Create inserts p and populates ID and both timestamps.
func (r *PostRepo) Create(ctx context.Context, p *model.Post) error {
	now := time.Now().UTC().Truncate(time.Second)
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO posts (title, content, author, created_at, last_modified) VALUES (?, ?, ?, ?, ?)",
		p.Title, p.Content, p.Author, now, now)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	p.ID = uint64(id)
	p.CreatedAt, p.UpdatedAt = now, now
	return nil
}

// GetByID returns the post or ErrNotFound.
func (r *PostRepo) GetByID(ctx context.Context, id uint64) (*model.Post, error) {
	var p model.Post
	err := r.db.QueryRowContext(ctx, "SELECT "+postColumns+" FROM posts WHERE id = ?", id).
		Scan(&p.ID, &p.Title, &p.Content, &p.Author, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select post: %w", err)
	}
	return &p, nil
}

// ListRecent returns up to limit posts, newest first.
func (r *PostRepo) ListRecent(ctx context.Context, limit int) ([]*model.Post, error) {
	if limit <= 0 {
		limit = FrontPageLimit
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+postColumns+" FROM posts ORDER BY created_at DESC, id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()
	return scanPosts(rows)
}

// ListByAuthor returns every post written by author, newest first.
func (r *PostRepo) ListByAuthor(ctx context.Context, author string) ([]*model.Post, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+postColumns+" FROM posts WHERE author = ? ORDER BY created_at DESC, id DESC", author)
	if err != nil {
		return nil, fmt.Errorf("list posts by author: %w", err)
	}
	defer rows.Close()
	return scanPosts(rows)
}

func scanPosts(rows *sql.Rows) ([]*model.Post, error) {
	out := []*model.Post{}
	for rows.Next() {
		p := new(model.Post)
		if err := rows.Scan(&p.ID, &p.Title, &p.Content, &p.Author, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update replaces the title and content of a post and bumps
// last_modified. The author column is never written after insert.
// It returns ErrNotFound when no row matches.
func (r *PostRepo) Update(ctx context.Context, p *model.Post) error {
	now := time.Now().UTC().Truncate(time.Second)
	res, err := r.db.ExecContext(ctx,
		"UPDATE posts SET title = ?, content = ?, last_modified = ? WHERE id = ?",
		p.Title, p.Content, now, p.ID)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	p.UpdatedAt = now
	return nil
}

// Delete removes a post together with its comments and likes inside a
// single transaction. It returns ErrNotFound if the post is already gone.
func (r *PostRepo) Delete(ctx context.Context, id uint64) error {
	return withTx(ctx, r.db, func(tx DBTX) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM likes WHERE post_id = ?", id); err != nil {
			return fmt.Errorf("delete likes: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM comments WHERE post_id = ?", id); err != nil {
			return fmt.Errorf("delete comments: %w", err)
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM posts WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("delete post: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		return nil
	})
}
