package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"yatube/internal/models"

	"github.com/google/uuid"
)

const postSelect = `
	SELECT p.id, p.title, p.text, p.created_at, p.author_id,
		COALESCE(u.username, '') AS author_username,
		p.group_id, g.slug AS group_slug, g.title AS group_title,
		p.image, p.is_pinned
	FROM posts p
	LEFT JOIN users u ON u.id = p.author_id
	LEFT JOIN groups g ON g.id = p.group_id`

// postWhere renders the filter into a WHERE clause with positional arguments.
func postWhere(filter models.PostFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}
	bind := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.GroupID != nil {
		conds = append(conds, "p.group_id = "+bind(*filter.GroupID))
	}
	if filter.AuthorID != nil {
		conds = append(conds, "p.author_id = "+bind(*filter.AuthorID))
	}
	if filter.FollowerID != nil {
		conds = append(conds, "p.author_id IN (SELECT author_id FROM follows WHERE user_id = "+bind(*filter.FollowerID)+")")
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		ph := bind(containsPattern(q))
		conds = append(conds, fmt.Sprintf("(p.text ILIKE %[1]s OR u.username ILIKE %[1]s OR g.title ILIKE %[1]s)", ph))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// CreatePost inserts a new post.
func (p *PostgresDB) CreatePost(ctx context.Context, post *models.Post) error {
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO posts (id, title, text, created_at, author_id, group_id, image, is_pinned)
		VALUES (:id, :title, :text, :created_at, :author_id, :group_id, :image, :is_pinned)
	`
	if _, err := p.DB.NamedExecContext(ctx, query, post); err != nil {
		return dbError(err, "post", "save post")
	}
	return nil
}

// UpdatePost rewrites the editable fields. Author and creation time never change.
func (p *PostgresDB) UpdatePost(ctx context.Context, post *models.Post) error {
	query := `
		UPDATE posts SET title = :title, text = :text, group_id = :group_id, image = :image, is_pinned = :is_pinned
		WHERE id = :id
	`
	result, err := p.DB.NamedExecContext(ctx, query, post)
	if err != nil {
		return dbError(err, "post", "update post")
	}
	return expectAffected(result, "post")
}

func (p *PostgresDB) DeletePost(ctx context.Context, id uuid.UUID) error {
	result, err := p.DB.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return dbError(err, "post", "delete post")
	}
	return expectAffected(result, "post")
}

// GetPost fetches a post by its ID along with author and group names.
func (p *PostgresDB) GetPost(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	var post models.Post
	if err := p.DB.GetContext(ctx, &post, postSelect+` WHERE p.id = $1`, id); err != nil {
		return nil, dbError(err, "post", "query post by id")
	}
	return &post, nil
}

func (p *PostgresDB) CountPosts(ctx context.Context, filter models.PostFilter) (int, error) {
	where, args := postWhere(filter)
	query := `
		SELECT COUNT(*)
		FROM posts p
		LEFT JOIN users u ON u.id = p.author_id
		LEFT JOIN groups g ON g.id = p.group_id` + where

	var count int
	if err := p.DB.GetContext(ctx, &count, query, args...); err != nil {
		return 0, dbError(err, "post", "count posts")
	}
	return count, nil
}

// ListPosts returns one window of the filtered posts, newest first.
func (p *PostgresDB) ListPosts(ctx context.Context, filter models.PostFilter, limit, offset int) ([]*models.Post, error) {
	where, args := postWhere(filter)
	query := postSelect + where +
		fmt.Sprintf(" ORDER BY p.created_at DESC, p.id LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	posts := []*models.Post{}
	if err := p.DB.SelectContext(ctx, &posts, query, args...); err != nil {
		return nil, dbError(err, "post", "list posts")
	}
	return posts, nil
}
