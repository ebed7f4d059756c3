package database

import (
	"context"
	"time"

	"yatube/internal/models"

	"github.com/google/uuid"
)

const commentSelect = `
	SELECT c.id, c.post_id, c.author_id, u.username AS author_username, c.text, c.created_at, c.is_read
	FROM comments c
	JOIN users u ON u.id = c.author_id`

// CreateComment inserts a new, unread comment.
func (p *PostgresDB) CreateComment(ctx context.Context, comment *models.Comment) error {
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO comments (id, post_id, author_id, text, created_at, is_read)
		VALUES (:id, :post_id, :author_id, :text, :created_at, :is_read)
	`
	if _, err := p.DB.NamedExecContext(ctx, query, comment); err != nil {
		return dbError(err, "comment", "save comment")
	}
	return nil
}

// GetPostComments lists a post's comments in the order they were written.
func (p *PostgresDB) GetPostComments(ctx context.Context, postID uuid.UUID) ([]*models.Comment, error) {
	comments := []*models.Comment{}
	query := commentSelect + ` WHERE c.post_id = $1 ORDER BY c.created_at, c.id`
	if err := p.DB.SelectContext(ctx, &comments, query, postID); err != nil {
		return nil, dbError(err, "comment", "query post comments")
	}
	return comments, nil
}

// GetUnreadComments lists unread comments on posts written by postAuthorID.
func (p *PostgresDB) GetUnreadComments(ctx context.Context, postAuthorID uuid.UUID) ([]*models.Comment, error) {
	comments := []*models.Comment{}
	query := commentSelect + `
		JOIN posts p ON p.id = c.post_id
		WHERE p.author_id = $1 AND NOT c.is_read
		ORDER BY c.created_at DESC`
	if err := p.DB.SelectContext(ctx, &comments, query, postAuthorID); err != nil {
		return nil, dbError(err, "comment", "query unread comments")
	}
	return comments, nil
}

func (p *PostgresDB) MarkCommentsRead(ctx context.Context, postAuthorID uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	query := `
		UPDATE comments SET is_read = TRUE
		WHERE id = ANY($1::uuid[])
			AND post_id IN (SELECT id FROM posts WHERE author_id = $2)`
	if _, err := p.DB.ExecContext(ctx, query, uuidArray(ids), postAuthorID); err != nil {
		return dbError(err, "comment", "mark comments read")
	}
	return nil
}
