package database

import (
	"context"
	"time"

	"yatube/internal/models"
	"yatube/internal/utils"

	"github.com/google/uuid"
)

// --- Follow Methods ---

// CreateFollow stores the edge unless the pair already exists. The boolean
// reports whether a row was inserted.
func (p *PostgresDB) CreateFollow(ctx context.Context, follow *models.Follow) (bool, error) {
	if follow.CreatedAt.IsZero() {
		follow.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO follows (id, user_id, author_id, is_read, created_at)
		VALUES (:id, :user_id, :author_id, :is_read, :created_at)
		ON CONFLICT (user_id, author_id) DO NOTHING
	`
	result, err := p.DB.NamedExecContext(ctx, query, follow)
	if err != nil {
		return false, dbError(err, "follow", "save follow")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, utils.NewAppError(utils.ErrDatabase, "failed to get rows affected", err)
	}
	return rows > 0, nil
}

// DeleteFollow removes the edge if present. A missing edge is not an error.
func (p *PostgresDB) DeleteFollow(ctx context.Context, userID, authorID uuid.UUID) error {
	_, err := p.DB.ExecContext(ctx, `DELETE FROM follows WHERE user_id = $1 AND author_id = $2`, userID, authorID)
	if err != nil {
		return dbError(err, "follow", "delete follow")
	}
	return nil
}

func (p *PostgresDB) IsFollowing(ctx context.Context, userID, authorID uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM follows WHERE user_id = $1 AND author_id = $2)`
	if err := p.DB.GetContext(ctx, &exists, query, userID, authorID); err != nil {
		return false, dbError(err, "follow", "check follow")
	}
	return exists, nil
}

func (p *PostgresDB) CountFollowers(ctx context.Context, authorID uuid.UUID) (int, error) {
	var count int
	if err := p.DB.GetContext(ctx, &count, `SELECT COUNT(*) FROM follows WHERE author_id = $1`, authorID); err != nil {
		return 0, dbError(err, "follow", "count followers")
	}
	return count, nil
}

func (p *PostgresDB) CountFollowing(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	if err := p.DB.GetContext(ctx, &count, `SELECT COUNT(*) FROM follows WHERE user_id = $1`, userID); err != nil {
		return 0, dbError(err, "follow", "count following")
	}
	return count, nil
}

// GetUnreadFollows lists unread follow edges that target authorID.
func (p *PostgresDB) GetUnreadFollows(ctx context.Context, authorID uuid.UUID) ([]*models.Follow, error) {
	query := `
		SELECT f.id, f.user_id, f.author_id, u.username, f.is_read, f.created_at
		FROM follows f
		JOIN users u ON u.id = f.user_id
		WHERE f.author_id = $1 AND NOT f.is_read
		ORDER BY f.created_at DESC`
	follows := []*models.Follow{}
	if err := p.DB.SelectContext(ctx, &follows, query, authorID); err != nil {
		return nil, dbError(err, "follow", "query unread follows")
	}
	return follows, nil
}

func (p *PostgresDB) MarkFollowsRead(ctx context.Context, authorID uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	query := `UPDATE follows SET is_read = TRUE WHERE id = ANY($1::uuid[]) AND author_id = $2`
	if _, err := p.DB.ExecContext(ctx, query, uuidArray(ids), authorID); err != nil {
		return dbError(err, "follow", "mark follows read")
	}
	return nil
}

// --- Reaction Methods ---

const reactionSelect = `
	SELECT r.id, r.user_id, r.post_id, r.kind, u.username, r.is_read, r.created_at
	FROM reactions r
	JOIN users u ON u.id = r.user_id`

// GetReaction returns the reaction the user holds on the post, of either kind.
func (p *PostgresDB) GetReaction(ctx context.Context, userID, postID uuid.UUID) (*models.Reaction, error) {
	var reaction models.Reaction
	query := reactionSelect + ` WHERE r.user_id = $1 AND r.post_id = $2`
	if err := p.DB.GetContext(ctx, &reaction, query, userID, postID); err != nil {
		return nil, dbError(err, "reaction", "query reaction")
	}
	return &reaction, nil
}

// CreateReaction inserts a reaction. A second reaction by the same user on the
// same post violates reactions_user_post_key and is reported as a duplicate.
func (p *PostgresDB) CreateReaction(ctx context.Context, reaction *models.Reaction) error {
	if reaction.CreatedAt.IsZero() {
		reaction.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO reactions (id, user_id, post_id, kind, is_read, created_at)
		VALUES (:id, :user_id, :post_id, :kind, :is_read, :created_at)
	`
	if _, err := p.DB.NamedExecContext(ctx, query, reaction); err != nil {
		return dbError(err, "reaction", "save reaction")
	}
	return nil
}

func (p *PostgresDB) DeleteReaction(ctx context.Context, id uuid.UUID) error {
	result, err := p.DB.ExecContext(ctx, `DELETE FROM reactions WHERE id = $1`, id)
	if err != nil {
		return dbError(err, "reaction", "delete reaction")
	}
	return expectAffected(result, "reaction")
}

func (p *PostgresDB) CountReactions(ctx context.Context, postID uuid.UUID) (*models.ReactionCounts, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE kind = 'like') AS likes,
			COUNT(*) FILTER (WHERE kind = 'dislike') AS dislikes
		FROM reactions WHERE post_id = $1`
	var counts models.ReactionCounts
	if err := p.DB.GetContext(ctx, &counts, query, postID); err != nil {
		return nil, dbError(err, "reaction", "count reactions")
	}
	return &counts, nil
}

// GetUnreadReactions lists unread reactions of one kind on posts written by postAuthorID.
func (p *PostgresDB) GetUnreadReactions(ctx context.Context, postAuthorID uuid.UUID, kind models.ReactionKind) ([]*models.Reaction, error) {
	query := reactionSelect + `
		JOIN posts p ON p.id = r.post_id
		WHERE p.author_id = $1 AND r.kind = $2 AND NOT r.is_read
		ORDER BY r.created_at DESC`
	reactions := []*models.Reaction{}
	if err := p.DB.SelectContext(ctx, &reactions, query, postAuthorID, kind); err != nil {
		return nil, dbError(err, "reaction", "query unread reactions")
	}
	return reactions, nil
}

func (p *PostgresDB) MarkReactionsRead(ctx context.Context, postAuthorID uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	query := `
		UPDATE reactions SET is_read = TRUE
		WHERE id = ANY($1::uuid[])
			AND post_id IN (SELECT id FROM posts WHERE author_id = $2)`
	if _, err := p.DB.ExecContext(ctx, query, uuidArray(ids), postAuthorID); err != nil {
		return dbError(err, "reaction", "mark reactions read")
	}
	return nil
}
