package database

import (
	"context"
	"time"

	"yatube/internal/models"

	"github.com/google/uuid"
)

const groupColumns = `id, title, slug, description, created_at`

// CreateGroup inserts a new group record. A taken slug is reported as a duplicate.
func (p *PostgresDB) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.CreatedAt.IsZero() {
		group.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO groups (id, title, slug, description, created_at)
		VALUES (:id, :title, :slug, :description, :created_at)
	`
	if _, err := p.DB.NamedExecContext(ctx, query, group); err != nil {
		return dbError(err, "group", "create group")
	}
	return nil
}

// GetGroup fetches a group by its ID.
func (p *PostgresDB) GetGroup(ctx context.Context, id uuid.UUID) (*models.Group, error) {
	var group models.Group
	if err := p.DB.GetContext(ctx, &group, `SELECT `+groupColumns+` FROM groups WHERE id = $1`, id); err != nil {
		return nil, dbError(err, "group", "query group by id")
	}
	return &group, nil
}

// GetGroupBySlug fetches a group by its slug.
func (p *PostgresDB) GetGroupBySlug(ctx context.Context, slug string) (*models.Group, error) {
	var group models.Group
	if err := p.DB.GetContext(ctx, &group, `SELECT `+groupColumns+` FROM groups WHERE slug = $1`, slug); err != nil {
		return nil, dbError(err, "group", "query group by slug")
	}
	return &group, nil
}

// GetAllGroups fetches all group records.
func (p *PostgresDB) GetAllGroups(ctx context.Context) ([]*models.Group, error) {
	groups := []*models.Group{}
	if err := p.DB.SelectContext(ctx, &groups, `SELECT `+groupColumns+` FROM groups ORDER BY title`); err != nil {
		return nil, dbError(err, "group", "query all groups")
	}
	return groups, nil
}

// GetPopularGroups ranks groups by how many posts they hold.
func (p *PostgresDB) GetPopularGroups(ctx context.Context, limit int) ([]*models.GroupStat, error) {
	query := `
		SELECT g.id, g.title, g.slug, g.description, g.created_at, COUNT(p.id) AS posts
		FROM groups g
		LEFT JOIN posts p ON p.group_id = g.id
		GROUP BY g.id
		ORDER BY posts DESC, g.title
		LIMIT $1`
	stats := []*models.GroupStat{}
	if err := p.DB.SelectContext(ctx, &stats, query, limit); err != nil {
		return nil, dbError(err, "group", "query popular groups")
	}
	return stats, nil
}

// DeleteGroup removes a group; its posts stay and lose their group.
func (p *PostgresDB) DeleteGroup(ctx context.Context, id uuid.UUID) error {
	result, err := p.DB.ExecContext(ctx, `DELETE FROM groups WHERE id = $1`, id)
	if err != nil {
		return dbError(err, "group", "delete group")
	}
	return expectAffected(result, "group")
}
