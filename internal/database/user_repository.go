package database

import (
	"context"
	"time"

	"yatube/internal/models"

	"github.com/google/uuid"
)

const userColumns = `id, username, email, first_name, last_name, password_hash, is_admin, created_at`

// CreateUser inserts a new user into the database.
func (p *PostgresDB) CreateUser(ctx context.Context, user *models.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO users (id, username, email, first_name, last_name, password_hash, is_admin, created_at)
		VALUES (:id, :username, :email, :first_name, :last_name, :password_hash, :is_admin, :created_at)
	`
	if _, err := p.DB.NamedExecContext(ctx, query, user); err != nil {
		return dbError(err, "user", "save user")
	}
	return nil
}

// GetUser fetches a user by their ID.
func (p *PostgresDB) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := p.DB.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err != nil {
		return nil, dbError(err, "user", "query user by id")
	}
	return &user, nil
}

// GetUserByUsername fetches a user by their unique username.
func (p *PostgresDB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := p.DB.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	if err != nil {
		return nil, dbError(err, "user", "query user by username")
	}
	return &user, nil
}

// GetAllUsers fetches all users ordered by username.
func (p *PostgresDB) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	users := []*models.User{}
	if err := p.DB.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users ORDER BY username`); err != nil {
		return nil, dbError(err, "user", "query all users")
	}
	return users, nil
}

func (p *PostgresDB) CountUsers(ctx context.Context) (int, error) {
	var count int
	if err := p.DB.GetContext(ctx, &count, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, dbError(err, "user", "count users")
	}
	return count, nil
}

// GetNewestUsers returns the most recently joined users.
func (p *PostgresDB) GetNewestUsers(ctx context.Context, limit int) ([]*models.User, error) {
	users := []*models.User{}
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC LIMIT $1`
	if err := p.DB.SelectContext(ctx, &users, query, limit); err != nil {
		return nil, dbError(err, "user", "query newest users")
	}
	return users, nil
}

// GetPopularAuthors ranks users by the number of likes on their posts.
func (p *PostgresDB) GetPopularAuthors(ctx context.Context, limit int) ([]*models.AuthorStat, error) {
	query := `
		SELECT u.id, u.username, u.email, u.first_name, u.last_name, u.password_hash, u.is_admin, u.created_at,
			COUNT(r.id) AS likes
		FROM users u
		LEFT JOIN posts p ON p.author_id = u.id
		LEFT JOIN reactions r ON r.post_id = p.id AND r.kind = 'like'
		GROUP BY u.id
		ORDER BY likes DESC, u.username
		LIMIT $1`
	stats := []*models.AuthorStat{}
	if err := p.DB.SelectContext(ctx, &stats, query, limit); err != nil {
		return nil, dbError(err, "user", "query popular authors")
	}
	return stats, nil
}

// DeleteUser removes a user; the schema cascades to everything they own.
func (p *PostgresDB) DeleteUser(ctx context.Context, id uuid.UUID) error {
	result, err := p.DB.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return dbError(err, "user", "delete user")
	}
	return expectAffected(result, "user")
}

// --- Profile Methods ---

func (p *PostgresDB) CreateProfile(ctx context.Context, profile *models.Profile) error {
	if profile.Avatar == "" {
		profile.Avatar = models.DefaultAvatar
	}
	query := `INSERT INTO profiles (user_id, avatar, info) VALUES (:user_id, :avatar, :info)`
	if _, err := p.DB.NamedExecContext(ctx, query, profile); err != nil {
		return dbError(err, "profile", "create profile")
	}
	return nil
}

func (p *PostgresDB) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	err := p.DB.GetContext(ctx, &profile, `SELECT user_id, avatar, info FROM profiles WHERE user_id = $1`, userID)
	if err != nil {
		return nil, dbError(err, "profile", "query profile")
	}
	return &profile, nil
}

func (p *PostgresDB) UpdateProfile(ctx context.Context, profile *models.Profile) error {
	result, err := p.DB.NamedExecContext(ctx,
		`UPDATE profiles SET avatar = :avatar, info = :info WHERE user_id = :user_id`, profile)
	if err != nil {
		return dbError(err, "profile", "update profile")
	}
	return expectAffected(result, "profile")
}
