package database

import (
	"context"
	"fmt"
	"log/slog"

	"yatube/internal/config"
	"yatube/internal/models"

	"github.com/google/uuid"
)

// DBAdapter is the storage contract of the engine. Every implementation
// enforces the same invariants: unique usernames and group slugs, at most one
// follow per (user, author), at most one reaction per (user, post), one chat
// per unordered pair of users, and the cascade rules of the schema.
type DBAdapter interface {
	// Connection
	Close(ctx context.Context) error

	// User methods
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetAllUsers(ctx context.Context) ([]*models.User, error)
	CountUsers(ctx context.Context) (int, error)
	GetNewestUsers(ctx context.Context, limit int) ([]*models.User, error)
	GetPopularAuthors(ctx context.Context, limit int) ([]*models.AuthorStat, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error

	// Profile methods
	CreateProfile(ctx context.Context, profile *models.Profile) error
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	UpdateProfile(ctx context.Context, profile *models.Profile) error

	// Group methods
	CreateGroup(ctx context.Context, group *models.Group) error
	GetGroup(ctx context.Context, id uuid.UUID) (*models.Group, error)
	GetGroupBySlug(ctx context.Context, slug string) (*models.Group, error)
	GetAllGroups(ctx context.Context) ([]*models.Group, error)
	GetPopularGroups(ctx context.Context, limit int) ([]*models.GroupStat, error)
	DeleteGroup(ctx context.Context, id uuid.UUID) error

	// Post methods. Listings are newest-first.
	CreatePost(ctx context.Context, post *models.Post) error
	UpdatePost(ctx context.Context, post *models.Post) error
	DeletePost(ctx context.Context, id uuid.UUID) error
	GetPost(ctx context.Context, id uuid.UUID) (*models.Post, error)
	CountPosts(ctx context.Context, filter models.PostFilter) (int, error)
	ListPosts(ctx context.Context, filter models.PostFilter, limit, offset int) ([]*models.Post, error)

	// Comment methods
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetPostComments(ctx context.Context, postID uuid.UUID) ([]*models.Comment, error)
	GetUnreadComments(ctx context.Context, postAuthorID uuid.UUID) ([]*models.Comment, error)
	// MarkCommentsRead flags the listed comments, restricted to posts written by postAuthorID.
	MarkCommentsRead(ctx context.Context, postAuthorID uuid.UUID, ids []uuid.UUID) error

	// Follow methods
	CreateFollow(ctx context.Context, follow *models.Follow) (bool, error)
	DeleteFollow(ctx context.Context, userID, authorID uuid.UUID) error
	IsFollowing(ctx context.Context, userID, authorID uuid.UUID) (bool, error)
	CountFollowers(ctx context.Context, authorID uuid.UUID) (int, error)
	CountFollowing(ctx context.Context, userID uuid.UUID) (int, error)
	GetUnreadFollows(ctx context.Context, authorID uuid.UUID) ([]*models.Follow, error)
	MarkFollowsRead(ctx context.Context, authorID uuid.UUID, ids []uuid.UUID) error

	// Reaction methods
	GetReaction(ctx context.Context, userID, postID uuid.UUID) (*models.Reaction, error)
	CreateReaction(ctx context.Context, reaction *models.Reaction) error
	DeleteReaction(ctx context.Context, id uuid.UUID) error
	CountReactions(ctx context.Context, postID uuid.UUID) (*models.ReactionCounts, error)
	GetUnreadReactions(ctx context.Context, postAuthorID uuid.UUID, kind models.ReactionKind) ([]*models.Reaction, error)
	MarkReactionsRead(ctx context.Context, postAuthorID uuid.UUID, ids []uuid.UUID) error

	// Chat methods
	CreateChat(ctx context.Context, chat *models.Chat) error
	GetChat(ctx context.Context, id uuid.UUID) (*models.Chat, error)
	FindChat(ctx context.Context, a, b uuid.UUID) (*models.Chat, error)
	GetUserChats(ctx context.Context, userID uuid.UUID) ([]*models.ChatSummary, error)
	SetChatLastMessage(ctx context.Context, chatID, messageID uuid.UUID) error

	// Message methods
	CreateMessage(ctx context.Context, msg *models.Message) error
	GetMessage(ctx context.Context, id uuid.UUID) (*models.Message, error)
	GetChatMessages(ctx context.Context, chatID uuid.UUID) ([]*models.Message, error)
	MarkMessagesRead(ctx context.Context, recipientID uuid.UUID, ids []uuid.UUID) error
	CountUnreadMessages(ctx context.Context, recipientID uuid.UUID) (int, error)
}

// NewDB opens the store selected by the configuration.
func NewDB(ctx context.Context, cfg *config.DatabaseConfig, logger *slog.Logger) (DBAdapter, error) {
	switch cfg.Type {
	case "memory":
		logger.Warn("using in-memory store, data is lost on restart")
		return NewMemoryDB(), nil
	case "postgres":
		db, err := NewPostgresDB(cfg.URI, logger)
		if err != nil {
			return nil, err
		}
		if cfg.AutoMigrate {
			if err := MigrateUp(cfg.URI, logger); err != nil {
				db.Close(ctx)
				return nil, err
			}
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported database type %q", cfg.Type)
	}
}
