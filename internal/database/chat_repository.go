package database

import (
	"context"
	"time"

	"yatube/internal/models"

	"github.com/google/uuid"
)

const chatColumns = `id, user1_id, user2_id, created_at, last_message_id`

const messageColumns = `id, chat_id, sender_id, recipient_id, text, created_at, is_read`

// CreateChat stores a chat for a normalized pair. A second chat for the same
// pair violates chats_pair_key and is reported as a duplicate.
func (p *PostgresDB) CreateChat(ctx context.Context, chat *models.Chat) error {
	chat.User1ID, chat.User2ID = models.NormalizePair(chat.User1ID, chat.User2ID)
	if chat.CreatedAt.IsZero() {
		chat.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO chats (id, user1_id, user2_id, created_at, last_message_id)
		VALUES (:id, :user1_id, :user2_id, :created_at, :last_message_id)
	`
	if _, err := p.DB.NamedExecContext(ctx, query, chat); err != nil {
		return dbError(err, "chat", "create chat")
	}
	return nil
}

func (p *PostgresDB) GetChat(ctx context.Context, id uuid.UUID) (*models.Chat, error) {
	var chat models.Chat
	if err := p.DB.GetContext(ctx, &chat, `SELECT `+chatColumns+` FROM chats WHERE id = $1`, id); err != nil {
		return nil, dbError(err, "chat", "query chat")
	}
	return &chat, nil
}

// FindChat looks up the chat between a and b in either order.
func (p *PostgresDB) FindChat(ctx context.Context, a, b uuid.UUID) (*models.Chat, error) {
	first, second := models.NormalizePair(a, b)
	var chat models.Chat
	query := `SELECT ` + chatColumns + ` FROM chats WHERE user1_id = $1 AND user2_id = $2`
	if err := p.DB.GetContext(ctx, &chat, query, first, second); err != nil {
		return nil, dbError(err, "chat", "find chat")
	}
	return &chat, nil
}

type chatRow struct {
	models.Chat
	LastMessageAt *time.Time `db:"last_message_at"`
	UnreadCount   int        `db:"unread_count"`
}

// GetUserChats lists the user's chats, most recent message first. Chats
// without messages come last. Peer and LastMessage are left for the caller.
func (p *PostgresDB) GetUserChats(ctx context.Context, userID uuid.UUID) ([]*models.ChatSummary, error) {
	query := `
		SELECT c.id, c.user1_id, c.user2_id, c.created_at, c.last_message_id,
			MAX(m.created_at) AS last_message_at,
			COUNT(m.id) FILTER (WHERE m.recipient_id = $1 AND NOT m.is_read) AS unread_count
		FROM chats c
		LEFT JOIN messages m ON m.chat_id = c.id
		WHERE c.user1_id = $1 OR c.user2_id = $1
		GROUP BY c.id
		ORDER BY last_message_at DESC NULLS LAST, c.created_at DESC`

	var rows []chatRow
	if err := p.DB.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, dbError(err, "chat", "query user chats")
	}

	summaries := make([]*models.ChatSummary, 0, len(rows))
	for i := range rows {
		chat := rows[i].Chat
		summaries = append(summaries, &models.ChatSummary{
			Chat:          &chat,
			LastMessageAt: rows[i].LastMessageAt,
			UnreadCount:   rows[i].UnreadCount,
		})
	}
	return summaries, nil
}

func (p *PostgresDB) SetChatLastMessage(ctx context.Context, chatID, messageID uuid.UUID) error {
	result, err := p.DB.ExecContext(ctx, `UPDATE chats SET last_message_id = $1 WHERE id = $2`, messageID, chatID)
	if err != nil {
		return dbError(err, "chat", "update last message")
	}
	return expectAffected(result, "chat")
}

// --- Message Methods ---

func (p *PostgresDB) CreateMessage(ctx context.Context, msg *models.Message) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO messages (id, chat_id, sender_id, recipient_id, text, created_at, is_read)
		VALUES (:id, :chat_id, :sender_id, :recipient_id, :text, :created_at, :is_read)
	`
	if _, err := p.DB.NamedExecContext(ctx, query, msg); err != nil {
		return dbError(err, "message", "save message")
	}
	return nil
}

func (p *PostgresDB) GetMessage(ctx context.Context, id uuid.UUID) (*models.Message, error) {
	var msg models.Message
	if err := p.DB.GetContext(ctx, &msg, `SELECT `+messageColumns+` FROM messages WHERE id = $1`, id); err != nil {
		return nil, dbError(err, "message", "query message")
	}
	return &msg, nil
}

// GetChatMessages lists every message of the chat, newest first.
func (p *PostgresDB) GetChatMessages(ctx context.Context, chatID uuid.UUID) ([]*models.Message, error) {
	messages := []*models.Message{}
	query := `SELECT ` + messageColumns + ` FROM messages WHERE chat_id = $1 ORDER BY created_at DESC, id`
	if err := p.DB.SelectContext(ctx, &messages, query, chatID); err != nil {
		return nil, dbError(err, "message", "query chat messages")
	}
	return messages, nil
}

// MarkMessagesRead flags the listed messages, restricted to those addressed to recipientID.
func (p *PostgresDB) MarkMessagesRead(ctx context.Context, recipientID uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	query := `UPDATE messages SET is_read = TRUE WHERE id = ANY($1::uuid[]) AND recipient_id = $2`
	if _, err := p.DB.ExecContext(ctx, query, uuidArray(ids), recipientID); err != nil {
		return dbError(err, "message", "mark messages read")
	}
	return nil
}

func (p *PostgresDB) CountUnreadMessages(ctx context.Context, recipientID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM messages WHERE recipient_id = $1 AND NOT is_read`
	if err := p.DB.GetContext(ctx, &count, query, recipientID); err != nil {
		return 0, dbError(err, "message", "count unread messages")
	}
	return count, nil
}
