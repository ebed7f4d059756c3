package actors

import (
	"time"

	"yatube/internal/models"
	"yatube/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Message types for chats
type (
	// StartChatMsg finds or creates the chat between UserID and PeerUsername.
	StartChatMsg struct {
		UserID       uuid.UUID
		PeerUsername string
	}

	SendMessageMsg struct {
		ChatID   uuid.UUID
		SenderID uuid.UUID
		Text     string `validate:"notblank"`
	}

	// DeliverMsg sends Text to RecipientID, opening the chat if needed.
	DeliverMsg struct {
		SenderID    uuid.UUID
		RecipientID uuid.UUID
		Text        string `validate:"notblank"`
	}

	ShowChatMsg struct {
		ChatID   uuid.UUID
		ViewerID uuid.UUID
		Page     int
	}

	ListChatsMsg struct {
		UserID uuid.UUID
	}

	UnreadMessagesMsg struct {
		UserID uuid.UUID
	}
)

// ChatView is one page of a conversation, newest message first.
type ChatView struct {
	Chat     *models.Chat                  `json:"chat"`
	Peer     *models.User                  `json:"peer"`
	Messages *models.Page[*models.Message] `json:"messages"`
}

// ChatActor owns chats and messages. Handling one message at a time makes
// get-or-create race free inside the process; the unique pair key covers
// the rest.
type ChatActor struct {
	base
}

func NewChatActor(deps Deps) actor.Actor {
	return &ChatActor{base: newBase(deps, "ChatActor")}
}

func (a *ChatActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *StartChatMsg:
		a.handleStartChat(context, msg)
	case *SendMessageMsg:
		a.handleSendMessage(context, msg)
	case *DeliverMsg:
		a.handleDeliver(context, msg)
	case *ShowChatMsg:
		a.handleShowChat(context, msg)
	case *ListChatsMsg:
		a.handleListChats(context, msg)
	case *UnreadMessagesMsg:
		ctx, cancel := a.storeCtx()
		defer cancel()
		count, err := a.db.CountUnreadMessages(ctx, msg.UserID)
		if err != nil {
			a.fail(context, "unread messages", err)
			return
		}
		context.Respond(count)
	default:
		a.unhandled(msg)
	}
}

func (a *ChatActor) getOrCreate(userID, peerID uuid.UUID) (*models.Chat, error) {
	if userID == peerID {
		return nil, utils.NewValidationError(map[string]string{"username": "cannot start a chat with yourself"})
	}

	ctx, cancel := a.storeCtx()
	defer cancel()

	chat, err := a.db.FindChat(ctx, userID, peerID)
	if err == nil {
		return chat, nil
	}
	if !utils.IsErrorCode(err, utils.ErrNotFound) {
		return nil, err
	}

	chat = models.NewChat(userID, peerID)
	err = a.db.CreateChat(ctx, chat)
	if utils.IsErrorCode(err, utils.ErrDuplicate) {
		return a.db.FindChat(ctx, userID, peerID)
	}
	if err != nil {
		return nil, err
	}
	a.logger.Debug("chat created", "chat", chat.ID)
	return chat, nil
}

func (a *ChatActor) send(chat *models.Chat, senderID uuid.UUID, text string) (*models.Message, error) {
	if !chat.HasParty(senderID) {
		return nil, utils.NewForbiddenError("not a member of this chat")
	}

	ctx, cancel := a.storeCtx()
	defer cancel()

	msg := &models.Message{
		ID:          uuid.New(),
		ChatID:      chat.ID,
		SenderID:    senderID,
		RecipientID: chat.Peer(senderID),
		Text:        text,
		CreatedAt:   time.Now(),
	}
	if err := a.db.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}
	if err := a.db.SetChatLastMessage(ctx, chat.ID, msg.ID); err != nil {
		return nil, err
	}

	a.notifier.Notify(msg.RecipientID, NotifyMessage, msg)
	return msg, nil
}

func (a *ChatActor) handleStartChat(context actor.Context, msg *StartChatMsg) {
	peer, err := a.userByUsername(msg.PeerUsername)
	if err != nil {
		a.fail(context, "start chat", err)
		return
	}
	chat, err := a.getOrCreate(msg.UserID, peer.ID)
	if err != nil {
		a.fail(context, "start chat", err)
		return
	}
	context.Respond(chat)
}

func (a *ChatActor) handleSendMessage(context actor.Context, msg *SendMessageMsg) {
	startTime := time.Now()
	defer a.observe("send_message", startTime)

	if err := utils.Validate(msg); err != nil {
		a.fail(context, "send message", err)
		return
	}

	ctx, cancel := a.storeCtx()
	chat, err := a.db.GetChat(ctx, msg.ChatID)
	cancel()
	if err != nil {
		a.fail(context, "send message", err)
		return
	}

	sent, err := a.send(chat, msg.SenderID, msg.Text)
	if err != nil {
		a.fail(context, "send message", err)
		return
	}
	context.Respond(sent)
}

func (a *ChatActor) handleDeliver(context actor.Context, msg *DeliverMsg) {
	if err := utils.Validate(msg); err != nil {
		a.fail(context, "deliver", err)
		return
	}
	chat, err := a.getOrCreate(msg.SenderID, msg.RecipientID)
	if err != nil {
		a.fail(context, "deliver", err)
		return
	}
	sent, err := a.send(chat, msg.SenderID, msg.Text)
	if err != nil {
		a.fail(context, "deliver", err)
		return
	}
	context.Respond(sent)
}

func (a *ChatActor) handleShowChat(context actor.Context, msg *ShowChatMsg) {
	startTime := time.Now()
	defer a.observe("show_chat", startTime)

	ctx, cancel := a.storeCtx()
	defer cancel()

	chat, err := a.db.GetChat(ctx, msg.ChatID)
	if err != nil {
		a.fail(context, "show chat", err)
		return
	}
	if !chat.HasParty(msg.ViewerID) {
		context.Respond(utils.NewForbiddenError("not a member of this chat"))
		return
	}

	peer, err := a.db.GetUser(ctx, chat.Peer(msg.ViewerID))
	if err != nil {
		a.fail(context, "show chat", err)
		return
	}
	messages, err := a.db.GetChatMessages(ctx, chat.ID)
	if err != nil {
		a.fail(context, "show chat", err)
		return
	}

	unread := lo.FilterMap(messages, func(m *models.Message, _ int) (uuid.UUID, bool) {
		return m.ID, m.RecipientID == msg.ViewerID && !m.IsRead
	})
	if len(unread) > 0 {
		if err := a.db.MarkMessagesRead(ctx, msg.ViewerID, unread); err != nil {
			a.fail(context, "show chat", err)
			return
		}
		for _, m := range messages {
			if m.RecipientID == msg.ViewerID {
				m.IsRead = true
			}
		}
	}

	page := models.Paginate(messages, msg.Page, models.PageSize)
	context.Respond(&ChatView{Chat: chat, Peer: peer, Messages: page})
}

func (a *ChatActor) handleListChats(context actor.Context, msg *ListChatsMsg) {
	ctx, cancel := a.storeCtx()
	defer cancel()

	summaries, err := a.db.GetUserChats(ctx, msg.UserID)
	if err != nil {
		a.fail(context, "list chats", err)
		return
	}

	for _, s := range summaries {
		if s.Peer, err = a.db.GetUser(ctx, s.Chat.Peer(msg.UserID)); err != nil {
			a.fail(context, "list chats", err)
			return
		}
		if s.Chat.LastMessageID == nil {
			continue
		}
		last, err := a.db.GetMessage(ctx, *s.Chat.LastMessageID)
		switch {
		case err == nil:
			s.LastMessage = last
		case !utils.IsErrorCode(err, utils.ErrNotFound):
			a.fail(context, "list chats", err)
			return
		}
	}
	context.Respond(summaries)
}
