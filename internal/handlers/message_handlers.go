package handlers

import (
	"net/http"

	"yatube/internal/api"
	"yatube/internal/engine/actors"
	"yatube/internal/models"
	"yatube/internal/utils"
)

const chatsLocation = "/api/chats"

// HandleListChats lists the caller's chats, most recent activity first.
func (s *Server) HandleListChats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chats, err := ask[[]*models.ChatSummary](s, s.Engine.GetChatActor(), &actors.ListChatsMsg{UserID: currentUser(r)})
		if err != nil {
			s.writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, chats)
	}
}

// HandleStartChat returns the chat with {username}, opening it if needed.
func (s *Server) HandleStartChat() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chat, err := ask[*models.Chat](s, s.Engine.GetChatActor(), &actors.StartChatMsg{
			UserID:       currentUser(r),
			PeerUsername: r.PathValue("username"),
		})
		if err != nil {
			s.writeError(w, r, err, nil)
			return
		}
		w.Header().Set("Location", chatsLocation+"/"+chat.ID.String())
		writeJSON(w, http.StatusOK, chat)
	}
}

// HandleShowChat pages through a conversation and marks read what the caller
// received on that page. Outsiders are sent back to their chat list.
func (s *Server) HandleShowChat() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chatID, ok := s.pathID(w, r, "chat")
		if !ok {
			return
		}
		view, err := ask[*actors.ChatView](s, s.Engine.GetChatActor(), &actors.ShowChatMsg{
			ChatID:   chatID,
			ViewerID: currentUser(r),
			Page:     pageParam(r),
		})
		if err != nil {
			if utils.IsErrorCode(err, utils.ErrForbidden) {
				redirect(w, r, chatsLocation)
				return
			}
			s.writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

func (s *Server) HandleSendMessage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chatID, ok := s.pathID(w, r, "chat")
		if !ok {
			return
		}
		var req api.MessageRequest
		if !decode(w, r, &req) {
			return
		}

		message, err := ask[*models.Message](s, s.Engine.GetChatActor(), &actors.SendMessageMsg{
			ChatID:   chatID,
			SenderID: currentUser(r),
			Text:     req.Text,
		})
		if err != nil {
			if utils.IsErrorCode(err, utils.ErrForbidden) {
				redirect(w, r, chatsLocation)
				return
			}
			s.writeError(w, r, err, req)
			return
		}
		writeJSON(w, http.StatusCreated, message)
	}
}
