package handlers

import (
	"net/http"

	"yatube/internal/api"
	"yatube/internal/engine/actors"
	"yatube/internal/models"
)

// HandleViewEvents lists the caller's unread comments, follows, likes and
// dislikes and marks exactly those read.
func (s *Server) HandleViewEvents() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, err := ask[*models.Events](s, s.Engine.GetEventsActor(), &actors.ViewEventsMsg{UserID: currentUser(r)})
		if err != nil {
			s.writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, events)
	}
}

func (s *Server) HandleUnreadEvents() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, err := ask[*models.Events](s, s.Engine.GetEventsActor(), &actors.UnreadEventsMsg{UserID: currentUser(r)})
		if err != nil {
			s.writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, events)
	}
}

func (s *Server) HandleAcknowledgeEvents() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req api.AckRequest
		if !decode(w, r, &req) {
			return
		}
		_, err := ask[*actors.Done](s, s.Engine.GetEventsActor(), &actors.AcknowledgeEventsMsg{
			UserID: currentUser(r),
			IDs:    req,
		})
		if err != nil {
			s.writeError(w, r, err, nil)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
