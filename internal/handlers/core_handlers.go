package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"yatube/internal/api"
	"yatube/internal/cache"
	"yatube/internal/engine/actors"
	"yatube/internal/models"
	"yatube/internal/storage"
)

const maxUploadBytes = 5 << 20

// HandleHealth reports liveness together with the user and post counts.
func (s *Server) HandleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := ask[int](s, s.Engine.GetUserSupervisor(), &actors.GetCountsMsg{})
		if err != nil {
			s.writeError(w, r, err, nil)
			return
		}
		posts, err := ask[int](s, s.Engine.GetPostActor(), &actors.GetCountsMsg{})
		if err != nil {
			s.writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, api.HealthResponse{
			Status:     "healthy",
			Users:      users,
			Posts:      posts,
			ServerTime: time.Now(),
		})
	}
}

// HandleGlobalFeed serves the index. Pages are cached for a short time when
// Redis is configured; X-Cache tells a hit from a miss. Entries are keyed by
// the page actually served, so out-of-range requests never add keys.
func (s *Server) HandleGlobalFeed() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := pageParam(r)
		if body, ok := s.Cache.Get(r.Context(), cache.Key("index", page)); ok {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-Cache", "HIT")
			w.Write(body)
			return
		}

		posts, err := ask[*models.Page[*models.Post]](s, s.Engine.GetPostActor(), &actors.GlobalFeedMsg{Page: page})
		if err != nil {
			s.writeError(w, r, err, nil)
			return
		}

		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(posts); err != nil {
			s.writeError(w, r, err, nil)
			return
		}
		s.Cache.Set(r.Context(), cache.Key("index", posts.Number), buf.Bytes())

		w.Header().Set("Content-Type", "application/json")
		if s.Cache.Enabled() {
			w.Header().Set("X-Cache", "MISS")
		}
		w.Write(buf.Bytes())
	}
}

func (s *Server) HandleFollowFeed() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		posts, err := ask[*models.Page[*models.Post]](s, s.Engine.GetPostActor(), &actors.FollowFeedMsg{
			UserID: currentUser(r),
			Page:   pageParam(r),
		})
		if err != nil {
			s.writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, posts)
	}
}

// HandleSearch matches ?q= against post text, author username and group title.
func (s *Server) HandleSearch() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		posts, err := ask[*models.Page[*models.Post]](s, s.Engine.GetPostActor(), &actors.SearchPostsMsg{
			Query: r.URL.Query().Get("q"),
			Page:  pageParam(r),
		})
		if err != nil {
			s.writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, posts)
	}
}

func (s *Server) HandleHighlights() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		highlights, err := ask[*actors.Highlights](s, s.Engine.GetPostActor(), &actors.HighlightsMsg{})
		if err != nil {
			s.writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, highlights)
	}
}

// HandleBadges returns the unread event and message counters.
func (s *Server) HandleBadges() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := currentUser(r)
		events, err := ask[int](s, s.Engine.GetEventsActor(), &actors.CountEventsMsg{UserID: userID})
		if err != nil {
			s.writeError(w, r, err, nil)
			return
		}
		messages, err := ask[int](s, s.Engine.GetChatActor(), &actors.UnreadMessagesMsg{UserID: userID})
		if err != nil {
			s.writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, api.BadgesResponse{Events: events, Messages: messages})
	}
}

// HandleUpload stores the multipart "image" field. kind=avatar files it
// under user avatars, anything else under post images.
func (s *Server) HandleUpload() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.Images.Enabled() {
			writeMessage(w, http.StatusServiceUnavailable, storage.ErrDisabled.Error())
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		file, header, err := r.FormFile("image")
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "image file is required")
			return
		}
		defer file.Close()

		prefix := storage.PostImages
		if r.FormValue("kind") == "avatar" {
			prefix = storage.Avatars
		}
		if _, err := storage.ObjectName(prefix, header.Filename); err != nil {
			writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}

		key, err := s.Images.Put(r.Context(), prefix, header.Filename, file, header.Size, header.Header.Get("Content-Type"))
		if err != nil {
			s.Logger.Error("upload failed", "user_id", currentUser(r), "error", err)
			writeMessage(w, http.StatusBadGateway, "failed to store image")
			return
		}
		writeJSON(w, http.StatusCreated, api.UploadResponse{Key: key, URL: s.Images.URL(key)})
	}
}
