package handlers

import (
	"net/http"

	"yatube/internal/api"
	"yatube/internal/engine/actors"
	"yatube/internal/models"
	"yatube/internal/utils"

	"github.com/google/uuid"
)

func postLocation(id uuid.UUID) string {
	return "/api/posts/" + id.String()
}

// invalidateIndex drops cached index pages after a post changes.
func (s *Server) invalidateIndex(r *http.Request) {
	s.Cache.Invalidate(r.Context(), "index")
}

func (s *Server) HandleCreatePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req api.PostRequest
		if !decode(w, r, &req) {
			return
		}

		post, err := ask[*models.Post](s, s.Engine.GetPostActor(), &actors.CreatePostMsg{
			AuthorID:  currentUser(r),
			Title:     req.Title,
			Text:      req.Text,
			GroupSlug: req.Group,
			Image:     req.Image,
			IsPinned:  req.IsPinned,
		})
		if err != nil {
			s.writeError(w, r, err, req)
			return
		}

		s.invalidateIndex(r)
		w.Header().Set("Location", postLocation(post.ID))
		writeJSON(w, http.StatusCreated, post)
	}
}

// HandleViewPost returns the post with its comments and reaction counts.
// When the author looks, the comments shown are marked read.
func (s *Server) HandleViewPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID, ok := s.pathID(w, r, "post")
		if !ok {
			return
		}
		view, err := ask[*actors.PostView](s, s.Engine.GetPostActor(), &actors.ViewPostMsg{
			PostID:   postID,
			ViewerID: currentUser(r),
		})
		if err != nil {
			s.writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

// HandleEditPost replaces a post. Anyone but the author is sent back to the
// post view and nothing changes.
func (s *Server) HandleEditPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID, ok := s.pathID(w, r, "post")
		if !ok {
			return
		}
		var req api.PostRequest
		if !decode(w, r, &req) {
			return
		}

		post, err := ask[*models.Post](s, s.Engine.GetPostActor(), &actors.EditPostMsg{
			PostID:    postID,
			UserID:    currentUser(r),
			Title:     req.Title,
			Text:      req.Text,
			GroupSlug: req.Group,
			Image:     req.Image,
			IsPinned:  req.IsPinned,
		})
		if err != nil {
			if utils.IsErrorCode(err, utils.ErrForbidden) {
				redirect(w, r, postLocation(postID))
				return
			}
			s.writeError(w, r, err, req)
			return
		}

		s.invalidateIndex(r)
		writeJSON(w, http.StatusOK, post)
	}
}

func (s *Server) HandleDeletePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID, ok := s.pathID(w, r, "post")
		if !ok {
			return
		}

		post, err := ask[*models.Post](s, s.Engine.GetPostActor(), &actors.DeletePostMsg{
			PostID: postID,
			UserID: currentUser(r),
		})
		if err != nil {
			if utils.IsErrorCode(err, utils.ErrForbidden) {
				redirect(w, r, postLocation(postID))
				return
			}
			s.writeError(w, r, err, nil)
			return
		}

		if post.Image != nil {
			if err := s.Images.Remove(r.Context(), *post.Image); err != nil {
				s.Logger.Warn("failed to remove post image", "post", post.ID, "error", err)
			}
		}
		s.invalidateIndex(r)
		w.WriteHeader(http.StatusNoContent)
	}
}

// HandleReaction sets or clears a like or dislike. A request blocked by the
// opposite reaction still answers 200 with rejected set.
func (s *Server) HandleReaction(kind models.ReactionKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID, ok := s.pathID(w, r, "post")
		if !ok {
			return
		}
		result, err := ask[*actors.ReactionResult](s, s.Engine.GetSocialActor(), &actors.SetReactionMsg{
			UserID: currentUser(r),
			PostID: postID,
			Kind:   kind,
		})
		if err != nil {
			s.writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}
