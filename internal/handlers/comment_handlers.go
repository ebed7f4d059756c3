package handlers

import (
	"net/http"

	"yatube/internal/api"
	"yatube/internal/engine/actors"
	"yatube/internal/models"
)

// HandleAddComment adds a comment to a post. The comment starts unread for
// the post's author.
func (s *Server) HandleAddComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID, ok := s.pathID(w, r, "post")
		if !ok {
			return
		}
		var req api.CommentRequest
		if !decode(w, r, &req) {
			return
		}

		comment, err := ask[*models.Comment](s, s.Engine.GetPostActor(), &actors.AddCommentMsg{
			PostID:   postID,
			AuthorID: currentUser(r),
			Text:     req.Text,
		})
		if err != nil {
			s.writeError(w, r, err, req)
			return
		}
		writeJSON(w, http.StatusCreated, comment)
	}
}
