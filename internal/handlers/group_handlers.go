package handlers

import (
	"net/http"

	"yatube/internal/api"
	"yatube/internal/engine/actors"
	"yatube/internal/models"
)

func (s *Server) HandleListGroups() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groups, err := ask[[]*models.Group](s, s.Engine.GetGroupActor(), &actors.ListGroupsMsg{})
		if err != nil {
			s.writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, groups)
	}
}

func (s *Server) HandleCreateGroup() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req api.GroupRequest
		if !decode(w, r, &req) {
			return
		}
		group, err := ask[*models.Group](s, s.Engine.GetGroupActor(), &actors.CreateGroupMsg{
			Title:       req.Title,
			Slug:        req.Slug,
			Description: req.Description,
		})
		if err != nil {
			s.writeError(w, r, err, req)
			return
		}
		w.Header().Set("Location", "/api/groups/"+group.Slug)
		writeJSON(w, http.StatusCreated, group)
	}
}

// HandleGroupFeed serves one page of a group's posts.
func (s *Server) HandleGroupFeed() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		feed, err := ask[*actors.GroupFeed](s, s.Engine.GetGroupActor(), &actors.GroupFeedMsg{
			Slug: r.PathValue("slug"),
			Page: pageParam(r),
		})
		if err != nil {
			s.writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, feed)
	}
}

// HandleDeleteGroup is for administrators. The group's posts stay on the
// global feed without a group.
func (s *Server) HandleDeleteGroup() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, err := ask[*actors.Done](s, s.Engine.GetGroupActor(), &actors.DeleteGroupMsg{
			Slug:   r.PathValue("slug"),
			UserID: currentUser(r),
		})
		if err != nil {
			s.writeError(w, r, err, nil)
			return
		}
		s.invalidateIndex(r)
		w.WriteHeader(http.StatusNoContent)
	}
}
