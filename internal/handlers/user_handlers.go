package handlers

import (
	"net/http"
	"time"

	"yatube/internal/api"
	"yatube/internal/engine/actors"
	"yatube/internal/models"
)

// registrationInput is echoed back on validation errors. The password is
// never returned.
type registrationInput struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (s *Server) issueToken(w http.ResponseWriter, r *http.Request, status int, user *models.User) {
	token, err := s.Tokens.GenerateToken(user)
	if err != nil {
		s.writeError(w, r, err, nil)
		return
	}
	writeJSON(w, status, api.LoginResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(s.Tokens.TTL()),
		User:      user,
	})
}

// HandleRegister creates an account and signs the new user in. The welcome
// message is sent by the user supervisor.
func (s *Server) HandleRegister() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req api.RegisterRequest
		if !decode(w, r, &req) {
			return
		}

		user, err := ask[*models.User](s, s.Engine.GetUserSupervisor(), &actors.RegisterUserMsg{
			Username:  req.Username,
			Email:     req.Email,
			Password:  req.Password,
			FirstName: req.FirstName,
			LastName:  req.LastName,
		})
		if err != nil {
			s.writeError(w, r, err, registrationInput{
				Username:  req.Username,
				Email:     req.Email,
				FirstName: req.FirstName,
				LastName:  req.LastName,
			})
			return
		}
		s.issueToken(w, r, http.StatusCreated, user)
	}
}

func (s *Server) HandleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req api.LoginRequest
		if !decode(w, r, &req) {
			return
		}
		user, err := ask[*models.User](s, s.Engine.GetUserSupervisor(), &actors.LoginMsg{
			Username: req.Username,
			Password: req.Password,
		})
		if err != nil {
			s.writeError(w, r, err, nil)
			return
		}
		s.issueToken(w, r, http.StatusOK, user)
	}
}

func (s *Server) HandleListUsers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := ask[[]*models.User](s, s.Engine.GetUserSupervisor(), &actors.ListUsersMsg{})
		if err != nil {
			s.writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, users)
	}
}

// HandleProfile serves an author page. Signed-in viewers also learn whether
// they follow the author and which chat they share.
func (s *Server) HandleProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := ask[*actors.ProfileView](s, s.Engine.GetPostActor(), &actors.ProfileMsg{
			Username: r.PathValue("username"),
			ViewerID: currentUser(r),
			Page:     pageParam(r),
		})
		if err != nil {
			s.writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

// HandleFollow follows the author when follow is true and unfollows otherwise.
func (s *Server) HandleFollow(follow bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := r.PathValue("username")
		var msg interface{} = &actors.UnfollowMsg{UserID: currentUser(r), AuthorUsername: username}
		if follow {
			msg = &actors.FollowMsg{UserID: currentUser(r), AuthorUsername: username}
		}

		result, err := ask[*actors.FollowResult](s, s.Engine.GetSocialActor(), msg)
		if err != nil {
			s.writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func (s *Server) HandleUpdateProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req api.ProfileRequest
		if !decode(w, r, &req) {
			return
		}
		profile, err := ask[*models.Profile](s, s.Engine.GetUserSupervisor(), &actors.UpdateProfileMsg{
			UserID: currentUser(r),
			Avatar: req.Avatar,
			Info:   req.Info,
		})
		if err != nil {
			s.writeError(w, r, err, req)
			return
		}
		writeJSON(w, http.StatusOK, profile)
	}
}

// HandleDeleteAccount removes the caller along with everything they wrote.
func (s *Server) HandleDeleteAccount() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := ask[*actors.Done](s, s.Engine.GetUserSupervisor(), &actors.DeleteUserMsg{UserID: currentUser(r)}); err != nil {
			s.writeError(w, r, err, nil)
			return
		}
		s.invalidateIndex(r)
		w.WriteHeader(http.StatusNoContent)
	}
}
