package handlers

import (
	"net/http"
)

// HandleWebSocket upgrades a connection authenticated by ?token= and attaches
// it to the hub. Browsers cannot set headers on a websocket handshake, hence
// the query parameter.
func (s *Server) HandleWebSocket() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenString := r.URL.Query().Get("token")
		if tokenString == "" {
			writeMessage(w, http.StatusUnauthorized, "missing authentication token")
			return
		}
		claims, err := s.Tokens.ValidateToken(tokenString)
		if err != nil {
			s.Logger.Debug("websocket token rejected", "error", err)
			writeMessage(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		conn, err := s.upgrader.Upgrade(w, r, nil)
		if err != nil {
			// The upgrader has already written the HTTP error.
			s.Logger.Debug("websocket upgrade failed", "user_id", claims.UserID, "error", err)
			return
		}
		s.Hub.Attach(claims.UserID, conn)
		s.Logger.Debug("websocket connected", "user_id", claims.UserID)
	}
}
