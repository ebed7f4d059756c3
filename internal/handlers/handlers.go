package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"yatube/internal/api"
	"yatube/internal/cache"
	"yatube/internal/engine"
	"yatube/internal/engine/actors"
	"yatube/internal/middleware"
	"yatube/internal/models"
	"yatube/internal/storage"
	"yatube/internal/utils"
	"yatube/internal/websocket"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// Options are the collaborators of a Server. Cache and Images may be nil.
type Options struct {
	Engine         *engine.Engine
	Tokens         *middleware.TokenManager
	Cache          *cache.PageCache
	Images         *storage.ImageStore
	Hub            *websocket.Hub
	Metrics        *utils.MetricsCollector
	Logger         *slog.Logger
	AllowedOrigins []string
	MetricsEnabled bool
}

// Server holds all server dependencies, including the actor engine
type Server struct {
	Engine         *engine.Engine
	Tokens         *middleware.TokenManager
	Cache          *cache.PageCache
	Images         *storage.ImageStore
	Hub            *websocket.Hub
	Metrics        *utils.MetricsCollector
	Logger         *slog.Logger
	MetricsEnabled bool

	origins  []string
	upgrader *ws.Upgrader
}

func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = utils.NewMetricsCollector()
	}
	return &Server{
		Engine:         opts.Engine,
		Tokens:         opts.Tokens,
		Cache:          opts.Cache,
		Images:         opts.Images,
		Hub:            opts.Hub,
		Metrics:        metrics,
		Logger:         logger.With("component", "http"),
		MetricsEnabled: opts.MetricsEnabled,
		origins:        opts.AllowedOrigins,
		upgrader:       websocket.NewUpgrader(opts.AllowedOrigins),
	}
}

// Routes builds the full HTTP handler: the route table wrapped in CORS and
// access logging.
func (s *Server) Routes() http.Handler {
	auth := s.Tokens.RequireAuth
	optional := s.Tokens.OptionalAuth

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.HandleHealth())
	if s.MetricsEnabled {
		mux.Handle("GET /metrics", s.Metrics.Handler())
	}

	mux.HandleFunc("POST /api/auth/register", s.HandleRegister())
	mux.HandleFunc("POST /api/auth/login", s.HandleLogin())

	mux.HandleFunc("GET /api/posts", s.HandleGlobalFeed())
	mux.HandleFunc("POST /api/posts", auth(s.HandleCreatePost()))
	mux.HandleFunc("GET /api/posts/{id}", auth(s.HandleViewPost()))
	mux.HandleFunc("PUT /api/posts/{id}", auth(s.HandleEditPost()))
	mux.HandleFunc("DELETE /api/posts/{id}", auth(s.HandleDeletePost()))
	mux.HandleFunc("POST /api/posts/{id}/comments", auth(s.HandleAddComment()))
	mux.HandleFunc("POST /api/posts/{id}/like", auth(s.HandleReaction(models.ReactionLike)))
	mux.HandleFunc("POST /api/posts/{id}/dislike", auth(s.HandleReaction(models.ReactionDislike)))
	mux.HandleFunc("GET /api/feed", auth(s.HandleFollowFeed()))
	mux.HandleFunc("GET /api/search", s.HandleSearch())
	mux.HandleFunc("GET /api/highlights", s.HandleHighlights())
	mux.HandleFunc("GET /api/badges", auth(s.HandleBadges()))

	mux.HandleFunc("GET /api/groups", s.HandleListGroups())
	mux.HandleFunc("POST /api/groups", auth(s.HandleCreateGroup()))
	mux.HandleFunc("GET /api/groups/{slug}", s.HandleGroupFeed())
	mux.HandleFunc("DELETE /api/groups/{slug}", auth(s.HandleDeleteGroup()))

	mux.HandleFunc("GET /api/users", s.HandleListUsers())
	mux.HandleFunc("PUT /api/users/me/profile", auth(s.HandleUpdateProfile()))
	mux.HandleFunc("DELETE /api/users/me", auth(s.HandleDeleteAccount()))
	mux.HandleFunc("GET /api/users/{username}", optional(s.HandleProfile()))
	mux.HandleFunc("POST /api/users/{username}/follow", auth(s.HandleFollow(true)))
	mux.HandleFunc("DELETE /api/users/{username}/follow", auth(s.HandleFollow(false)))

	mux.HandleFunc("GET /api/events", auth(s.HandleViewEvents()))
	mux.HandleFunc("GET /api/events/unread", auth(s.HandleUnreadEvents()))
	mux.HandleFunc("POST /api/events/ack", auth(s.HandleAcknowledgeEvents()))

	mux.HandleFunc("GET /api/chats", auth(s.HandleListChats()))
	mux.HandleFunc("POST /api/chats/{username}", auth(s.HandleStartChat()))
	mux.HandleFunc("GET /api/chats/{id}", auth(s.HandleShowChat()))
	mux.HandleFunc("POST /api/chats/{id}/messages", auth(s.HandleSendMessage()))

	mux.HandleFunc("POST /api/uploads", auth(s.HandleUpload()))
	mux.HandleFunc("GET /ws", s.HandleWebSocket())

	var handler http.Handler = mux
	handler = middleware.CORSMiddleware(middleware.DefaultCORSConfig(s.origins))(handler)
	handler = middleware.RequestLogger(s.Logger, s.Metrics)(handler)
	return handler
}

// ask sends msg to pid from the engine root and waits for the typed reply.
func ask[T any](s *Server, pid *actor.PID, msg interface{}) (T, error) {
	return actors.Ask[T](s.Engine.Root(), pid, msg, s.Engine.RequestTimeout())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps err to a status and body. input is echoed back on
// validation failures.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, input interface{}) {
	appErr, ok := utils.AsAppError(err)
	if !ok {
		appErr = utils.NewAppError(utils.ErrDatabase, "internal error", err)
	}
	status := utils.AppErrorToHTTPStatus(appErr.Code)

	body := api.ErrorResponse{Error: appErr.Message, Code: appErr.Code}
	if appErr.Code == utils.ErrInvalidInput {
		body.Fields = appErr.Fields
		body.Input = input
	}
	if status >= http.StatusInternalServerError {
		s.Logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		body.Error = "internal error"
	}
	writeJSON(w, status, body)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, api.ErrorResponse{Error: message})
}

// decode reads a JSON body into v and answers 400 when it can't.
func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeMessage(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// redirect answers 303 so the client goes back to a view it may see.
func redirect(w http.ResponseWriter, r *http.Request, location string) {
	http.Redirect(w, r, location, http.StatusSeeOther)
}

// pageParam reads ?page=. Anything that is not a positive number is page 1;
// numbers past the end are clamped by the pager.
func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// pathID parses the {id} wildcard. A malformed id names nothing, so it is a 404.
func (s *Server) pathID(w http.ResponseWriter, r *http.Request, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, utils.NewNotFoundError(what), nil)
		return uuid.Nil, false
	}
	return id, true
}

// currentUser is the authenticated caller, or uuid.Nil.
func currentUser(r *http.Request) uuid.UUID {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	return userID
}
