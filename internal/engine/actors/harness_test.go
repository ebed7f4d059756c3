package actors

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"yatube/internal/config"
	"yatube/internal/database"
	"yatube/internal/logging"
	"yatube/internal/models"
	"yatube/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testTimeout = 5 * time.Second

type pushed struct {
	UserID  uuid.UUID
	Kind    string
	Payload interface{}
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []pushed
}

func (n *recordingNotifier) Notify(userID uuid.UUID, kind string, payload interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, pushed{UserID: userID, Kind: kind, Payload: payload})
}

func (n *recordingNotifier) For(userID uuid.UUID, kind string) []pushed {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []pushed
	for _, e := range n.events {
		if e.UserID == userID && e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

type harness struct {
	system   *actor.ActorSystem
	db       *database.MemoryDB
	notifier *recordingNotifier

	groups *actor.PID
	posts  *actor.PID
	social *actor.PID
	events *actor.PID
	chats  *actor.PID
	users  *actor.PID
}

// quietSystem keeps protoactor's own logging out of test output.
func quietSystem() *actor.ActorSystem {
	return actor.NewActorSystem(actor.WithLoggerFactory(func(*actor.ActorSystem) *slog.Logger {
		return logging.Discard()
	}))
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	system := quietSystem()
	h := &harness{
		system:   system,
		db:       database.NewMemoryDB(),
		notifier: &recordingNotifier{},
	}
	deps := Deps{
		DB:       h.db,
		Metrics:  utils.NewMetricsCollector(),
		Logger:   logging.Discard(),
		Notifier: h.notifier,
	}
	spawn := func(producer func() actor.Actor) *actor.PID {
		return system.Root.Spawn(actor.PropsFromProducer(producer))
	}

	h.groups = spawn(func() actor.Actor { return NewGroupActor(deps) })
	h.posts = spawn(func() actor.Actor { return NewPostActor(deps) })
	h.social = spawn(func() actor.Actor { return NewSocialActor(deps) })
	h.events = spawn(func() actor.Actor { return NewEventsActor(deps) })
	h.chats = spawn(func() actor.Actor { return NewChatActor(deps) })
	h.users = spawn(func() actor.Actor {
		s := NewUserSupervisor(deps, config.WelcomeConfig{Sender: "admin", Text: "hello"}, h.chats, testTimeout).(*UserSupervisor)
		s.passwordCost = bcrypt.MinCost
		return s
	})
	return h
}

func ask[T any](t *testing.T, h *harness, pid *actor.PID, msg interface{}) T {
	t.Helper()
	value, err := Ask[T](h.system.Root, pid, msg, testTimeout)
	require.NoError(t, err)
	return value
}

// askErr expects the actor to answer msg with an AppError.
func askErr(t *testing.T, h *harness, pid *actor.PID, msg interface{}) *utils.AppError {
	t.Helper()
	result, err := h.system.Root.RequestFuture(pid, msg, testTimeout).Result()
	require.NoError(t, err)
	appErr, ok := result.(*utils.AppError)
	require.True(t, ok, "expected an AppError, got %T", result)
	return appErr
}

// user stores an account directly, skipping the welcome flow.
func (h *harness) user(t *testing.T, username string) *models.User {
	t.Helper()
	return h.store(t, &models.User{ID: uuid.New(), Username: username, HashedPassword: "x", CreatedAt: time.Now()})
}

func (h *harness) admin(t *testing.T, username string) *models.User {
	t.Helper()
	return h.store(t, &models.User{ID: uuid.New(), Username: username, HashedPassword: "x", IsAdmin: true, CreatedAt: time.Now()})
}

func (h *harness) store(t *testing.T, u *models.User) *models.User {
	t.Helper()
	require.NoError(t, h.db.CreateUser(context.Background(), u))
	return u
}

func (h *harness) post(t *testing.T, author *models.User, text, groupSlug string) *models.Post {
	t.Helper()
	return ask[*models.Post](t, h, h.posts, &CreatePostMsg{AuthorID: author.ID, Text: text, GroupSlug: groupSlug})
}

func postIDs(posts []*models.Post) []uuid.UUID {
	ids := make([]uuid.UUID, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	return ids
}

func ctxBG() context.Context { return context.Background() }
