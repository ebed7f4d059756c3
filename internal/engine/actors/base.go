package actors

import (
	stdctx "context"
	"fmt"
	"log/slog"
	"time"

	"yatube/internal/database"
	"yatube/internal/models"
	"yatube/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
)

const defaultDBTimeout = 3 * time.Second

// Notifier pushes a live event to the sessions of one user.
type Notifier interface {
	Notify(userID uuid.UUID, kind string, payload interface{})
}

// NopNotifier drops every event.
type NopNotifier struct{}

func (NopNotifier) Notify(uuid.UUID, string, interface{}) {}

// Notification kinds pushed over the websocket.
const (
	NotifyMessage = "message"
	NotifyEvent   = "event"
)

// Deps are the collaborators shared by every actor.
type Deps struct {
	DB        database.DBAdapter
	Metrics   *utils.MetricsCollector
	Logger    *slog.Logger
	Notifier  Notifier
	DBTimeout time.Duration
}

// Done acknowledges a command that has no other result.
type Done struct{}

// GetCountsMsg asks an actor for the size of the collection it owns.
type GetCountsMsg struct{}

type base struct {
	db        database.DBAdapter
	metrics   *utils.MetricsCollector
	logger    *slog.Logger
	notifier  Notifier
	dbTimeout time.Duration
}

func newBase(deps Deps, component string) base {
	b := base{
		db:        deps.DB,
		metrics:   deps.Metrics,
		logger:    deps.Logger,
		notifier:  deps.Notifier,
		dbTimeout: deps.DBTimeout,
	}
	if b.metrics == nil {
		b.metrics = utils.NewMetricsCollector()
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	if b.notifier == nil {
		b.notifier = NopNotifier{}
	}
	if b.dbTimeout <= 0 {
		b.dbTimeout = defaultDBTimeout
	}
	b.logger = b.logger.With("component", component)
	return b
}

// storeCtx bounds a single store call.
func (b *base) storeCtx() (stdctx.Context, stdctx.CancelFunc) {
	return stdctx.WithTimeout(stdctx.Background(), b.dbTimeout)
}

func (b *base) observe(op string, start time.Time) {
	b.metrics.AddOperationLatency(op, time.Since(start))
}

// fail answers the request with an AppError. Errors that are not AppErrors
// are wrapped as database errors; server-side failures are logged.
func (b *base) fail(context actor.Context, op string, err error) {
	appErr, ok := utils.AsAppError(err)
	if !ok {
		appErr = utils.NewAppError(utils.ErrDatabase, op+" failed", err)
	}
	if utils.AppErrorToHTTPStatus(appErr.Code) >= 500 {
		b.logger.Error("operation failed", "op", op, "error", err)
	} else {
		b.logger.Debug("operation rejected", "op", op, "code", appErr.Code, "error", err)
	}
	context.Respond(appErr)
}

func (b *base) unhandled(msg interface{}) {
	switch msg.(type) {
	case *actor.Started, *actor.Stopping, *actor.Stopped, *actor.Restarting:
		b.logger.Debug("lifecycle", "event", fmt.Sprintf("%T", msg))
	default:
		b.logger.Warn("unknown message type", "type", fmt.Sprintf("%T", msg))
	}
}

// userByUsername resolves a username, answering not found for unknown names.
func (b *base) userByUsername(username string) (*models.User, error) {
	ctx, cancel := b.storeCtx()
	defer cancel()
	return b.db.GetUserByUsername(ctx, username)
}

// pagePosts loads one page of the filtered posts, newest first.
func (b *base) pagePosts(filter models.PostFilter, number int) (*models.Page[*models.Post], error) {
	ctx, cancel := b.storeCtx()
	defer cancel()

	total, err := b.db.CountPosts(ctx, filter)
	if err != nil {
		return nil, err
	}
	pager := models.NewPager(number, total, models.PageSize)
	posts, err := b.db.ListPosts(ctx, filter, pager.Limit(), pager.Offset())
	if err != nil {
		return nil, err
	}
	return models.NewPage(posts, pager), nil
}

// Ask sends msg to pid and waits for a reply of type T. An AppError reply is
// returned as the error.
func Ask[T any](sender actor.SenderContext, pid *actor.PID, msg interface{}, timeout time.Duration) (T, error) {
	var zero T
	result, err := sender.RequestFuture(pid, msg, timeout).Result()
	if err != nil {
		return zero, utils.NewActorTimeoutError(fmt.Sprintf("%T", msg), err)
	}
	if appErr, ok := result.(*utils.AppError); ok {
		return zero, appErr
	}
	value, ok := result.(T)
	if !ok {
		return zero, utils.NewAppError(utils.ErrMessageRejected,
			fmt.Sprintf("unexpected reply %T to %T", result, msg), nil)
	}
	return value, nil
}
