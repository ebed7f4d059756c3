package engine

import (
	"log/slog"
	"time"

	"yatube/internal/config"
	"yatube/internal/database"
	"yatube/internal/engine/actors"
	"yatube/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
)

const defaultRequestTimeout = 5 * time.Second

// Options wires the engine to its collaborators.
type Options struct {
	DB             database.DBAdapter
	Metrics        *utils.MetricsCollector
	Logger         *slog.Logger
	Notifier       actors.Notifier
	DBTimeout      time.Duration
	RequestTimeout time.Duration
	Welcome        config.WelcomeConfig
}

// Engine coordinates communication between actors
type Engine struct {
	system         *actor.ActorSystem
	requestTimeout time.Duration

	groupActor     *actor.PID
	postActor      *actor.PID
	socialActor    *actor.PID
	eventsActor    *actor.PID
	chatActor      *actor.PID
	userSupervisor *actor.PID
}

// NewActorSystem builds an actor system that logs through logger.
func NewActorSystem(logger *slog.Logger) *actor.ActorSystem {
	return actor.NewActorSystem(actor.WithLoggerFactory(func(system *actor.ActorSystem) *slog.Logger {
		return logger.With("lib", "protoactor", "system", system.ID)
	}))
}

func NewEngine(system *actor.ActorSystem, opts Options) *Engine {
	context := system.Root

	deps := actors.Deps{
		DB:        opts.DB,
		Metrics:   opts.Metrics,
		Logger:    opts.Logger,
		Notifier:  opts.Notifier,
		DBTimeout: opts.DBTimeout,
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	spawn := func(producer func() actor.Actor) *actor.PID {
		return context.Spawn(actor.PropsFromProducer(producer))
	}

	e := &Engine{system: system, requestTimeout: timeout}
	e.groupActor = spawn(func() actor.Actor { return actors.NewGroupActor(deps) })
	e.postActor = spawn(func() actor.Actor { return actors.NewPostActor(deps) })
	e.socialActor = spawn(func() actor.Actor { return actors.NewSocialActor(deps) })
	e.eventsActor = spawn(func() actor.Actor { return actors.NewEventsActor(deps) })
	e.chatActor = spawn(func() actor.Actor { return actors.NewChatActor(deps) })

	// The supervisor delivers welcome messages through the chat actor.
	chatPID := e.chatActor
	e.userSupervisor = spawn(func() actor.Actor {
		return actors.NewUserSupervisor(deps, opts.Welcome, chatPID, timeout)
	})
	return e
}

// Root is the context requests to the actors are sent from.
func (e *Engine) Root() *actor.RootContext {
	return e.system.Root
}

// RequestTimeout bounds how long a caller waits for an actor reply.
func (e *Engine) RequestTimeout() time.Duration {
	return e.requestTimeout
}

func (e *Engine) GetGroupActor() *actor.PID     { return e.groupActor }
func (e *Engine) GetPostActor() *actor.PID      { return e.postActor }
func (e *Engine) GetSocialActor() *actor.PID    { return e.socialActor }
func (e *Engine) GetEventsActor() *actor.PID    { return e.eventsActor }
func (e *Engine) GetChatActor() *actor.PID      { return e.chatActor }
func (e *Engine) GetUserSupervisor() *actor.PID { return e.userSupervisor }

// Stop stops every actor, waiting for the messages already queued.
func (e *Engine) Stop() {
	for _, pid := range []*actor.PID{
		e.userSupervisor, e.groupActor, e.postActor, e.socialActor, e.eventsActor, e.chatActor,
	} {
		_ = e.system.Root.PoisonFuture(pid).Wait()
	}
}
