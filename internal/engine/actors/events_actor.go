package actors

import (
	"time"

	"yatube/internal/models"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
)

// Message types for notifications
type (
	UnreadEventsMsg struct {
		UserID uuid.UUID
	}

	// AcknowledgeEventsMsg marks read the listed events. Ids that do not
	// belong to UserID are ignored.
	AcknowledgeEventsMsg struct {
		UserID uuid.UUID
		IDs    models.EventIDs
	}

	// ViewEventsMsg returns the unread events and acknowledges exactly those.
	ViewEventsMsg struct {
		UserID uuid.UUID
	}

	CountEventsMsg struct {
		UserID uuid.UUID
	}
)

// EventsActor aggregates the unread comments, follows and reactions
// addressed to a user.
type EventsActor struct {
	base
}

func NewEventsActor(deps Deps) actor.Actor {
	return &EventsActor{base: newBase(deps, "EventsActor")}
}

func (a *EventsActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *UnreadEventsMsg:
		events, err := a.unread(msg.UserID)
		if err != nil {
			a.fail(context, "unread events", err)
			return
		}
		context.Respond(events)

	case *AcknowledgeEventsMsg:
		if err := a.acknowledge(msg.UserID, msg.IDs); err != nil {
			a.fail(context, "acknowledge events", err)
			return
		}
		context.Respond(&Done{})

	case *ViewEventsMsg:
		startTime := time.Now()
		events, err := a.unread(msg.UserID)
		if err == nil {
			err = a.acknowledge(msg.UserID, events.IDs())
		}
		a.observe("view_events", startTime)
		if err != nil {
			a.fail(context, "view events", err)
			return
		}
		context.Respond(events)

	case *CountEventsMsg:
		events, err := a.unread(msg.UserID)
		if err != nil {
			a.fail(context, "count events", err)
			return
		}
		context.Respond(events.Count())

	default:
		a.unhandled(msg)
	}
}

func (a *EventsActor) unread(userID uuid.UUID) (*models.Events, error) {
	ctx, cancel := a.storeCtx()
	defer cancel()

	var (
		events models.Events
		err    error
	)
	if events.Comments, err = a.db.GetUnreadComments(ctx, userID); err != nil {
		return nil, err
	}
	if events.Follows, err = a.db.GetUnreadFollows(ctx, userID); err != nil {
		return nil, err
	}
	if events.Likes, err = a.db.GetUnreadReactions(ctx, userID, models.ReactionLike); err != nil {
		return nil, err
	}
	if events.Dislikes, err = a.db.GetUnreadReactions(ctx, userID, models.ReactionDislike); err != nil {
		return nil, err
	}
	return &events, nil
}

func (a *EventsActor) acknowledge(userID uuid.UUID, ids models.EventIDs) error {
	if ids.Empty() {
		return nil
	}

	ctx, cancel := a.storeCtx()
	defer cancel()

	if err := a.db.MarkCommentsRead(ctx, userID, ids.Comments); err != nil {
		return err
	}
	if err := a.db.MarkFollowsRead(ctx, userID, ids.Follows); err != nil {
		return err
	}
	return a.db.MarkReactionsRead(ctx, userID, ids.Reactions)
}
