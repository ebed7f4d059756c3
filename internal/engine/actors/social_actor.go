package actors

import (
	"time"

	"yatube/internal/models"
	"yatube/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
)

// Message types for reactions and follows
type (
	SetReactionMsg struct {
		UserID uuid.UUID
		PostID uuid.UUID
		Kind   models.ReactionKind
	}

	FollowMsg struct {
		UserID         uuid.UUID
		AuthorUsername string
	}

	UnfollowMsg struct {
		UserID         uuid.UUID
		AuthorUsername string
	}
)

// ReactionResult reports the state after a toggle. Rejected is set when the
// opposite reaction blocked the request and nothing changed.
type ReactionResult struct {
	Kind     models.ReactionKind    `json:"kind"`
	Active   bool                   `json:"active"`
	Rejected bool                   `json:"rejected"`
	Counts   *models.ReactionCounts `json:"counts"`
}

type FollowResult struct {
	Author    *models.User `json:"author"`
	Following bool         `json:"following"`
}

// SocialActor serializes every reaction and follow mutation of the process.
type SocialActor struct {
	base
}

func NewSocialActor(deps Deps) actor.Actor {
	return &SocialActor{base: newBase(deps, "SocialActor")}
}

func (a *SocialActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *SetReactionMsg:
		a.handleSetReaction(context, msg)
	case *FollowMsg:
		a.handleFollow(context, msg)
	case *UnfollowMsg:
		a.handleUnfollow(context, msg)
	default:
		a.unhandled(msg)
	}
}

func (a *SocialActor) handleSetReaction(context actor.Context, msg *SetReactionMsg) {
	startTime := time.Now()
	defer a.observe("set_reaction", startTime)

	if !msg.Kind.Valid() {
		context.Respond(utils.NewValidationError(map[string]string{"kind": "unknown reaction"}))
		return
	}

	ctx, cancel := a.storeCtx()
	defer cancel()

	post, err := a.db.GetPost(ctx, msg.PostID)
	if err != nil {
		a.fail(context, "set reaction", err)
		return
	}

	result := &ReactionResult{Kind: msg.Kind}
	existing, err := a.db.GetReaction(ctx, msg.UserID, post.ID)
	switch {
	case err == nil && existing.Kind != msg.Kind:
		result.Rejected = true
	case err == nil:
		if err := a.db.DeleteReaction(ctx, existing.ID); err != nil {
			a.fail(context, "set reaction", err)
			return
		}
	case utils.IsErrorCode(err, utils.ErrNotFound):
		reaction := &models.Reaction{
			ID:        uuid.New(),
			UserID:    msg.UserID,
			PostID:    post.ID,
			Kind:      msg.Kind,
			CreatedAt: time.Now(),
		}
		err := a.db.CreateReaction(ctx, reaction)
		switch {
		case err == nil:
			result.Active = true
			if post.AuthorID != nil && *post.AuthorID != msg.UserID {
				a.notifier.Notify(*post.AuthorID, NotifyEvent, reaction)
			}
		case utils.IsErrorCode(err, utils.ErrDuplicate):
			// Another process reacted first; the row it wrote stands.
			result.Rejected = true
		default:
			a.fail(context, "set reaction", err)
			return
		}
	default:
		a.fail(context, "set reaction", err)
		return
	}

	if result.Counts, err = a.db.CountReactions(ctx, post.ID); err != nil {
		a.fail(context, "set reaction", err)
		return
	}
	context.Respond(result)
}

func (a *SocialActor) handleFollow(context actor.Context, msg *FollowMsg) {
	startTime := time.Now()
	defer a.observe("follow", startTime)

	author, err := a.userByUsername(msg.AuthorUsername)
	if err != nil {
		a.fail(context, "follow", err)
		return
	}
	if author.ID == msg.UserID {
		context.Respond(&FollowResult{Author: author})
		return
	}

	ctx, cancel := a.storeCtx()
	defer cancel()

	follow := &models.Follow{
		ID:        uuid.New(),
		UserID:    msg.UserID,
		AuthorID:  author.ID,
		CreatedAt: time.Now(),
	}
	created, err := a.db.CreateFollow(ctx, follow)
	if err != nil {
		a.fail(context, "follow", err)
		return
	}
	if created {
		a.notifier.Notify(author.ID, NotifyEvent, follow)
	}
	context.Respond(&FollowResult{Author: author, Following: true})
}

func (a *SocialActor) handleUnfollow(context actor.Context, msg *UnfollowMsg) {
	author, err := a.userByUsername(msg.AuthorUsername)
	if err != nil {
		a.fail(context, "unfollow", err)
		return
	}

	ctx, cancel := a.storeCtx()
	defer cancel()
	if err := a.db.DeleteFollow(ctx, msg.UserID, author.ID); err != nil {
		a.fail(context, "unfollow", err)
		return
	}
	context.Respond(&FollowResult{Author: author})
}
