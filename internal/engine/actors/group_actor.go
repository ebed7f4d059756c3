package actors

import (
	"strings"
	"time"

	"yatube/internal/models"
	"yatube/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
)

// Message types for Group operations
type (
	CreateGroupMsg struct {
		Title       string `validate:"notblank,max=200"`
		Slug        string `validate:"required,max=50,slug"`
		Description string `validate:"notblank"`
	}

	GetGroupMsg struct {
		Slug string
	}

	ListGroupsMsg struct{}

	// DeleteGroupMsg is only honoured for administrators.
	DeleteGroupMsg struct {
		Slug   string
		UserID uuid.UUID
	}

	GroupFeedMsg struct {
		Slug string
		Page int
	}
)

// GroupFeed is one page of a group's posts.
type GroupFeed struct {
	Group *models.Group              `json:"group"`
	Posts *models.Page[*models.Post] `json:"posts"`
}

// GroupActor owns community groups and their feeds.
type GroupActor struct {
	base
}

func NewGroupActor(deps Deps) actor.Actor {
	return &GroupActor{base: newBase(deps, "GroupActor")}
}

func (a *GroupActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *CreateGroupMsg:
		a.handleCreateGroup(context, msg)
	case *GetGroupMsg:
		a.handleGetGroup(context, msg)
	case *ListGroupsMsg:
		a.handleListGroups(context)
	case *DeleteGroupMsg:
		a.handleDeleteGroup(context, msg)
	case *GroupFeedMsg:
		a.handleGroupFeed(context, msg)
	default:
		a.unhandled(msg)
	}
}

func (a *GroupActor) handleCreateGroup(context actor.Context, msg *CreateGroupMsg) {
	startTime := time.Now()
	defer a.observe("create_group", startTime)

	if err := utils.Validate(msg); err != nil {
		a.fail(context, "create group", err)
		return
	}

	group := &models.Group{
		ID:          uuid.New(),
		Title:       strings.TrimSpace(msg.Title),
		Slug:        msg.Slug,
		Description: msg.Description,
		CreatedAt:   time.Now(),
	}

	ctx, cancel := a.storeCtx()
	defer cancel()
	if err := a.db.CreateGroup(ctx, group); err != nil {
		if utils.IsErrorCode(err, utils.ErrDuplicate) {
			context.Respond(utils.NewValidationError(map[string]string{
				"slug": "a group with this slug already exists",
			}))
			return
		}
		a.fail(context, "create group", err)
		return
	}

	a.logger.Info("group created", "slug", group.Slug)
	context.Respond(group)
}

func (a *GroupActor) handleGetGroup(context actor.Context, msg *GetGroupMsg) {
	ctx, cancel := a.storeCtx()
	defer cancel()

	group, err := a.db.GetGroupBySlug(ctx, msg.Slug)
	if err != nil {
		a.fail(context, "get group", err)
		return
	}
	context.Respond(group)
}

func (a *GroupActor) handleListGroups(context actor.Context) {
	ctx, cancel := a.storeCtx()
	defer cancel()

	groups, err := a.db.GetAllGroups(ctx)
	if err != nil {
		a.fail(context, "list groups", err)
		return
	}
	context.Respond(groups)
}

func (a *GroupActor) handleDeleteGroup(context actor.Context, msg *DeleteGroupMsg) {
	ctx, cancel := a.storeCtx()
	defer cancel()

	user, err := a.db.GetUser(ctx, msg.UserID)
	if err != nil {
		a.fail(context, "delete group", err)
		return
	}
	if !user.IsAdmin {
		context.Respond(utils.NewForbiddenError("only administrators can delete groups"))
		return
	}

	group, err := a.db.GetGroupBySlug(ctx, msg.Slug)
	if err != nil {
		a.fail(context, "delete group", err)
		return
	}
	if err := a.db.DeleteGroup(ctx, group.ID); err != nil {
		a.fail(context, "delete group", err)
		return
	}

	a.logger.Info("group deleted", "slug", group.Slug, "by", user.Username)
	context.Respond(&Done{})
}

func (a *GroupActor) handleGroupFeed(context actor.Context, msg *GroupFeedMsg) {
	startTime := time.Now()
	defer a.observe("group_feed", startTime)

	ctx, cancel := a.storeCtx()
	group, err := a.db.GetGroupBySlug(ctx, msg.Slug)
	cancel()
	if err != nil {
		a.fail(context, "group feed", err)
		return
	}

	posts, err := a.pagePosts(models.PostFilter{GroupID: &group.ID}, msg.Page)
	if err != nil {
		a.fail(context, "group feed", err)
		return
	}
	context.Respond(&GroupFeed{Group: group, Posts: posts})
}
