package actors

import (
	"strings"
	"time"

	"yatube/internal/models"
	"yatube/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

const highlightsSize = 3

// Message types for Post operations
type (
	CreatePostMsg struct {
		AuthorID  uuid.UUID
		Title     *string `validate:"omitempty,max=200"`
		Text      string  `validate:"notblank"`
		GroupSlug string
		Image     *string
		IsPinned  bool
	}

	// EditPostMsg replaces the editable fields of a post written by UserID.
	EditPostMsg struct {
		PostID    uuid.UUID
		UserID    uuid.UUID
		Title     *string `validate:"omitempty,max=200"`
		Text      string  `validate:"notblank"`
		GroupSlug string
		Image     *string
		IsPinned  bool
	}

	DeletePostMsg struct {
		PostID uuid.UUID
		UserID uuid.UUID
	}

	ViewPostMsg struct {
		PostID   uuid.UUID
		ViewerID uuid.UUID
	}

	AddCommentMsg struct {
		PostID   uuid.UUID
		AuthorID uuid.UUID
		Text     string `validate:"notblank"`
	}

	GlobalFeedMsg struct {
		Page int
	}

	FollowFeedMsg struct {
		UserID uuid.UUID
		Page   int
	}

	SearchPostsMsg struct {
		Query string
		Page  int
	}

	// ProfileMsg loads an author page. ViewerID is uuid.Nil for anonymous callers.
	ProfileMsg struct {
		Username string
		ViewerID uuid.UUID
		Page     int
	}

	HighlightsMsg struct{}
)

// PostView is a post with everything its page shows.
type PostView struct {
	Post           *models.Post           `json:"post"`
	Comments       []*models.Comment      `json:"comments"`
	Reactions      *models.ReactionCounts `json:"reactions"`
	ViewerReaction *models.ReactionKind   `json:"viewerReaction,omitempty"`
	Chat           *models.Chat           `json:"chat,omitempty"`
}

// ProfileView is an author page.
type ProfileView struct {
	Author     *models.User               `json:"author"`
	Profile    *models.Profile            `json:"profile"`
	Posts      *models.Page[*models.Post] `json:"posts"`
	Followers  int                        `json:"followers"`
	Following  int                        `json:"following"`
	IsFollower bool                       `json:"isFollower"`
	Chat       *models.Chat               `json:"chat,omitempty"`
}

// Highlights feed the sidebar.
type Highlights struct {
	Authors []*models.AuthorStat `json:"authors"`
	Groups  []*models.GroupStat  `json:"groups"`
	Newest  []*models.User       `json:"newest"`
}

// PostActor handles posts, comments and the feeds built from them.
type PostActor struct {
	base
}

func NewPostActor(deps Deps) actor.Actor {
	return &PostActor{base: newBase(deps, "PostActor")}
}

func (a *PostActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *CreatePostMsg:
		a.handleCreatePost(context, msg)
	case *EditPostMsg:
		a.handleEditPost(context, msg)
	case *DeletePostMsg:
		a.handleDeletePost(context, msg)
	case *ViewPostMsg:
		a.handleViewPost(context, msg)
	case *AddCommentMsg:
		a.handleAddComment(context, msg)
	case *GlobalFeedMsg:
		a.respondPage(context, "global_feed", models.PostFilter{}, msg.Page)
	case *FollowFeedMsg:
		a.respondPage(context, "follow_feed", models.PostFilter{FollowerID: &msg.UserID}, msg.Page)
	case *SearchPostsMsg:
		a.handleSearch(context, msg)
	case *ProfileMsg:
		a.handleProfile(context, msg)
	case *HighlightsMsg:
		a.handleHighlights(context)
	case *GetCountsMsg:
		a.handleCount(context)
	default:
		a.unhandled(msg)
	}
}

// postFields validates the form shared by create and edit and resolves the group.
func (a *PostActor) postFields(form interface{}, groupSlug string) (*models.Group, error) {
	fields := utils.ValidationFields(form)
	if fields == nil {
		fields = make(map[string]string)
	}

	var group *models.Group
	if groupSlug != "" {
		ctx, cancel := a.storeCtx()
		defer cancel()
		g, err := a.db.GetGroupBySlug(ctx, groupSlug)
		switch {
		case utils.IsErrorCode(err, utils.ErrNotFound):
			fields["group"] = "unknown group"
		case err != nil:
			return nil, err
		default:
			group = g
		}
	}

	if len(fields) > 0 {
		return nil, utils.NewValidationError(fields)
	}
	return group, nil
}

func (a *PostActor) handleCreatePost(context actor.Context, msg *CreatePostMsg) {
	startTime := time.Now()
	defer a.observe("create_post", startTime)

	group, err := a.postFields(msg, msg.GroupSlug)
	if err != nil {
		a.fail(context, "create post", err)
		return
	}

	authorID := msg.AuthorID
	post := &models.Post{
		ID:        uuid.New(),
		Title:     msg.Title,
		Text:      msg.Text,
		CreatedAt: time.Now(),
		AuthorID:  &authorID,
		Image:     msg.Image,
		IsPinned:  msg.IsPinned,
	}
	if group != nil {
		post.GroupID = &group.ID
	}

	ctx, cancel := a.storeCtx()
	defer cancel()
	if err := a.db.CreatePost(ctx, post); err != nil {
		a.fail(context, "create post", err)
		return
	}
	saved, err := a.db.GetPost(ctx, post.ID)
	if err != nil {
		a.fail(context, "create post", err)
		return
	}

	a.logger.Debug("post created", "post", saved.ID, "author", saved.AuthorUsername)
	context.Respond(saved)
}

// authoredPost loads a post and checks that userID wrote it.
func (a *PostActor) authoredPost(postID, userID uuid.UUID) (*models.Post, error) {
	ctx, cancel := a.storeCtx()
	defer cancel()

	post, err := a.db.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !post.IsAuthoredBy(userID) {
		return nil, utils.NewForbiddenError("only the author can change a post")
	}
	return post, nil
}

func (a *PostActor) handleEditPost(context actor.Context, msg *EditPostMsg) {
	startTime := time.Now()
	defer a.observe("edit_post", startTime)

	post, err := a.authoredPost(msg.PostID, msg.UserID)
	if err != nil {
		a.fail(context, "edit post", err)
		return
	}
	group, err := a.postFields(msg, msg.GroupSlug)
	if err != nil {
		a.fail(context, "edit post", err)
		return
	}

	post.Title = msg.Title
	post.Text = msg.Text
	post.Image = msg.Image
	post.IsPinned = msg.IsPinned
	post.GroupID = nil
	if group != nil {
		post.GroupID = &group.ID
	}

	ctx, cancel := a.storeCtx()
	defer cancel()
	if err := a.db.UpdatePost(ctx, post); err != nil {
		a.fail(context, "edit post", err)
		return
	}
	saved, err := a.db.GetPost(ctx, post.ID)
	if err != nil {
		a.fail(context, "edit post", err)
		return
	}
	context.Respond(saved)
}

// handleDeletePost answers with the removed post so its image can be cleaned up.
func (a *PostActor) handleDeletePost(context actor.Context, msg *DeletePostMsg) {
	post, err := a.authoredPost(msg.PostID, msg.UserID)
	if err != nil {
		a.fail(context, "delete post", err)
		return
	}

	ctx, cancel := a.storeCtx()
	defer cancel()
	if err := a.db.DeletePost(ctx, post.ID); err != nil {
		a.fail(context, "delete post", err)
		return
	}

	a.logger.Info("post deleted", "post", post.ID)
	context.Respond(post)
}

func (a *PostActor) handleViewPost(context actor.Context, msg *ViewPostMsg) {
	startTime := time.Now()
	defer a.observe("view_post", startTime)

	ctx, cancel := a.storeCtx()
	defer cancel()

	post, err := a.db.GetPost(ctx, msg.PostID)
	if err != nil {
		a.fail(context, "view post", err)
		return
	}
	comments, err := a.db.GetPostComments(ctx, post.ID)
	if err != nil {
		a.fail(context, "view post", err)
		return
	}
	counts, err := a.db.CountReactions(ctx, post.ID)
	if err != nil {
		a.fail(context, "view post", err)
		return
	}
	view := &PostView{Post: post, Comments: comments, Reactions: counts}

	if msg.ViewerID != uuid.Nil {
		reaction, err := a.db.GetReaction(ctx, msg.ViewerID, post.ID)
		switch {
		case err == nil:
			view.ViewerReaction = &reaction.Kind
		case !utils.IsErrorCode(err, utils.ErrNotFound):
			a.fail(context, "view post", err)
			return
		}
	}

	if post.IsAuthoredBy(msg.ViewerID) {
		// Only the comments shown here are acknowledged.
		unread := lo.FilterMap(comments, func(c *models.Comment, _ int) (uuid.UUID, bool) {
			return c.ID, !c.IsRead
		})
		if err := a.db.MarkCommentsRead(ctx, msg.ViewerID, unread); err != nil {
			a.fail(context, "view post", err)
			return
		}
	} else if msg.ViewerID != uuid.Nil && post.AuthorID != nil {
		chat, err := a.db.FindChat(ctx, msg.ViewerID, *post.AuthorID)
		switch {
		case err == nil:
			view.Chat = chat
		case !utils.IsErrorCode(err, utils.ErrNotFound):
			a.fail(context, "view post", err)
			return
		}
	}

	context.Respond(view)
}

func (a *PostActor) handleAddComment(context actor.Context, msg *AddCommentMsg) {
	startTime := time.Now()
	defer a.observe("add_comment", startTime)

	if err := utils.Validate(msg); err != nil {
		a.fail(context, "add comment", err)
		return
	}

	ctx, cancel := a.storeCtx()
	defer cancel()

	post, err := a.db.GetPost(ctx, msg.PostID)
	if err != nil {
		a.fail(context, "add comment", err)
		return
	}

	comment := &models.Comment{
		ID:        uuid.New(),
		PostID:    post.ID,
		AuthorID:  msg.AuthorID,
		Text:      msg.Text,
		CreatedAt: time.Now(),
	}
	if err := a.db.CreateComment(ctx, comment); err != nil {
		a.fail(context, "add comment", err)
		return
	}
	if author, err := a.db.GetUser(ctx, msg.AuthorID); err == nil {
		comment.AuthorUsername = author.Username
	}

	if post.AuthorID != nil && *post.AuthorID != msg.AuthorID {
		a.notifier.Notify(*post.AuthorID, NotifyEvent, comment)
	}
	context.Respond(comment)
}

func (a *PostActor) respondPage(context actor.Context, op string, filter models.PostFilter, page int) {
	startTime := time.Now()
	defer a.observe(op, startTime)

	posts, err := a.pagePosts(filter, page)
	if err != nil {
		a.fail(context, op, err)
		return
	}
	context.Respond(posts)
}

func (a *PostActor) handleSearch(context actor.Context, msg *SearchPostsMsg) {
	query := strings.TrimSpace(msg.Query)
	if query == "" {
		context.Respond(models.NewPage[*models.Post](nil, models.NewPager(1, 0, models.PageSize)))
		return
	}
	a.respondPage(context, "search_posts", models.PostFilter{Query: query}, msg.Page)
}

func (a *PostActor) handleProfile(context actor.Context, msg *ProfileMsg) {
	startTime := time.Now()
	defer a.observe("profile", startTime)

	author, err := a.userByUsername(msg.Username)
	if err != nil {
		a.fail(context, "profile", err)
		return
	}
	posts, err := a.pagePosts(models.PostFilter{AuthorID: &author.ID}, msg.Page)
	if err != nil {
		a.fail(context, "profile", err)
		return
	}

	ctx, cancel := a.storeCtx()
	defer cancel()

	view := &ProfileView{Author: author, Posts: posts}
	profile, err := a.db.GetProfile(ctx, author.ID)
	switch {
	case err == nil:
		view.Profile = profile
	case utils.IsErrorCode(err, utils.ErrNotFound):
		view.Profile = &models.Profile{UserID: author.ID, Avatar: models.DefaultAvatar}
	default:
		a.fail(context, "profile", err)
		return
	}

	if view.Followers, err = a.db.CountFollowers(ctx, author.ID); err != nil {
		a.fail(context, "profile", err)
		return
	}
	if view.Following, err = a.db.CountFollowing(ctx, author.ID); err != nil {
		a.fail(context, "profile", err)
		return
	}

	if msg.ViewerID != uuid.Nil && msg.ViewerID != author.ID {
		if view.IsFollower, err = a.db.IsFollowing(ctx, msg.ViewerID, author.ID); err != nil {
			a.fail(context, "profile", err)
			return
		}
		chat, err := a.db.FindChat(ctx, msg.ViewerID, author.ID)
		switch {
		case err == nil:
			view.Chat = chat
		case !utils.IsErrorCode(err, utils.ErrNotFound):
			a.fail(context, "profile", err)
			return
		}
	}

	context.Respond(view)
}

func (a *PostActor) handleHighlights(context actor.Context) {
	ctx, cancel := a.storeCtx()
	defer cancel()

	authors, err := a.db.GetPopularAuthors(ctx, highlightsSize)
	if err != nil {
		a.fail(context, "highlights", err)
		return
	}
	groups, err := a.db.GetPopularGroups(ctx, highlightsSize)
	if err != nil {
		a.fail(context, "highlights", err)
		return
	}
	newest, err := a.db.GetNewestUsers(ctx, highlightsSize)
	if err != nil {
		a.fail(context, "highlights", err)
		return
	}
	context.Respond(&Highlights{Authors: authors, Groups: groups, Newest: newest})
}

func (a *PostActor) handleCount(context actor.Context) {
	ctx, cancel := a.storeCtx()
	defer cancel()

	count, err := a.db.CountPosts(ctx, models.PostFilter{})
	if err != nil {
		a.fail(context, "count posts", err)
		return
	}
	context.Respond(count)
}
