package database

import (
	"context"
	"testing"
	"time"

	"yatube/internal/models"
	"yatube/internal/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runStoreContract exercises the behaviour every DBAdapter must share.
func runStoreContract(t *testing.T, newDB func(t *testing.T) DBAdapter) {
	t.Run("users", func(t *testing.T) { testUsers(t, newDB(t)) })
	t.Run("groups", func(t *testing.T) { testGroups(t, newDB(t)) })
	t.Run("posts", func(t *testing.T) { testPosts(t, newDB(t)) })
	t.Run("comments", func(t *testing.T) { testComments(t, newDB(t)) })
	t.Run("follows", func(t *testing.T) { testFollows(t, newDB(t)) })
	t.Run("reactions", func(t *testing.T) { testReactions(t, newDB(t)) })
	t.Run("chats", func(t *testing.T) { testChats(t, newDB(t)) })
	t.Run("cascades", func(t *testing.T) { testCascades(t, newDB(t)) })
}

func mustUser(t *testing.T, db DBAdapter, username string) *models.User {
	t.Helper()
	user := &models.User{
		ID:             uuid.New(),
		Username:       username,
		Email:          username + "@example.com",
		HashedPassword: "hash",
		CreatedAt:      time.Now(),
	}
	require.NoError(t, db.CreateUser(context.Background(), user))
	return user
}

func mustGroup(t *testing.T, db DBAdapter, slug string) *models.Group {
	t.Helper()
	group := &models.Group{ID: uuid.New(), Title: "Group " + slug, Slug: slug, Description: "about " + slug}
	require.NoError(t, db.CreateGroup(context.Background(), group))
	return group
}

func mustPost(t *testing.T, db DBAdapter, author *models.User, group *models.Group, text string) *models.Post {
	t.Helper()
	post := &models.Post{ID: uuid.New(), Text: text, AuthorID: &author.ID}
	if group != nil {
		post.GroupID = &group.ID
	}
	require.NoError(t, db.CreatePost(context.Background(), post))
	return post
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, utils.IsErrorCode(err, code), "expected %s, got %v", code, err)
}

func testUsers(t *testing.T, db DBAdapter) {
	ctx := context.Background()
	alice := mustUser(t, db, "alice")
	mustUser(t, db, "bob")

	err := db.CreateUser(ctx, &models.User{ID: uuid.New(), Username: "alice", Email: "x@example.com", HashedPassword: "h"})
	assertCode(t, err, utils.ErrDuplicate)

	got, err := db.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)

	_, err = db.GetUser(ctx, uuid.New())
	assertCode(t, err, utils.ErrNotFound)

	require.NoError(t, db.CreateProfile(ctx, &models.Profile{UserID: alice.ID}))
	assertCode(t, db.CreateProfile(ctx, &models.Profile{UserID: alice.ID}), utils.ErrDuplicate)

	profile, err := db.GetProfile(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultAvatar, profile.Avatar)

	profile.Info = "hi there"
	require.NoError(t, db.UpdateProfile(ctx, profile))
	profile, err = db.GetProfile(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "hi there", profile.Info)

	users, err := db.GetAllUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
	count, err := db.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	carol := mustUser(t, db, "carol")
	newest, err := db.GetNewestUsers(ctx, 1)
	require.NoError(t, err)
	require.Len(t, newest, 1)
	assert.Equal(t, carol.ID, newest[0].ID)
}

func testGroups(t *testing.T, db DBAdapter) {
	ctx := context.Background()
	cats := mustGroup(t, db, "cats")
	dogs := mustGroup(t, db, "dogs")
	author := mustUser(t, db, "author")

	err := db.CreateGroup(ctx, &models.Group{ID: uuid.New(), Title: "Other", Slug: "cats", Description: "d"})
	assertCode(t, err, utils.ErrDuplicate)

	got, err := db.GetGroupBySlug(ctx, "dogs")
	require.NoError(t, err)
	assert.Equal(t, dogs.ID, got.ID)

	mustPost(t, db, author, dogs, "woof")
	mustPost(t, db, author, dogs, "bark")
	mustPost(t, db, author, cats, "meow")

	popular, err := db.GetPopularGroups(ctx, 3)
	require.NoError(t, err)
	require.Len(t, popular, 2)
	assert.Equal(t, "dogs", popular[0].Slug)
	assert.Equal(t, 2, popular[0].Posts)

	require.NoError(t, db.DeleteGroup(ctx, dogs.ID))
	count, err := db.CountPosts(ctx, models.PostFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, count, "posts survive their group")

	assertCode(t, db.DeleteGroup(ctx, dogs.ID), utils.ErrNotFound)
}

func testPosts(t *testing.T, db DBAdapter) {
	ctx := context.Background()
	author := mustUser(t, db, "writer")
	reader := mustUser(t, db, "reader")
	group := mustGroup(t, db, "news")

	assertCode(t, db.CreatePost(ctx, &models.Post{ID: uuid.New(), AuthorID: &author.ID}), utils.ErrInvalidInput)

	var ids []uuid.UUID
	for i := 0; i < 7; i++ {
		var g *models.Group
		if i%2 == 0 {
			g = group
		}
		post := mustPost(t, db, author, g, "post number")
		ids = append(ids, post.ID)
		time.Sleep(2 * time.Millisecond)
	}
	mustPost(t, db, reader, nil, "Unrelated Gardening")

	grouped, err := db.CountPosts(ctx, models.PostFilter{GroupID: &group.ID})
	require.NoError(t, err)
	assert.Equal(t, 4, grouped)

	page, err := db.ListPosts(ctx, models.PostFilter{AuthorID: &author.ID}, 5, 0)
	require.NoError(t, err)
	require.Len(t, page, 5)
	assert.Equal(t, ids[6], page[0].ID, "newest first")
	assert.Equal(t, "writer", page[0].AuthorUsername)
	require.NotNil(t, page[0].GroupSlug)
	assert.Equal(t, "news", *page[0].GroupSlug)

	rest, err := db.ListPosts(ctx, models.PostFilter{AuthorID: &author.ID}, 5, 5)
	require.NoError(t, err)
	assert.Len(t, rest, 2)

	found, err := db.ListPosts(ctx, models.PostFilter{Query: "gardening"}, 5, 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, reader.ID, *found[0].AuthorID)

	byGroupTitle, err := db.CountPosts(ctx, models.PostFilter{Query: "group NEWS"})
	require.NoError(t, err)
	assert.Equal(t, 4, byGroupTitle)

	_, err = db.CreateFollow(ctx, &models.Follow{ID: uuid.New(), UserID: reader.ID, AuthorID: author.ID})
	require.NoError(t, err)
	followed, err := db.CountPosts(ctx, models.PostFilter{FollowerID: &reader.ID})
	require.NoError(t, err)
	assert.Equal(t, 7, followed)

	post, err := db.GetPost(ctx, ids[0])
	require.NoError(t, err)
	post.Text = "edited"
	post.GroupID = nil
	require.NoError(t, db.UpdatePost(ctx, post))
	post, err = db.GetPost(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, "edited", post.Text)
	assert.Nil(t, post.GroupID)
	assert.Equal(t, author.ID, *post.AuthorID)

	require.NoError(t, db.DeletePost(ctx, ids[0]))
	_, err = db.GetPost(ctx, ids[0])
	assertCode(t, err, utils.ErrNotFound)
}

func testComments(t *testing.T, db DBAdapter) {
	ctx := context.Background()
	author := mustUser(t, db, "poster")
	other := mustUser(t, db, "commenter")
	post := mustPost(t, db, author, nil, "hello")
	otherPost := mustPost(t, db, other, nil, "mine")

	first := &models.Comment{ID: uuid.New(), PostID: post.ID, AuthorID: other.ID, Text: "first"}
	require.NoError(t, db.CreateComment(ctx, first))
	time.Sleep(2 * time.Millisecond)
	second := &models.Comment{ID: uuid.New(), PostID: post.ID, AuthorID: other.ID, Text: "second"}
	require.NoError(t, db.CreateComment(ctx, second))
	foreign := &models.Comment{ID: uuid.New(), PostID: otherPost.ID, AuthorID: author.ID, Text: "elsewhere"}
	require.NoError(t, db.CreateComment(ctx, foreign))

	assertCode(t, db.CreateComment(ctx, &models.Comment{ID: uuid.New(), PostID: uuid.New(), AuthorID: other.ID, Text: "x"}), utils.ErrNotFound)

	comments, err := db.GetPostComments(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].Text)
	assert.Equal(t, "commenter", comments[0].AuthorUsername)

	unread, err := db.GetUnreadComments(ctx, author.ID)
	require.NoError(t, err)
	assert.Len(t, unread, 2)

	// Marking is scoped to the post author: the foreign comment stays unread.
	require.NoError(t, db.MarkCommentsRead(ctx, author.ID, []uuid.UUID{first.ID, foreign.ID}))
	unread, err = db.GetUnreadComments(ctx, author.ID)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, second.ID, unread[0].ID)

	otherUnread, err := db.GetUnreadComments(ctx, other.ID)
	require.NoError(t, err)
	assert.Len(t, otherUnread, 1)
}

func testFollows(t *testing.T, db DBAdapter) {
	ctx := context.Background()
	alice := mustUser(t, db, "alice")
	bob := mustUser(t, db, "bob")

	created, err := db.CreateFollow(ctx, &models.Follow{ID: uuid.New(), UserID: alice.ID, AuthorID: bob.ID})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = db.CreateFollow(ctx, &models.Follow{ID: uuid.New(), UserID: alice.ID, AuthorID: bob.ID})
	require.NoError(t, err)
	assert.False(t, created)

	_, err = db.CreateFollow(ctx, &models.Follow{ID: uuid.New(), UserID: alice.ID, AuthorID: alice.ID})
	assertCode(t, err, utils.ErrInvalidInput)

	following, err := db.IsFollowing(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, following)

	followers, err := db.CountFollowers(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, followers)

	unread, err := db.GetUnreadFollows(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, "alice", unread[0].Username)

	require.NoError(t, db.MarkFollowsRead(ctx, bob.ID, []uuid.UUID{unread[0].ID}))
	unread, err = db.GetUnreadFollows(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, unread)

	require.NoError(t, db.DeleteFollow(ctx, alice.ID, bob.ID))
	require.NoError(t, db.DeleteFollow(ctx, alice.ID, bob.ID))
	count, err := db.CountFollowing(ctx, alice.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func testReactions(t *testing.T, db DBAdapter) {
	ctx := context.Background()
	author := mustUser(t, db, "author")
	fan := mustUser(t, db, "fan")
	hater := mustUser(t, db, "hater")
	post := mustPost(t, db, author, nil, "take")

	like := &models.Reaction{ID: uuid.New(), UserID: fan.ID, PostID: post.ID, Kind: models.ReactionLike}
	require.NoError(t, db.CreateReaction(ctx, like))
	require.NoError(t, db.CreateReaction(ctx, &models.Reaction{ID: uuid.New(), UserID: hater.ID, PostID: post.ID, Kind: models.ReactionDislike}))

	// One reaction per user and post, whatever its kind.
	err := db.CreateReaction(ctx, &models.Reaction{ID: uuid.New(), UserID: fan.ID, PostID: post.ID, Kind: models.ReactionDislike})
	assertCode(t, err, utils.ErrDuplicate)

	got, err := db.GetReaction(ctx, fan.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReactionLike, got.Kind)

	counts, err := db.CountReactions(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReactionCounts{Likes: 1, Dislikes: 1}, *counts)

	popular, err := db.GetPopularAuthors(ctx, 1)
	require.NoError(t, err)
	require.Len(t, popular, 1)
	assert.Equal(t, author.ID, popular[0].ID)
	assert.Equal(t, 1, popular[0].Likes)

	likes, err := db.GetUnreadReactions(ctx, author.ID, models.ReactionLike)
	require.NoError(t, err)
	require.Len(t, likes, 1)
	assert.Equal(t, "fan", likes[0].Username)

	require.NoError(t, db.MarkReactionsRead(ctx, author.ID, []uuid.UUID{like.ID}))
	likes, err = db.GetUnreadReactions(ctx, author.ID, models.ReactionLike)
	require.NoError(t, err)
	assert.Empty(t, likes)
	dislikes, err := db.GetUnreadReactions(ctx, author.ID, models.ReactionDislike)
	require.NoError(t, err)
	assert.Len(t, dislikes, 1)

	require.NoError(t, db.DeleteReaction(ctx, like.ID))
	_, err = db.GetReaction(ctx, fan.ID, post.ID)
	assertCode(t, err, utils.ErrNotFound)
	assertCode(t, db.DeleteReaction(ctx, like.ID), utils.ErrNotFound)
}

func testChats(t *testing.T, db DBAdapter) {
	ctx := context.Background()
	alice := mustUser(t, db, "alice")
	bob := mustUser(t, db, "bob")
	carol := mustUser(t, db, "carol")

	chat := models.NewChat(bob.ID, alice.ID)
	require.NoError(t, db.CreateChat(ctx, chat))
	assertCode(t, db.CreateChat(ctx, models.NewChat(alice.ID, bob.ID)), utils.ErrDuplicate)
	assertCode(t, db.CreateChat(ctx, &models.Chat{ID: uuid.New(), User1ID: alice.ID, User2ID: alice.ID}), utils.ErrInvalidInput)

	found, err := db.FindChat(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, chat.ID, found.ID)
	found, err = db.FindChat(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, chat.ID, found.ID)

	_, err = db.FindChat(ctx, alice.ID, carol.ID)
	assertCode(t, err, utils.ErrNotFound)

	quiet := models.NewChat(alice.ID, carol.ID)
	require.NoError(t, db.CreateChat(ctx, quiet))

	msg := &models.Message{ID: uuid.New(), ChatID: chat.ID, SenderID: bob.ID, RecipientID: alice.ID, Text: "hey"}
	require.NoError(t, db.CreateMessage(ctx, msg))
	require.NoError(t, db.SetChatLastMessage(ctx, chat.ID, msg.ID))
	time.Sleep(2 * time.Millisecond)
	reply := &models.Message{ID: uuid.New(), ChatID: chat.ID, SenderID: alice.ID, RecipientID: bob.ID, Text: "hi"}
	require.NoError(t, db.CreateMessage(ctx, reply))

	got, err := db.GetChat(ctx, chat.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastMessageID)
	assert.Equal(t, msg.ID, *got.LastMessageID)

	messages, err := db.GetChatMessages(ctx, chat.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, reply.ID, messages[0].ID, "newest first")

	unread, err := db.CountUnreadMessages(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, unread)

	chats, err := db.GetUserChats(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, chats, 2)
	assert.Equal(t, chat.ID, chats[0].Chat.ID, "chats with messages come first")
	assert.Equal(t, 1, chats[0].UnreadCount)
	assert.Nil(t, chats[1].LastMessageAt)

	// Only the recipient can mark a message read.
	require.NoError(t, db.MarkMessagesRead(ctx, bob.ID, []uuid.UUID{msg.ID}))
	unread, err = db.CountUnreadMessages(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, unread)

	require.NoError(t, db.MarkMessagesRead(ctx, alice.ID, []uuid.UUID{msg.ID}))
	unread, err = db.CountUnreadMessages(ctx, alice.ID)
	require.NoError(t, err)
	assert.Zero(t, unread)

	assertCode(t, db.CreateMessage(ctx, &models.Message{ID: uuid.New(), ChatID: chat.ID, SenderID: bob.ID, RecipientID: alice.ID}), utils.ErrInvalidInput)
}

func testCascades(t *testing.T, db DBAdapter) {
	ctx := context.Background()
	author := mustUser(t, db, "author")
	fan := mustUser(t, db, "fan")
	post := mustPost(t, db, author, nil, "text")

	require.NoError(t, db.CreateComment(ctx, &models.Comment{ID: uuid.New(), PostID: post.ID, AuthorID: fan.ID, Text: "nice"}))
	require.NoError(t, db.CreateReaction(ctx, &models.Reaction{ID: uuid.New(), UserID: fan.ID, PostID: post.ID, Kind: models.ReactionLike}))
	_, err := db.CreateFollow(ctx, &models.Follow{ID: uuid.New(), UserID: fan.ID, AuthorID: author.ID})
	require.NoError(t, err)

	chat := models.NewChat(author.ID, fan.ID)
	require.NoError(t, db.CreateChat(ctx, chat))
	require.NoError(t, db.CreateMessage(ctx, &models.Message{ID: uuid.New(), ChatID: chat.ID, SenderID: fan.ID, RecipientID: author.ID, Text: "yo"}))

	require.NoError(t, db.DeleteUser(ctx, fan.ID))

	comments, err := db.GetPostComments(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)

	counts, err := db.CountReactions(ctx, post.ID)
	require.NoError(t, err)
	assert.Zero(t, counts.Likes)

	followers, err := db.CountFollowers(ctx, author.ID)
	require.NoError(t, err)
	assert.Zero(t, followers)

	_, err = db.GetChat(ctx, chat.ID)
	assertCode(t, err, utils.ErrNotFound)

	require.NoError(t, db.DeleteUser(ctx, author.ID))
	_, err = db.GetPost(ctx, post.ID)
	assertCode(t, err, utils.ErrNotFound)
}
