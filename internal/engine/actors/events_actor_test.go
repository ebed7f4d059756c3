package actors

import (
	"testing"

	"yatube/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventsAggregation(t *testing.T) {
	h := newHarness(t)
	author := h.user(t, "author")
	fan := h.user(t, "fan")
	hater := h.user(t, "hater")
	post := h.post(t, author, "text", "")

	ask[*models.Comment](t, h, h.posts, &AddCommentMsg{PostID: post.ID, AuthorID: fan.ID, Text: "nice"})
	ask[*FollowResult](t, h, h.social, &FollowMsg{UserID: fan.ID, AuthorUsername: "author"})
	ask[*ReactionResult](t, h, h.social, &SetReactionMsg{UserID: fan.ID, PostID: post.ID, Kind: models.ReactionLike})
	ask[*ReactionResult](t, h, h.social, &SetReactionMsg{UserID: hater.ID, PostID: post.ID, Kind: models.ReactionDislike})

	events := ask[*models.Events](t, h, h.events, &UnreadEventsMsg{UserID: author.ID})
	assert.Len(t, events.Comments, 1)
	assert.Len(t, events.Follows, 1)
	assert.Len(t, events.Likes, 1)
	assert.Len(t, events.Dislikes, 1)
	assert.Equal(t, events.Count(), ask[int](t, h, h.events, &CountEventsMsg{UserID: author.ID}))
	assert.Equal(t, 4, events.Count())

	// Reading is side-effect free.
	assert.Equal(t, 4, ask[int](t, h, h.events, &CountEventsMsg{UserID: author.ID}))
	assert.Zero(t, ask[int](t, h, h.events, &CountEventsMsg{UserID: fan.ID}))
}

func TestAcknowledgeEventsIsScopedToOwner(t *testing.T) {
	h := newHarness(t)
	author := h.user(t, "author")
	other := h.user(t, "other")
	fan := h.user(t, "fan")
	post := h.post(t, author, "mine", "")
	otherPost := h.post(t, other, "theirs", "")

	ask[*models.Comment](t, h, h.posts, &AddCommentMsg{PostID: post.ID, AuthorID: fan.ID, Text: "a"})
	foreign := ask[*models.Comment](t, h, h.posts, &AddCommentMsg{PostID: otherPost.ID, AuthorID: fan.ID, Text: "b"})

	ask[*Done](t, h, h.events, &AcknowledgeEventsMsg{
		UserID: author.ID,
		IDs:    models.EventIDs{Comments: []uuid.UUID{foreign.ID}},
	})
	assert.Equal(t, 1, ask[int](t, h, h.events, &CountEventsMsg{UserID: other.ID}), "ids of other users are ignored")
	assert.Equal(t, 1, ask[int](t, h, h.events, &CountEventsMsg{UserID: author.ID}))
}

func TestViewEventsAcknowledgesShownEvents(t *testing.T) {
	h := newHarness(t)
	author := h.user(t, "author")
	fan := h.user(t, "fan")
	post := h.post(t, author, "text", "")

	ask[*models.Comment](t, h, h.posts, &AddCommentMsg{PostID: post.ID, AuthorID: fan.ID, Text: "nice"})
	ask[*FollowResult](t, h, h.social, &FollowMsg{UserID: fan.ID, AuthorUsername: "author"})

	viewed := ask[*models.Events](t, h, h.events, &ViewEventsMsg{UserID: author.ID})
	assert.Equal(t, 2, viewed.Count())
	assert.Zero(t, ask[int](t, h, h.events, &CountEventsMsg{UserID: author.ID}))

	ask[*models.Comment](t, h, h.posts, &AddCommentMsg{PostID: post.ID, AuthorID: fan.ID, Text: "again"})
	unread := ask[*models.Events](t, h, h.events, &UnreadEventsMsg{UserID: author.ID})
	require.Len(t, unread.Comments, 1)
	assert.Equal(t, "again", unread.Comments[0].Text)
}
