package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewPager(t *testing.T) {
	tests := []struct {
		name          string
		number, total int
		wantNumber    int
		wantPages     int
		wantOffset    int
	}{
		{name: "first page", number: 1, total: 12, wantNumber: 1, wantPages: 3, wantOffset: 0},
		{name: "last partial page", number: 3, total: 12, wantNumber: 3, wantPages: 3, wantOffset: 10},
		{name: "past the end", number: 9, total: 12, wantNumber: 3, wantPages: 3, wantOffset: 10},
		{name: "zero", number: 0, total: 12, wantNumber: 3, wantPages: 3, wantOffset: 10},
		{name: "empty listing", number: 4, total: 0, wantNumber: 1, wantPages: 1, wantOffset: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPager(tt.number, tt.total, PageSize)
			assert.Equal(t, tt.wantNumber, p.Number)
			assert.Equal(t, tt.wantPages, p.NumPages)
			assert.Equal(t, tt.wantOffset, p.Offset())
			assert.Equal(t, PageSize, p.Limit())
		})
	}
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	page := Paginate(items, 2, 5)
	assert.Equal(t, []int{6, 7}, page.Items)
	assert.True(t, page.HasPrevious)
	assert.False(t, page.HasNext)
	assert.Equal(t, 7, page.Total)

	page = Paginate(items, 1, 5)
	assert.Len(t, page.Items, 5)
	assert.True(t, page.HasNext)

	empty := Paginate([]int(nil), 1, 5)
	assert.NotNil(t, empty.Items)
	assert.Empty(t, empty.Items)
}

func TestNormalizePair(t *testing.T) {
	a := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	b := uuid.MustParse("00000000-0000-0000-0000-000000000002")

	first, second := NormalizePair(b, a)
	assert.Equal(t, a, first)
	assert.Equal(t, b, second)

	chat := NewChat(b, a)
	assert.Equal(t, a, chat.User1ID)
	assert.True(t, chat.HasParty(b))
	assert.Equal(t, a, chat.Peer(b))
	assert.False(t, chat.HasParty(uuid.New()))
}

func TestReactionKind(t *testing.T) {
	assert.True(t, ReactionLike.Valid())
	assert.False(t, ReactionKind("love").Valid())
	assert.Equal(t, ReactionDislike, ReactionLike.Opposite())
	assert.Equal(t, ReactionLike, ReactionDislike.Opposite())
}

func TestEventsIDs(t *testing.T) {
	events := &Events{
		Comments: []*Comment{{ID: uuid.New()}},
		Likes:    []*Reaction{{ID: uuid.New()}},
		Dislikes: []*Reaction{{ID: uuid.New()}},
	}
	assert.Equal(t, 3, events.Count())

	ids := events.IDs()
	assert.Len(t, ids.Comments, 1)
	assert.Empty(t, ids.Follows)
	assert.Len(t, ids.Reactions, 2)
	assert.False(t, ids.Empty())
	assert.True(t, EventIDs{}.Empty())
}
