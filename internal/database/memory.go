package database

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"yatube/internal/models"
	"yatube/internal/utils"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// MemoryDB is a process-local DBAdapter. It mirrors the PostgreSQL schema rules
// (unique keys, check constraints, cascades) so the engine behaves the same
// on both backends.
type MemoryDB struct {
	mu sync.RWMutex

	// seq records insertion order and breaks timestamp ties in listings.
	seq     map[uuid.UUID]int64
	nextSeq int64

	users     map[uuid.UUID]*models.User
	profiles  map[uuid.UUID]*models.Profile
	groups    map[uuid.UUID]*models.Group
	posts     map[uuid.UUID]*models.Post
	comments  map[uuid.UUID]*models.Comment
	follows   map[uuid.UUID]*models.Follow
	reactions map[uuid.UUID]*models.Reaction
	chats     map[uuid.UUID]*models.Chat
	messages  map[uuid.UUID]*models.Message
}

var _ DBAdapter = (*MemoryDB)(nil)

func NewMemoryDB() *MemoryDB {
	return &MemoryDB{
		seq:       make(map[uuid.UUID]int64),
		users:     make(map[uuid.UUID]*models.User),
		profiles:  make(map[uuid.UUID]*models.Profile),
		groups:    make(map[uuid.UUID]*models.Group),
		posts:     make(map[uuid.UUID]*models.Post),
		comments:  make(map[uuid.UUID]*models.Comment),
		follows:   make(map[uuid.UUID]*models.Follow),
		reactions: make(map[uuid.UUID]*models.Reaction),
		chats:     make(map[uuid.UUID]*models.Chat),
		messages:  make(map[uuid.UUID]*models.Message),
	}
}

func (m *MemoryDB) Close(ctx context.Context) error { return nil }

func (m *MemoryDB) track(id uuid.UUID) {
	m.nextSeq++
	m.seq[id] = m.nextSeq
}

// newer orders rows newest first, insertion order breaking ties.
func (m *MemoryDB) newer(at time.Time, a uuid.UUID, bt time.Time, b uuid.UUID) bool {
	if !at.Equal(bt) {
		return at.After(bt)
	}
	return m.seq[a] > m.seq[b]
}

func duplicate(entity, key string) error {
	return utils.NewAppError(utils.ErrDuplicate, entity+" already exists: "+key, nil)
}

func checkViolation(entity, rule string) error {
	return utils.NewAppError(utils.ErrInvalidInput, entity+" violates "+rule, nil)
}

func missingRef(entity, ref string) error {
	return utils.NewAppError(utils.ErrNotFound, entity+" references a missing "+ref, nil)
}

// --- Users ---

func (m *MemoryDB) CreateUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Username == user.Username {
			return duplicate("user", "users_username_key")
		}
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	cp := *user
	m.users[user.ID] = &cp
	m.track(user.ID)
	return nil
}

func (m *MemoryDB) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, utils.NewNotFoundError("user")
	}
	cp := *u
	return &cp, nil
}

func (m *MemoryDB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, utils.NewNotFoundError("user")
}

func (m *MemoryDB) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := m.copyUsers()
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}

func (m *MemoryDB) CountUsers(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users), nil
}

func (m *MemoryDB) GetNewestUsers(ctx context.Context, limit int) ([]*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := m.copyUsers()
	sort.Slice(users, func(i, j int) bool {
		return m.newer(users[i].CreatedAt, users[i].ID, users[j].CreatedAt, users[j].ID)
	})
	return lo.Subset(users, 0, uint(max(limit, 0))), nil
}

func (m *MemoryDB) copyUsers() []*models.User {
	return lo.MapToSlice(m.users, func(_ uuid.UUID, u *models.User) *models.User {
		cp := *u
		return &cp
	})
}

func (m *MemoryDB) GetPopularAuthors(ctx context.Context, limit int) ([]*models.AuthorStat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	likes := make(map[uuid.UUID]int)
	for _, r := range m.reactions {
		if r.Kind != models.ReactionLike {
			continue
		}
		if post, ok := m.posts[r.PostID]; ok && post.AuthorID != nil {
			likes[*post.AuthorID]++
		}
	}

	stats := lo.MapToSlice(m.users, func(id uuid.UUID, u *models.User) *models.AuthorStat {
		return &models.AuthorStat{User: *u, Likes: likes[id]}
	})
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Likes != stats[j].Likes {
			return stats[i].Likes > stats[j].Likes
		}
		return stats[i].Username < stats[j].Username
	})
	return lo.Subset(stats, 0, uint(max(limit, 0))), nil
}

func (m *MemoryDB) DeleteUser(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return utils.NewNotFoundError("user")
	}

	for postID, post := range m.posts {
		if post.AuthorID != nil && *post.AuthorID == id {
			m.deletePostLocked(postID)
		}
	}
	for commentID, c := range m.comments {
		if c.AuthorID == id {
			delete(m.comments, commentID)
		}
	}
	for followID, f := range m.follows {
		if f.UserID == id || f.AuthorID == id {
			delete(m.follows, followID)
		}
	}
	for reactionID, r := range m.reactions {
		if r.UserID == id {
			delete(m.reactions, reactionID)
		}
	}
	for chatID, c := range m.chats {
		if c.HasParty(id) {
			m.deleteChatLocked(chatID)
		}
	}
	for msgID, msg := range m.messages {
		if msg.SenderID == id || msg.RecipientID == id {
			m.deleteMessageLocked(msgID)
		}
	}
	delete(m.profiles, id)
	delete(m.users, id)
	return nil
}

// --- Profiles ---

func (m *MemoryDB) CreateProfile(ctx context.Context, profile *models.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[profile.UserID]; !ok {
		return missingRef("profile", "user")
	}
	if _, ok := m.profiles[profile.UserID]; ok {
		return duplicate("profile", "profiles_pkey")
	}
	if profile.Avatar == "" {
		profile.Avatar = models.DefaultAvatar
	}
	cp := *profile
	m.profiles[profile.UserID] = &cp
	return nil
}

func (m *MemoryDB) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.profiles[userID]
	if !ok {
		return nil, utils.NewNotFoundError("profile")
	}
	cp := *p
	return &cp, nil
}

func (m *MemoryDB) UpdateProfile(ctx context.Context, profile *models.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.profiles[profile.UserID]; !ok {
		return utils.NewNotFoundError("profile")
	}
	cp := *profile
	m.profiles[profile.UserID] = &cp
	return nil
}

// --- Groups ---

func (m *MemoryDB) CreateGroup(ctx context.Context, group *models.Group) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, g := range m.groups {
		if g.Slug == group.Slug {
			return duplicate("group", "groups_slug_key")
		}
	}
	if group.CreatedAt.IsZero() {
		group.CreatedAt = time.Now()
	}
	cp := *group
	m.groups[group.ID] = &cp
	m.track(group.ID)
	return nil
}

func (m *MemoryDB) GetGroup(ctx context.Context, id uuid.UUID) (*models.Group, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	g, ok := m.groups[id]
	if !ok {
		return nil, utils.NewNotFoundError("group")
	}
	cp := *g
	return &cp, nil
}

func (m *MemoryDB) GetGroupBySlug(ctx context.Context, slug string) (*models.Group, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, g := range m.groups {
		if g.Slug == slug {
			cp := *g
			return &cp, nil
		}
	}
	return nil, utils.NewNotFoundError("group")
}

func (m *MemoryDB) GetAllGroups(ctx context.Context) ([]*models.Group, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	groups := lo.MapToSlice(m.groups, func(_ uuid.UUID, g *models.Group) *models.Group {
		cp := *g
		return &cp
	})
	sort.Slice(groups, func(i, j int) bool { return groups[i].Title < groups[j].Title })
	return groups, nil
}

func (m *MemoryDB) GetPopularGroups(ctx context.Context, limit int) ([]*models.GroupStat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[uuid.UUID]int)
	for _, p := range m.posts {
		if p.GroupID != nil {
			counts[*p.GroupID]++
		}
	}
	stats := lo.MapToSlice(m.groups, func(id uuid.UUID, g *models.Group) *models.GroupStat {
		return &models.GroupStat{Group: *g, Posts: counts[id]}
	})
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Posts != stats[j].Posts {
			return stats[i].Posts > stats[j].Posts
		}
		return stats[i].Title < stats[j].Title
	})
	return lo.Subset(stats, 0, uint(max(limit, 0))), nil
}

func (m *MemoryDB) DeleteGroup(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.groups[id]; !ok {
		return utils.NewNotFoundError("group")
	}
	for _, p := range m.posts {
		if p.GroupID != nil && *p.GroupID == id {
			p.GroupID = nil
		}
	}
	delete(m.groups, id)
	return nil
}

// --- Posts ---

func (m *MemoryDB) checkPostRefs(post *models.Post) error {
	if post.Text == "" {
		return checkViolation("post", "posts_text_check")
	}
	if post.AuthorID != nil {
		if _, ok := m.users[*post.AuthorID]; !ok {
			return missingRef("post", "user")
		}
	}
	if post.GroupID != nil {
		if _, ok := m.groups[*post.GroupID]; !ok {
			return missingRef("post", "group")
		}
	}
	return nil
}

func (m *MemoryDB) CreatePost(ctx context.Context, post *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkPostRefs(post); err != nil {
		return err
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}
	m.posts[post.ID] = m.storedPost(post)
	m.track(post.ID)
	return nil
}

// storedPost keeps only the columns; joined fields are rebuilt on read.
func (m *MemoryDB) storedPost(post *models.Post) *models.Post {
	return &models.Post{
		ID:        post.ID,
		Title:     post.Title,
		Text:      post.Text,
		CreatedAt: post.CreatedAt,
		AuthorID:  post.AuthorID,
		GroupID:   post.GroupID,
		Image:     post.Image,
		IsPinned:  post.IsPinned,
	}
}

func (m *MemoryDB) UpdatePost(ctx context.Context, post *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.posts[post.ID]
	if !ok {
		return utils.NewNotFoundError("post")
	}
	updated := m.storedPost(post)
	updated.AuthorID = existing.AuthorID
	updated.CreatedAt = existing.CreatedAt
	if err := m.checkPostRefs(updated); err != nil {
		return err
	}
	m.posts[post.ID] = updated
	return nil
}

func (m *MemoryDB) DeletePost(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.posts[id]; !ok {
		return utils.NewNotFoundError("post")
	}
	m.deletePostLocked(id)
	return nil
}

func (m *MemoryDB) deletePostLocked(id uuid.UUID) {
	for commentID, c := range m.comments {
		if c.PostID == id {
			delete(m.comments, commentID)
		}
	}
	for reactionID, r := range m.reactions {
		if r.PostID == id {
			delete(m.reactions, reactionID)
		}
	}
	delete(m.posts, id)
}

// decoratePost copies a stored post and fills in author and group names.
func (m *MemoryDB) decoratePost(p *models.Post) *models.Post {
	cp := *p
	if cp.AuthorID != nil {
		if u, ok := m.users[*cp.AuthorID]; ok {
			cp.AuthorUsername = u.Username
		}
	}
	if cp.GroupID != nil {
		if g, ok := m.groups[*cp.GroupID]; ok {
			slug, title := g.Slug, g.Title
			cp.GroupSlug, cp.GroupTitle = &slug, &title
		}
	}
	return &cp
}

func (m *MemoryDB) GetPost(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.posts[id]
	if !ok {
		return nil, utils.NewNotFoundError("post")
	}
	return m.decoratePost(p), nil
}

func (m *MemoryDB) matchPost(p *models.Post, filter models.PostFilter) bool {
	if filter.GroupID != nil && (p.GroupID == nil || *p.GroupID != *filter.GroupID) {
		return false
	}
	if filter.AuthorID != nil && (p.AuthorID == nil || *p.AuthorID != *filter.AuthorID) {
		return false
	}
	if filter.FollowerID != nil {
		if p.AuthorID == nil || !m.isFollowingLocked(*filter.FollowerID, *p.AuthorID) {
			return false
		}
	}
	if q := strings.ToLower(strings.TrimSpace(filter.Query)); q != "" {
		contains := func(s string) bool { return strings.Contains(strings.ToLower(s), q) }
		if contains(p.Text) || contains(p.AuthorUsername) || (p.GroupTitle != nil && contains(*p.GroupTitle)) {
			return true
		}
		return false
	}
	return true
}

func (m *MemoryDB) filterPosts(filter models.PostFilter) []*models.Post {
	var posts []*models.Post
	for _, p := range m.posts {
		decorated := m.decoratePost(p)
		if m.matchPost(decorated, filter) {
			posts = append(posts, decorated)
		}
	}
	sort.Slice(posts, func(i, j int) bool {
		return m.newer(posts[i].CreatedAt, posts[i].ID, posts[j].CreatedAt, posts[j].ID)
	})
	return posts
}

func (m *MemoryDB) CountPosts(ctx context.Context, filter models.PostFilter) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.filterPosts(filter)), nil
}

func (m *MemoryDB) ListPosts(ctx context.Context, filter models.PostFilter, limit, offset int) ([]*models.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	posts := m.filterPosts(filter)
	return lo.Subset(posts, max(offset, 0), uint(max(limit, 0))), nil
}

// --- Comments ---

func (m *MemoryDB) CreateComment(ctx context.Context, comment *models.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if comment.Text == "" {
		return checkViolation("comment", "comments_text_check")
	}
	if _, ok := m.posts[comment.PostID]; !ok {
		return missingRef("comment", "post")
	}
	if _, ok := m.users[comment.AuthorID]; !ok {
		return missingRef("comment", "user")
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now()
	}
	cp := *comment
	cp.AuthorUsername = ""
	m.comments[comment.ID] = &cp
	m.track(comment.ID)
	return nil
}

func (m *MemoryDB) decorateComment(c *models.Comment) *models.Comment {
	cp := *c
	if u, ok := m.users[cp.AuthorID]; ok {
		cp.AuthorUsername = u.Username
	}
	return &cp
}

func (m *MemoryDB) GetPostComments(ctx context.Context, postID uuid.UUID) ([]*models.Comment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	comments := []*models.Comment{}
	for _, c := range m.comments {
		if c.PostID == postID {
			comments = append(comments, m.decorateComment(c))
		}
	}
	sort.Slice(comments, func(i, j int) bool {
		return m.newer(comments[j].CreatedAt, comments[j].ID, comments[i].CreatedAt, comments[i].ID)
	})
	return comments, nil
}

func (m *MemoryDB) authoredBy(postID, authorID uuid.UUID) bool {
	p, ok := m.posts[postID]
	return ok && p.AuthorID != nil && *p.AuthorID == authorID
}

func (m *MemoryDB) GetUnreadComments(ctx context.Context, postAuthorID uuid.UUID) ([]*models.Comment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	comments := []*models.Comment{}
	for _, c := range m.comments {
		if !c.IsRead && m.authoredBy(c.PostID, postAuthorID) {
			comments = append(comments, m.decorateComment(c))
		}
	}
	sort.Slice(comments, func(i, j int) bool {
		return m.newer(comments[i].CreatedAt, comments[i].ID, comments[j].CreatedAt, comments[j].ID)
	})
	return comments, nil
}

func (m *MemoryDB) MarkCommentsRead(ctx context.Context, postAuthorID uuid.UUID, ids []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range ids {
		if c, ok := m.comments[id]; ok && m.authoredBy(c.PostID, postAuthorID) {
			c.IsRead = true
		}
	}
	return nil
}

// --- Follows ---

func (m *MemoryDB) isFollowingLocked(userID, authorID uuid.UUID) bool {
	for _, f := range m.follows {
		if f.UserID == userID && f.AuthorID == authorID {
			return true
		}
	}
	return false
}

func (m *MemoryDB) CreateFollow(ctx context.Context, follow *models.Follow) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if follow.UserID == follow.AuthorID {
		return false, checkViolation("follow", "follows_no_self_follow")
	}
	if _, ok := m.users[follow.UserID]; !ok {
		return false, missingRef("follow", "user")
	}
	if _, ok := m.users[follow.AuthorID]; !ok {
		return false, missingRef("follow", "user")
	}
	if m.isFollowingLocked(follow.UserID, follow.AuthorID) {
		return false, nil
	}
	if follow.CreatedAt.IsZero() {
		follow.CreatedAt = time.Now()
	}
	cp := *follow
	m.follows[follow.ID] = &cp
	m.track(follow.ID)
	return true, nil
}

func (m *MemoryDB) DeleteFollow(ctx context.Context, userID, authorID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, f := range m.follows {
		if f.UserID == userID && f.AuthorID == authorID {
			delete(m.follows, id)
		}
	}
	return nil
}

func (m *MemoryDB) IsFollowing(ctx context.Context, userID, authorID uuid.UUID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.isFollowingLocked(userID, authorID), nil
}

func (m *MemoryDB) CountFollowers(ctx context.Context, authorID uuid.UUID) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return lo.CountBy(lo.Values(m.follows), func(f *models.Follow) bool { return f.AuthorID == authorID }), nil
}

func (m *MemoryDB) CountFollowing(ctx context.Context, userID uuid.UUID) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return lo.CountBy(lo.Values(m.follows), func(f *models.Follow) bool { return f.UserID == userID }), nil
}

func (m *MemoryDB) GetUnreadFollows(ctx context.Context, authorID uuid.UUID) ([]*models.Follow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	follows := []*models.Follow{}
	for _, f := range m.follows {
		if f.AuthorID == authorID && !f.IsRead {
			cp := *f
			if u, ok := m.users[f.UserID]; ok {
				cp.Username = u.Username
			}
			follows = append(follows, &cp)
		}
	}
	sort.Slice(follows, func(i, j int) bool {
		return m.newer(follows[i].CreatedAt, follows[i].ID, follows[j].CreatedAt, follows[j].ID)
	})
	return follows, nil
}

func (m *MemoryDB) MarkFollowsRead(ctx context.Context, authorID uuid.UUID, ids []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range ids {
		if f, ok := m.follows[id]; ok && f.AuthorID == authorID {
			f.IsRead = true
		}
	}
	return nil
}

// --- Reactions ---

func (m *MemoryDB) decorateReaction(r *models.Reaction) *models.Reaction {
	cp := *r
	if u, ok := m.users[r.UserID]; ok {
		cp.Username = u.Username
	}
	return &cp
}

func (m *MemoryDB) GetReaction(ctx context.Context, userID, postID uuid.UUID) (*models.Reaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, r := range m.reactions {
		if r.UserID == userID && r.PostID == postID {
			return m.decorateReaction(r), nil
		}
	}
	return nil, utils.NewNotFoundError("reaction")
}

func (m *MemoryDB) CreateReaction(ctx context.Context, reaction *models.Reaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !reaction.Kind.Valid() {
		return checkViolation("reaction", "reactions_kind_check")
	}
	if _, ok := m.users[reaction.UserID]; !ok {
		return missingRef("reaction", "user")
	}
	if _, ok := m.posts[reaction.PostID]; !ok {
		return missingRef("reaction", "post")
	}
	for _, r := range m.reactions {
		if r.UserID == reaction.UserID && r.PostID == reaction.PostID {
			return duplicate("reaction", "reactions_user_post_key")
		}
	}
	if reaction.CreatedAt.IsZero() {
		reaction.CreatedAt = time.Now()
	}
	cp := *reaction
	m.reactions[reaction.ID] = &cp
	m.track(reaction.ID)
	return nil
}

func (m *MemoryDB) DeleteReaction(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.reactions[id]; !ok {
		return utils.NewNotFoundError("reaction")
	}
	delete(m.reactions, id)
	return nil
}

func (m *MemoryDB) CountReactions(ctx context.Context, postID uuid.UUID) (*models.ReactionCounts, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := &models.ReactionCounts{}
	for _, r := range m.reactions {
		if r.PostID != postID {
			continue
		}
		if r.Kind == models.ReactionLike {
			counts.Likes++
		} else {
			counts.Dislikes++
		}
	}
	return counts, nil
}

func (m *MemoryDB) GetUnreadReactions(ctx context.Context, postAuthorID uuid.UUID, kind models.ReactionKind) ([]*models.Reaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	reactions := []*models.Reaction{}
	for _, r := range m.reactions {
		if r.Kind == kind && !r.IsRead && m.authoredBy(r.PostID, postAuthorID) {
			reactions = append(reactions, m.decorateReaction(r))
		}
	}
	sort.Slice(reactions, func(i, j int) bool {
		return m.newer(reactions[i].CreatedAt, reactions[i].ID, reactions[j].CreatedAt, reactions[j].ID)
	})
	return reactions, nil
}

func (m *MemoryDB) MarkReactionsRead(ctx context.Context, postAuthorID uuid.UUID, ids []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range ids {
		if r, ok := m.reactions[id]; ok && m.authoredBy(r.PostID, postAuthorID) {
			r.IsRead = true
		}
	}
	return nil
}

// --- Chats ---

func (m *MemoryDB) CreateChat(ctx context.Context, chat *models.Chat) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	chat.User1ID, chat.User2ID = models.NormalizePair(chat.User1ID, chat.User2ID)
	if chat.User1ID == chat.User2ID {
		return checkViolation("chat", "chats_ordered_pair")
	}
	if _, ok := m.users[chat.User1ID]; !ok {
		return missingRef("chat", "user")
	}
	if _, ok := m.users[chat.User2ID]; !ok {
		return missingRef("chat", "user")
	}
	if m.findChatLocked(chat.User1ID, chat.User2ID) != nil {
		return duplicate("chat", "chats_pair_key")
	}
	if chat.CreatedAt.IsZero() {
		chat.CreatedAt = time.Now()
	}
	cp := *chat
	m.chats[chat.ID] = &cp
	m.track(chat.ID)
	return nil
}

func (m *MemoryDB) findChatLocked(a, b uuid.UUID) *models.Chat {
	first, second := models.NormalizePair(a, b)
	for _, c := range m.chats {
		if c.User1ID == first && c.User2ID == second {
			return c
		}
	}
	return nil
}

func (m *MemoryDB) GetChat(ctx context.Context, id uuid.UUID) (*models.Chat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.chats[id]
	if !ok {
		return nil, utils.NewNotFoundError("chat")
	}
	cp := *c
	return &cp, nil
}

func (m *MemoryDB) FindChat(ctx context.Context, a, b uuid.UUID) (*models.Chat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c := m.findChatLocked(a, b)
	if c == nil {
		return nil, utils.NewNotFoundError("chat")
	}
	cp := *c
	return &cp, nil
}

func (m *MemoryDB) GetUserChats(ctx context.Context, userID uuid.UUID) ([]*models.ChatSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	byChat := make(map[uuid.UUID]*models.ChatSummary)
	summaries := []*models.ChatSummary{}
	for _, c := range m.chats {
		if !c.HasParty(userID) {
			continue
		}
		cp := *c
		s := &models.ChatSummary{Chat: &cp}
		byChat[c.ID] = s
		summaries = append(summaries, s)
	}

	for _, msg := range m.messages {
		s, ok := byChat[msg.ChatID]
		if !ok {
			continue
		}
		if s.LastMessageAt == nil || msg.CreatedAt.After(*s.LastMessageAt) {
			at := msg.CreatedAt
			s.LastMessageAt = &at
		}
		if msg.RecipientID == userID && !msg.IsRead {
			s.UnreadCount++
		}
	}

	sort.Slice(summaries, func(i, j int) bool {
		a, b := summaries[i], summaries[j]
		switch {
		case a.LastMessageAt != nil && b.LastMessageAt == nil:
			return true
		case a.LastMessageAt == nil && b.LastMessageAt != nil:
			return false
		case a.LastMessageAt != nil && !a.LastMessageAt.Equal(*b.LastMessageAt):
			return a.LastMessageAt.After(*b.LastMessageAt)
		}
		return m.newer(a.Chat.CreatedAt, a.Chat.ID, b.Chat.CreatedAt, b.Chat.ID)
	})
	return summaries, nil
}

func (m *MemoryDB) SetChatLastMessage(ctx context.Context, chatID, messageID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.chats[chatID]
	if !ok {
		return utils.NewNotFoundError("chat")
	}
	if _, ok := m.messages[messageID]; !ok {
		return missingRef("chat", "message")
	}
	id := messageID
	c.LastMessageID = &id
	return nil
}

func (m *MemoryDB) deleteChatLocked(id uuid.UUID) {
	for msgID, msg := range m.messages {
		if msg.ChatID == id {
			delete(m.messages, msgID)
		}
	}
	delete(m.chats, id)
}

func (m *MemoryDB) deleteMessageLocked(id uuid.UUID) {
	for _, c := range m.chats {
		if c.LastMessageID != nil && *c.LastMessageID == id {
			c.LastMessageID = nil
		}
	}
	delete(m.messages, id)
}

// --- Messages ---

func (m *MemoryDB) CreateMessage(ctx context.Context, msg *models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if msg.Text == "" {
		return checkViolation("message", "messages_text_check")
	}
	if _, ok := m.chats[msg.ChatID]; !ok {
		return missingRef("message", "chat")
	}
	if _, ok := m.users[msg.SenderID]; !ok {
		return missingRef("message", "user")
	}
	if _, ok := m.users[msg.RecipientID]; !ok {
		return missingRef("message", "user")
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	cp := *msg
	m.messages[msg.ID] = &cp
	m.track(msg.ID)
	return nil
}

func (m *MemoryDB) GetMessage(ctx context.Context, id uuid.UUID) (*models.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	msg, ok := m.messages[id]
	if !ok {
		return nil, utils.NewNotFoundError("message")
	}
	cp := *msg
	return &cp, nil
}

func (m *MemoryDB) GetChatMessages(ctx context.Context, chatID uuid.UUID) ([]*models.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	messages := []*models.Message{}
	for _, msg := range m.messages {
		if msg.ChatID == chatID {
			cp := *msg
			messages = append(messages, &cp)
		}
	}
	sort.Slice(messages, func(i, j int) bool {
		return m.newer(messages[i].CreatedAt, messages[i].ID, messages[j].CreatedAt, messages[j].ID)
	})
	return messages, nil
}

func (m *MemoryDB) MarkMessagesRead(ctx context.Context, recipientID uuid.UUID, ids []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range ids {
		if msg, ok := m.messages[id]; ok && msg.RecipientID == recipientID {
			msg.IsRead = true
		}
	}
	return nil
}

func (m *MemoryDB) CountUnreadMessages(ctx context.Context, recipientID uuid.UUID) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return lo.CountBy(lo.Values(m.messages), func(msg *models.Message) bool {
		return msg.RecipientID == recipientID && !msg.IsRead
	}), nil
}
