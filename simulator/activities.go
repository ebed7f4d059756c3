package simulator

import (
	"context"
	"fmt"
	"math/rand"

	"yatube/internal/models"

	"github.com/google/uuid"
)

// zipfIndex picks an index in [0, n). Low indexes are picked far more often,
// so a few authors and posts become popular.
func (s *Simulator) zipfIndex(n int) int {
	if n <= 1 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	zipf := rand.NewZipf(s.rng, s.config.ZipfS, 1, uint64(n-1))
	return int(zipf.Uint64())
}

func (s *Simulator) popularUser(exclude *SimulatedUser) (*SimulatedUser, bool) {
	if len(s.users) < 2 {
		return nil, false
	}
	for {
		candidate := s.users[s.zipfIndex(len(s.users))]
		if candidate != exclude {
			return candidate, true
		}
	}
}

func (s *Simulator) popularPost() (uuid.UUID, bool) {
	s.mu.RLock()
	n := len(s.posts)
	s.mu.RUnlock()
	if n == 0 {
		return uuid.Nil, false
	}
	// Newer posts sit at the end and get the attention.
	idx := n - 1 - s.zipfIndex(n)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.posts[idx], true
}

func (s *Simulator) simulatePost(ctx context.Context, user *SimulatedUser) {
	group := ""
	s.mu.Lock()
	if len(s.groups) > 0 && s.rng.Float64() < 0.7 {
		group = s.groups[s.rng.Intn(len(s.groups))]
	}
	s.mu.Unlock()

	post, err := s.client.createPost(ctx, user.Token, fmt.Sprintf("Post by %s", user.Username), group)
	if err != nil {
		s.logger.Debug("post failed", "user", user.Username, "error", err)
		return
	}
	s.mu.Lock()
	s.posts = append(s.posts, post.ID)
	s.mu.Unlock()
	s.stats.count(&s.stats.TotalPosts)
}

func (s *Simulator) simulateComment(ctx context.Context, user *SimulatedUser) {
	postID, ok := s.popularPost()
	if !ok {
		return
	}
	if err := s.client.comment(ctx, user.Token, postID, "Comment from "+user.Username); err != nil {
		s.logger.Debug("comment failed", "user", user.Username, "error", err)
		return
	}
	s.stats.count(&s.stats.TotalComments)
}

func (s *Simulator) simulateReaction(ctx context.Context, user *SimulatedUser) {
	postID, ok := s.popularPost()
	if !ok {
		return
	}
	kind := models.ReactionLike
	s.mu.Lock()
	if s.rng.Float64() < 0.2 {
		kind = models.ReactionDislike
	}
	s.mu.Unlock()

	if err := s.client.react(ctx, user.Token, postID, kind); err != nil {
		s.logger.Debug("reaction failed", "user", user.Username, "error", err)
		return
	}
	s.stats.count(&s.stats.TotalReactions)
}

// simulateFollow follows a popular author and reads the follow feed.
func (s *Simulator) simulateFollow(ctx context.Context, user *SimulatedUser) {
	author, ok := s.popularUser(user)
	if !ok {
		return
	}
	if err := s.client.follow(ctx, user.Token, author.Username); err != nil {
		s.logger.Debug("follow failed", "user", user.Username, "error", err)
		return
	}
	s.stats.count(&s.stats.TotalFollows)
	if _, err := s.client.feed(ctx, user.Token); err != nil {
		s.logger.Debug("feed failed", "user", user.Username, "error", err)
	}
}

func (s *Simulator) simulateMessage(ctx context.Context, user *SimulatedUser) {
	peer, ok := s.popularUser(user)
	if !ok {
		return
	}
	if err := s.client.sendMessage(ctx, user.Token, peer.Username, "Hi "+peer.Username); err != nil {
		s.logger.Debug("message failed", "user", user.Username, "error", err)
		return
	}
	s.stats.count(&s.stats.TotalMessages)
	if _, err := s.client.badges(ctx, peer.Token); err != nil {
		s.logger.Debug("badges failed", "user", peer.Username, "error", err)
	}
}
