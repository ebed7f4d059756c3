// Package simulator drives a running server with many concurrent users.
package simulator

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

const simPassword = "sim-password-123"

type SimConfig struct {
	NumUsers          int
	NumGroups         int
	SimulationTime    time.Duration
	TickInterval      time.Duration
	PostFrequency     float64 // per user per hour
	CommentFrequency  float64
	ReactionFrequency float64
	FollowFrequency   float64
	MessageFrequency  float64
	ZipfS             float64
	Workers           int
	RequestTimeout    time.Duration
	EngineURL         string
}

// DefaultConfig is a small run against a local server.
func DefaultConfig() SimConfig {
	return SimConfig{
		NumUsers:          10,
		NumGroups:         3,
		SimulationTime:    time.Minute,
		TickInterval:      500 * time.Millisecond,
		PostFrequency:     100,
		CommentFrequency:  60,
		ReactionFrequency: 100,
		FollowFrequency:   20,
		MessageFrequency:  30,
		ZipfS:             1.07,
		Workers:           5,
		RequestTimeout:    5 * time.Second,
		EngineURL:         "http://localhost:8080",
	}
}

type SimulationStats struct {
	mu              sync.RWMutex
	StartTime       time.Time
	TotalRequests   int64
	SuccessRequests int64
	FailedRequests  int64
	AverageLatency  time.Duration
	TotalPosts      int
	TotalComments   int
	TotalReactions  int
	TotalFollows    int
	TotalMessages   int
}

func (st *SimulationStats) recordRequest(latency time.Duration, err error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.TotalRequests++
	if err != nil {
		st.FailedRequests++
	} else {
		st.SuccessRequests++
	}
	totalLatency := st.AverageLatency * time.Duration(st.TotalRequests-1)
	st.AverageLatency = (totalLatency + latency) / time.Duration(st.TotalRequests)
}

func (st *SimulationStats) count(field *int) {
	st.mu.Lock()
	*field++
	st.mu.Unlock()
}

// SimulatedUser is one signed-in account.
type SimulatedUser struct {
	ID       uuid.UUID
	Username string
	Token    string
}

type Simulator struct {
	config SimConfig
	client *apiClient
	stats  *SimulationStats
	logger *slog.Logger

	mu     sync.RWMutex
	rng    *rand.Rand
	users  []*SimulatedUser
	groups []string
	posts  []uuid.UUID
}

func New(config SimConfig, logger *slog.Logger) *Simulator {
	if config.TickInterval <= 0 {
		config.TickInterval = 500 * time.Millisecond
	}
	if config.Workers <= 0 {
		config.Workers = 1
	}
	if config.ZipfS <= 1 {
		config.ZipfS = 1.07
	}
	stats := &SimulationStats{StartTime: time.Now()}
	return &Simulator{
		config: config,
		client: newAPIClient(config.EngineURL, config.RequestTimeout, stats),
		stats:  stats,
		logger: logger.With("component", "simulator"),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run seeds users and groups, then generates activity until ctx is done.
func (s *Simulator) Run(ctx context.Context) error {
	if err := s.initialize(ctx); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	jobs := make(chan func(context.Context))
	var wg sync.WaitGroup
	for i := 0; i < s.config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				job(ctx)
			}
		}()
	}

	ticker := time.NewTicker(s.config.TickInterval)
	defer ticker.Stop()
	report := time.NewTicker(10 * time.Second)
	defer report.Stop()

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case <-report.C:
			s.logMetrics()
		case <-ticker.C:
			for _, job := range s.plan() {
				select {
				case jobs <- job:
				case <-ctx.Done():
					break loop
				}
			}
		}
	}

	close(jobs)
	wg.Wait()
	s.logMetrics()
	return nil
}

func (s *Simulator) initialize(ctx context.Context) error {
	s.logger.Info("creating users", "count", s.config.NumUsers)
	runID := uuid.New().String()[:8]
	for i := 0; i < s.config.NumUsers; i++ {
		username := fmt.Sprintf("sim_%s_%d", runID, i)
		if _, err := s.client.register(ctx, username, simPassword); err != nil {
			return err
		}
		login, err := s.client.login(ctx, username, simPassword)
		if err != nil {
			return err
		}
		s.users = append(s.users, &SimulatedUser{ID: login.User.ID, Username: username, Token: login.Token})
	}
	if len(s.users) == 0 {
		return fmt.Errorf("no users to simulate")
	}

	s.logger.Info("creating groups", "count", s.config.NumGroups)
	for i := 0; i < s.config.NumGroups; i++ {
		theme := themes[i%len(themes)]
		slug := fmt.Sprintf("%s-%s-%d", theme, runID, i)
		creator := s.users[s.rng.Intn(len(s.users))]
		if err := s.client.createGroup(ctx, creator.Token, slug, theme); err != nil {
			return err
		}
		s.groups = append(s.groups, slug)
	}
	return nil
}

var themes = []string{"tech", "gaming", "science", "books", "music", "food", "travel", "art"}

// chance turns a per-hour frequency into the probability of acting this tick.
func (s *Simulator) chance(perHour float64) bool {
	p := perHour / 3600 * s.config.TickInterval.Seconds()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64() < p
}

// plan draws this tick's actions for every user.
func (s *Simulator) plan() []func(context.Context) {
	var jobs []func(context.Context)
	for _, user := range s.users {
		user := user
		if s.chance(s.config.PostFrequency) {
			jobs = append(jobs, func(ctx context.Context) { s.simulatePost(ctx, user) })
		}
		if s.chance(s.config.CommentFrequency) {
			jobs = append(jobs, func(ctx context.Context) { s.simulateComment(ctx, user) })
		}
		if s.chance(s.config.ReactionFrequency) {
			jobs = append(jobs, func(ctx context.Context) { s.simulateReaction(ctx, user) })
		}
		if s.chance(s.config.FollowFrequency) {
			jobs = append(jobs, func(ctx context.Context) { s.simulateFollow(ctx, user) })
		}
		if s.chance(s.config.MessageFrequency) {
			jobs = append(jobs, func(ctx context.Context) { s.simulateMessage(ctx, user) })
		}
	}
	return jobs
}

func (s *Simulator) logMetrics() {
	m := s.GetMetrics()
	s.logger.Info("simulation metrics",
		"requests_per_sec", m.RequestsPerSecond,
		"avg_latency", m.AverageLatency,
		"posts", m.TotalPosts,
		"comments", m.TotalComments,
		"reactions", m.TotalReactions,
		"follows", m.TotalFollows,
		"messages", m.TotalMessages,
		"errors", m.ErrorCount,
	)
}

// SimulationMetrics holds the metrics of the simulation
type SimulationMetrics struct {
	TotalUsers        int
	TotalPosts        int
	TotalComments     int
	TotalReactions    int
	TotalFollows      int
	TotalMessages     int
	AverageLatency    time.Duration
	ErrorCount        int
	RequestsPerSecond float64
}

// GetMetrics returns the current simulation metrics
func (s *Simulator) GetMetrics() SimulationMetrics {
	s.stats.mu.RLock()
	defer s.stats.mu.RUnlock()

	elapsed := time.Since(s.stats.StartTime).Seconds()
	rps := 0.0
	if elapsed > 0 {
		rps = float64(s.stats.TotalRequests) / elapsed
	}
	return SimulationMetrics{
		TotalUsers:        len(s.users),
		TotalPosts:        s.stats.TotalPosts,
		TotalComments:     s.stats.TotalComments,
		TotalReactions:    s.stats.TotalReactions,
		TotalFollows:      s.stats.TotalFollows,
		TotalMessages:     s.stats.TotalMessages,
		AverageLatency:    s.stats.AverageLatency,
		ErrorCount:        int(s.stats.FailedRequests),
		RequestsPerSecond: rps,
	}
}
