package simulator

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"yatube/internal/config"
	"yatube/internal/database"
	"yatube/internal/engine"
	"yatube/internal/handlers"
	"yatube/internal/logging"
	"yatube/internal/middleware"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startServer(t *testing.T) string {
	t.Helper()
	logger := logging.Discard()
	eng := engine.NewEngine(engine.NewActorSystem(logger), engine.Options{
		DB:     database.NewMemoryDB(),
		Logger: logger,
	})
	t.Cleanup(eng.Stop)

	server := handlers.NewServer(handlers.Options{
		Engine: eng,
		Tokens: middleware.NewTokenManager(config.AuthConfig{JWTSecret: "sim-secret"}),
		Logger: logger,
	})
	httpServer := httptest.NewServer(server.Routes())
	t.Cleanup(httpServer.Close)
	return httpServer.URL
}

func TestSimulatorDrivesServer(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EngineURL = startServer(t)
	cfg.NumUsers = 3
	cfg.NumGroups = 2
	cfg.TickInterval = 50 * time.Millisecond
	// Frequencies high enough that every user acts on every tick.
	cfg.PostFrequency = 1e6
	cfg.CommentFrequency = 1e6
	cfg.ReactionFrequency = 1e6
	cfg.FollowFrequency = 1e6
	cfg.MessageFrequency = 1e6

	sim := New(cfg, logging.Discard())
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, sim.Run(ctx))

	metrics := sim.GetMetrics()
	assert.Equal(t, 3, metrics.TotalUsers)
	assert.Positive(t, metrics.TotalPosts)
	assert.Positive(t, metrics.TotalFollows)
	assert.Positive(t, metrics.TotalMessages)
	assert.Positive(t, metrics.RequestsPerSecond)
}

func TestZipfIndexInRange(t *testing.T) {
	sim := New(DefaultConfig(), logging.Discard())
	for i := 0; i < 1000; i++ {
		idx := sim.zipfIndex(7)
		assert.GreaterOrEqual(t, idx, 0)
		assert.Less(t, idx, 7)
	}
	assert.Equal(t, 0, sim.zipfIndex(1))
}

func TestChanceBounds(t *testing.T) {
	sim := New(DefaultConfig(), logging.Discard())
	assert.False(t, sim.chance(0))
	assert.True(t, sim.chance(1e9))
}
