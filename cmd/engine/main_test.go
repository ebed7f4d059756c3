package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"yatube/internal/config"
	"yatube/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("DB_TYPE", "memory")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("MINIO_ENDPOINT", "")
	cfg, err := config.FromEnv()
	require.NoError(t, err)
	return cfg
}

func TestApplicationServesRequests(t *testing.T) {
	ctx := context.Background()
	app, err := newApplication(ctx, memoryConfig(t), logging.Discard())
	require.NoError(t, err)
	defer app.close(ctx)

	handler := app.server.Routes()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	body := strings.NewReader(`{"username":"leo","password":"s3cret-password"}`)
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/register", body))
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMigrateRequiresPostgres(t *testing.T) {
	memoryConfig(t)
	err := newApp().Run(context.Background(), []string{"yatube", "migrate", "up"})
	assert.ErrorIs(t, err, errNeedsPostgres)
}

func TestInvalidLogLevel(t *testing.T) {
	memoryConfig(t)
	err := newApp().Run(context.Background(), []string{"yatube", "--log-level", "loud", "migrate", "up"})
	assert.Error(t, err)
}

func TestCreateAdminNeedsArguments(t *testing.T) {
	memoryConfig(t)
	err := newApp().Run(context.Background(), []string{"yatube", "createadmin", "boss"})
	assert.Error(t, err)
}
