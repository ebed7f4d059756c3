package engine

import (
	"bytes"
	"log/slog"
	"testing"

	"yatube/internal/database"
	"yatube/internal/engine/actors"
	"yatube/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewActorSystemUsesGivenLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	system := NewActorSystem(logger)
	defer system.Shutdown()

	system.Logger().Info("hello")
	assert.Contains(t, buf.String(), "lib=protoactor")
	assert.Contains(t, buf.String(), "system="+system.ID)
}

func TestEngineAnswersRequests(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	eng := NewEngine(NewActorSystem(logger), Options{DB: database.NewMemoryDB(), Logger: logger})
	defer eng.Stop()

	groups, err := actors.Ask[[]*models.Group](eng.Root(), eng.GetGroupActor(), &actors.ListGroupsMsg{}, eng.RequestTimeout())
	require.NoError(t, err)
	assert.Empty(t, groups)
}
