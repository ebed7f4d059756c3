package main

import (
	"context"
	"testing"

	"yatube/internal/logging"

	"github.com/stretchr/testify/assert"
)

func TestInvalidLogLevel(t *testing.T) {
	err := newApp().Run(context.Background(), []string{"simulator", "--log-level", "loud"})
	assert.ErrorContains(t, err, logging.ErrInvalidLogLevel.Error())
}

func TestUnreachableServerFails(t *testing.T) {
	err := newApp().Run(context.Background(), []string{
		"simulator", "--log-level", "error", "--url", "http://127.0.0.1:1", "--users", "1", "--duration", "2s",
	})
	assert.ErrorContains(t, err, "simulation failed")
}
