package main

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/mikey/spamguard/internal/core"
	"github.com/mikey/spamguard/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingFrontend struct {
	name     string
	startErr error
	events   *[]string
}

func (f *recordingFrontend) Name() string { return f.name }

func (f *recordingFrontend) Start() error {
	if f.startErr != nil {
		return f.startErr
	}
	*f.events = append(*f.events, "start "+f.name)
	return nil
}

func (f *recordingFrontend) Stop() error {
	*f.events = append(*f.events, "stop "+f.name)
	return nil
}

func TestRunStartsAndStopsInOrder(t *testing.T) {
	var events []string
	frontends := []ports.Frontend{
		&recordingFrontend{name: "http", events: &events},
		&recordingFrontend{name: "smtp", events: &events},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := core.NewSpamFilterService(nil, nil, zap.NewNop())
	require.NoError(t, run(ctx, zap.NewNop(), svc, frontends))
	assert.Equal(t, []string{"start http", "start smtp", "stop smtp", "stop http"}, events)
}

func TestRunStopsStartedOnFailure(t *testing.T) {
	var events []string
	boom := errors.New("address in use")
	frontends := []ports.Frontend{
		&recordingFrontend{name: "http", events: &events},
		&recordingFrontend{name: "smtp", events: &events, startErr: boom},
	}

	svc := core.NewSpamFilterService(nil, nil, zap.NewNop())
	err := run(context.Background(), zap.NewNop(), svc, frontends)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"start http", "stop http"}, events)
}

func TestRootCmdMissingConfig(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "absent.yaml")})
	err := cmd.Execute()
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestRootCmdRejectsArgs(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"extra"})
	assert.Error(t, cmd.Execute())
}
