package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plumehq/plume/internal/config"
	"github.com/plumehq/plume/internal/log"
)

func TestSetup_Disabled(t *testing.T) {
	t.Parallel()

	shutdown, err := Setup(context.Background(), config.TracingConfig{Enabled: false}, log.NewNop())

	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetup_DefaultEndpoint(t *testing.T) {
	t.Parallel()

	cfg := config.TracingConfig{
		Enabled:     true,
		Endpoint:    "", // empty falls back to the default agent endpoint
		Environment: "test",
		ServiceName: "plume-test",
	}

	ctx := context.Background()
	shutdown, err := Setup(ctx, cfg, log.NewNop())

	require.NoError(t, err)
	require.NotNil(t, shutdown)

	// No agent is listening; shutdown must still return promptly. Export
	// failures are the agent's problem, not ours.
	shutdownCtx, cancel := context.WithCancel(ctx)
	cancel()
	_ = shutdown(shutdownCtx)
}

func TestSetup_ExplicitEndpoint(t *testing.T) {
	t.Parallel()

	cfg := config.TracingConfig{
		Enabled:     true,
		Endpoint:    "localhost:14318",
		Environment: "test",
		ServiceName: "plume-test",
	}

	shutdown, err := Setup(context.Background(), cfg, log.NewNop())

	require.NoError(t, err)
	require.NotNil(t, shutdown)
	shutdownCtx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = shutdown(shutdownCtx)
}
