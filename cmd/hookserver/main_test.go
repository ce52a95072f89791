package main

import (
	"testing"

	"github.com/catalyst-ingest/catalyst-ingest/config"
	"github.com/stretchr/testify/require"
)

func TestBuildRouterRequiresPostgresConnectionString(t *testing.T) {
	_, err := buildRouter(config.Cli{})
	require.Error(t, err)
}
