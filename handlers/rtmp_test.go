package handlers

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenditionNamesListsFullLadder(t *testing.T) {
	require.Equal(t, []string{"1080p", "720p", "480p", "360p"}, renditionNames())
}
