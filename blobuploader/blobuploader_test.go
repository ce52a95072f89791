package blobuploader

import "testing"

import "github.com/stretchr/testify/require"

func TestContentType(t *testing.T) {
	require.Equal(t, "application/vnd.apple.mpegurl", contentType("sk_u1_1080p.m3u8"))
	require.Equal(t, "video/mp2t", contentType("sk_u1_1080p_000.ts"))
	require.Equal(t, "image/jpeg", contentType("sk_u1_thumb.jpg"))
	require.Equal(t, "application/octet-stream", contentType("sk_u1_notes.txt"))
}
