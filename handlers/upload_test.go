package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/require"
)

func newMultipartRequest(t *testing.T, fields map[string]string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/channels/upload-video", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestUploadVideoRejectsMissingRequiredFields(t *testing.T) {
	c := &Collection{}
	req := newMultipartRequest(t, map[string]string{"channelName": "c1"})
	w := httptest.NewRecorder()

	c.UploadVideo()(w, req, nil)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadVideoRejectsMissingVideoField(t *testing.T) {
	c := &Collection{}
	req := newMultipartRequest(t, map[string]string{
		"channelName": "c1",
		"userEmail":   "user@example.com",
		"streamKey":   "sk1",
	})
	w := httptest.NewRecorder()

	c.UploadVideo()(w, req, nil)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func newMultipartUploadRequest(t *testing.T, declaredContentType string, videoBytes []byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range map[string]string{"channelName": "c1", "userEmail": "user@example.com", "streamKey": "sk1"} {
		require.NoError(t, writer.WriteField(k, v))
	}
	part, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": []string{`form-data; name="video"; filename="source.mp4"`},
		"Content-Type":        []string{declaredContentType},
	})
	require.NoError(t, err)
	_, err = part.Write(videoBytes)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/channels/upload-video", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestUploadVideoRejectsContentThatDoesNotSniffAsVideo(t *testing.T) {
	c := &Collection{}
	req := newMultipartUploadRequest(t, "video/mp4", []byte("this is plain text, not a video container"))
	w := httptest.NewRecorder()

	c.UploadVideo()(w, req, nil)

	require.Equal(t, http.StatusBadRequest, w.Code)
}
