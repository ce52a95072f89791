// Package episodejob implements EpisodeJob (spec §4.11): after a primary
// upload succeeds, transcribe it, ask an LLM to propose episode boundaries,
// then cut/transcode/upload/catalog each proposed episode independently.
package episodejob

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// TranscriptSegment is one timestamped line from the transcription API
// (spec §6 "Transcription API").
type TranscriptSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

type transcriptionResponse struct {
	Segments []TranscriptSegment `json:"segments"`
}

// TranscriptionClient posts the full video to an external transcription
// endpoint as a single multipart request and returns timestamped segments.
type TranscriptionClient struct {
	url, apiKey string
	client      *http.Client
}

func NewTranscriptionClient(url, apiKey string) *TranscriptionClient {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 2
	retryClient.RetryWaitMin = 1 * time.Second
	retryClient.RetryWaitMax = 5 * time.Second
	retryClient.HTTPClient = &http.Client{Timeout: 10 * time.Minute}
	retryClient.Logger = nil
	return &TranscriptionClient{url: url, apiKey: apiKey, client: retryClient.StandardClient()}
}

func (c *TranscriptionClient) Transcribe(sourcePath string) ([]TranscriptSegment, error) {
	file, err := os.Open(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open source for transcription: %w", err)
	}
	defer file.Close()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("video", filepath.Base(sourcePath))
	if err != nil {
		return nil, fmt.Errorf("failed to build transcription request body: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("failed to stream source into transcription request: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize transcription request body: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build transcription request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transcription request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("transcription API returned status=%d body=%q", resp.StatusCode, respBody)
	}

	var parsed transcriptionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode transcription response: %w", err)
	}
	return parsed.Segments, nil
}
