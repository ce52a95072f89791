package queue

import (
	"encoding/json"
	"testing"

	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/stretchr/testify/require"
)

type fakeSQSClient struct {
	lastBody string
}

func (f *fakeSQSClient) SendMessage(in *sqs.SendMessageInput) (*sqs.SendMessageOutput, error) {
	f.lastBody = *in.MessageBody
	return &sqs.SendMessageOutput{}, nil
}

func TestPublishStreamProcessedSetsType(t *testing.T) {
	fake := &fakeSQSClient{}
	p := &Publisher{client: fake, queueURL: "https://example.com/queue"}

	err := p.PublishStreamProcessed(StreamProcessedMessage{
		StreamName:  "stream1",
		SchedulerID: "sched1",
		Timestamp:   1000,
		Files:       []string{"1080p", "720p"},
	})
	require.NoError(t, err)

	var decoded StreamProcessedMessage
	require.NoError(t, json.Unmarshal([]byte(fake.lastBody), &decoded))
	require.Equal(t, "stream_processed", decoded.Type)
	require.Equal(t, "stream1", decoded.StreamName)
	require.Equal(t, []string{"1080p", "720p"}, decoded.Files)
}

func TestPublishRTMPLifecycleOmitsEmptyFields(t *testing.T) {
	fake := &fakeSQSClient{}
	p := &Publisher{client: fake, queueURL: "https://example.com/queue"}

	err := p.PublishRTMPLifecycle(RTMPLifecycleMessage{StreamID: "s1", Action: "stop"})
	require.NoError(t, err)
	require.NotContains(t, fake.lastBody, "inputUrl")
}
