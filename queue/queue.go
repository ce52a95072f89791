// Package queue implements the outbound queue message publisher (spec §6
// "Outbound queue message"). Grounded on clients/mediaconvert.go's AWS
// session construction (aws.NewConfig + session.NewSession), pointed at SQS
// instead of MediaConvert.
package queue

import (
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/sqs"
)

// SQSClient is the subset of *sqs.SQS the Publisher needs, narrowed so
// tests can substitute a fake.
type SQSClient interface {
	SendMessage(*sqs.SendMessageInput) (*sqs.SendMessageOutput, error)
}

type Publisher struct {
	client   SQSClient
	queueURL string
}

func NewPublisher(region, queueURL string) (*Publisher, error) {
	sess, err := session.NewSession(aws.NewConfig().WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	return &Publisher{client: sqs.New(sess), queueURL: queueURL}, nil
}

// StreamProcessedMessage is published after the primary Pipeline succeeds.
type StreamProcessedMessage struct {
	Type        string   `json:"type"`
	StreamName  string   `json:"streamName"`
	SchedulerID string   `json:"schedulerId"`
	Timestamp   int64    `json:"timestamp"`
	Files       []string `json:"files"`
}

// RTMPLifecycleMessage covers both the start and stop nginx-hook messages;
// the zero-value fields are simply omitted from the stop variant.
type RTMPLifecycleMessage struct {
	StreamID  string   `json:"streamId"`
	InputURL  string   `json:"inputUrl,omitempty"`
	OutputURL string   `json:"outputUrl,omitempty"`
	Variants  []string `json:"variants,omitempty"`
	Action    string   `json:"action"`
}

func (p *Publisher) PublishStreamProcessed(msg StreamProcessedMessage) error {
	msg.Type = "stream_processed"
	return p.publish(msg)
}

func (p *Publisher) PublishRTMPLifecycle(msg RTMPLifecycleMessage) error {
	return p.publish(msg)
}

func (p *Publisher) publish(v interface{}) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal queue message: %w", err)
	}
	bodyStr := string(body)
	_, err = p.client.SendMessage(&sqs.SendMessageInput{
		QueueUrl:    &p.queueURL,
		MessageBody: &bodyStr,
	})
	if err != nil {
		return fmt.Errorf("failed to publish queue message: %w", err)
	}
	return nil
}
