package events

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// MessageSender is the subset of *sqs.Client used by SQS.
type MessageSender interface {
	SendMessage(ctx context.Context, in *sqs.SendMessageInput, opts ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQS publishes events as JSON message bodies with the event type carried
// in a message attribute. On a FIFO queue (URL ending in .fifo) the event
// key is the message group, so events for one query stay ordered.
type SQS struct {
	client   MessageSender
	queueURL string
	fifo     bool
	timeout  time.Duration
	logger   *slog.Logger
}

// NewSQS loads AWS credentials from the default chain and creates a
// publisher for cfg.QueueURL. Endpoint overrides the service endpoint for
// local emulators.
func NewSQS(ctx context.Context, cfg *Config, logger *slog.Logger) (*SQS, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := sqs.NewFromConfig(awsCfg, func(o *sqs.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return NewSQSWithClient(client, cfg.QueueURL, cfg.WriteTimeoutDuration(), logger), nil
}

// NewSQSWithClient creates a publisher over an existing client.
func NewSQSWithClient(client MessageSender, queueURL string, timeout time.Duration, logger *slog.Logger) *SQS {
	return &SQS{
		client:   client,
		queueURL: queueURL,
		fifo:     strings.HasSuffix(queueURL, ".fifo"),
		timeout:  timeout,
		logger:   logger.With("system", "events"),
	}
}

func (s *SQS) Publish(ctx context.Context, e Event) error {
	if e.Time.IsZero() {
		e.Time = time.Now().UTC()
	}

	body, err := e.Encode()
	if err != nil {
		return fmt.Errorf("encode event %s: %w", e.Type, err)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	in := &sqs.SendMessageInput{
		QueueUrl:    aws.String(s.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"type": {DataType: aws.String("String"), StringValue: aws.String(e.Type)},
		},
	}
	if s.fifo {
		in.MessageGroupId = aws.String(e.Key)
		in.MessageDeduplicationId = aws.String(e.Type + ":" + e.Key)
	}

	out, err := s.client.SendMessage(ctx, in)
	if err != nil {
		return fmt.Errorf("publish %s: %w", e.Type, err)
	}
	s.logger.Debug("event sent", "type", e.Type, "key", e.Key, "message_id", aws.ToString(out.MessageId))
	return nil
}
