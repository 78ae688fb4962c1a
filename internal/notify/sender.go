package notify

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/sirupsen/logrus"

	"syncalendar/internal/models"
)

// Sender delivers a notification to its user.
type Sender interface {
	Send(ctx context.Context, n models.Notification) error
}

// LogSender only logs; it is used when no push channel is configured.
type LogSender struct {
	log *logrus.Entry
}

func NewLogSender(log *logrus.Entry) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(ctx context.Context, n models.Notification) error {
	s.log.WithFields(logrus.Fields{
		"user_id":         n.UserID,
		"event_id":        n.EventID,
		"notification_id": n.ID,
	}).Info(n.Title + ": " + n.Body)
	return nil
}

// Publisher is the part of the SNS client the sender uses.
type Publisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSSender publishes notifications to an SNS topic. Subscribers filter on
// the user_id message attribute.
type SNSSender struct {
	client   Publisher
	topicARN string
}

func NewSNSSender(client Publisher, topicARN string) *SNSSender {
	return &SNSSender{client: client, topicARN: topicARN}
}

// maxSubject is the SNS limit for the email subject line.
const maxSubject = 100

func (s *SNSSender) Send(ctx context.Context, n models.Notification) error {
	input := &sns.PublishInput{
		TopicArn: aws.String(s.topicARN),
		Subject:  aws.String(truncate(n.Title, maxSubject)),
		Message:  aws.String(n.Body),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"user_id": {
				DataType:    aws.String("String"),
				StringValue: aws.String(n.UserID),
			},
		},
	}
	if n.EventID != "" {
		input.MessageAttributes["event_id"] = types.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(n.EventID),
		}
	}

	if _, err := s.client.Publish(ctx, input); err != nil {
		return fmt.Errorf("publish notification %s: %w", n.ID, err)
	}
	return nil
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
