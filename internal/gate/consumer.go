package gate

import (
	"context"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// QueueClient is the part of the SQS client the consumer needs.
type QueueClient interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// MessageHandler processes one message body. A non-nil error leaves the
// message on the queue for redelivery.
type MessageHandler interface {
	Handle(ctx context.Context, body string) error
}

type SQSConsumer struct {
	client     QueueClient
	queueURL   string
	handler    MessageHandler
	retryDelay time.Duration
}

func NewSQSConsumer(client QueueClient, queueURL string, handler MessageHandler) *SQSConsumer {
	return &SQSConsumer{
		client:     client,
		queueURL:   queueURL,
		handler:    handler,
		retryDelay: 5 * time.Second,
	}
}

// Start long-polls the queue until ctx is cancelled.
func (c *SQSConsumer) Start(ctx context.Context) {
	log.Printf("SQS Consumer: listening on %s", c.queueURL)
	for {
		select {
		case <-ctx.Done():
			log.Println("SQS Consumer: context cancelled, stopping.")
			return
		default:
		}
		if !c.poll(ctx) {
			select {
			case <-time.After(c.retryDelay):
			case <-ctx.Done():
				log.Println("SQS Consumer: context cancelled while waiting for retry.")
				return
			}
		}
	}
}

// poll receives one batch and reports whether the receive call succeeded.
func (c *SQSConsumer) poll(ctx context.Context) bool {
	result, err := c.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(c.queueURL),
		MaxNumberOfMessages: 10,
		WaitTimeSeconds:     20,
		VisibilityTimeout:   60,
	})
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("SQS Consumer: receive failed: %v", err)
		}
		return false
	}
	if len(result.Messages) == 0 {
		return true
	}

	log.Printf("SQS Consumer: received %d message(s)", len(result.Messages))
	for _, message := range result.Messages {
		if message.Body == nil {
			log.Println("SQS Consumer: empty message body, deleting.")
			c.deleteMessage(ctx, message.ReceiptHandle)
			continue
		}
		if err := c.handler.Handle(ctx, *message.Body); err != nil {
			log.Printf("SQS Consumer: message %s failed: %v; it will be redelivered after the visibility timeout",
				aws.ToString(message.MessageId), err)
			continue
		}
		c.deleteMessage(ctx, message.ReceiptHandle)
	}
	return true
}

func (c *SQSConsumer) deleteMessage(ctx context.Context, receiptHandle *string) {
	if receiptHandle == nil {
		log.Println("SQS Consumer: missing receipt handle, cannot delete message.")
		return
	}
	_, err := c.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.queueURL),
		ReceiptHandle: receiptHandle,
	})
	if err != nil {
		log.Printf("SQS Consumer: delete failed: %v", err)
	}
}
