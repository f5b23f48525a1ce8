package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/joho/godotenv"
	"google.golang.org/api/option"
)

// PubSubMessage is the envelope published for every outbox record.
type PubSubMessage struct {
	ID            int       `json:"id"`
	BaseId        string    `json:"base_id"`
	StoreId       int       `json:"store_id"`
	EventDate     time.Time `json:"event_date"`
	ReferenceId   int       `json:"reference_id"`
	ReferenceType string    `json:"reference_type"`
	Action        string    `json:"action"`
	OldObj        []byte    `json:"old_obj"`
	NewObj        []byte    `json:"new_obj"`
	CorrelationId string    `json:"correlation_id"`
}

// SubscriptionSpec describes the subscription feeding the workflow.
// An empty PushEndpoint creates a pull subscription.
type SubscriptionSpec struct {
	Name         string
	PushEndpoint string
	AckDeadline  time.Duration
}

var (
	pubsubMu     sync.Mutex
	pubsubClient *pubsub.Client
	outboxTopics = map[string]*pubsub.Topic{}
)

func init() {
	godotenv.Load()
}

func pubSubProjectID() string {
	for _, key := range []string{"PUBSUB_PROJECT_ID", "GOOGLE_CLOUD_PROJECT", "GCP_PROJECT"} {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
	}
	return ""
}

// GetClient returns the shared Pub/Sub client, retrying until ctx is done.
// PUBSUB_CREDENTIALS_JSON overrides Application Default Credentials.
func GetClient(ctx context.Context) (*pubsub.Client, error) {
	pubsubMu.Lock()
	defer pubsubMu.Unlock()
	if pubsubClient != nil {
		return pubsubClient, nil
	}

	projectID := pubSubProjectID()
	if projectID == "" {
		return nil, errors.New("PUBSUB_PROJECT_ID/GOOGLE_CLOUD_PROJECT not set")
	}
	var opts []option.ClientOption
	if credJSON := os.Getenv("PUBSUB_CREDENTIALS_JSON"); credJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(credJSON)))
	}

	for attempt := 1; ; attempt++ {
		c, err := pubsub.NewClient(ctx, projectID, opts...)
		if err == nil {
			pubsubClient = c
			log.Printf("pubsub client ready (project_id=%s attempt=%d)", projectID, attempt)
			return c, nil
		}
		sleep := RetryBackoff(attempt)
		log.Printf("failed to init pubsub client (project_id=%s attempt=%d): %v; retrying in %s", projectID, attempt, err, sleep)
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("pubsub client: %w", ctx.Err())
		case <-time.After(sleep):
		}
	}
}

// outboxTopic returns a cached, ordering-enabled handle so publishes share one bundler.
func outboxTopic(ctx context.Context, name string) (*pubsub.Topic, error) {
	client, err := GetClient(ctx)
	if err != nil {
		return nil, err
	}
	pubsubMu.Lock()
	defer pubsubMu.Unlock()
	if t, ok := outboxTopics[name]; ok {
		return t, nil
	}
	t := client.Topic(name)
	t.EnableMessageOrdering = true
	outboxTopics[name] = t
	return t, nil
}

// EnsureTopic creates topic when missing.
func EnsureTopic(ctx context.Context, c *pubsub.Client, topic string) (*pubsub.Topic, error) {
	if c == nil {
		return nil, errors.New("pubsub client is nil")
	}
	if topic == "" {
		return nil, errors.New("topic is required")
	}
	t := c.Topic(topic)
	ok, err := t.Exists(ctx)
	if err != nil {
		return nil, err
	}
	if ok {
		return t, nil
	}
	t, err = c.CreateTopic(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("create topic %q: %w", topic, err)
	}
	return t, nil
}

// EnsureSubscription creates an ordered subscription on topic when missing.
// An existing subscription is returned untouched.
func EnsureSubscription(ctx context.Context, c *pubsub.Client, topic *pubsub.Topic, spec SubscriptionSpec) (*pubsub.Subscription, error) {
	if c == nil {
		return nil, errors.New("pubsub client is nil")
	}
	if spec.Name == "" {
		return nil, errors.New("subscription name is required")
	}
	if topic == nil {
		return nil, errors.New("topic is required")
	}

	sub := c.Subscription(spec.Name)
	exists, err := sub.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("check subscription exists: %w", err)
	}
	if exists {
		return sub, nil
	}

	cfg := pubsub.SubscriptionConfig{
		Topic:                 topic,
		AckDeadline:           spec.AckDeadline,
		EnableMessageOrdering: true,
	}
	if cfg.AckDeadline <= 0 {
		cfg.AckDeadline = 20 * time.Second
	}
	if spec.PushEndpoint != "" {
		cfg.PushConfig = pubsub.PushConfig{Endpoint: spec.PushEndpoint}
	}
	sub, err = c.CreateSubscription(ctx, spec.Name, cfg)
	if err != nil {
		return nil, fmt.Errorf("create subscription %q: %w", spec.Name, err)
	}
	return sub, nil
}

// PushEndpointWithToken appends PUBSUB_PUSH_TOKEN as ?token= so the push handler accepts it.
func PushEndpointWithToken(endpoint string) (string, error) {
	token := strings.TrimSpace(os.Getenv("PUBSUB_PUSH_TOKEN"))
	if endpoint == "" || token == "" {
		return endpoint, nil
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("push endpoint: %w", err)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// PublishFinanceEventWithResult publishes msg ordered by base and returns the
// server-assigned message ID.
func PublishFinanceEventWithResult(ctx context.Context, baseId string, msg PubSubMessage) (string, error) {
	topicName := strings.TrimSpace(os.Getenv("PUBSUB_TOPIC"))
	if topicName == "" {
		return "", errors.New("PUBSUB_TOPIC is required")
	}
	t, err := outboxTopic(ctx, topicName)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return "", err
	}
	id, err := t.Publish(ctx, &pubsub.Message{
		Data:        data,
		OrderingKey: baseId,
		Attributes: map[string]string{
			"base_id":        baseId,
			"reference_type": msg.ReferenceType,
			"action":         msg.Action,
		},
	}).Get(ctx)
	if err != nil {
		// A failed ordered publish pauses the key until resumed.
		t.ResumePublish(baseId)
		return "", err
	}
	return id, nil
}
