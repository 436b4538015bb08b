// Package redis mirrors trial records to Redis for live lab dashboards.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aretw0/hdt/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// Sink implements ports.RecordSink using Redis.
// Each record is pushed as JSON onto a list and published on a channel.
type Sink struct {
	client      *backend.Client
	prefix      string
	participant string
	session     string
	ttl         time.Duration
	ownClient   bool
}

// Option configures the sink.
type Option func(*Sink)

// WithPrefix sets the key prefix (default "hdt").
func WithPrefix(prefix string) Option {
	return func(s *Sink) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithTTL sets an expiration on the record list.
func WithTTL(ttl time.Duration) Option {
	return func(s *Sink) {
		s.ttl = ttl
	}
}

// New connects to the Redis server at url (redis://host:port/db).
// Records are stored under <prefix>:<participant>:<session>.
func New(url, participant, session string, opts ...Option) (*Sink, error) {
	o, err := backend.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	s := NewFromClient(backend.NewClient(o), participant, session, opts...)
	s.ownClient = true
	return s, nil
}

// NewFromClient creates a sink on an existing client. The client is not
// closed by Close.
func NewFromClient(client *backend.Client, participant, session string, opts ...Option) *Sink {
	s := &Sink{
		client:      client,
		prefix:      "hdt",
		participant: participant,
		session:     session,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the list holding the session records.
func (s *Sink) Key() string {
	return fmt.Sprintf("%s:%s:%s:records", s.prefix, s.participant, s.session)
}

// Channel returns the pub/sub channel records are announced on.
func (s *Sink) Channel() string {
	return fmt.Sprintf("%s:%s:%s:events", s.prefix, s.participant, s.session)
}

// Ping checks the connection.
func (s *Sink) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to reach redis: %w", err)
	}
	return nil
}

func (s *Sink) Append(ctx context.Context, rec domain.TrialRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.RPush(ctx, s.Key(), data)
	if s.ttl > 0 {
		pipe.Expire(ctx, s.Key(), s.ttl)
	}
	pipe.Publish(ctx, s.Channel(), data)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to push record to redis: %w", err)
	}
	return nil
}

// Records reads back every record of the session.
func (s *Sink) Records(ctx context.Context) ([]domain.TrialRecord, error) {
	vals, err := s.client.LRange(ctx, s.Key(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}
	out := make([]domain.TrialRecord, 0, len(vals))
	for _, v := range vals {
		var rec domain.TrialRecord
		if err := json.Unmarshal([]byte(v), &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal record: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// Close closes the client when the sink created it.
func (s *Sink) Close() error {
	if s.ownClient {
		return s.client.Close()
	}
	return nil
}
