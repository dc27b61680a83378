// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package eventprocessor

import (
	"fmt"
	"time"

	"github.com/tomtom215/curator/internal/config"
)

// ServerConfig holds embedded NATS server settings.
type ServerConfig struct {
	Host              string
	Port              int // -1 picks a random free port
	StoreDir          string
	JetStreamMaxMem   int64
	JetStreamMaxStore int64
}

// StreamConfig holds JetStream stream settings.
type StreamConfig struct {
	Name            string
	Subjects        []string
	MaxAge          time.Duration
	MaxBytes        int64
	MaxMsgs         int64
	DuplicateWindow time.Duration
	Replicas        int
}

// SubscriberConfig holds durable consumer settings. Each subject gets its own
// durable consumer named after DurableName and the subject.
type SubscriberConfig struct {
	URL            string
	StreamName     string
	DurableName    string
	AckWaitTimeout time.Duration
	MaxDeliver     int
	MaxAckPending  int
	CloseTimeout   time.Duration
	MaxReconnects  int
	ReconnectWait  time.Duration
}

// PublisherConfig holds publisher connection settings.
type PublisherConfig struct {
	URL              string
	MaxReconnects    int
	ReconnectWait    time.Duration
	ReconnectBuffer  int
	EnableTrackMsgID bool
}

// RouterConfig holds configuration for the Watermill Router.
type RouterConfig struct {
	// CloseTimeout is how long to wait for handlers to finish when closing.
	CloseTimeout time.Duration

	// Retry configuration
	RetryMaxRetries      int
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
	RetryMultiplier      float64

	// Throttle configuration (messages per second, 0 = disabled)
	ThrottlePerSecond int64

	// PoisonQueueTopic receives messages that exhaust their retries. Empty
	// disables the poison queue.
	PoisonQueueTopic string
}

// Config bundles everything the pipeline needs.
type Config struct {
	EmbeddedServer bool
	Server         ServerConfig
	Stream         StreamConfig
	Subscriber     SubscriberConfig
	Publisher      PublisherConfig
	Router         RouterConfig
}

// DefaultRouterConfig returns production defaults for the Router.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		CloseTimeout:         30 * time.Second,
		RetryMaxRetries:      3,
		RetryInitialInterval: 500 * time.Millisecond,
		RetryMaxInterval:     10 * time.Second,
		RetryMultiplier:      2.0,
		ThrottlePerSecond:    0,
		PoisonQueueTopic:     TopicPoison,
	}
}

// FromAppConfig maps the application's NATS settings onto pipeline settings.
func FromAppConfig(cfg *config.NATSConfig) Config {
	retention := time.Duration(cfg.RetentionDays) * 24 * time.Hour

	return Config{
		EmbeddedServer: cfg.EmbeddedServer,
		Server: ServerConfig{
			Host:              cfg.Host,
			Port:              cfg.Port,
			StoreDir:          cfg.StoreDir,
			JetStreamMaxMem:   cfg.MaxMemory,
			JetStreamMaxStore: cfg.MaxStore,
		},
		Stream: StreamConfig{
			Name:            cfg.StreamName,
			Subjects:        StreamSubjects(),
			MaxAge:          retention,
			MaxBytes:        cfg.MaxStore,
			MaxMsgs:         -1,
			DuplicateWindow: 2 * time.Minute,
			Replicas:        1,
		},
		Subscriber: SubscriberConfig{
			URL:            cfg.URL,
			StreamName:     cfg.StreamName,
			DurableName:    cfg.DurableName,
			AckWaitTimeout: cfg.AckWaitTimeout,
			MaxDeliver:     cfg.MaxDeliver,
			MaxAckPending:  1000,
			CloseTimeout:   30 * time.Second,
			MaxReconnects:  -1,
			ReconnectWait:  2 * time.Second,
		},
		Publisher: PublisherConfig{
			URL:              cfg.URL,
			MaxReconnects:    -1,
			ReconnectWait:    2 * time.Second,
			ReconnectBuffer:  8 << 20,
			EnableTrackMsgID: true,
		},
		Router: DefaultRouterConfig(),
	}
}

// Validate checks that the configuration can start a pipeline.
func (c *Config) Validate() error {
	if c.Subscriber.URL == "" && !c.EmbeddedServer {
		return fmt.Errorf("%w: NATS URL required without embedded server", ErrInvalidConfig)
	}
	if c.Stream.Name == "" {
		return fmt.Errorf("%w: stream name required", ErrInvalidConfig)
	}
	if len(c.Stream.Subjects) == 0 {
		return fmt.Errorf("%w: stream subjects required", ErrInvalidConfig)
	}
	if c.Subscriber.DurableName == "" {
		return fmt.Errorf("%w: durable name required", ErrInvalidConfig)
	}
	if c.Subscriber.MaxDeliver < 1 {
		return fmt.Errorf("%w: max deliver must be at least 1, got %d", ErrInvalidConfig, c.Subscriber.MaxDeliver)
	}
	if c.Router.RetryMaxRetries < 0 {
		return fmt.Errorf("%w: retry max retries cannot be negative", ErrInvalidConfig)
	}
	return nil
}
