// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package eventprocessor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// routerStartTimeout bounds how long Start waits for every handler to
// subscribe.
const routerStartTimeout = 30 * time.Second

// Pipeline owns the event ingestion components: the optional embedded
// server, the stream, the publisher used by the poison queue, the durable
// subscriber and the router. Its Start/Shutdown/IsRunning lifecycle is
// driven by the supervisor.
type Pipeline struct {
	cfg      Config
	handlers *Handlers
	logger   watermill.LoggerAdapter

	mu         sync.Mutex
	server     *EmbeddedServer
	conn       *natsgo.Conn
	publisher  *Publisher
	subscriber *Subscriber
	router     *Router
	cancel     context.CancelFunc
	done       chan struct{}
	running    bool
}

// NewPipeline validates cfg and returns a stopped pipeline.
func NewPipeline(cfg *Config, handlers *Handlers, logger watermill.LoggerAdapter) (*Pipeline, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: config required", ErrInvalidConfig)
	}
	if handlers == nil {
		return nil, fmt.Errorf("%w: handlers required", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	return &Pipeline{
		cfg:      *cfg,
		handlers: handlers,
		logger:   logger,
	}, nil
}

// Start brings up every component and returns once all handlers are
// subscribed. Components started before a failure are torn down again, so
// Start may be retried.
func (p *Pipeline) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return ErrAlreadyStarted
	}
	if err := p.start(ctx); err != nil {
		p.teardown(context.Background())
		return err
	}
	p.running = true
	return nil
}

func (p *Pipeline) start(ctx context.Context) error {
	url := p.cfg.Subscriber.URL
	if p.cfg.EmbeddedServer {
		srv, err := NewEmbeddedServer(&p.cfg.Server)
		if err != nil {
			return fmt.Errorf("start embedded NATS: %w", err)
		}
		p.server = srv
		url = srv.ClientURL()
	}

	nc, err := natsgo.Connect(url, natsgo.Name("curator-admin"))
	if err != nil {
		return fmt.Errorf("connect to NATS at %s: %w", url, err)
	}
	p.conn = nc

	js, err := jetstream.New(nc)
	if err != nil {
		return fmt.Errorf("create JetStream context: %w", err)
	}
	streams, err := NewStreamInitializer(js, &p.cfg.Stream)
	if err != nil {
		return err
	}
	if _, err := streams.EnsureStream(ctx); err != nil {
		return err
	}

	pubCfg := p.cfg.Publisher
	pubCfg.URL = url
	if p.publisher, err = NewPublisher(&pubCfg, p.logger); err != nil {
		return err
	}

	subCfg := p.cfg.Subscriber
	subCfg.URL = url
	if p.subscriber, err = NewSubscriber(&subCfg, p.logger); err != nil {
		return err
	}

	if p.router, err = NewRouter(&p.cfg.Router, p.publisher, p.logger); err != nil {
		return err
	}
	p.handlers.Register(p.router, p.subscriber)

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	p.cancel = cancel
	p.done = make(chan struct{})
	go func(r *Router, done chan struct{}) {
		defer close(done)
		if err := r.Run(runCtx); err != nil {
			p.logger.Error("Event router stopped", err, nil)
		}
	}(p.router, p.done)

	select {
	case <-p.router.Running():
		p.logger.Info("Event pipeline running", watermill.LogFields{
			"url":    url,
			"stream": p.cfg.Stream.Name,
		})
		return nil
	case <-p.done:
		return errors.New("event router exited during startup")
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(routerStartTimeout):
		return errors.New("event router not running within timeout")
	}
}

// Shutdown stops the router, waits for in-flight messages, then closes the
// connections and the embedded server.
func (p *Pipeline) Shutdown(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.teardown(ctx)
	p.running = false
}

func (p *Pipeline) teardown(ctx context.Context) {
	if p.router != nil {
		if err := p.router.Close(); err != nil {
			p.logger.Error("Failed to close event router", err, nil)
		}
	}
	if p.cancel != nil {
		p.cancel()
	}
	if p.done != nil {
		select {
		case <-p.done:
		case <-ctx.Done():
		}
	}
	if p.subscriber != nil {
		if err := p.subscriber.Close(); err != nil {
			p.logger.Error("Failed to close subscriber", err, nil)
		}
	}
	if p.publisher != nil {
		if err := p.publisher.Close(); err != nil {
			p.logger.Error("Failed to close publisher", err, nil)
		}
	}
	if p.conn != nil {
		p.conn.Close()
	}
	if p.server != nil {
		if err := p.server.Shutdown(ctx); err != nil {
			p.logger.Error("Failed to stop embedded NATS", err, nil)
		}
	}

	p.router, p.cancel, p.done = nil, nil, nil
	p.subscriber, p.publisher, p.conn, p.server = nil, nil, nil, nil
}

// IsRunning reports whether the pipeline is consuming.
func (p *Pipeline) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running && p.router != nil && p.router.IsRunning()
}

// ClientURL returns the broker URL the pipeline connected to, or "" when
// stopped.
func (p *Pipeline) ClientURL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil {
		return ""
	}
	return p.conn.ConnectedUrl()
}

// Publisher returns the running publisher, or nil when stopped.
func (p *Pipeline) Publisher() *Publisher {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.publisher
}
