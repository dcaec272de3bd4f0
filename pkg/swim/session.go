// pkg/swim/session.go
// Copyright(c) 2026 swimfuse contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package swim owns the durable broker subscriptions that feed the rest
// of the pipeline: one long-lived session per configured source, each
// running its own watchdog-driven reconnect loop.
package swim

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/swimfuse/swimfuse/pkg/log"
)

const (
	watchdogInterval = 10 * time.Second
	silenceTimeout   = 90 * time.Second
	reconnectBackoff = 10 * time.Second
)

// Message is one delivery off a broker session: a topic string and a
// payload, text or binary.
type Message struct {
	Topic   string
	Payload []byte
}

// Config describes one broker endpoint.
type Config struct {
	Host     string
	VPN      string
	User     string
	Pass     string
	Queue    string
	TopicPfx []string // non-empty: only deliver topics carrying one of these prefixes
}

// Session owns one durable-queue subscription with automatic
// reconnect. Each delivery is handed to the onMsg callback synchronously,
// on the goroutine that runs the session.
type Session struct {
	name   string
	cfg    Config
	lg     *log.Logger
	onMsg  func(Message)

	lastDelivery atomic.Int64 // unix nanos
	connected    atomic.Bool

	mu     sync.Mutex
	conn   *amqp.Connection
	ch     *amqp.Channel
}

func NewSession(name string, cfg Config, lg *log.Logger, onMsg func(Message)) *Session {
	s := &Session{name: name, cfg: cfg, lg: lg.With("session", name), onMsg: onMsg}
	s.lastDelivery.Store(time.Now().UnixNano())
	return s
}

// Run blocks until ctx is cancelled, maintaining the connection and
// feeding deliveries to onMsg. Connect failures back off and retry
// indefinitely; a silent connection is torn down and reconnected by the
// watchdog.
func (s *Session) Run(ctx context.Context) {
	go s.watchdog(ctx)
	for {
		select {
		case <-ctx.Done():
			s.teardown()
			return
		default:
		}
		if err := s.connectAndConsume(ctx); err != nil {
			s.lg.Warnf("connect failed: %v, retrying in %s", err, reconnectBackoff)
			select {
			case <-ctx.Done():
				return
			case <-time.After(reconnectBackoff):
			}
		}
	}
}

func (s *Session) connectAndConsume(ctx context.Context) error {
	uri := fmt.Sprintf("amqps://%s:%s@%s/%s", s.cfg.User, s.cfg.Pass, s.cfg.Host, s.cfg.VPN)
	conn, err := amqp.DialTLS(uri, &tls.Config{InsecureSkipVerify: true})
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("channel: %w", err)
	}
	deliveries, err := ch.Consume(s.cfg.Queue, s.name, true, false, false, false, nil)
	if err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("consume: %w", err)
	}

	s.mu.Lock()
	s.conn, s.ch = conn, ch
	s.mu.Unlock()
	s.connected.Store(true)
	s.lastDelivery.Store(time.Now().UnixNano())
	s.lg.Infof("connected to %s queue %s", s.cfg.Host, s.cfg.Queue)

	closeNotify := conn.NotifyClose(make(chan *amqp.Error, 1))
	defer func() {
		s.connected.Store(false)
		s.teardown()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-closeNotify:
			return fmt.Errorf("connection closed: %v", err)
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			s.lastDelivery.Store(time.Now().UnixNano())
			if !s.topicAllowed(d.RoutingKey) {
				continue
			}
			s.onMsg(Message{Topic: d.RoutingKey, Payload: d.Body})
		}
	}
}

func (s *Session) topicAllowed(topic string) bool {
	if len(s.cfg.TopicPfx) == 0 {
		return true
	}
	for _, p := range s.cfg.TopicPfx {
		if strings.HasPrefix(topic, p) {
			return true
		}
	}
	return false
}

func (s *Session) teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ch != nil {
		s.ch.Close()
		s.ch = nil
	}
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
}

// watchdog tears the session down and forces a reconnect whenever
// silence exceeds the configured timeout.
func (s *Session) watchdog(ctx context.Context) {
	t := time.NewTicker(watchdogInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if !s.connected.Load() {
				continue
			}
			last := time.Unix(0, s.lastDelivery.Load())
			if time.Since(last) > silenceTimeout {
				s.lg.Warnf("silent for %s, forcing reconnect", time.Since(last))
				s.teardown()
			}
		}
	}
}

// Connected reports whether the session currently holds a live channel.
func (s *Session) Connected() bool { return s.connected.Load() }

// SilentFor reports how long it has been since the last delivery.
func (s *Session) SilentFor() time.Duration {
	return time.Since(time.Unix(0, s.lastDelivery.Load()))
}
