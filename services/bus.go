package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"
	"github.com/navbryce/next-social-be/model"
	"github.com/navbryce/next-social-be/util"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"
)

const (
	headerChannel = "Channel"
	headerEvent   = "Event"
)

// Publisher sends one named event with a JSON payload to a realtime channel.
type Publisher interface {
	Publish(ctx context.Context, channel, event string, payload interface{}) error
}

// Subscriber delivers events for a channel until the returned cancel func is called.
type Subscriber interface {
	Subscribe(ctx context.Context, channel string) (events <-chan *model.Event, cancel func(), err error)
}

type Bus interface {
	Publisher
	Subscriber
}

type NatsBus struct {
	nc     *nats.Conn
	prefix string
}

func NewNatsBus(nc *nats.Conn, prefix string) *NatsBus {
	return &NatsBus{nc: nc, prefix: prefix}
}

// Subject maps a channel name onto a single NATS subject token; channel names
// contain dots and other characters that NATS treats specially.
func (nb *NatsBus) Subject(channel string) string {
	return nb.prefix + "." + base64.RawURLEncoding.EncodeToString([]byte(channel))
}

func (nb *NatsBus) Publish(ctx context.Context, channel, event string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshalling error: %w", err)
	}
	msg := &nats.Msg{
		Subject: nb.Subject(channel),
		Data:    data,
		Header:  nats.Header{},
	}
	msg.Header.Set(headerChannel, channel)
	msg.Header.Set(headerEvent, event)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(msg.Header))
	return nb.nc.PublishMsg(msg)
}

func (nb *NatsBus) Subscribe(ctx context.Context, channel string) (<-chan *model.Event, func(), error) {
	events := make(chan *model.Event, 64)
	sub, err := nb.nc.Subscribe(nb.Subject(channel), func(msg *nats.Msg) {
		event := &model.Event{
			Channel: channel,
			Name:    msg.Header.Get(headerEvent),
			Data:    msg.Data,
		}
		select {
		case events <- event:
		default:
			util.Log.Warn("dropping realtime event for slow subscriber", zap.String("channel", channel))
		}
	})
	if err != nil {
		return nil, nil, err
	}
	return events, func() {
		if err := sub.Unsubscribe(); err != nil {
			util.Log.Debug("unsubscribe failed", zap.String("channel", channel), zap.Error(err))
		}
	}, nil
}

// MemoryBus is an in-process Bus for single instance deployments and tests.
type MemoryBus struct {
	mu     sync.RWMutex
	nextId int
	subs   map[string]map[int]chan *model.Event
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: make(map[string]map[int]chan *model.Event)}
}

func (mb *MemoryBus) Publish(ctx context.Context, channel, event string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshalling error: %w", err)
	}
	mb.mu.RLock()
	defer mb.mu.RUnlock()
	for _, ch := range mb.subs[channel] {
		select {
		case ch <- &model.Event{Channel: channel, Name: event, Data: data}:
		default:
			util.Log.Warn("dropping realtime event for slow subscriber", zap.String("channel", channel))
		}
	}
	return nil
}

func (mb *MemoryBus) Subscribe(ctx context.Context, channel string) (<-chan *model.Event, func(), error) {
	ch := make(chan *model.Event, 64)
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.nextId++
	id := mb.nextId
	if mb.subs[channel] == nil {
		mb.subs[channel] = make(map[int]chan *model.Event)
	}
	mb.subs[channel][id] = ch
	return ch, func() {
		mb.mu.Lock()
		defer mb.mu.Unlock()
		delete(mb.subs[channel], id)
	}, nil
}
