package controllers

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/navbryce/next-social-be/metrics"
	"github.com/navbryce/next-social-be/services"
	"github.com/navbryce/next-social-be/util"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("github.com/navbryce/next-social-be/controllers")

// Delivery is one event for one realtime channel.
type Delivery struct {
	Channel string
	Event   string
	Payload interface{}
}

type FanoutOpts struct {
	Workers       int
	MaxTries      uint
	RetryInterval time.Duration
}

// FanoutDispatcher publishes deliveries in the background. Every delivery is
// attempted independently; a failure is retried, logged and counted but never
// reported to the request that produced it.
type FanoutDispatcher struct {
	bus           services.Publisher
	maxTries      uint
	retryInterval time.Duration
	slots         chan struct{}
	inFlight      sync.WaitGroup
}

func NewFanoutDispatcher(bus services.Publisher, opts *FanoutOpts) *FanoutDispatcher {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	maxTries := opts.MaxTries
	if maxTries < 1 {
		maxTries = 1
	}
	retryInterval := opts.RetryInterval
	if retryInterval <= 0 {
		retryInterval = 100 * time.Millisecond
	}
	return &FanoutDispatcher{
		bus:           bus,
		maxTries:      maxTries,
		retryInterval: retryInterval,
		slots:         make(chan struct{}, workers),
	}
}

// Dispatch returns immediately. ctx only contributes values (trace ids); its
// cancellation does not stop deliveries.
func (fd *FanoutDispatcher) Dispatch(ctx context.Context, deliveries ...Delivery) {
	ctx = context.WithoutCancel(ctx)
	for _, delivery := range deliveries {
		fd.inFlight.Add(1)
		go func(delivery Delivery) {
			defer fd.inFlight.Done()
			defer func() {
				if r := recover(); r != nil {
					util.Log.Error("recovered while delivering realtime event",
						zap.String("channel", delivery.Channel), zap.Any("panic", r))
				}
			}()
			fd.slots <- struct{}{}
			defer func() { <-fd.slots }()
			fd.deliver(ctx, delivery)
		}(delivery)
	}
}

// Wait blocks until every dispatched delivery has finished.
func (fd *FanoutDispatcher) Wait() {
	fd.inFlight.Wait()
}

func (fd *FanoutDispatcher) deliver(ctx context.Context, delivery Delivery) {
	ctx, span := tracer.Start(ctx, "fanout.deliver", trace.WithAttributes(
		attribute.String("realtime.channel", delivery.Channel),
		attribute.String("realtime.event", delivery.Event),
	))
	defer span.End()

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = fd.retryInterval

	attempt := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		if attempt > 1 {
			metrics.FanoutRetries.Inc()
		}
		return struct{}{}, fd.bus.Publish(ctx, delivery.Channel, delivery.Event, delivery.Payload)
	}, backoff.WithBackOff(policy), backoff.WithMaxTries(fd.maxTries))
	if err != nil {
		metrics.FanoutDeliveries.WithLabelValues(delivery.Event, "failed").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "delivery failed")
		util.Log.Error("realtime delivery failed",
			zap.String("channel", delivery.Channel),
			zap.String("event", delivery.Event),
			zap.Int("attempts", attempt),
			zap.Error(err))
		return
	}
	metrics.FanoutDeliveries.WithLabelValues(delivery.Event, "ok").Inc()
}
