// Package events publishes freshly extracted metadata over NATS so other
// parts of the system (feeds, notification surfaces) can react without
// polling. Trace context rides along in message headers.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"

	"github.com/tubemeta/tubemeta/engine/extract"
)

// DefaultSubjectPrefix is where metadata events land unless overridden.
const DefaultSubjectPrefix = "tubemeta.video"

// headerCarrier adapts nats.Msg headers for OTel TextMapCarrier.
type headerCarrier nats.Msg

func (c *headerCarrier) Get(key string) string {
	if c.Header == nil {
		return ""
	}
	return c.Header.Get(key)
}

func (c *headerCarrier) Set(key, val string) {
	if c.Header == nil {
		c.Header = make(nats.Header)
	}
	c.Header.Set(key, val)
}

func (c *headerCarrier) Keys() []string {
	keys := make([]string, 0, len(c.Header))
	for k := range c.Header {
		keys = append(keys, k)
	}
	return keys
}

// Publisher emits one message per extracted video.
type Publisher struct {
	nc     *nats.Conn
	prefix string
}

// Connect dials NATS and returns a publisher. An empty prefix uses the
// default.
func Connect(url, prefix string) (*Publisher, error) {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	nc, err := nats.Connect(url, nats.Name("tubemeta"))
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Publisher{nc: nc, prefix: prefix}, nil
}

// PublishMetadata sends the record to "<prefix>.<video id>".
func (p *Publisher) PublishMetadata(ctx context.Context, meta extract.VideoMetadata) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	msg := &nats.Msg{
		Subject: p.prefix + "." + meta.ID,
		Data:    data,
	}
	otel.GetTextMapPropagator().Inject(ctx, (*headerCarrier)(msg))
	return p.nc.PublishMsg(msg)
}

// SubscribeMetadata registers a handler for metadata events under the
// prefix. Malformed messages are dropped.
func SubscribeMetadata(nc *nats.Conn, prefix string, handler func(context.Context, extract.VideoMetadata)) (*nats.Subscription, error) {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return nc.Subscribe(prefix+".>", func(msg *nats.Msg) {
		var meta extract.VideoMetadata
		if err := json.Unmarshal(msg.Data, &meta); err != nil {
			return
		}
		ctx := otel.GetTextMapPropagator().Extract(context.Background(), (*headerCarrier)(msg))
		handler(ctx, meta)
	})
}

// Close flushes and closes the connection.
func (p *Publisher) Close() {
	if p.nc != nil {
		p.nc.Flush()
		p.nc.Close()
	}
}
