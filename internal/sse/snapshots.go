package sse

import (
	"context"
	"net/http"
	"time"

	"cricketbook/internal/models"
)

// PingInterval is how often idle streams get a keep-alive comment.
var PingInterval = 25 * time.Second

// ServeSnapshots streams the result of load as a named event: once when the
// client connects and again after every change on the given topics. Each
// snapshot is recomputed from scratch. It returns when the client goes away
// or a write fails.
func ServeSnapshots(w http.ResponseWriter, r *http.Request, hub *Hub, event string, load func(ctx context.Context) (interface{}, error), topics ...models.Topic) error {
	stream, err := NewStream(w)
	if err != nil {
		return err
	}

	ctx := r.Context()
	changes := hub.Subscribe(ctx, topics...)

	push := func() error {
		snapshot, err := load(ctx)
		if err != nil {
			return stream.Send("error", map[string]string{"error": err.Error()})
		}
		return stream.Send(event, snapshot)
	}

	if err := push(); err != nil {
		return err
	}

	ticker := time.NewTicker(PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			if err := push(); err != nil {
				return err
			}
		case <-ticker.C:
			if err := stream.Ping(); err != nil {
				return err
			}
		}
	}
}
