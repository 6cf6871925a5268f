package sse

import (
	"context"
	"sync"

	"cricketbook/internal/models"
)

// Hub fans change events out to in-process subscribers, keyed by topic.
type Hub struct {
	clients     map[models.Topic][]chan models.ChangeEvent
	clientMutex sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[models.Topic][]chan models.ChangeEvent),
	}
}

// Subscribe registers a client for the given topics. The returned channel is
// closed once ctx is done.
func (h *Hub) Subscribe(ctx context.Context, topics ...models.Topic) <-chan models.ChangeEvent {
	clientChan := make(chan models.ChangeEvent, 10)

	h.clientMutex.Lock()
	for _, topic := range topics {
		h.clients[topic] = append(h.clients[topic], clientChan)
	}
	h.clientMutex.Unlock()

	go func() {
		<-ctx.Done()
		h.removeClient(topics, clientChan)
	}()

	return clientChan
}

// Publish broadcasts an event to every subscriber of its topic. Sends never
// block; a subscriber with a full buffer misses the event.
func (h *Hub) Publish(event models.ChangeEvent) {
	h.clientMutex.RLock()
	defer h.clientMutex.RUnlock()

	for _, clientChan := range h.clients[event.Topic] {
		select {
		case clientChan <- event:
		default:
		}
	}
}

func (h *Hub) removeClient(topics []models.Topic, clientChan chan models.ChangeEvent) {
	h.clientMutex.Lock()
	defer h.clientMutex.Unlock()

	for _, topic := range topics {
		clients := h.clients[topic]
		for i, ch := range clients {
			if ch == clientChan {
				h.clients[topic] = append(clients[:i:i], clients[i+1:]...)
				break
			}
		}
		if len(h.clients[topic]) == 0 {
			delete(h.clients, topic)
		}
	}
	close(clientChan)
}

// ClientCount returns the number of subscribers to a topic.
func (h *Hub) ClientCount(topic models.Topic) int {
	h.clientMutex.RLock()
	defer h.clientMutex.RUnlock()
	return len(h.clients[topic])
}
