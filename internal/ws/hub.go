package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/ignatzorin/housing-backend/internal/logger"
)

// ErrHubStopped хаб уже остановлен.
var ErrHubStopped = errors.New("ws: hub stopped")

// Hub управляет всеми WebSocket клиентами ленты модерации.
type Hub struct {
	mu         sync.RWMutex
	clients    map[uuid.UUID]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan message
	done       chan struct{}
}

type message struct {
	userID     uuid.UUID
	adminsOnly bool
	payload    []byte
}

// NewHub создаёт новый хаб.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan message, 64),
		done:       make(chan struct{}),
	}
}

// Run запускает главный цикл хаба. При отмене ctx все клиенты отключаются.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case msg := <-h.broadcast:
			h.deliver(msg)
		}
	}
}

// Done закрывается после остановки хаба.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// Register добавляет клиента.
func (h *Hub) Register(client *Client) error {
	select {
	case h.register <- client:
		return nil
	case <-h.done:
		return ErrHubStopped
	}
}

// Unregister удаляет клиента.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// BroadcastToUser отправляет событие всем подключениям пользователя.
func (h *Hub) BroadcastToUser(userID uuid.UUID, event string, data any) error {
	return h.enqueue(message{userID: userID}, event, data)
}

// BroadcastToAdmins отправляет событие всем подключённым администраторам.
func (h *Hub) BroadcastToAdmins(event string, data any) error {
	return h.enqueue(message{adminsOnly: true}, event, data)
}

// NotifyUser доставка без ожидания результата, ошибки только логируются.
func (h *Hub) NotifyUser(userID uuid.UUID, event string, data any) {
	if err := h.BroadcastToUser(userID, event, data); err != nil {
		logger.Log.WithError(err).WithField("event", event).Warn("ws: event dropped")
	}
}

// NotifyAdmins доставка администраторам без ожидания результата.
func (h *Hub) NotifyAdmins(event string, data any) {
	if err := h.BroadcastToAdmins(event, data); err != nil {
		logger.Log.WithError(err).WithField("event", event).Warn("ws: event dropped")
	}
}

// ConnectedClients число активных подключений.
func (h *Hub) ConnectedClients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}

func (h *Hub) enqueue(msg message, event string, data any) error {
	// Поле "type" содержит имя события, "data" полезную нагрузку.
	raw, err := json.Marshal(map[string]any{
		"type": event,
		"data": data,
	})
	if err != nil {
		return fmt.Errorf("ws: не удалось сериализовать сообщение: %w", err)
	}
	msg.payload = raw

	select {
	case h.broadcast <- msg:
		return nil
	case <-h.done:
		return ErrHubStopped
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.userID]; !ok {
		h.clients[client.userID] = make(map[*Client]struct{})
	}
	h.clients[client.userID][client] = struct{}{}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.dropLocked(client)
}

// dropLocked убирает клиента и закрывает его канал отправки; writePump после этого завершается.
func (h *Hub) dropLocked(client *Client) {
	clients, ok := h.clients[client.userID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	if len(clients) == 0 {
		delete(h.clients, client.userID)
	}
	close(client.send)
}

func (h *Hub) deliver(msg message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var targets []*Client
	if msg.adminsOnly {
		for _, set := range h.clients {
			for client := range set {
				if client.isAdmin {
					targets = append(targets, client)
				}
			}
		}
	} else {
		for client := range h.clients[msg.userID] {
			targets = append(targets, client)
		}
	}

	for _, client := range targets {
		select {
		case client.send <- msg.payload:
		default:
			// Медленный клиент: отключаем, чтобы не блокировать остальных.
			logger.Log.WithField("user_id", client.userID).Warn("ws: client too slow, dropping")
			h.dropLocked(client)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, set := range h.clients {
		for client := range set {
			h.dropLocked(client)
		}
	}
}
