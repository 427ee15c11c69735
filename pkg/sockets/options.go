package sockets

import "time"

func WithPingInterval(d time.Duration) func(*Hub) {
	return func(h *Hub) {
		h.pingInterval = d
	}
}

func WithSendBuffer(size int) func(*Hub) {
	return func(h *Hub) {
		h.sendBuffer = size
	}
}

func OnError(f func(error)) func(*Hub) {
	return func(h *Hub) {
		h.onError = f
	}
}

// OnConnected runs for every new client, usually to send it the current state.
func OnConnected(f func(*Conn)) func(*Hub) {
	return func(h *Hub) {
		h.onConnected = f
	}
}
