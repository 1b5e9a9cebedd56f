// Package stream publishes exported captures and classification
// results to websocket subscribers, mirroring the serial console feed.
package stream

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gofrs/uuid"
	"github.com/gorilla/websocket"

	"github.com/edgevision/inferpipe/pkg/config"
	"github.com/edgevision/inferpipe/pkg/logger"
	"github.com/edgevision/inferpipe/pkg/network/httpx"
)

const (
	maxMessageSize = 1024
	writeWait      = 10 * time.Second
	pongTime       = 60 * time.Second
	pingTime       = pongTime * 9 / 10
	sendBuffer     = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	WriteBufferPool: &sync.Pool{},
}

// Server fans exported capture text out to websocket subscribers.
type Server struct {
	srv *httpx.Server
	log *logger.Logger

	mu      sync.Mutex
	clients map[uuid.UUID]*client
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

func NewServer(conf config.Stream, log *logger.Logger) (*Server, error) {
	s := &Server{
		log:     log,
		clients: make(map[uuid.UUID]*client),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/feed", s.handleFeed)
	srv, err := httpx.NewServer(
		fmt.Sprintf(":%d", conf.Port),
		func(*httpx.Server) http.Handler { return mux },
		httpx.WithLogger(log),
		httpx.WithPortRoll(true),
	)
	if err != nil {
		return nil, err
	}
	s.srv = srv
	return s, nil
}

func (s *Server) Run() { s.srv.Run() }

// Stop closes the listener without the graceful drain of Shutdown.
func (s *Server) Stop() error { return s.srv.Stop() }

func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	for id, c := range s.clients {
		close(c.send)
		delete(s.clients, id)
	}
	s.mu.Unlock()
	return s.srv.Shutdown(ctx)
}

func (s *Server) String() string { return "stream: " + s.srv.Addr }

// Addr is the bound listen address, useful when the port rolled.
func (s *Server) Addr() string { return s.srv.Addr }

// Subscribers reports the number of connected feed clients.
func (s *Server) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Publish queues a text payload for every subscriber. Slow clients
// that cannot keep up are dropped rather than stalling the pipeline.
func (s *Server) Publish(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, c := range s.clients {
		select {
		case c.send <- data:
		default:
			s.log.Warn().Str("client", id.String()).Msg("Subscriber too slow, dropping")
			close(c.send)
			delete(s.clients, id)
		}
	}
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error().Err(err).Msg("Websocket upgrade failed")
		return
	}
	id, err := uuid.NewV4()
	if err != nil {
		_ = conn.Close()
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	s.mu.Lock()
	s.clients[id] = c
	s.mu.Unlock()
	s.log.Debug().Str("client", id.String()).Msg("Subscriber connected")

	go s.writer(id, c)
	go s.reader(id, c)
}

// reader drains the connection to service pong frames and notice
// client-side closes. The feed is one-way, payloads are discarded.
func (s *Server) reader(id uuid.UUID, c *client) {
	defer s.drop(id)
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongTime))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongTime))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Debug().Err(err).Str("client", id.String()).Msg("Subscriber read error")
			}
			return
		}
	}
}

// writer serializes all writes to the connection.
func (s *Server) writer(id uuid.UUID, c *client) {
	ticker := time.NewTicker(pingTime)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				s.drop(id)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.drop(id)
				return
			}
		}
	}
}

func (s *Server) drop(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.clients[id]; ok {
		close(c.send)
		delete(s.clients, id)
	}
}
