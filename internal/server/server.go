// Package server exposes the calculator over a websocket call socket.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/pengelbrecht/calc/internal/calculator"
)

const (
	DefaultReadLimit    = 4096
	DefaultPingInterval = 30 * time.Second
	DefaultPongWait     = 90 * time.Second
	writeWait           = 10 * time.Second
	shutdownTimeout     = 5 * time.Second
)

// Config holds server options. Zero values select defaults.
type Config struct {
	ReadLimit    int64
	PingInterval time.Duration
	PongWait     time.Duration
	Logger       *zap.Logger

	// CheckOrigin overrides the upgrader's same-origin check.
	CheckOrigin func(r *http.Request) bool
}

// Server routes call frames into the calculator.
type Server struct {
	upgrader     websocket.Upgrader
	readLimit    int64
	pingInterval time.Duration
	pongWait     time.Duration
	logger       *zap.Logger
	mux          *http.ServeMux

	conns   map[*websocket.Conn]struct{}
	connsMu sync.Mutex
}

// New creates a server with the given configuration.
func New(cfg Config) *Server {
	s := &Server{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     cfg.CheckOrigin,
		},
		readLimit:    cfg.ReadLimit,
		pingInterval: cfg.PingInterval,
		pongWait:     cfg.PongWait,
		logger:       cfg.Logger,
		mux:          http.NewServeMux(),
		conns:        make(map[*websocket.Conn]struct{}),
	}
	if s.readLimit <= 0 {
		s.readLimit = DefaultReadLimit
	}
	if s.pingInterval <= 0 {
		s.pingInterval = DefaultPingInterval
	}
	if s.pongWait <= 0 {
		s.pongWait = DefaultPongWait
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}

	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /operations", s.handleOperations)
	s.mux.HandleFunc("GET /ws", s.handleSocket)
	return s
}

// Handler returns the HTTP handler serving /ws, /healthz and /operations.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe listens on addr and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully and closes open sockets.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv.RegisterOnShutdown(s.closeConns)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info("serving", zap.String("addr", ln.Addr().String()))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("stopped")
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleOperations(w http.ResponseWriter, r *http.Request) {
	ops := calculator.Operations()
	infos := make([]OperationInfo, 0, len(ops))
	for _, op := range ops {
		infos = append(infos, OperationInfo{Name: op.Name, Doc: op.Doc})
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(infos); err != nil {
		s.logger.Warn("encode operations", zap.Error(err))
	}
}

func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error.
		s.logger.Debug("upgrade failed", zap.Error(err))
		return
	}
	s.track(conn)
	defer s.untrack(conn)

	log := s.logger.With(zap.String("remote", r.RemoteAddr))
	log.Debug("client connected")

	conn.SetReadLimit(s.readLimit)
	conn.SetReadDeadline(time.Now().Add(s.pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(s.pongWait))
	})

	pingDone := make(chan struct{})
	defer close(pingDone)
	go s.pingLoop(conn, pingDone)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug("client disconnected")
			} else {
				log.Debug("read error", zap.Error(err))
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(s.pongWait))

		reply := s.handleFrame(log, data)

		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(reply); err != nil {
			log.Debug("write error", zap.Error(err))
			return
		}
	}
}

func (s *Server) pingLoop(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// handleFrame decodes one frame and returns the message to send back.
func (s *Server) handleFrame(log *zap.Logger, data []byte) any {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var req CallRequest
	if err := dec.Decode(&req); err != nil {
		log.Debug("invalid frame", zap.Error(err))
		return ErrorMessage{Type: TypeError, Message: fmt.Sprintf("invalid message: %v", err)}
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		log.Debug("invalid frame", zap.String("reason", "trailing data"))
		return ErrorMessage{Type: TypeError, Message: "invalid message: trailing data after JSON value"}
	}
	if req.Type != TypeCall {
		return ErrorMessage{Type: TypeError, Message: fmt.Sprintf("unknown message type: %s", req.Type)}
	}
	return s.call(log, req)
}

func (s *Server) call(log *zap.Logger, req CallRequest) CallResponse {
	result, err := calculator.Call(req.Operation, req.Args...)
	if err != nil {
		log.Debug("call failed",
			zap.String("requestId", req.RequestID),
			zap.String("operation", req.Operation),
			zap.Error(err))
		return CallResponse{
			Type:      TypeCallResponse,
			RequestID: req.RequestID,
			Error:     err.Error(),
			Kind:      string(calculator.KindOf(err)),
		}
	}

	n := Number(result)
	return CallResponse{
		Type:      TypeCallResponse,
		RequestID: req.RequestID,
		Success:   true,
		Result:    &n,
	}
}

func (s *Server) track(conn *websocket.Conn) {
	s.connsMu.Lock()
	s.conns[conn] = struct{}{}
	s.connsMu.Unlock()
}

func (s *Server) untrack(conn *websocket.Conn) {
	s.connsMu.Lock()
	delete(s.conns, conn)
	s.connsMu.Unlock()
	conn.Close()
}

// closeConns sends a going-away close frame to every open socket.
func (s *Server) closeConns() {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	for conn := range s.conns {
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		conn.Close()
	}
}
