// Copyright (c) 2026 Gangway Authors
// Gangway - interactive remote shell client and relay
// This source code is licensed under the MIT license found in the LICENSE file.

package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/reefbird/gangway/internal/config"
	"github.com/reefbird/gangway/internal/db"
	"github.com/reefbird/gangway/internal/logging"
	"github.com/reefbird/gangway/internal/model"
	"github.com/reefbird/gangway/internal/protocol"
	"github.com/reefbird/gangway/internal/sshkey"
)

// maxFrameSize caps a single inbound WebSocket message.
const maxFrameSize = 1024 * 1024

// Server is the Gangway relay process: key provisioning over HTTP and
// frame-to-SSH bridging over WebSocket.
type Server struct {
	cfg      config.RelayConfig
	registry *Registry
	router   *chi.Mux
}

// generateKeyResponse is the provisioning response body. Field names are part
// of the wire contract.
type generateKeyResponse struct {
	PublicKey string `json:"publicKey"`
	SessionID string `json:"sessionId"`
}

// NewServer builds a relay server with its routes. Zero config values fall
// back to working defaults.
func NewServer(cfg config.RelayConfig) *Server {
	if cfg.Listen == "" {
		cfg.Listen = ":8000"
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 30 * time.Minute
	}
	if cfg.DrainInterval <= 0 {
		cfg.DrainInterval = 100 * time.Millisecond
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 10 * time.Second
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}

	s := &Server{cfg: cfg, registry: NewRegistry()}

	r := chi.NewRouter()
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/generate-key", s.handleGenerateKey)
	r.Get("/ws/{sessionID}", s.handleSession)
	r.Get("/healthz", s.handleHealthz)
	r.Handle("/metrics", promhttp.Handler())

	s.router = r
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go s.sweepLoop(ctx)

	errCh := make(chan error, 1)
	go func() {
		logging.Infof("relay: listening on %s", s.cfg.Listen)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logging.Infof("relay: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// sweepLoop reaps sessions that were provisioned but never claimed.
func (s *Server) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, id := range s.registry.Sweep(s.cfg.SessionTTL) {
				sessionsExpired.Inc()
				s.audit("SESSION_EXPIRED", "session: "+id)
				if db.IsInitialized() {
					if err := db.MarkSessionClosed(id, model.SessionExpired); err != nil {
						logging.Warnf("relay: failed to expire session record %s: %v", id, err)
					}
				}
				logging.Infof("relay: session %s expired unclaimed", id)
			}
		}
	}
}

// handleGenerateKey provisions an ephemeral key pair and a session ID. The
// private half stays in the registry; the response carries only the public key.
func (s *Server) handleGenerateKey(w http.ResponseWriter, r *http.Request) {
	kp, err := sshkey.Generate("gangway")
	if err != nil {
		logging.Errorf("relay: key generation failed: %v", err)
		http.Error(w, "key generation failed", http.StatusInternalServerError)
		return
	}

	id := uuid.NewString()
	s.registry.Put(id, kp.PublicKey, kp.Signer)
	keysIssued.Inc()

	s.audit("KEY_ISSUED", "session: "+id)
	if db.IsInitialized() {
		if err := db.SaveSessionRecord(id, kp.PublicKey); err != nil {
			logging.Warnf("relay: failed to persist session %s: %v", id, err)
		}
	}
	logging.Infof("relay: issued key for session %s", id)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(generateKeyResponse{PublicKey: kp.PublicKey, SessionID: id}); err != nil {
		logging.Warnf("relay: failed to write provisioning response: %v", err)
	}
}

// handleSession owns one WebSocket connection for its whole life: claim the
// session key, bridge connect/execute frames to SSH, tear everything down on
// disconnect.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")

	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		logging.Warnf("relay: websocket accept failed: %v", err)
		return
	}
	defer c.CloseNow()
	c.SetReadLimit(maxFrameSize)

	signer, ok := s.registry.Claim(id)
	if !ok {
		logging.Warnf("relay: rejecting unknown session %q", id)
		_ = c.Close(websocket.StatusPolicyViolation, "unknown session")
		return
	}

	activeSessions.Inc()
	defer activeSessions.Dec()

	ctx := r.Context()
	var bridge *Bridge
	defer func() {
		if bridge != nil {
			bridge.Close()
		}
		s.registry.Release(id)
		s.audit("SESSION_CLOSED", "session: "+id)
		if db.IsInitialized() {
			if err := db.MarkSessionClosed(id, model.SessionClosed); err != nil {
				logging.Warnf("relay: failed to close session record %s: %v", id, err)
			}
		}
		logging.Infof("relay: session %s closed", id)
	}()

	for {
		_, data, err := c.Read(ctx)
		if err != nil {
			return
		}
		f, err := protocol.Decode(data)
		if err != nil {
			logging.Warnf("relay: dropping malformed frame on session %s: %v", id, err)
			continue
		}
		framesRelayed.WithLabelValues(f.Type).Inc()

		switch f.Type {
		case protocol.TypeConnect:
			if bridge != nil {
				s.writeFrame(ctx, c, protocol.Error("session already connected"))
				continue
			}
			start := time.Now()
			b, err := DialBridge(ctx, f.Host, f.Username, signer, s.cfg.DialTimeout)
			if err != nil {
				logging.Warnf("relay: bridge for session %s failed: %v", id, err)
				s.writeFrame(ctx, c, protocol.Error(err.Error()))
				continue
			}
			bridgeDialSeconds.Observe(time.Since(start).Seconds())
			bridge = b

			s.audit("SESSION_CONNECTED", fmt.Sprintf("session: %s, remote: %s@%s", id, f.Username, f.Host))
			if db.IsInitialized() {
				if err := db.MarkSessionConnected(id, f.Host, f.Username); err != nil {
					logging.Warnf("relay: failed to update session record %s: %v", id, err)
				}
			}
			logging.Infof("relay: session %s bridged to %s@%s", id, f.Username, f.Host)
			s.writeFrame(ctx, c, protocol.Prompt(bridge.Prompt()))

		case protocol.TypeExecute:
			if bridge == nil {
				s.writeFrame(ctx, c, protocol.Error("No active SSH session"))
				continue
			}
			if err := bridge.Execute(f.Args); err != nil {
				s.writeFrame(ctx, c, protocol.Error(err.Error()))
				continue
			}
			s.audit("EXECUTE", fmt.Sprintf("session: %s, args: %s", id, f.Args))
			if db.IsInitialized() {
				if err := db.IncrementSessionCommands(id); err != nil {
					logging.Warnf("relay: failed to count command for session %s: %v", id, err)
				}
			}
			for _, chunk := range bridge.Drain(s.cfg.DrainInterval) {
				s.writeFrame(ctx, c, protocol.Output(chunk))
			}
			s.writeFrame(ctx, c, protocol.Prompt(bridge.Prompt()))

		default:
			logging.Warnf("relay: ignoring frame type %q on session %s", f.Type, id)
		}
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// writeFrame encodes and sends a single frame, logging failures instead of
// surfacing them: a dead socket is detected by the read loop.
func (s *Server) writeFrame(ctx context.Context, c *websocket.Conn, f protocol.Frame) {
	data, err := f.Encode()
	if err != nil {
		logging.Errorf("relay: failed to encode %s frame: %v", f.Type, err)
		return
	}
	framesRelayed.WithLabelValues(f.Type).Inc()
	if err := c.Write(ctx, websocket.MessageText, data); err != nil {
		logging.Warnf("relay: failed to write %s frame: %v", f.Type, err)
	}
}

// audit records an action when an audit sink is configured; otherwise no-op.
func (s *Server) audit(action, details string) {
	if w := db.DefaultAuditWriter(); w != nil {
		if err := w.LogAction(action, details); err != nil {
			logging.Warnf("relay: audit write failed: %v", err)
		}
	}
}
