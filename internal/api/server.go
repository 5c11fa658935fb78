// Package api exposes dashboard sessions over HTTP and WebSocket.
package api

import (
	"fmt"
	"log"
	"net/http"
	"net/url"
	"slices"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"

	"github.com/larsks/dronevision/internal/fleet"
	"github.com/larsks/dronevision/internal/metrics"
	"github.com/larsks/dronevision/internal/mqtt"
	"github.com/larsks/dronevision/internal/session"
)

// Server represents the API server.
type Server struct {
	sessions    *session.Manager
	recorder    *metrics.Recorder
	mqttClient  *mqtt.Client
	events      *mqtt.EventPublisher
	corsOrigins []string
	upgrader    websocket.Upgrader
	router      *chi.Mux
}

// NewServer creates a Server from cfg. Sessions are served from the
// built-in asset catalog.
func NewServer(cfg *Config) (*Server, error) {
	recorder := metrics.NewRecorder()
	observers := []session.Observer{recorder}

	var mqttClient *mqtt.Client
	var events *mqtt.EventPublisher
	if cfg.MQTT.Server != "" {
		client, err := mqtt.NewClient(mqtt.Config{
			ServerURL: cfg.MQTT.Server,
			ClientID:  cfg.MQTT.ClientID,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMQTTInitFailed, err)
		}
		mqttClient = client
		events = mqtt.NewEventPublisher(client)
		observers = append(observers, events)
		log.Printf("publishing session events to %s", cfg.MQTT.Server)
	}

	manager, err := session.NewManager(fleet.Default(), cfg.SessionConfig(), observers...)
	if err != nil {
		return nil, fmt.Errorf("failed to create session manager: %w", err)
	}

	if cfg.Session.IdleTimeout > 0 {
		if err := manager.StartJanitor(); err != nil {
			return nil, fmt.Errorf("failed to start session janitor: %w", err)
		}
	}

	s := newServer(manager, recorder, cfg.CORSOrigins, true)
	s.mqttClient = mqttClient
	s.events = events
	return s, nil
}

// newServer wires the router. Tests pass production=false to skip request
// logging.
func newServer(manager *session.Manager, recorder *metrics.Recorder, corsOrigins []string, production bool) *Server {
	s := &Server{
		sessions:    manager,
		recorder:    recorder,
		corsOrigins: corsOrigins,
		router:      chi.NewRouter(),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}

	if production {
		s.router.Use(middleware.Logger)
	}
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	s.router.Get("/healthz", s.healthHandler)
	s.router.Handle("/metrics", recorder.Handler())

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/assets", s.assetsHandler)
		r.Post("/sessions", s.openSessionHandler)

		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Use(s.validateSession)

			r.Get("/", s.viewHandler)
			r.Delete("/", s.closeSessionHandler)
			r.Get("/telemetry", s.telemetryHandler)
			r.Get("/ws", s.streamHandler)
			r.Post("/thermal", s.thermalHandler)
			r.Post("/telemetry/tick", s.tickHandler)

			r.Group(func(r chi.Router) {
				r.Use(s.validateJSONRequest)
				r.Post("/tab", s.tabHandler)
				r.Post("/asset", s.assetHandler)
				r.Post("/action", s.actionHandler)
			})
		})
	})

	return s
}

// checkOrigin applies the CORS origin list to WebSocket upgrades.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || slices.Contains(s.corsOrigins, "*") || slices.Contains(s.corsOrigins, origin) {
		return true
	}

	// Same-origin requests are always allowed
	u, err := url.Parse(origin)
	return err == nil && u.Host == r.Host
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Sessions returns the session manager.
func (s *Server) Sessions() *session.Manager {
	return s.sessions
}

// Close stops the janitor, tears down every session, flushes queued events
// and disconnects from the MQTT broker.
func (s *Server) Close() error {
	err := s.sessions.Shutdown()
	if s.events != nil {
		s.events.Close()
	}
	if s.mqttClient != nil {
		s.mqttClient.Disconnect(250)
	}
	return err
}
