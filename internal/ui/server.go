package ui

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/larsks/dronevision/internal/landing"
	"github.com/larsks/dronevision/internal/static"
)

const pageTitle = "DroneVision | Intelligence Aérienne Autonome"

type UIServer struct {
	apiBaseURL string
	router     *chi.Mux
}

// NewUIServer creates a new UI server instance. Request logging is only
// enabled in production.
func NewUIServer(cfg *Config, production bool) *UIServer {
	ui := &UIServer{
		apiBaseURL: cfg.APIBaseURL,
		router:     chi.NewRouter(),
	}

	ui.setupRoutes(production)
	return ui
}

func (ui *UIServer) setupRoutes(production bool) {
	if production {
		ui.router.Use(middleware.Logger)
	}
	ui.router.Use(middleware.Recoverer)

	ui.router.Get("/", ui.indexHandler)
	ui.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static.GetAssets()))))
}

// indexHandler renders the landing page. The sector and anomaly query
// parameters select the highlighted industry and hero detection.
func (ui *UIServer) indexHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page := landing.NewPage(query.Get("sector"), query.Get("anomaly"), ui.apiBaseURL)

	content, err := static.RenderTemplate(static.TemplateData{
		Title: pageTitle,
		Page:  page,
	})
	if err != nil {
		log.Printf("failed to render landing page: %v", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(content)) //nolint:errcheck
}

func (ui *UIServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ui.router.ServeHTTP(w, r)
}

func (ui *UIServer) Handler() http.Handler {
	return ui.router
}
