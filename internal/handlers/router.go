package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/xelth-com/xrfdesk/internal/buildinfo"
	"github.com/xelth-com/xrfdesk/internal/middleware"
	"github.com/xelth-com/xrfdesk/internal/services/assay"
	"github.com/xelth-com/xrfdesk/internal/services/share"
	"github.com/xelth-com/xrfdesk/internal/websocket"
)

// Router wraps the mux router and the workflow service
type Router struct {
	*mux.Router
	svc *assay.Service
	hub *websocket.Hub
	log *zap.Logger
}

// NewRouter creates a new HTTP router with all routes. hub may be nil, in
// which case /ws is not served. A non-empty frontendDir is served at /.
func NewRouter(svc *assay.Service, hub *websocket.Hub, log *zap.Logger, frontendDir string) *Router {
	r := &Router{
		Router: mux.NewRouter(),
		svc:    svc,
		hub:    hub,
		log:    log,
	}
	r.Use(middleware.Recoverer(log), middleware.RequestLogger(log))

	// Health check endpoint
	r.HandleFunc("/health", r.healthCheck).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/status", r.getStatus).Methods("GET")

	// Intake tokens
	tokens := api.PathPrefix("/tokens").Subrouter()
	tokens.HandleFunc("", r.listTokens).Methods("GET")
	tokens.HandleFunc("", r.createToken).Methods("POST")
	tokens.HandleFunc("/tags", r.tokenTags).Methods("GET")
	tokens.HandleFunc("/{id}", r.getToken).Methods("GET")
	tokens.HandleFunc("/{id}", r.deleteToken).Methods("DELETE")
	tokens.HandleFunc("/{id}/pdf", r.tokenPDF).Methods("GET")
	tokens.HandleFunc("/{id}/analysis", r.attachAnalysis).Methods("POST")
	tokens.HandleFunc("/{id}/preview", r.previewReport).Methods("POST")
	tokens.HandleFunc("/{id}/commit", r.commitReport).Methods("POST")

	// Committed reports
	history := api.PathPrefix("/history").Subrouter()
	history.HandleFunc("", r.searchHistory).Methods("GET")
	history.HandleFunc("/export.csv", r.downloadExport).Methods("GET")
	history.HandleFunc("/export", r.deliverExport).Methods("POST")
	history.HandleFunc("/{id}", r.getReport).Methods("GET")
	history.HandleFunc("/{id}", r.updateReport).Methods("PUT")
	history.HandleFunc("/{id}", r.deleteReport).Methods("DELETE")
	history.HandleFunc("/{id}/pdf", r.reportPDF).Methods("GET")
	history.HandleFunc("/{id}/deliver", r.deliverReport).Methods("POST")

	if hub != nil {
		r.HandleFunc("/ws", func(w http.ResponseWriter, req *http.Request) {
			websocket.ServeWs(hub, w, req)
		})
	}

	if frontendDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(frontendDir)))
	}

	return r
}

// healthCheck returns the health status of the API
func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

type statusResponse struct {
	Status   string         `json:"status"`
	Build    buildinfo.Info `json:"build"`
	Screens  int            `json:"screens"`
	CanSave  bool           `json:"canSave"`
	CanShare bool           `json:"canShare"`
}

// getStatus reports build metadata and what delivery the host supports
func (r *Router) getStatus(w http.ResponseWriter, req *http.Request) {
	caps := r.svc.Capabilities()
	resp := statusResponse{
		Status:   "running",
		Build:    buildinfo.Current(),
		CanSave:  caps.Has(share.CanSave),
		CanShare: caps.Has(share.CanShare),
	}
	if r.hub != nil {
		resp.Screens = r.hub.Count()
	}
	respondJSON(w, http.StatusOK, resp)
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// fail maps a service error onto a status code and message
func (r *Router) fail(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch assay.KindOf(err) {
	case assay.ErrValidation:
		status = http.StatusBadRequest
	case assay.ErrNotFound:
		status = http.StatusNotFound
	case assay.ErrShare:
		if errors.Is(err, share.ErrUnsupported) {
			status = http.StatusNotImplemented
		}
	}
	if status == http.StatusInternalServerError {
		r.log.Error("Request failed", zap.Error(err))
	}
	respondError(w, status, err.Error())
}
