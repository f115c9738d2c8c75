package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/ethanrimes/campaign-management-platform/internal/log"
	"github.com/ethanrimes/campaign-management-platform/pkg/service"
	"github.com/ethanrimes/campaign-management-platform/pkg/storage"
)

// StartServer wires the trace services onto an HTTP listener. The presentation
// layer only ever sees ExecutionSummary and Trace payloads.
func StartServer(port string, store storage.Store) error {
	logger := log.GetLogger()
	projector := service.NewProjector(store, logger)
	assembler := service.NewAssembler(store, projector, logger)
	watcher := service.NewWatcher(assembler, logger)

	router := NewRouter(projector, assembler, watcher)
	logger.Infof("Starting trace inspector server on :%s", port)
	return http.ListenAndServe(":"+port, router)
}

// NewRouter builds the execution inspection API.
func NewRouter(projector *service.Projector, assembler *service.Assembler, watcher *service.Watcher) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", HealthHandler).Methods(http.MethodGet)
	r.HandleFunc("/executions", ListExecutionsHandler(projector)).Methods(http.MethodGet)
	r.HandleFunc("/executions/{id}", GetTraceHandler(assembler)).Methods(http.MethodGet)
	r.HandleFunc("/executions/{id}/summary", GetSummaryHandler(projector)).Methods(http.MethodGet)
	r.HandleFunc("/executions/{id}/watch", WatchHandler(watcher))
	return r
}

func HealthHandler(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintf(w, "Trace inspector is running")
}

// ListExecutionsHandler serves GET /executions?initiative_id=&limit=
func ListExecutionsHandler(projector *service.Projector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := service.ListFilter{
			InitiativeID: r.URL.Query().Get("initiative_id"),
		}
		if raw := r.URL.Query().Get("limit"); raw != "" {
			limit, err := strconv.Atoi(raw)
			if err != nil || limit <= 0 {
				writeError(w, http.StatusBadRequest, "Invalid 'limit' parameter")
				return
			}
			filter.Limit = limit
		}
		summaries, err := projector.ProjectMany(r.Context(), filter)
		if err != nil {
			log.GetLogger().Errorf("Failed to list execution summaries: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to list executions")
			return
		}
		writeJSON(w, http.StatusOK, summaries)
	}
}

// GetTraceHandler serves GET /executions/{id}
func GetTraceHandler(assembler *service.Assembler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		trace, err := assembler.Assemble(r.Context(), id)
		if err != nil {
			if service.IsNotFound(err) {
				writeError(w, http.StatusNotFound, err.Error())
				return
			}
			log.GetLogger().Errorf("Failed to assemble trace for %s: %v", id, err)
			writeError(w, http.StatusInternalServerError, "Failed to assemble trace")
			return
		}
		writeJSON(w, http.StatusOK, trace)
	}
}

// GetSummaryHandler serves GET /executions/{id}/summary
func GetSummaryHandler(projector *service.Projector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		summary, err := projector.Project(r.Context(), id)
		if err != nil {
			if service.IsNotFound(err) {
				writeError(w, http.StatusNotFound, err.Error())
				return
			}
			log.GetLogger().Errorf("Failed to project summary for %s: %v", id, err)
			writeError(w, http.StatusInternalServerError, "Failed to project summary")
			return
		}
		writeJSON(w, http.StatusOK, summary)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.GetLogger().Errorf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
