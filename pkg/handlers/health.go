package handlers

import (
	"net/http"
	"runtime"

	"go.uber.org/zap"

	"github.com/florencygajera/nl2sql-chatbot-backend/pkg/database"
	"github.com/florencygajera/nl2sql-chatbot-backend/pkg/sqlguard"
)

// HealthResponse contains service status, version, and the active query
// policy so operators can confirm what the guard is enforcing.
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Service   string `json:"service"`
	GoVersion string `json:"go_version"`
	Database  string `json:"database"`
	Policy    string `json:"policy"`
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	db      *database.DB
	guard   *sqlguard.Guard
	version string
	logger  *zap.Logger
}

func NewHealthHandler(db *database.DB, guard *sqlguard.Guard, version string, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{db: db, guard: guard, version: version, logger: logger}
}

// RegisterRoutes registers the health handler's routes on the given mux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.Health)
}

// Health handles GET /health requests. The database is pinged on every
// call; an unreachable backend degrades the status without failing the
// probe, since the service can still answer CHAT and CLARIFY requests.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	dbStatus := "connected"
	status := "ok"
	if err := h.db.Ping(r.Context()); err != nil {
		h.logger.Warn("database ping failed", zap.Error(err))
		dbStatus = "unreachable"
		status = "degraded"
	}

	response := HealthResponse{
		Status:    status,
		Version:   h.version,
		Service:   "nl2sql-chatbot-backend",
		GoVersion: runtime.Version(),
		Database:  dbStatus,
		Policy:    h.guard.DescribePolicy(),
	}

	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("failed to encode health response", zap.Error(err))
	}
}
