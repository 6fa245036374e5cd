package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"foodshare/internal/domain"
	"foodshare/internal/lifecycle"
	"foodshare/internal/providers/enricher"
	"foodshare/internal/storage"
)

// App bundles the collaborators the HTTP handlers need.
type App struct {
	Lifecycle *lifecycle.Service
	Enricher  enricher.Enricher
	Files     *storage.FileStore
	Logger    zerolog.Logger
	Now       func() time.Time
}

func NewApp(svc *lifecycle.Service, enr enricher.Enricher, files *storage.FileStore, logger zerolog.Logger) *App {
	return &App{
		Lifecycle: svc,
		Enricher:  enr,
		Files:     files,
		Logger:    logger,
		Now:       time.Now,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]any{"error": errCode, "message": message})
}

// domainError translates the lifecycle error taxonomy onto the response
// surface. Each kind keeps its own code so clients can tell a role
// rejection from a state rejection from a bad possession token.
func (a *App) domainError(w http.ResponseWriter, err error) {
	var roleErr *domain.RoleError
	switch {
	case errors.As(err, &roleErr):
		a.json(w, http.StatusForbidden, map[string]any{
			"error":         "forbidden",
			"message":       "insufficient permissions",
			"role":          roleErr.Role,
			"allowed_roles": roleErr.Allowed,
		})
	case errors.Is(err, domain.ErrForbidden):
		a.error(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", "donation not found")
	case errors.Is(err, domain.ErrInvalidState):
		a.error(w, http.StatusBadRequest, "invalid_state", err.Error())
	case errors.Is(err, domain.ErrInvalidProof):
		a.error(w, http.StatusBadRequest, "invalid_token", "possession token does not match")
	case errors.Is(err, domain.ErrValidation):
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
	default:
		a.Logger.Error().Err(err).Msg("handlers: unexpected error")
		a.error(w, http.StatusInternalServerError, "internal", "internal error")
	}
}
