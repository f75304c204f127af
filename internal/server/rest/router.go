// Package rest exposes the vault over HTTP/JSON.
package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophvault/internal/logging"
	"github.com/dmitrijs2005/gophvault/internal/server/metrics"
	"github.com/dmitrijs2005/gophvault/internal/server/models"
	"github.com/dmitrijs2005/gophvault/internal/server/services"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// Vault is the subset of services.Vault the handlers call.
type Vault interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*services.Session, error)
	Profile(ctx context.Context, token string) (*models.User, error)
	AddCredential(ctx context.Context, token string, in services.CredentialInput) (*models.Credential, error)
	ListCredentials(ctx context.Context, token string) ([]*models.Credential, error)
	GetCredential(ctx context.Context, token, id string) (*services.DecryptedCredential, error)
	UpdateCredential(ctx context.Context, token, id string, in services.CredentialInput) (*models.Credential, error)
	DeleteCredential(ctx context.Context, token, id string) error
}

// Pinger reports database reachability; *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Dependencies holds everything the router needs. Metrics and DB are
// optional.
type Dependencies struct {
	Vault          Vault
	DB             Pinger
	Metrics        *metrics.Metrics
	Logger         logging.Logger
	RequestTimeout time.Duration
	MaxBodyBytes   int64
}

// NewRouter creates and configures the HTTP router.
func NewRouter(deps Dependencies) http.Handler {
	if deps.Logger == nil {
		deps.Logger = logging.Nop{}
	}
	h := &handler{vault: deps.Vault, db: deps.DB, logger: deps.Logger}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	if deps.Metrics != nil {
		r.Use(observe(deps.Metrics))
	}
	r.Use(requestLogger(deps.Logger))
	r.Use(recoverer(deps.Logger))
	if deps.RequestTimeout > 0 {
		r.Use(withDeadline(deps.RequestTimeout))
	}
	if deps.MaxBodyBytes > 0 {
		r.Use(limitBody(deps.MaxBodyBytes))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/health", h.health)
	r.Get("/ready", h.ready)
	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics.Handler())
	}

	r.Route("/users", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Post("/login", h.login)
		r.With(requireBearer).Get("/me", h.me)
	})

	// registration form of the first public release
	r.Post("/usuarios/registro", h.registerLegacy)

	r.Route("/credentials", func(r chi.Router) {
		r.Use(requireBearer)
		r.Post("/", h.addCredential)
		r.Get("/", h.listCredentials)
		r.Get("/{id}", h.getCredential)
		r.Put("/{id}", h.updateCredential)
		r.Delete("/{id}", h.deleteCredential)
	})

	return r
}
