package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/dmitrijs2005/gophvault/internal/logging"
	"github.com/dmitrijs2005/gophvault/internal/server/models"
	"github.com/dmitrijs2005/gophvault/internal/server/services"
	"github.com/go-chi/chi/v5"
)

type handler struct {
	vault  Vault
	db     Pinger
	logger logging.Logger
}

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
}

func newUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		CreatedAt: u.CreatedAt,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type credentialRequest struct {
	Label  string `json:"label"`
	Site   string `json:"site"`
	Secret string `json:"secret"`
}

func (c credentialRequest) input() services.CredentialInput {
	return services.CredentialInput{Label: c.Label, Site: c.Site, Secret: c.Secret}
}

type credentialResponse struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	Site      string    `json:"site"`
	Secret    string    `json:"secret,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newCredentialResponse(c *models.Credential) credentialResponse {
	return credentialResponse{
		ID:        c.ID,
		Label:     c.Label,
		Site:      c.Site,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// decode reads a JSON body into dst. It reports false after writing the
// error response itself.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		writeDetail(w, http.StatusRequestEntityTooLarge, "request body too large")
	case errors.Is(err, io.EOF):
		writeDetail(w, http.StatusUnprocessableEntity, "request body is empty")
	default:
		writeDetail(w, http.StatusUnprocessableEntity, fmt.Sprintf("malformed request body: %v", err))
	}
	return false
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) ready(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		if err := h.db.PingContext(r.Context()); err != nil {
			h.logger.Warn(r.Context(), "readiness check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	var in services.RegisterInput
	if !decode(w, r, &in) {
		return
	}

	user, err := h.vault.Register(r.Context(), in)
	if err != nil {
		writeError(r.Context(), h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newUserResponse(user))
}

type legacyRegisterRequest struct {
	Nombre     string `json:"nombre"`
	Apellido   string `json:"apellido"`
	Correo     string `json:"correo"`
	Contrasena string `json:"contrasena"`
}

type legacyUserResponse struct {
	ID       string `json:"id"`
	Nombre   string `json:"nombre"`
	Apellido string `json:"apellido"`
	Correo   string `json:"correo"`
}

// registerLegacy accepts the Spanish field names used by older clients.
func (h *handler) registerLegacy(w http.ResponseWriter, r *http.Request) {
	var req legacyRegisterRequest
	if !decode(w, r, &req) {
		return
	}

	user, err := h.vault.Register(r.Context(), services.RegisterInput{
		Email:     req.Correo,
		Password:  req.Contrasena,
		FirstName: req.Nombre,
		LastName:  req.Apellido,
	})
	if err != nil {
		writeError(r.Context(), h.logger, w, legacyFields(err))
		return
	}
	writeJSON(w, http.StatusCreated, legacyUserResponse{
		ID:       user.ID,
		Nombre:   user.FirstName,
		Apellido: user.LastName,
		Correo:   user.Email,
	})
}

var legacyFieldNames = map[string]string{
	"email":      "correo",
	"password":   "contrasena",
	"first_name": "nombre",
	"last_name":  "apellido",
}

// legacyFields renames validation fields to the names the caller sent.
func legacyFields(err error) error {
	var ve *services.ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	fields := make(map[string]string, len(ve.Fields))
	for name, msg := range ve.Fields {
		if legacy, ok := legacyFieldNames[name]; ok {
			name = legacy
		}
		fields[name] = msg
	}
	return &services.ValidationError{Fields: fields}
}

// login accepts either a JSON body or an OAuth2 password-grant form, where
// the email travels as "username".
func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" {
		if err := r.ParseForm(); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeDetail(w, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}
			writeDetail(w, http.StatusUnprocessableEntity, "malformed form body")
			return
		}
		req.Email = r.PostForm.Get("username")
		req.Password = r.PostForm.Get("password")
	} else if !decode(w, r, &req) {
		return
	}

	session, err := h.vault.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			w.Header().Set("WWW-Authenticate", `Bearer`)
			writeDetail(w, http.StatusUnauthorized, "incorrect email or password")
			return
		}
		writeError(r.Context(), h.logger, w, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: session.AccessToken,
		TokenType:   session.TokenType,
		ExpiresAt:   session.ExpiresAt,
	})
}

func (h *handler) me(w http.ResponseWriter, r *http.Request) {
	user, err := h.vault.Profile(r.Context(), bearerToken(r.Context()))
	if err != nil {
		writeError(r.Context(), h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserResponse(user))
}

func (h *handler) addCredential(w http.ResponseWriter, r *http.Request) {
	var req credentialRequest
	if !decode(w, r, &req) {
		return
	}

	c, err := h.vault.AddCredential(r.Context(), bearerToken(r.Context()), req.input())
	if err != nil {
		writeError(r.Context(), h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newCredentialResponse(c))
}

func (h *handler) listCredentials(w http.ResponseWriter, r *http.Request) {
	items, err := h.vault.ListCredentials(r.Context(), bearerToken(r.Context()))
	if err != nil {
		writeError(r.Context(), h.logger, w, err)
		return
	}

	out := make([]credentialResponse, 0, len(items))
	for _, c := range items {
		out = append(out, newCredentialResponse(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) getCredential(w http.ResponseWriter, r *http.Request) {
	c, err := h.vault.GetCredential(r.Context(), bearerToken(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(r.Context(), h.logger, w, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, credentialResponse{
		ID:        c.ID,
		Label:     c.Label,
		Site:      c.Site,
		Secret:    c.Secret,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	})
}

func (h *handler) updateCredential(w http.ResponseWriter, r *http.Request) {
	var req credentialRequest
	if !decode(w, r, &req) {
		return
	}

	c, err := h.vault.UpdateCredential(r.Context(), bearerToken(r.Context()), chi.URLParam(r, "id"), req.input())
	if err != nil {
		writeError(r.Context(), h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, newCredentialResponse(c))
}

func (h *handler) deleteCredential(w http.ResponseWriter, r *http.Request) {
	if err := h.vault.DeleteCredential(r.Context(), bearerToken(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(r.Context(), h.logger, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
