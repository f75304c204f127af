package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/dmitrijs2005/gophvault/internal/cryptox"
	"github.com/dmitrijs2005/gophvault/internal/server/auth"
	"github.com/dmitrijs2005/gophvault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophvault/internal/server/rest"
	"github.com/dmitrijs2005/gophvault/internal/server/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) *Client {
	t.Helper()

	db, m, err := repomanager.Open(repomanager.DriverSQLite,
		"file:"+uuid.NewString()+"?mode=memory&cache=shared&_pragma=foreign_keys(1)")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, m.RunMigrations(context.Background(), db))

	cipher, err := cryptox.NewSecretCipher(bytes.Repeat([]byte{3}, 32))
	require.NoError(t, err)
	issuer, err := auth.NewTokenIssuer([]byte("api-signing-key-0123456789abcdef"), "HS256", time.Hour)
	require.NoError(t, err)
	hasher, err := cryptox.NewPasswordHasher(cryptox.Argon2Params{Time: 1, Memory: 8 * 1024, Threads: 1, SaltLen: 16, KeyLen: 32}, 4)
	require.NoError(t, err)

	srv := httptest.NewServer(rest.NewRouter(rest.Dependencies{
		Vault:        services.NewVault(db, m, cipher, hasher, issuer),
		DB:           db,
		MaxBodyBytes: 1 << 20,
	}))
	t.Cleanup(srv.Close)

	c, err := New(srv.URL+"/", 5*time.Second)
	require.NoError(t, err)
	return c
}

func TestNew_RejectsBadURL(t *testing.T) {
	_, err := New("127.0.0.1:8000", time.Second)
	assert.Error(t, err)
	_, err = New("ftp://vault", time.Second)
	assert.Error(t, err)
}

func TestClient_EndToEnd(t *testing.T) {
	c := newServer(t)
	ctx := context.Background()

	require.NoError(t, c.Health(ctx))

	u, err := c.Register(ctx, RegisterRequest{Email: "ada@example.com", Password: "password123", FirstName: "Ada"})
	require.NoError(t, err)
	assert.Equal(t, "Ada", u.FirstName)

	_, err = c.Register(ctx, RegisterRequest{Email: "ada@example.com", Password: "password123"})
	assert.ErrorIs(t, err, common.ErrDuplicateEmail)

	_, err = c.Register(ctx, RegisterRequest{Email: "bad", Password: "x"})
	assert.ErrorIs(t, err, common.ErrorValidation)
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Contains(t, apiErr.Fields, "email")

	_, err = c.Login(ctx, "ada@example.com", "wrong-password")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	tok, err := c.Login(ctx, "ada@example.com", "password123")
	require.NoError(t, err)

	me, err := c.Me(ctx, tok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, me.ID)

	cr, err := c.AddCredential(ctx, tok.AccessToken, CredentialInput{Label: "mail", Secret: "hunter2"})
	require.NoError(t, err)

	list, err := c.ListCredentials(ctx, tok.AccessToken)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Empty(t, list[0].Secret)

	got, err := c.GetCredential(ctx, tok.AccessToken, cr.ID)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", got.Secret)

	_, err = c.UpdateCredential(ctx, tok.AccessToken, cr.ID, CredentialInput{Label: "mail", Secret: "swordfish"})
	require.NoError(t, err)

	require.NoError(t, c.DeleteCredential(ctx, tok.AccessToken, cr.ID))
	_, err = c.GetCredential(ctx, tok.AccessToken, cr.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = c.Me(ctx, "not-a-token")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"expired", http.StatusUnauthorized, `{"detail":"token expired"}`, common.ErrTokenExpired},
		{"corrupted", http.StatusInternalServerError, `{"detail":"credential unavailable"}`, common.ErrCredentialCorrupted},
		{"internal", http.StatusInternalServerError, `{"detail":"internal server error"}`, common.ErrorInternal},
		{"no body", http.StatusNotFound, ``, common.ErrorNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c, err := New(srv.URL, time.Second)
			require.NoError(t, err)

			_, err = c.Me(context.Background(), "t")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestClient_Unavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(url, time.Second)
	require.NoError(t, err)
	assert.ErrorIs(t, c.Health(context.Background()), ErrUnavailable)
}
