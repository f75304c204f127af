package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/dmitrijs2005/gophvault/internal/dbx"
	"github.com/dmitrijs2005/gophvault/internal/logging"
	"github.com/dmitrijs2005/gophvault/internal/server/models"
	"github.com/dmitrijs2005/gophvault/internal/server/repositories/credentials"
	"github.com/dmitrijs2005/gophvault/internal/server/repositories/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

type fakeUsersRepo struct {
	createErr error
	getOut    *models.User
	getErr    error
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return u, nil
}

func (f *fakeUsersRepo) GetUserByEmail(context.Context, string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeUsersRepo) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return f.GetUserByEmail(ctx, id)
}

type fakeCredentialsRepo struct {
	err     error
	getOut  *models.Credential
	updated bool
}

func (f *fakeCredentialsRepo) Create(_ context.Context, c *models.Credential) (*models.Credential, error) {
	return c, f.err
}

func (f *fakeCredentialsRepo) ListByOwner(context.Context, string) ([]*models.Credential, error) {
	return nil, f.err
}

func (f *fakeCredentialsRepo) Get(context.Context, string) (*models.Credential, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.getOut, nil
}

func (f *fakeCredentialsRepo) Update(context.Context, *models.Credential) (bool, error) {
	return f.updated, nil
}

func (f *fakeCredentialsRepo) Delete(context.Context, string, string) (bool, error) {
	return false, f.err
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	c *fakeCredentialsRepo
}

func (m *fakeRepoManager) Dialect() string                                { return "fake" }
func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error   { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository             { return m.u }
func (m *fakeRepoManager) Credentials(db dbx.DBTX) credentials.Repository { return m.c }

type fakeHasher struct {
	hashErr   error
	verifyOK  bool
	verifyErr error
}

func (h *fakeHasher) Hash(ctx context.Context, pw string) (string, error) {
	if h.hashErr != nil {
		return "", h.hashErr
	}
	return "hashed:" + pw, ctx.Err()
}

func (h *fakeHasher) Verify(ctx context.Context, pw, record string) (bool, error) {
	return h.verifyOK, h.verifyErr
}

type fakeCipher struct{ err error }

func (c *fakeCipher) Encrypt(p, aad []byte) ([]byte, []byte, error) {
	return append([]byte("ct:"), p...), []byte("nonce"), c.err
}

func (c *fakeCipher) Decrypt(ct, nonce, aad []byte) ([]byte, error) {
	if c.err != nil {
		return nil, c.err
	}
	return []byte(strings.TrimPrefix(string(ct), "ct:")), nil
}

type fakeTokens struct {
	subject  string
	err      error
	issueErr error
}

func (f *fakeTokens) Issue(userID string) (string, time.Time, error) {
	return "token-for-" + userID, time.Time{}, f.issueErr
}

func (f *fakeTokens) Validate(string) (string, error) { return f.subject, f.err }

// recordingLogger keeps every message and argument as text.
type recordingLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recordingLogger) log(level, msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, fmt.Sprint(append([]any{level, msg}, args...)...))
}

func (l *recordingLogger) Debug(_ context.Context, msg string, args ...any) { l.log("DEBUG", msg, args...) }
func (l *recordingLogger) Info(_ context.Context, msg string, args ...any)  { l.log("INFO", msg, args...) }
func (l *recordingLogger) Warn(_ context.Context, msg string, args ...any)  { l.log("WARN", msg, args...) }
func (l *recordingLogger) Error(_ context.Context, msg string, args ...any) { l.log("ERROR", msg, args...) }
func (l *recordingLogger) With(...any) logging.Logger                       { return l }

func (l *recordingLogger) joined() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return strings.Join(l.lines, "\n")
}

type countingObserver struct {
	mu     sync.Mutex
	counts map[string]int
}

func (o *countingObserver) inc(k string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.counts == nil {
		o.counts = map[string]int{}
	}
	o.counts[k]++
}

func (o *countingObserver) ObserveAuth(outcome string)         { o.inc("auth:" + outcome) }
func (o *countingObserver) ObserveRegistration(outcome string) { o.inc("register:" + outcome) }
func (o *countingObserver) ObserveCrypto(op, outcome string)   { o.inc(op + ":" + outcome) }

type fixture struct {
	users  *fakeUsersRepo
	creds  *fakeCredentialsRepo
	hasher *fakeHasher
	cipher *fakeCipher
	tokens *fakeTokens
	logger *recordingLogger
	obs    *countingObserver
}

func newFixture() *fixture {
	return &fixture{
		users:  &fakeUsersRepo{getErr: common.ErrorNotFound},
		creds:  &fakeCredentialsRepo{},
		hasher: &fakeHasher{},
		cipher: &fakeCipher{},
		tokens: &fakeTokens{subject: "owner-1"},
		logger: &recordingLogger{},
		obs:    &countingObserver{},
	}
}

func (f *fixture) vault() *Vault {
	return NewVault(nil, &fakeRepoManager{u: f.users, c: f.creds}, f.cipher, f.hasher, f.tokens,
		WithLogger(f.logger), WithObserver(f.obs))
}

var validRegistration = RegisterInput{Email: "juan@example.com", Password: "password123"}

func TestRegister_LookupError(t *testing.T) {
	f := newFixture()
	f.users.getErr = errBoom{}

	_, err := f.vault().Register(context.Background(), validRegistration)
	assert.ErrorIs(t, err, common.ErrorInternal)
	assert.NotContains(t, err.Error(), "boom", "internal detail is not surfaced")
	assert.Contains(t, f.logger.joined(), "boom")
}

func TestRegister_RaceLostAtInsert(t *testing.T) {
	f := newFixture()
	f.users.createErr = common.ErrDuplicateEmail

	_, err := f.vault().Register(context.Background(), validRegistration)
	assert.ErrorIs(t, err, common.ErrDuplicateEmail)
	assert.Equal(t, 1, f.obs.counts["register:failure"])
}

func TestRegister_InsertAndHashErrors(t *testing.T) {
	f := newFixture()
	f.users.createErr = errBoom{}
	_, err := f.vault().Register(context.Background(), validRegistration)
	assert.ErrorIs(t, err, common.ErrorInternal)

	f = newFixture()
	f.hasher.hashErr = errBoom{}
	_, err = f.vault().Register(context.Background(), validRegistration)
	assert.ErrorIs(t, err, common.ErrorInternal)
}

func TestRegister_CancelledContextPassesThrough(t *testing.T) {
	f := newFixture()
	f.hasher.hashErr = context.Canceled

	_, err := f.vault().Register(context.Background(), validRegistration)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, errors.Is(err, common.ErrorInternal))
}

func TestRegister_NeverLogsPassword(t *testing.T) {
	f := newFixture()

	_, err := f.vault().Register(context.Background(), validRegistration)
	require.NoError(t, err)
	assert.NotContains(t, f.logger.joined(), "password123")
	assert.Equal(t, 1, f.obs.counts["register:success"])
}

func TestAuthenticate_MalformedStoredHashIsInternal(t *testing.T) {
	f := newFixture()
	f.users.getErr = nil
	f.users.getOut = &models.User{ID: "u1", PasswordHash: "garbage"}
	f.hasher.verifyErr = fmt.Errorf("%w: bad", common.ErrMalformedHash)

	_, err := f.vault().Authenticate(context.Background(), "juan@example.com", "password123")
	assert.ErrorIs(t, err, common.ErrorInternal)
	assert.False(t, errors.Is(err, common.ErrorUnauthorized))
	assert.Equal(t, 1, f.obs.counts["auth:error"])
}

func TestAuthenticate_UnknownEmailStillVerifies(t *testing.T) {
	f := newFixture()
	var verified int
	h := &countingHasher{fakeHasher: f.hasher, verified: &verified}

	v := NewVault(nil, &fakeRepoManager{u: f.users, c: f.creds}, f.cipher, h, f.tokens, WithObserver(f.obs))
	_, err := v.Authenticate(context.Background(), "ghost@example.com", "password123")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
	assert.Equal(t, 1, verified)
	assert.Equal(t, 1, f.obs.counts["auth:failure"])
}

type countingHasher struct {
	*fakeHasher
	verified *int
}

func (h *countingHasher) Verify(ctx context.Context, pw, record string) (bool, error) {
	*h.verified++
	return h.fakeHasher.Verify(ctx, pw, record)
}

func TestAuthenticate_IssueError(t *testing.T) {
	f := newFixture()
	f.users.getErr = nil
	f.users.getOut = &models.User{ID: "u1", PasswordHash: "h"}
	f.hasher.verifyOK = true
	f.tokens.issueErr = errBoom{}

	_, err := f.vault().Authenticate(context.Background(), "juan@example.com", "password123")
	assert.ErrorIs(t, err, common.ErrorInternal)
}

func TestAuthenticate_Success(t *testing.T) {
	f := newFixture()
	f.users.getErr = nil
	f.users.getOut = &models.User{ID: "u1", PasswordHash: "h"}
	f.hasher.verifyOK = true

	s, err := f.vault().Authenticate(context.Background(), "juan@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "token-for-u1", s.AccessToken)
	assert.NotContains(t, f.logger.joined(), s.AccessToken)
}

func TestCredentialOps_RepositoryErrorsAreInternal(t *testing.T) {
	f := newFixture()
	f.creds.err = errBoom{}
	v := f.vault()
	ctx := context.Background()
	id := "7d444840-9dc0-11d1-b245-5ffdce74fad2"

	_, err := v.AddCredential(ctx, "t", CredentialInput{Label: "l", Secret: "s"})
	assert.ErrorIs(t, err, common.ErrorInternal)

	_, err = v.ListCredentials(ctx, "t")
	assert.ErrorIs(t, err, common.ErrorInternal)

	_, err = v.GetCredential(ctx, "t", id)
	assert.ErrorIs(t, err, common.ErrorInternal)

	err = v.DeleteCredential(ctx, "t", id)
	assert.ErrorIs(t, err, common.ErrorInternal)
}

func TestAddCredential_EncryptError(t *testing.T) {
	f := newFixture()
	f.cipher.err = errBoom{}

	_, err := f.vault().AddCredential(context.Background(), "t", CredentialInput{Label: "l", Secret: "hunter2"})
	assert.ErrorIs(t, err, common.ErrorInternal)
	assert.Equal(t, 1, f.obs.counts["encrypt:error"])
	assert.NotContains(t, f.logger.joined(), "hunter2")
}

func TestAddCredential_OwnerComesFromToken(t *testing.T) {
	f := newFixture()
	f.tokens.subject = "real-owner"

	c, err := f.vault().AddCredential(context.Background(), "t", CredentialInput{Label: "l", Secret: "s"})
	require.NoError(t, err)
	assert.Equal(t, "real-owner", c.OwnerID)
	assert.Equal(t, []byte("ct:s"), c.SecretCiphertext)
}

func TestAddCredential_TokenCheckedBeforeInput(t *testing.T) {
	f := newFixture()
	f.tokens.err = common.ErrInvalidToken

	_, err := f.vault().AddCredential(context.Background(), "t", CredentialInput{})
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
	assert.False(t, errors.Is(err, common.ErrorValidation))
	assert.Contains(t, f.logger.joined(), "WARN")
}

func TestUpdateCredential_RowVanished(t *testing.T) {
	f := newFixture()
	id := "7d444840-9dc0-11d1-b245-5ffdce74fad2"
	f.creds.getOut = &models.Credential{ID: id, OwnerID: "owner-1"}
	f.creds.updated = false

	_, err := f.vault().UpdateCredential(context.Background(), "t", id, CredentialInput{Label: "l", Secret: "s"})
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGetCredential_DecryptFailureObserved(t *testing.T) {
	f := newFixture()
	id := "7d444840-9dc0-11d1-b245-5ffdce74fad2"
	f.creds.getOut = &models.Credential{ID: id, OwnerID: "owner-1", SecretCiphertext: []byte("ct:x")}
	f.cipher.err = common.ErrDecryptionFailed

	_, err := f.vault().GetCredential(context.Background(), "t", id)
	assert.ErrorIs(t, err, common.ErrCredentialCorrupted)
	assert.Equal(t, 1, f.obs.counts["decrypt:error"])
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"password": "is required", "email": "must be a valid email address"}}
	assert.Equal(t, "validation error: email must be a valid email address; password is required", err.Error())
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "juan@example.com", NormalizeEmail("  Juan@EXAMPLE.com\t"))
	assert.Equal(t, NormalizeEmail("ÉCOLE@example.com"), NormalizeEmail("école@example.com"))
}
