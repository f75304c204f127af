package cryptox

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// testParams keep argon2 cheap enough for unit tests.
var testParams = Argon2Params{Time: 1, Memory: 8 * 1024, Threads: 1, SaltLen: 16, KeyLen: 32}

func newHasher(t *testing.T, p Argon2Params, maxConcurrent int) *PasswordHasher {
	t.Helper()
	h, err := NewPasswordHasher(p, maxConcurrent)
	require.NoError(t, err)
	return h
}

func TestPasswordHasher_HashAndVerify(t *testing.T) {
	h := newHasher(t, testParams, 2)
	ctx := context.Background()

	record, err := h.Hash(ctx, "password123")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(record, "$argon2id$v=19$m=8192,t=1,p=1$"), record)
	assert.NotContains(t, record, "password123")

	ok, err := h.Verify(ctx, "password123", record)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify(ctx, "password124", record)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = h.Verify(ctx, "", record)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPasswordHasher_SaltedRecordsDiffer(t *testing.T) {
	h := newHasher(t, testParams, 0)
	ctx := context.Background()

	r1, err := h.Hash(ctx, "same-password")
	require.NoError(t, err)
	r2, err := h.Hash(ctx, "same-password")
	require.NoError(t, err)

	assert.NotEqual(t, r1, r2)
}

func TestPasswordHasher_VerifyUsesRecordParameters(t *testing.T) {
	old := newHasher(t, Argon2Params{Time: 2, Memory: 16 * 1024, Threads: 2, SaltLen: 16, KeyLen: 32}, 1)
	record, err := old.Hash(context.Background(), "pw")
	require.NoError(t, err)

	current := newHasher(t, testParams, 1)
	ok, err := current.Verify(context.Background(), "pw", record)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPasswordHasher_MalformedRecords(t *testing.T) {
	h := newHasher(t, testParams, 1)
	valid, err := h.Hash(context.Background(), "pw")
	require.NoError(t, err)
	parts := strings.Split(valid, "$")

	records := map[string]string{
		"empty":             "",
		"plaintext":         "password123",
		"unknown scheme":    "$scrypt$ln=15,r=8,p=1$c2FsdA$aGFzaA",
		"missing field":     strings.Join(parts[:5], "$"),
		"bad version":       strings.Replace(valid, "v=19", "v=16", 1),
		"bad params":        strings.Replace(valid, "m=8192,t=1,p=1", "m=x,t=1,p=1", 1),
		"params trailing":   strings.Replace(valid, "p=1$", "p=1,k=2$", 1),
		"huge memory":       strings.Replace(valid, "m=8192", "m=99999999", 1),
		"zero time":         strings.Replace(valid, "t=1", "t=0", 1),
		"bad salt":          strings.Join([]string{"", parts[1], parts[2], parts[3], "!!!", parts[5]}, "$"),
		"short hash":        strings.Join([]string{"", parts[1], parts[2], parts[3], parts[4], "AAAA"}, "$"),
		"truncated bcrypt":  "$2a$10$abc",
	}

	for name, record := range records {
		t.Run(name, func(t *testing.T) {
			ok, err := h.Verify(context.Background(), "pw", record)
			assert.ErrorIs(t, err, common.ErrMalformedHash)
			assert.False(t, ok)
		})
	}
}

func TestPasswordHasher_LegacyBcrypt(t *testing.T) {
	legacy, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	h := newHasher(t, testParams, 1)

	ok, err := h.Verify(context.Background(), "password123", string(legacy))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify(context.Background(), "nope", string(legacy))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPasswordHasher_WaitHonoursContext(t *testing.T) {
	h := newHasher(t, testParams, 1)

	// occupy the only slot
	require.NoError(t, h.sem.Acquire(context.Background(), 1))
	defer h.sem.Release(1)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := h.Hash(ctx, "pw")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	_, err = h.Verify(ctx, "pw", "$argon2id$whatever")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPasswordHasher_BoundaryParamsRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		params Argon2Params
	}{
		{"minimum memory per thread", Argon2Params{Time: 1, Memory: 32, Threads: 4, SaltLen: 16, KeyLen: 32}},
		{"maximum time", Argon2Params{Time: MaxArgon2Time, Memory: 8, Threads: 1, SaltLen: 16, KeyLen: 32}},
		{"shortest salt and key", Argon2Params{Time: 1, Memory: 8, Threads: 1, SaltLen: MinArgon2SaltLen, KeyLen: MinArgon2KeyLen}},
		{"longest key", Argon2Params{Time: 1, Memory: 8, Threads: 1, SaltLen: 16, KeyLen: MaxArgon2KeyLen}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, tt.params.Validate())
			h := newHasher(t, tt.params, 1)

			record, err := h.Hash(context.Background(), "password123")
			require.NoError(t, err)

			ok, err := h.Verify(context.Background(), "password123", record)
			require.NoError(t, err)
			assert.True(t, ok)
		})
	}
}

func TestNewPasswordHasher_RejectsUnreadableParams(t *testing.T) {
	tests := []struct {
		name   string
		params Argon2Params
	}{
		{"time above maximum", Argon2Params{Time: MaxArgon2Time + 1, Memory: 8, Threads: 1, SaltLen: 16, KeyLen: 32}},
		{"zero time", Argon2Params{Time: 0, Memory: 8, Threads: 1, SaltLen: 16, KeyLen: 32}},
		{"zero threads", Argon2Params{Time: 1, Memory: 8, Threads: 0, SaltLen: 16, KeyLen: 32}},
		{"memory below 8 per thread", Argon2Params{Time: 1, Memory: 16, Threads: 4, SaltLen: 16, KeyLen: 32}},
		{"memory above maximum", Argon2Params{Time: 1, Memory: MaxArgon2Memory + 1, Threads: 1, SaltLen: 16, KeyLen: 32}},
		{"short salt", Argon2Params{Time: 1, Memory: 8, Threads: 1, SaltLen: MinArgon2SaltLen - 1, KeyLen: 32}},
		{"short key", Argon2Params{Time: 1, Memory: 8, Threads: 1, SaltLen: 16, KeyLen: MinArgon2KeyLen - 1}},
		{"long key", Argon2Params{Time: 1, Memory: 8, Threads: 1, SaltLen: 16, KeyLen: MaxArgon2KeyLen + 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.params.Validate(), ErrInvalidArgon2Params)

			h, err := NewPasswordHasher(tt.params, 1)
			assert.ErrorIs(t, err, ErrInvalidArgon2Params)
			assert.Nil(t, h)
		})
	}
}

func TestDefaultArgon2Params_Valid(t *testing.T) {
	assert.NoError(t, DefaultArgon2Params().Validate())
}
