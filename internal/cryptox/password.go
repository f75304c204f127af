package cryptox

import (
	"context"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/dmitrijs2005/gophvault/internal/common"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// Argon2Params are the argon2id cost parameters used for new hashes.
// Memory is in KiB.
type Argon2Params struct {
	Time    uint32
	Memory  uint32
	Threads uint8
	SaltLen uint32
	KeyLen  uint32
}

// DefaultArgon2Params returns the production cost parameters.
func DefaultArgon2Params() Argon2Params {
	return Argon2Params{
		Time:    3,
		Memory:  64 * 1024,
		Threads: 4,
		SaltLen: 16,
		KeyLen:  32,
	}
}

// Bounds shared by new hashes and records read back from storage.
const (
	MaxArgon2Memory  = 1 << 20
	MaxArgon2Time    = 16
	MinArgon2SaltLen = 8
	MinArgon2KeyLen  = 16
	MaxArgon2KeyLen  = 128
)

// ErrInvalidArgon2Params is returned by Argon2Params.Validate.
var ErrInvalidArgon2Params = errors.New("invalid argon2 parameters")

// Validate reports whether records hashed with p can be verified again.
func (p Argon2Params) Validate() error {
	if reason := checkCost(p.Time, p.Memory, p.Threads); reason != "" {
		return fmt.Errorf("%w: %s", ErrInvalidArgon2Params, reason)
	}
	if p.SaltLen < MinArgon2SaltLen {
		return fmt.Errorf("%w: salt length must be at least %d", ErrInvalidArgon2Params, MinArgon2SaltLen)
	}
	if p.KeyLen < MinArgon2KeyLen || p.KeyLen > MaxArgon2KeyLen {
		return fmt.Errorf("%w: key length must be between %d and %d", ErrInvalidArgon2Params, MinArgon2KeyLen, MaxArgon2KeyLen)
	}
	return nil
}

func checkCost(time, memory uint32, threads uint8) string {
	switch {
	case threads == 0:
		return "threads must be positive"
	case time == 0 || time > MaxArgon2Time:
		return fmt.Sprintf("time must be between 1 and %d", MaxArgon2Time)
	case memory < 8*uint32(threads) || memory > MaxArgon2Memory:
		return fmt.Sprintf("memory must be between 8*threads and %d KiB", MaxArgon2Memory)
	}
	return ""
}

const argon2idPrefix = "$argon2id$"

// PasswordHasher hashes and verifies login passwords.
//
// New records are argon2id in PHC string form:
//
//	$argon2id$v=19$m=65536,t=3,p=4$<salt>$<hash>
//
// with unpadded standard base64 for salt and hash. bcrypt records are
// still accepted by Verify.
//
// At most maxConcurrent hash computations run at once; further callers
// wait (honouring ctx) instead of piling up memory-hard work.
type PasswordHasher struct {
	params Argon2Params
	sem    *semaphore.Weighted
}

// NewPasswordHasher returns a hasher. maxConcurrent <= 0 means GOMAXPROCS.
// params that Verify could not read back are rejected.
func NewPasswordHasher(params Argon2Params, maxConcurrent int) (*PasswordHasher, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if maxConcurrent <= 0 {
		maxConcurrent = runtime.GOMAXPROCS(0)
	}
	return &PasswordHasher{
		params: params,
		sem:    semaphore.NewWeighted(int64(maxConcurrent)),
	}, nil
}

// Hash derives a new record for password with a fresh random salt, so two
// calls with the same password never return the same record.
func (h *PasswordHasher) Hash(ctx context.Context, password string) (string, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer h.sem.Release(1)

	p := h.params
	salt := common.GenerateRandByteArray(int(p.SaltLen))
	key := argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, p.KeyLen)

	return fmt.Sprintf("%sv=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2idPrefix, argon2.Version, p.Memory, p.Time, p.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether password matches record. A wrong password is
// (false, nil); only an unreadable record returns common.ErrMalformedHash.
func (h *PasswordHasher) Verify(ctx context.Context, password, record string) (bool, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return false, err
	}
	defer h.sem.Release(1)

	if isBcrypt(record) {
		return verifyBcrypt(password, record)
	}

	r, err := parseArgon2Record(record)
	if err != nil {
		return false, err
	}

	candidate := argon2.IDKey([]byte(password), r.salt, r.time, r.memory, r.threads, uint32(len(r.key)))
	return subtle.ConstantTimeCompare(candidate, r.key) == 1, nil
}

type argon2Record struct {
	time    uint32
	memory  uint32
	threads uint8
	salt    []byte
	key     []byte
}

func malformed(reason string) error {
	return fmt.Errorf("%w: %s", common.ErrMalformedHash, reason)
}

func parseArgon2Record(record string) (*argon2Record, error) {
	if !strings.HasPrefix(record, argon2idPrefix) {
		return nil, malformed("unknown scheme")
	}

	// "", "argon2id", "v=19", "m=..,t=..,p=..", salt, hash
	parts := strings.Split(record, "$")
	if len(parts) != 6 {
		return nil, malformed("wrong number of fields")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return nil, malformed("unsupported version")
	}

	r := &argon2Record{}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &r.memory, &r.time, &r.threads); err != nil {
		return nil, malformed("bad parameters")
	}
	if fmt.Sprintf("m=%d,t=%d,p=%d", r.memory, r.time, r.threads) != parts[3] {
		return nil, malformed("bad parameters")
	}
	if checkCost(r.time, r.memory, r.threads) != "" {
		return nil, malformed("parameters out of range")
	}

	var err error
	if r.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil || len(r.salt) < MinArgon2SaltLen {
		return nil, malformed("bad salt")
	}
	if r.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil ||
		len(r.key) < MinArgon2KeyLen || len(r.key) > MaxArgon2KeyLen {
		return nil, malformed("bad hash")
	}

	return r, nil
}

func isBcrypt(record string) bool {
	return strings.HasPrefix(record, "$2a$") ||
		strings.HasPrefix(record, "$2b$") ||
		strings.HasPrefix(record, "$2y$")
}

func verifyBcrypt(password, record string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(record), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword),
		errors.Is(err, bcrypt.ErrPasswordTooLong):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", common.ErrMalformedHash, err)
	}
}
