package common

import (
	"encoding/base64"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomStrings(t *testing.T) {
	tests := []struct {
		name    string
		make    func(int) (string, error)
		decode  func(string) ([]byte, error)
		size    int
		wantLen int
	}{
		{"hex session id", MakeRandHexString, hex.DecodeString, 16, 32},
		{"hex empty", MakeRandHexString, hex.DecodeString, 0, 0},
		{"master key", MakeRandKeyString, base64.StdEncoding.DecodeString, MasterKeySize, 44},
		{"key empty", MakeRandKeyString, base64.StdEncoding.DecodeString, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := tt.make(tt.size)
			require.NoError(t, err)
			assert.Len(t, s, tt.wantLen)

			raw, err := tt.decode(s)
			require.NoError(t, err)
			assert.Len(t, raw, tt.size)

			if tt.size > 0 {
				other, err := tt.make(tt.size)
				require.NoError(t, err)
				assert.NotEqual(t, s, other)
			}
		})
	}
}

func TestGenerateRandByteArray(t *testing.T) {
	a := GenerateRandByteArray(MasterKeySize)
	b := GenerateRandByteArray(MasterKeySize)

	require.Len(t, a, MasterKeySize)
	require.Len(t, b, MasterKeySize)
	assert.NotEqual(t, a, b)
	assert.Empty(t, GenerateRandByteArray(0))
}

func TestWipeByteArray(t *testing.T) {
	key := GenerateRandByteArray(MasterKeySize)
	WipeByteArray(key)
	assert.Equal(t, make([]byte, MasterKeySize), key)

	assert.NotPanics(t, func() { WipeByteArray(nil) })
}
