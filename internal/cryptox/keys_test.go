package cryptox

import (
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeMasterKey(t *testing.T) {
	raw := bytes.Repeat([]byte{0xfb}, 32)

	for _, enc := range keyEncodings {
		got, err := DecodeMasterKey(enc.EncodeToString(raw))
		require.NoError(t, err)
		assert.Equal(t, raw, got)
	}
}

func TestDecodeMasterKey_Errors(t *testing.T) {
	tests := map[string]string{
		"empty":     "   ",
		"not b64":   "this is not base64!!",
		"too short": base64.StdEncoding.EncodeToString(make([]byte, 16)),
		"too long":  base64.StdEncoding.EncodeToString(make([]byte, 48)),
	}

	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeMasterKey(in)
			assert.ErrorIs(t, err, common.ErrInvalidKeySize)
		})
	}
}
