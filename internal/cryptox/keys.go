package cryptox

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophvault/internal/common"
)

var keyEncodings = []*base64.Encoding{
	base64.StdEncoding,
	base64.URLEncoding,
	base64.RawStdEncoding,
	base64.RawURLEncoding,
}

// DecodeMasterKey decodes a base64 master key (standard or URL-safe
// alphabet, padded or not) and checks it is 32 bytes long. Fernet keys
// generated for earlier deployments decode to 32 bytes and are accepted.
func DecodeMasterKey(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("master key is empty: %w", common.ErrInvalidKeySize)
	}

	for _, enc := range keyEncodings {
		b, err := enc.DecodeString(s)
		if err != nil {
			continue
		}
		if len(b) != common.MasterKeySize {
			return nil, fmt.Errorf("master key decodes to %d bytes: %w", len(b), common.ErrInvalidKeySize)
		}
		return b, nil
	}

	return nil, fmt.Errorf("master key is not valid base64: %w", common.ErrInvalidKeySize)
}
