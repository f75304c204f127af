package models

import "time"

// Credential is a stored secret. Label and Site are plaintext metadata;
// the secret itself is only ever held as ciphertext.
type Credential struct {
	ID               string
	OwnerID          string
	Label            string
	Site             string
	SecretCiphertext []byte
	SecretNonce      []byte
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
