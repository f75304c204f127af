package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// MasterKeySize is the length in bytes of the credential encryption key.
const MasterKeySize = 32

// TokenTypeBearer is the token type reported to clients after login.
const TokenTypeBearer = "bearer"
