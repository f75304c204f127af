package grpc

import "time"

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name,omitempty"`
	LastName  string    `json:"last_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type RegisterResponse struct {
	User *User `json:"user"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type ProfileRequest struct{}

type ProfileResponse struct {
	User *User `json:"user"`
}

// Credential carries Secret only in GetCredential responses.
type Credential struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	Site      string    `json:"site,omitempty"`
	Secret    string    `json:"secret,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type AddCredentialRequest struct {
	Label  string `json:"label"`
	Site   string `json:"site,omitempty"`
	Secret string `json:"secret"`
}

type AddCredentialResponse struct {
	Credential *Credential `json:"credential"`
}

type ListCredentialsRequest struct{}

type ListCredentialsResponse struct {
	Credentials []*Credential `json:"credentials"`
}

type GetCredentialRequest struct {
	ID string `json:"id"`
}

type GetCredentialResponse struct {
	Credential *Credential `json:"credential"`
}

type UpdateCredentialRequest struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Site   string `json:"site,omitempty"`
	Secret string `json:"secret"`
}

type UpdateCredentialResponse struct {
	Credential *Credential `json:"credential"`
}

type DeleteCredentialRequest struct {
	ID string `json:"id"`
}

type DeleteCredentialResponse struct{}
