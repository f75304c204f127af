package grpc

import (
	"context"

	"github.com/dmitrijs2005/gophvault/internal/server/models"
	"github.com/dmitrijs2005/gophvault/internal/server/services"
)

func newUser(u *models.User) *User {
	return &User{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		CreatedAt: u.CreatedAt,
	}
}

func newCredential(c *models.Credential) *Credential {
	return &Credential{
		ID:        c.ID,
		Label:     c.Label,
		Site:      c.Site,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func (s *GRPCServer) Ping(ctx context.Context, req *PingRequest) (*PingResponse, error) {
	return &PingResponse{Status: "OK"}, nil
}

func (s *GRPCServer) Register(ctx context.Context, req *RegisterRequest) (*RegisterResponse, error) {
	user, err := s.vault.Register(ctx, services.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &RegisterResponse{User: newUser(user)}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	session, err := s.vault.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &LoginResponse{
		AccessToken: session.AccessToken,
		TokenType:   session.TokenType,
		ExpiresAt:   session.ExpiresAt,
	}, nil
}

func (s *GRPCServer) Profile(ctx context.Context, req *ProfileRequest) (*ProfileResponse, error) {
	user, err := s.vault.Profile(ctx, accessToken(ctx))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &ProfileResponse{User: newUser(user)}, nil
}

func (s *GRPCServer) AddCredential(ctx context.Context, req *AddCredentialRequest) (*AddCredentialResponse, error) {
	c, err := s.vault.AddCredential(ctx, accessToken(ctx), services.CredentialInput{
		Label:  req.Label,
		Site:   req.Site,
		Secret: req.Secret,
	})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &AddCredentialResponse{Credential: newCredential(c)}, nil
}

func (s *GRPCServer) ListCredentials(ctx context.Context, req *ListCredentialsRequest) (*ListCredentialsResponse, error) {
	items, err := s.vault.ListCredentials(ctx, accessToken(ctx))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	out := make([]*Credential, 0, len(items))
	for _, c := range items {
		out = append(out, newCredential(c))
	}
	return &ListCredentialsResponse{Credentials: out}, nil
}

func (s *GRPCServer) GetCredential(ctx context.Context, req *GetCredentialRequest) (*GetCredentialResponse, error) {
	c, err := s.vault.GetCredential(ctx, accessToken(ctx), req.ID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &GetCredentialResponse{Credential: &Credential{
		ID:        c.ID,
		Label:     c.Label,
		Site:      c.Site,
		Secret:    c.Secret,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}}, nil
}

func (s *GRPCServer) UpdateCredential(ctx context.Context, req *UpdateCredentialRequest) (*UpdateCredentialResponse, error) {
	c, err := s.vault.UpdateCredential(ctx, accessToken(ctx), req.ID, services.CredentialInput{
		Label:  req.Label,
		Site:   req.Site,
		Secret: req.Secret,
	})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &UpdateCredentialResponse{Credential: newCredential(c)}, nil
}

func (s *GRPCServer) DeleteCredential(ctx context.Context, req *DeleteCredentialRequest) (*DeleteCredentialResponse, error) {
	if err := s.vault.DeleteCredential(ctx, accessToken(ctx), req.ID); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &DeleteCredentialResponse{}, nil
}
