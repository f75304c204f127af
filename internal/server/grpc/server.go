// Package grpc exposes the vault as the gophvault.v1.VaultService gRPC
// service. Messages are plain Go structs carried by a JSON codec.
package grpc

import (
	"context"
	"errors"
	"net"

	"github.com/dmitrijs2005/gophvault/internal/logging"
	"github.com/dmitrijs2005/gophvault/internal/server/metrics"
	"github.com/dmitrijs2005/gophvault/internal/server/models"
	"github.com/dmitrijs2005/gophvault/internal/server/services"
	"google.golang.org/grpc"
)

// Vault is the subset of services.Vault the service calls.
type Vault interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*services.Session, error)
	Profile(ctx context.Context, token string) (*models.User, error)
	AddCredential(ctx context.Context, token string, in services.CredentialInput) (*models.Credential, error)
	ListCredentials(ctx context.Context, token string) ([]*models.Credential, error)
	GetCredential(ctx context.Context, token, id string) (*services.DecryptedCredential, error)
	UpdateCredential(ctx context.Context, token, id string, in services.CredentialInput) (*models.Credential, error)
	DeleteCredential(ctx context.Context, token, id string) error
}

type GRPCServer struct {
	address string
	vault   Vault
	logger  logging.Logger
	metrics *metrics.Metrics
}

var _ VaultServiceServer = (*GRPCServer)(nil)

// NewGRPCServer builds the service. m may be nil.
func NewGRPCServer(address string, l logging.Logger, v Vault, m *metrics.Metrics) *GRPCServer {
	if l == nil {
		l = logging.Nop{}
	}
	return &GRPCServer{
		address: address,
		vault:   v,
		logger:  l.With("module", "grpc_server"),
		metrics: m,
	}
}

// newServer creates the grpc.Server with the interceptor chain and the
// service registered.
func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		s.observeInterceptor,
		s.recoveryInterceptor,
		s.accessTokenInterceptor,
	))
	RegisterVaultServiceServer(srv, s)
	return srv
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is done, then stops
// gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	<-stopped
	return nil
}
