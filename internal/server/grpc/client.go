package grpc

import (
	"context"

	"github.com/dmitrijs2005/gophvault/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// Client is a typed VaultService client. Calls on protected methods must
// carry a token, see WithAccessToken.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// WithAccessToken attaches token to outgoing calls made with ctx.
func WithAccessToken(ctx context.Context, token string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, common.AccessTokenHeaderName, token)
}

func invoke[Req, Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in *Req, opts ...grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, fullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingRequest, PingResponse](ctx, c.cc, "Ping", in, opts...)
}

func (c *Client) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error) {
	return invoke[RegisterRequest, RegisterResponse](ctx, c.cc, "Register", in, opts...)
}

func (c *Client) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginRequest, LoginResponse](ctx, c.cc, "Login", in, opts...)
}

func (c *Client) Profile(ctx context.Context, in *ProfileRequest, opts ...grpc.CallOption) (*ProfileResponse, error) {
	return invoke[ProfileRequest, ProfileResponse](ctx, c.cc, "Profile", in, opts...)
}

func (c *Client) AddCredential(ctx context.Context, in *AddCredentialRequest, opts ...grpc.CallOption) (*AddCredentialResponse, error) {
	return invoke[AddCredentialRequest, AddCredentialResponse](ctx, c.cc, "AddCredential", in, opts...)
}

func (c *Client) ListCredentials(ctx context.Context, in *ListCredentialsRequest, opts ...grpc.CallOption) (*ListCredentialsResponse, error) {
	return invoke[ListCredentialsRequest, ListCredentialsResponse](ctx, c.cc, "ListCredentials", in, opts...)
}

func (c *Client) GetCredential(ctx context.Context, in *GetCredentialRequest, opts ...grpc.CallOption) (*GetCredentialResponse, error) {
	return invoke[GetCredentialRequest, GetCredentialResponse](ctx, c.cc, "GetCredential", in, opts...)
}

func (c *Client) UpdateCredential(ctx context.Context, in *UpdateCredentialRequest, opts ...grpc.CallOption) (*UpdateCredentialResponse, error) {
	return invoke[UpdateCredentialRequest, UpdateCredentialResponse](ctx, c.cc, "UpdateCredential", in, opts...)
}

func (c *Client) DeleteCredential(ctx context.Context, in *DeleteCredentialRequest, opts ...grpc.CallOption) (*DeleteCredentialResponse, error) {
	return invoke[DeleteCredentialRequest, DeleteCredentialResponse](ctx, c.cc, "DeleteCredential", in, opts...)
}
