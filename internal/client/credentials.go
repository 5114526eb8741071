package client

import "context"

// CredentialProvider supplies the opaque bearer credential attached to every
// request. Token refresh is the provider's concern; the client only surfaces
// a 401 as shop.ErrUnauthorized and never retries.
type CredentialProvider interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a CredentialProvider for a fixed credential.
type StaticToken string

func (t StaticToken) Token(ctx context.Context) (string, error) {
	return string(t), nil
}
