package cli

import (
	"context"

	"github.com/iudanet/sessionkeeper/internal/client/iocli"
	"github.com/iudanet/sessionkeeper/internal/client/session"
)

//go:generate moq -out session_store_mock.go . SessionStore

// SessionStore is the part of session.Store the commands use
type SessionStore interface {
	SetTokens(ctx context.Context, accessToken, refreshToken string) error
	FetchProfile(ctx context.Context)
	Logout(ctx context.Context) error
	Session() session.Session
	Profile() session.Profile
}

// Cli runs client commands against an already loaded session store
type Cli struct {
	io    iocli.IO
	store SessionStore
}

func New(io iocli.IO, store SessionStore) *Cli {
	return &Cli{
		io:    io,
		store: store,
	}
}

func (c *Cli) printNotAuthenticated() {
	c.io.Println("Status: Not authenticated")
	c.io.Println("Run 'sessionkeeper tokens set' to store issued tokens.")
}
