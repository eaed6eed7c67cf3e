package cli

import (
	"context"

	"github.com/iudanet/sessionkeeper/internal/client/session"
)

// RunProfile fetches and prints the profile of the authenticated user
func (c *Cli) RunProfile(ctx context.Context) error {
	c.io.Println("=== Profile ===")

	if !c.store.Session().Authenticated() {
		c.printNotAuthenticated()
		return nil
	}

	c.store.FetchProfile(ctx)

	p := c.store.Profile()
	if p == (session.Profile{}) {
		c.io.Println("Profile unavailable, see log for details")
		return nil
	}

	c.io.Printf("Nickname: %s\n", p.Nickname)
	c.io.Printf("Email:    %s\n", p.Email)
	if p.Image != "" {
		c.io.Printf("Image:    %s\n", p.Image)
	}

	return nil
}
