package cli

import (
	"context"
)

// RunStatus prints the restored session state
func (c *Cli) RunStatus(ctx context.Context) error {
	c.io.Println("=== Session Status ===")
	c.io.Println()

	s := c.store.Session()
	if !s.Authenticated() {
		c.printNotAuthenticated()
		return nil
	}

	c.io.Println("Status: Authenticated")
	if s.Identified() {
		c.io.Printf("Client ID: %v\n", s.ClientID)
	} else {
		c.io.Println("Client ID: unknown (access token could not be decoded)")
	}

	if s.RefreshToken != nil {
		c.io.Println("Refresh token: present")
	} else {
		c.io.Println("Refresh token: absent")
	}

	return nil
}
