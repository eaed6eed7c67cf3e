package cli

import (
	"context"
	"fmt"
)

// RunLogout ends the session
func (c *Cli) RunLogout(ctx context.Context) error {
	c.io.Println("=== Logout ===")

	if err := c.store.Logout(ctx); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}

	c.io.Println("✓ Logout successful!")
	c.io.Println("Your local session has been deleted.")

	return nil
}
