package cli

import (
	"context"
	"fmt"
)

// RunSetTokens stores an already issued token pair.
// Tokens missing from args are prompted for.
func (c *Cli) RunSetTokens(ctx context.Context, args []string) error {
	if len(args) > 2 {
		return fmt.Errorf("expected at most 2 arguments (ACCESS REFRESH), got %d", len(args))
	}

	c.io.Println("=== Set Tokens ===")

	accessToken, err := c.argOrSecret(args, 0, "Access token: ")
	if err != nil {
		return fmt.Errorf("failed to read access token: %w", err)
	}
	refreshToken, err := c.argOrSecret(args, 1, "Refresh token: ")
	if err != nil {
		return fmt.Errorf("failed to read refresh token: %w", err)
	}

	if err := c.store.SetTokens(ctx, accessToken, refreshToken); err != nil {
		return fmt.Errorf("failed to save tokens: %w", err)
	}

	c.io.Println("✓ Tokens saved")

	s := c.store.Session()
	if !s.Identified() {
		c.io.Println("⚠ Access token could not be decoded, client id is unknown")
		return nil
	}
	c.io.Printf("Client ID: %v\n", s.ClientID)

	return nil
}

func (c *Cli) argOrSecret(args []string, i int, prompt string) (string, error) {
	if i < len(args) {
		return args[i], nil
	}
	return c.io.ReadSecret(prompt)
}
