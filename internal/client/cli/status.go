package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/pronostico/internal/client/auth"
)

func (c *Cli) runStatus(ctx context.Context) error {
	c.io.Println("=== Authentication Status ===")
	c.io.Println()

	authData, err := c.auth.Status(ctx)
	if err != nil {
		if errors.Is(err, auth.ErrNotAuthenticated) {
			c.io.Println("Status: Not authenticated")
			c.io.Println()
			c.io.Println("Run 'pronostico login' to authenticate.")
			return nil
		}
		return fmt.Errorf("failed to check authentication: %w", err)
	}

	expiresAt := time.Unix(authData.ExpiresAt, 0)
	remaining := expiresAt.Sub(c.now())

	c.io.Println("Status: Authenticated")
	c.io.Printf("Username: %s\n", authData.Username)
	c.io.Printf("Server: %s\n", authData.ServerURL)
	c.io.Printf("Token expires: %s\n", expiresAt.UTC().Format(time.RFC3339))

	if remaining > 0 {
		c.io.Printf("Time remaining: %s\n", remaining.Round(time.Second))
	} else {
		c.io.Println("⚠️  Token has expired. Please login again.")
	}

	return nil
}
