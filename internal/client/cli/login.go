package cli

import (
	"context"
	"fmt"
	"time"
)

func (c *Cli) runLogin(ctx context.Context) error {
	c.io.Println("=== Login ===")
	c.io.Println()

	username, err := c.io.ReadInput("Username: ")
	if err != nil {
		return fmt.Errorf("failed to read username: %w", err)
	}

	password, err := c.io.ReadPassword("Password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	c.io.Println()
	c.io.Println("Authenticating...")

	authData, err := c.auth.Login(ctx, username, password)
	if err != nil {
		return err
	}

	expiresAt := time.Unix(authData.ExpiresAt, 0)

	c.io.Println()
	c.io.Println("✓ Login successful!")
	c.io.Printf("Username: %s\n", authData.Username)
	c.io.Printf("Access token expires in: %s\n", expiresAt.Sub(c.now()).Round(time.Second))

	return nil
}
