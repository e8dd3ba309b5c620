package cli

import (
	"context"
	"fmt"

	"github.com/iudanet/pronostico/internal/client/auth"
)

func (c *Cli) runRegister(ctx context.Context) error {
	c.io.Println("=== Registration ===")
	c.io.Println()

	username, err := c.io.ReadInput("Username: ")
	if err != nil {
		return fmt.Errorf("failed to read username: %w", err)
	}

	email, err := c.io.ReadInput("Email: ")
	if err != nil {
		return fmt.Errorf("failed to read email: %w", err)
	}

	fullName, err := c.io.ReadInput("Full name (optional): ")
	if err != nil {
		return fmt.Errorf("failed to read full name: %w", err)
	}

	password, err := c.io.ReadPassword("Password (min 6 chars): ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	confirmPassword, err := c.io.ReadPassword("Confirm password: ")
	if err != nil {
		return fmt.Errorf("failed to read confirmation: %w", err)
	}

	if password != confirmPassword {
		return fmt.Errorf("passwords do not match")
	}

	c.io.Println()
	c.io.Println("Registering user...")

	user, err := c.auth.Register(ctx, auth.RegisterInput{
		Username: username,
		Email:    email,
		FullName: fullName,
		Password: password,
	})
	if err != nil {
		return err
	}

	c.io.Println()
	c.io.Println("✓ Registration successful!")
	c.io.Printf("User ID: %d\n", user.ID)
	c.io.Printf("Username: %s\n", user.Username)
	c.io.Println()
	c.io.Println("Please run 'pronostico login' to start using the service.")

	return nil
}
