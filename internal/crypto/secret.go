package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// SecretSize - размер сгенерированного секрета в байтах
const SecretSize = 32

// GenerateSecret создает криптографически случайный секрет
// и возвращает его в base64 (URL-safe, без паддинга)
func GenerateSecret(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("secret size must be positive")
	}

	secret := make([]byte, size)
	if _, err := rand.Read(secret); err != nil {
		return "", fmt.Errorf("failed to generate secret: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(secret), nil
}
