package crypto

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrEmptyPassword возвращается при попытке захешировать пустой пароль
var ErrEmptyPassword = errors.New("password cannot be empty")

// PasswordHasher хеширует и проверяет пароли пользователей с помощью bcrypt
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher создает hasher с заданным cost.
// Cost вне допустимого для bcrypt диапазона заменяется на bcrypt.DefaultCost.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// Cost возвращает cost, с которым создаются новые хеши
func (h *PasswordHasher) Cost() int {
	return h.cost
}

// Hash возвращает bcrypt хеш пароля (соль генерируется bcrypt)
func (h *PasswordHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(hash), nil
}

// Verify сообщает, соответствует ли пароль хешу.
// Несовпадение и поврежденный хеш одинаково дают false.
func (h *PasswordHasher) Verify(password, hash string) bool {
	if hash == "" {
		return false
	}
	// bcrypt сравнивает за постоянное время
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
