package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestNewPasswordHasher_Cost(t *testing.T) {
	tests := []struct {
		name string
		cost int
		want int
	}{
		{name: "min cost", cost: bcrypt.MinCost, want: bcrypt.MinCost},
		{name: "explicit cost", cost: 12, want: 12},
		{name: "zero falls back", cost: 0, want: bcrypt.DefaultCost},
		{name: "too high falls back", cost: bcrypt.MaxCost + 1, want: bcrypt.DefaultCost},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewPasswordHasher(tt.cost).Cost())
		})
	}
}

func TestPasswordHasher_Hash(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	hash, err := h.Hash("pw1234")
	require.NoError(t, err)
	assert.NotEqual(t, "pw1234", hash, "hash must never be the plaintext")
	assert.True(t, strings.HasPrefix(hash, "$2a$"))

	// Соль случайная: два хеша одного пароля различаются
	other, err := h.Hash("pw1234")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other)

	_, err = h.Hash("")
	assert.ErrorIs(t, err, ErrEmptyPassword)
}

func TestPasswordHasher_Verify(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	hash, err := h.Hash("correct horse")
	require.NoError(t, err)

	tests := []struct {
		name     string
		password string
		hash     string
		want     bool
	}{
		{name: "matching password", password: "correct horse", hash: hash, want: true},
		{name: "wrong password", password: "battery staple", hash: hash, want: false},
		{name: "empty password", password: "", hash: hash, want: false},
		{name: "malformed hash", password: "correct horse", hash: "not-a-bcrypt-hash", want: false},
		{name: "empty hash", password: "correct horse", hash: "", want: false},
		{name: "plaintext stored as hash", password: "correct horse", hash: "correct horse", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.Equal(t, tt.want, h.Verify(tt.password, tt.hash))
			})
		})
	}
}

func TestGenerateSecret(t *testing.T) {
	s1, err := GenerateSecret(SecretSize)
	require.NoError(t, err)
	s2, err := GenerateSecret(SecretSize)
	require.NoError(t, err)

	assert.NotEqual(t, s1, s2)
	assert.Len(t, s1, 43, "32 bytes encode to 43 base64 chars without padding")

	_, err = GenerateSecret(0)
	assert.Error(t, err)
}
