package models

import "time"

// User представляет пользователя в системе
type User struct {
	CreatedAt    time.Time `json:"created_at"`    // время создания
	UpdatedAt    time.Time `json:"updated_at"`    // время последнего обновления
	Username     string    `json:"username"`      // уникальный username
	Email        string    `json:"email"`         // уникальный email
	FullName     string    `json:"full_name"`     // отображаемое имя
	PasswordHash string    `json:"-"`             // bcrypt хеш пароля, никогда не сериализуется
	ID           int64     `json:"id"`            // первичный ключ
	Active       bool      `json:"active"`        // false после soft delete
}

// IsActive сообщает, что аккаунт не деактивирован
func (u *User) IsActive() bool {
	return u != nil && u.Active
}

// Clone возвращает поверхностную копию (снимок до изменения)
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

// RevokedToken представляет отозванный access token
type RevokedToken struct {
	RevokedAt time.Time `json:"revoked_at"` // время отзыва
	Token     string    `json:"token"`      // строка токена целиком
	ID        int64     `json:"id"`
}
