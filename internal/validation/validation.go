package validation

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/iudanet/pronostico/pkg/api"
)

const (
	// MaxUsernameLen максимальная длина username в символах
	MaxUsernameLen = 150
	// MaxPasswordBytes ограничение bcrypt на длину пароля в байтах
	MaxPasswordBytes = 72
	// MaxFullNameLen максимальная длина отображаемого имени
	MaxFullNameLen = 200
)

var (
	usernameRules = []validation.Rule{
		validation.Required,
		validation.Length(0, MaxUsernameLen),
	}
	emailRules = []validation.Rule{
		validation.Required,
		is.Email,
	}
	passwordRules = []validation.Rule{
		validation.Required,
		validation.By(maxBytes(MaxPasswordBytes)),
	}
	fullNameRules = []validation.Rule{
		validation.Length(0, MaxFullNameLen),
	}
)

// ValidateUsername проверяет, что username не пустой и не слишком длинный
func ValidateUsername(username string) error {
	return validation.Validate(username, usernameRules...)
}

// ValidatePassword проверяет, что пароль не пустой и помещается в bcrypt
func ValidatePassword(password string) error {
	return validation.Validate(password, passwordRules...)
}

// ValidateCreateUser проверяет данные регистрации
func ValidateCreateUser(r api.CreateUserRequest) error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, usernameRules...),
		validation.Field(&r.Email, emailRules...),
		validation.Field(&r.FullName, fullNameRules...),
		validation.Field(&r.Password, passwordRules...),
	)
}

// ValidateUpdateUser проверяет только поля, присутствующие в частичном обновлении.
// full_name может быть null (очищается), email и password - нет.
func ValidateUpdateUser(r api.UpdateUserRequest) error {
	errs := validation.Errors{}

	if r.Email.Set {
		if r.Email.Null {
			errs["email"] = errors.New("cannot be null")
		} else {
			errs["email"] = validation.Validate(r.Email.Value, emailRules...)
		}
	}

	if r.Password.Set {
		if r.Password.Null {
			errs["password"] = errors.New("cannot be null")
		} else {
			errs["password"] = validation.Validate(r.Password.Value, passwordRules...)
		}
	}

	if r.FullName.Present() {
		errs["full_name"] = validation.Validate(r.FullName.Value, fullNameRules...)
	}

	return errs.Filter()
}

// ValidateTokenRequest проверяет учетные данные для входа
func ValidateTokenRequest(r api.TokenRequest) error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

func maxBytes(limit int) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if len(s) > limit {
			return fmt.Errorf("must be at most %d bytes long", limit)
		}
		return nil
	}
}
