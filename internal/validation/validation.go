// Package validation содержит проверки пользовательского ввода,
// выполняемые до обращения к бэкенду.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/mmeshcher/storefront-client/internal/model"
)

// Ошибки проверки форм.
var (
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrTermsNotAccepted = errors.New("terms must be accepted")
)

// NonEmpty сообщает, остаётся ли строка непустой после обрезки пробелов.
func NonEmpty(s string) bool {
	return strings.TrimSpace(s) != ""
}

// MissingAddressFields возвращает названия обязательных полей адреса,
// оставшихся пустыми.
func MissingAddressFields(addr model.UserAddress) []string {
	var missing []string

	fields := []struct {
		name  string
		value string
	}{
		{"label", addr.Label},
		{"street", addr.Street},
		{"city", addr.City},
		{"postalCode", addr.PostalCode},
		{"country", addr.Country},
		{"phoneAreaCode", addr.PhoneAreaCode},
		{"phoneNumber", addr.PhoneNumber},
	}

	for _, f := range fields {
		if !NonEmpty(f.value) {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// ValidateAddress проверяет обязательные поля адреса и цифровой состав
// телефонных полей.
func ValidateAddress(addr model.UserAddress) error {
	if missing := MissingAddressFields(addr); len(missing) > 0 {
		return fmt.Errorf("required address fields missing: %s", strings.Join(missing, ", "))
	}
	if !digitsOnly(addr.PhoneAreaCode) || !digitsOnly(addr.PhoneNumber) {
		return errors.New("phone fields must contain digits only")
	}
	return nil
}

// ValidateRegistration проверяет форму регистрации: совпадение паролей
// и согласие с условиями.
func ValidateRegistration(password, confirmPassword string, termsAccepted bool) error {
	if password != confirmPassword {
		return ErrPasswordMismatch
	}
	if !termsAccepted {
		return ErrTermsNotAccepted
	}
	return nil
}

func digitsOnly(s string) bool {
	for _, r := range strings.TrimSpace(s) {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
