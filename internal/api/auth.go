package api

import (
	"context"
	"net/url"
	"strings"
)

// RegisterRequest содержит поля формы регистрации нового пользователя.
type RegisterRequest struct {
	Name        string
	Surname     string
	Email       string
	Password    string
	PhoneNumber string
	DateOfBirth string
}

// Login выполняет вход по почте и паролю. Возвращает токен из конверта
// ответа; пустая строка означает неудачный вход без токена.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	form := url.Values{}
	form.Set("email", email)
	form.Set("password", password)

	env, err := c.postForm(ctx, "/auth/login", form)
	if err != nil {
		return "", err
	}
	if !env.Success {
		return "", nil
	}

	token, err := decodeFirst[string](env)
	if err != nil {
		return "", nil
	}
	return strings.TrimSpace(token), nil
}

// Register регистрирует нового пользователя и возвращает признак успеха.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (bool, error) {
	form := url.Values{}
	form.Set("name", req.Name)
	form.Set("surname", req.Surname)
	form.Set("email", req.Email)
	form.Set("password", req.Password)
	form.Set("phoneNumber", req.PhoneNumber)
	form.Set("dateOfBirth", req.DateOfBirth)

	env, err := c.postForm(ctx, "/auth/register", form)
	if err != nil {
		return false, err
	}
	return env.Success, nil
}
