// Package session управляет bearer-токеном пользователя и его claims.
//
// Claims декодируются без проверки подписи и служат только для
// персонализации интерфейса: решение об авторизации каждого запроса
// принимает бэкенд, локально декодированная роль таким решением не
// является.
package session

import (
	"context"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mmeshcher/storefront-client/internal/model"
	"github.com/mmeshcher/storefront-client/internal/storage"
)

// Claims содержит клиентские claims токена.
type Claims struct {
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	jwt.RegisteredClaims
}

type authClient interface {
	Login(ctx context.Context, email, password string) (string, error)
}

// Manager владеет сохранённым токеном и отвечает на вопросы о текущем
// пользователе.
type Manager struct {
	store storage.Storage
	auth  authClient
}

// NewManager создаёт менеджер сессии поверх хранилища и клиента
// аутентификации.
func NewManager(store storage.Storage, auth authClient) *Manager {
	return &Manager{
		store: store,
		auth:  auth,
	}
}

// DecodeCredential читает сохранённый токен и возвращает его claims.
// Отсутствующий или некорректный токен даёт nil: повреждённый токен
// неотличим от отсутствующего.
func (m *Manager) DecodeCredential() *Claims {
	token, ok := m.store.Get(storage.KeyToken)
	if !ok || token == "" {
		return nil
	}

	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}
	return claims
}

// IsAuthenticated сообщает, есть ли действующий токен. Срок действия
// сверяется с часами в момент вызова.
func (m *Manager) IsAuthenticated() bool {
	claims := m.DecodeCredential()
	if claims == nil || claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Time.After(time.Now())
}

// CurrentIdentity возвращает проекцию claims текущего пользователя
// или nil, если токен отсутствует либо не читается.
func (m *Manager) CurrentIdentity() *model.Identity {
	claims := m.DecodeCredential()
	if claims == nil {
		return nil
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil
	}

	return &model.Identity{
		ID:      id,
		Name:    claims.GivenName,
		Surname: claims.FamilyName,
		Role:    model.Role(claims.Role),
	}
}

// Login выполняет вход и при успехе сохраняет токен. Любая ошибка
// обмена с бэкендом трактуется как неудачный вход, ошибка наружу не
// выходит.
func (m *Manager) Login(ctx context.Context, email, password string) bool {
	token, err := m.auth.Login(ctx, email, password)
	if err != nil || token == "" {
		return false
	}

	if err := m.store.Set(storage.KeyToken, token); err != nil {
		return false
	}
	return true
}

// Logout удаляет сохранённый токен.
func (m *Manager) Logout() {
	m.store.Remove(storage.KeyToken)
}
