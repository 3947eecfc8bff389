package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/mmeshcher/storefront-client/internal/prompts"
	"github.com/mmeshcher/storefront-client/internal/storage"
)

// faultBodyLimit ограничивает объём тела ошибки, читаемого перехватчиком.
const faultBodyLimit = 64 * 1024

// FaultTransport — сквозной перехватчик всех HTTP-обменов клиента.
// Перед отправкой подставляет bearer-токен из хранилища; на ответах 401 и
// 403 с соответствующими признаками показывает глобальные диалоги. Ошибка
// в любом случае доходит до вызывающего кода без изменений.
type FaultTransport struct {
	base  http.RoundTripper
	store storage.Storage
	host  *prompts.Host
}

// NewFaultTransport создаёт перехватчик поверх указанного транспорта.
// base может быть nil, тогда используется http.DefaultTransport.
func NewFaultTransport(base http.RoundTripper, store storage.Storage, host *prompts.Host) *FaultTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &FaultTransport{
		base:  base,
		store: store,
		host:  host,
	}
}

// RoundTrip реализует http.RoundTripper.
func (t *FaultTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if token, ok := t.store.Get(storage.KeyToken); ok && token != "" {
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		if isTokenFault(t.peekEnvelope(resp)) {
			t.store.Remove(storage.KeyToken)
			if t.host != nil {
				t.host.ShowSessionExpired()
			}
		}
	case http.StatusForbidden:
		env := t.peekEnvelope(resp)
		if env != nil && strings.EqualFold(env.Title, "Forbidden") {
			if t.host != nil {
				t.host.ShowForbidden()
			}
		}
	}

	return resp, nil
}

// peekEnvelope читает конверт ошибки, возвращая тело ответа на место,
// чтобы вызывающий код увидел его нетронутым.
func (t *FaultTransport) peekEnvelope(resp *http.Response) *Envelope {
	body, err := io.ReadAll(io.LimitReader(resp.Body, faultBodyLimit))
	resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil {
		return nil
	}

	var env Envelope
	if json.Unmarshal(body, &env) != nil {
		return nil
	}
	return &env
}

// isTokenFault распознаёт в конверте 401 признак проблемы с токеном.
func isTokenFault(env *Envelope) bool {
	if env == nil {
		return false
	}

	reason := strings.ToLower(env.Detail + " " + env.Title)
	for _, marker := range []string{"token", "invalid", "expired"} {
		if strings.Contains(reason, marker) {
			return true
		}
	}
	return false
}
