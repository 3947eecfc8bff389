package api

import (
	"context"
	"fmt"
	"time"

	"github.com/mmeshcher/storefront-client/internal/model"
)

// AllUsers возвращает список всех пользователей.
func (c *Client) AllUsers(ctx context.Context) ([]model.User, error) {
	env, err := c.get(ctx, "/user/all")
	if err != nil {
		return nil, err
	}
	return decodeList[model.User](env)
}

// UserJoinDate возвращает дату регистрации пользователя.
func (c *Client) UserJoinDate(ctx context.Context, userID int64) (time.Time, error) {
	env, err := c.get(ctx, fmt.Sprintf("/user/%d/joindate", userID))
	if err != nil {
		return time.Time{}, err
	}

	raw, err := decodeFirst[string](env)
	if err != nil {
		return time.Time{}, err
	}

	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse join date: %w", err)
	}
	return t, nil
}

// UpdateUser обновляет данные пользователя.
func (c *Client) UpdateUser(ctx context.Context, u model.User) (model.User, error) {
	env, err := c.sendJSON(ctx, "PUT", fmt.Sprintf("/user/update/%d", u.ID), u)
	if err != nil {
		return model.User{}, err
	}
	return decodeFirst[model.User](env)
}

// DeleteUser удаляет пользователя и возвращает признак успеха.
func (c *Client) DeleteUser(ctx context.Context, id int64) (bool, error) {
	env, err := c.sendJSON(ctx, "DELETE", fmt.Sprintf("/user/%d", id), nil)
	if err != nil {
		return false, err
	}
	return env.Success, nil
}
