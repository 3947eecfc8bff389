package api

import (
	"context"
	"fmt"

	"github.com/mmeshcher/storefront-client/internal/model"
)

// AddressesByUser возвращает адреса указанного пользователя.
func (c *Client) AddressesByUser(ctx context.Context, userID int64) ([]model.UserAddress, error) {
	env, err := c.get(ctx, fmt.Sprintf("/address/user/%d", userID))
	if err != nil {
		return nil, err
	}
	return decodeList[model.UserAddress](env)
}

// CreateAddress сохраняет новый адрес и возвращает его серверное
// представление с присвоенным идентификатором.
func (c *Client) CreateAddress(ctx context.Context, addr model.UserAddress) (model.UserAddress, error) {
	env, err := c.sendJSON(ctx, "POST", "/address/create", addr)
	if err != nil {
		return model.UserAddress{}, err
	}
	return decodeFirst[model.UserAddress](env)
}
