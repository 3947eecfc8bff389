package api

import (
	"context"
	"fmt"
	"sort"

	"github.com/mmeshcher/storefront-client/internal/model"
)

// OrderSubmission содержит данные для создания заказа.
type OrderSubmission struct {
	UserID          int64                `json:"userId"`
	DeliveryMethod  model.DeliveryMethod `json:"deliveryMethod"`
	SelectedAddress *model.UserAddress   `json:"selectedAddress,omitempty"`
	PaymentMethodID int                  `json:"paymentMethodId"`
	CartItems       []model.CartLine     `json:"cartItems"`
	Total           float64              `json:"total"`
	Notes           *string              `json:"notes,omitempty"`
}

// OrdersByUser возвращает заказы пользователя, отсортированные от новых
// к старым.
func (c *Client) OrdersByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	env, err := c.get(ctx, fmt.Sprintf("/order/user/%d", userID))
	if err != nil {
		return nil, err
	}

	orders, err := decodeList[model.Order](env)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

// CreateOrder отправляет заказ на создание и возвращает созданный заказ.
func (c *Client) CreateOrder(ctx context.Context, sub OrderSubmission) (model.Order, error) {
	env, err := c.sendJSON(ctx, "POST", "/order/create", sub)
	if err != nil {
		return model.Order{}, err
	}
	return decodeFirst[model.Order](env)
}
