package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/mmeshcher/storefront-client/internal/model"
)

// Products возвращает весь каталог товаров.
func (c *Client) Products(ctx context.Context) ([]model.Product, error) {
	env, err := c.get(ctx, "/product/all")
	if err != nil {
		return nil, err
	}
	return decodeList[model.Product](env)
}

// VisibleProducts возвращает товары, видимые покупателям.
func (c *Client) VisibleProducts(ctx context.Context) ([]model.Product, error) {
	env, err := c.get(ctx, "/product/all/visible")
	if err != nil {
		return nil, err
	}
	return decodeList[model.Product](env)
}

// ProductSuggestions возвращает подсказки поиска по части названия.
// Пустой запрос не отправляется на бэкенд.
func (c *Client) ProductSuggestions(ctx context.Context, query string) ([]model.Product, error) {
	if query == "" {
		return nil, nil
	}

	env, err := c.get(ctx, "/product/suggestions?query="+url.QueryEscape(query))
	if err != nil {
		return nil, err
	}
	return decodeList[model.Product](env)
}

// ProductByID возвращает товар по идентификатору.
func (c *Client) ProductByID(ctx context.Context, id int64) (model.Product, error) {
	env, err := c.get(ctx, fmt.Sprintf("/product/specified/%d", id))
	if err != nil {
		return model.Product{}, err
	}
	return decodeFirst[model.Product](env)
}

// CreateProduct создаёт новый товар и возвращает его серверное представление.
func (c *Client) CreateProduct(ctx context.Context, p model.Product) (model.Product, error) {
	env, err := c.sendJSON(ctx, "POST", "/product/create", p)
	if err != nil {
		return model.Product{}, err
	}
	return decodeFirst[model.Product](env)
}

// UpdateProduct обновляет существующий товар.
func (c *Client) UpdateProduct(ctx context.Context, id int64, p model.Product) (model.Product, error) {
	env, err := c.sendJSON(ctx, "PUT", fmt.Sprintf("/product/update/%d", id), p)
	if err != nil {
		return model.Product{}, err
	}
	return decodeFirst[model.Product](env)
}

// DeleteProduct удаляет товар и возвращает признак успеха.
func (c *Client) DeleteProduct(ctx context.Context, id int64) (bool, error) {
	env, err := c.sendJSON(ctx, "DELETE", fmt.Sprintf("/product/%d", id), nil)
	if err != nil {
		return false, err
	}
	return env.Success, nil
}

// Categories возвращает список категорий каталога.
func (c *Client) Categories(ctx context.Context) ([]model.Category, error) {
	env, err := c.get(ctx, "/product/category/all")
	if err != nil {
		return nil, err
	}
	return decodeList[model.Category](env)
}

// CreateCategory создаёт новую категорию каталога.
func (c *Client) CreateCategory(ctx context.Context, name string) (model.Category, error) {
	env, err := c.sendJSON(ctx, "POST", "/product/category/create", model.Category{Name: name})
	if err != nil {
		return model.Category{}, err
	}
	return decodeFirst[model.Category](env)
}

// ActivateCategory делает категорию видимой покупателям.
func (c *Client) ActivateCategory(ctx context.Context, id int64) error {
	_, err := c.sendJSON(ctx, "PUT", fmt.Sprintf("/product/category/activate/%d", id), nil)
	return err
}

// DeactivateCategory скрывает категорию от покупателей.
func (c *Client) DeactivateCategory(ctx context.Context, id int64) error {
	_, err := c.sendJSON(ctx, "PUT", fmt.Sprintf("/product/category/deactivate/%d", id), nil)
	return err
}
