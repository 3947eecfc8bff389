// Package model содержит доменные сущности клиента интернет-магазина.
package model

import "time"

// Role описывает роль пользователя в системе.
type Role string

const (
	RoleUser  Role = "User"
	RoleAdmin Role = "Admin"
)

// Product представляет товар каталога в том виде, в котором его отдаёт бэкенд.
type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	Base64Image string  `json:"base64Image"`
}

// Category описывает категорию каталога товаров.
type Category struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"isActive"`
}

// UserAddress описывает адрес доставки пользователя.
type UserAddress struct {
	ID            int64  `json:"id"`
	Label         string `json:"label"`
	Street        string `json:"street"`
	City          string `json:"city"`
	PostalCode    string `json:"postalCode"`
	Country       string `json:"country"`
	PhoneAreaCode string `json:"phoneAreaCode"`
	PhoneNumber   string `json:"phoneNumber"`
	IsDefault     bool   `json:"isDefault"`
}

// User представляет учётную запись пользователя магазина.
type User struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Surname     string        `json:"surname"`
	Email       string        `json:"email"`
	Role        Role          `json:"role"`
	CreatedAt   time.Time     `json:"createdAt"`
	DateOfBirth time.Time     `json:"dateOfBirth"`
	IsActive    bool          `json:"isActive"`
	Addresses   []UserAddress `json:"addresses,omitempty"`
}

// OrderItem описывает одну позицию оформленного заказа.
type OrderItem struct {
	ID        int64   `json:"id"`
	Product   Product `json:"productDTO"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	Subtotal  float64 `json:"subtotal"`
}

// Order описывает заказ пользователя.
type Order struct {
	ID          int64       `json:"id"`
	OrderGUID   string      `json:"orderGuid"`
	TotalAmount float64     `json:"totalAmount"`
	Status      string      `json:"status"`
	Notes       *string     `json:"notes,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
	Items       []OrderItem `json:"items"`
}

// CartLine представляет одну позицию корзины. Stock хранит потолок
// количества, зафиксированный при добавлении товара: между сверками с
// сервером локальные изменения количества не могут его превысить.
type CartLine struct {
	ProductID   int64   `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	Base64Image string  `json:"base64Image"`
	Stock       int     `json:"stock"`
}

// CartSnapshot содержит производное состояние корзины, пересчитываемое
// после каждой мутации.
type CartSnapshot struct {
	Lines    []CartLine
	Count    int
	Subtotal float64
}

// Identity содержит проекцию клиентских claims для персонализации
// интерфейса. Роль здесь справочная: авторизацию каждого запроса
// выполняет бэкенд.
type Identity struct {
	ID      int64
	Name    string
	Surname string
	Role    Role
}

// DeliveryMethod описывает способ получения заказа.
type DeliveryMethod string

const (
	DeliveryMethodDelivery DeliveryMethod = "delivery"
	DeliveryMethodPickup   DeliveryMethod = "pickup"
)

var paymentMethodNames = map[int]string{
	1: "BLIK",
	2: "Credit Card",
	3: "PayPal",
	4: "Apple Pay",
	5: "Google Pay",
	6: "Cash on Pickup",
}

// PaymentMethodName возвращает название способа оплаты по идентификатору
// и пустую строку для неизвестного идентификатора.
func PaymentMethodName(id int) string {
	return paymentMethodNames[id]
}
