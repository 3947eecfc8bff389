package checkout

import (
	"errors"
	"fmt"
	"strings"
)

// State описывает шаг оформления заказа.
type State string

const (
	StateIdle                State = "IDLE"
	StateAddressSelection    State = "ADDRESS_SELECTION"
	StatePaymentSelection    State = "PAYMENT_SELECTION"
	StateInventoryValidation State = "INVENTORY_VALIDATION"
	StateSubmitting          State = "SUBMITTING"
	StateCompleted           State = "COMPLETED"
	StateFailed              State = "FAILED"
)

// IsTerminal сообщает, завершено ли оформление.
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateFailed
}

// String возвращает строковое представление состояния.
func (s State) String() string {
	return string(s)
}

// Ошибки переходов оформления заказа.
var (
	ErrNotAuthenticated     = errors.New("checkout requires an authenticated user")
	ErrEmptyCart            = errors.New("checkout requires a non-empty cart")
	ErrWrongState           = errors.New("operation not allowed in current checkout state")
	ErrNoAddressSelected    = errors.New("delivery requires a selected address")
	ErrNoPaymentMethod      = errors.New("a payment method must be chosen")
	ErrUnknownPaymentMethod = errors.New("unknown payment method")
	ErrUnknownAddress       = errors.New("address not found in loaded list")
)

// StockAdjustment описывает позицию, количество которой было опущено до
// актуального серверного запаса.
type StockAdjustment struct {
	ProductID int64
	Name      string
	Requested int
	Available int
}

// StockError сообщает о несоответствии корзины серверным остаткам.
// Корзина к моменту возврата ошибки уже приведена к серверной правде.
type StockError struct {
	Adjustments []StockAdjustment
}

func (e *StockError) Error() string {
	names := make([]string, len(e.Adjustments))
	for i, adj := range e.Adjustments {
		names[i] = fmt.Sprintf("%s (available: %d)", adj.Name, adj.Available)
	}
	return "insufficient stock: " + strings.Join(names, ", ")
}
