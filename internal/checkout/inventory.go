package checkout

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/storefront-client/internal/api"
	"github.com/mmeshcher/storefront-client/internal/model"
)

// ConfirmOrder выполняет два завершающих шага: сверку остатков с
// сервером и однократную отправку заказа.
//
// Если какая-то позиция превышает актуальный запас, её количество в
// корзине опускается до серверного значения, оформление возвращается к
// выбору оплаты и возвращается StockError с полным списком
// корректировок: покупатель подтверждает заказ заново уже по серверной
// правде. После неуспешной отправки черновик сохраняется, повтор —
// только вручную.
func (o *Orchestrator) ConfirmOrder(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != StatePaymentSelection && o.state != StateFailed {
		return ErrWrongState
	}
	if o.draft.PaymentMethodID == 0 {
		return ErrNoPaymentMethod
	}

	o.state = StateInventoryValidation

	if err := o.validateInventoryLocked(ctx); err != nil {
		o.state = StatePaymentSelection
		return err
	}

	o.state = StateSubmitting
	return o.submitLocked(ctx)
}

// validateInventoryLocked запрашивает авторитетный запас каждой позиции.
// Запросы уходят одновременно; шаг ждёт их все.
func (o *Orchestrator) validateInventoryLocked(ctx context.Context) error {
	lines := o.draft.CartLines

	g, ctx := errgroup.WithContext(ctx)
	current := make([]model.Product, len(lines))

	for i, line := range lines {
		i, line := i, line
		g.Go(func() error {
			p, err := o.catalog.ProductByID(ctx, line.ProductID)
			if err != nil {
				return fmt.Errorf("fetch stock for %q: %w", line.Name, err)
			}
			current[i] = p
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	var adjustments []StockAdjustment
	for i, line := range lines {
		if line.Quantity > current[i].Stock {
			adjustments = append(adjustments, StockAdjustment{
				ProductID: line.ProductID,
				Name:      line.Name,
				Requested: line.Quantity,
				Available: current[i].Stock,
			})
		}
	}

	if len(adjustments) == 0 {
		return nil
	}

	for _, adj := range adjustments {
		o.cart.ClampQuantity(adj.ProductID, adj.Available)
		o.logger.Info("cart line clamped to server stock",
			zap.Int64("productID", adj.ProductID),
			zap.Int("requested", adj.Requested),
			zap.Int("available", adj.Available))
	}

	// Черновик пересобирается из уже приведённой корзины, чтобы повторное
	// подтверждение шло по серверной правде.
	o.draft.CartLines = o.cart.Snapshot().Lines
	o.recomputeTotalsLocked()
	o.persistDraftLocked()

	return &StockError{Adjustments: adjustments}
}

// submitLocked собирает данные заказа и один раз вызывает создание
// заказа на бэкенде.
func (o *Orchestrator) submitLocked(ctx context.Context) error {
	identity := o.session.CurrentIdentity()
	if identity == nil {
		o.state = StateFailed
		return ErrNotAuthenticated
	}

	sub := api.OrderSubmission{
		UserID:          identity.ID,
		DeliveryMethod:  o.draft.DeliveryMethod,
		SelectedAddress: o.draft.SelectedAddress,
		PaymentMethodID: o.draft.PaymentMethodID,
		CartItems:       o.draft.CartLines,
		Total:           o.draft.Total,
		Notes:           o.draft.Notes,
	}

	order, err := o.orders.CreateOrder(ctx, sub)
	if err != nil {
		o.state = StateFailed
		return fmt.Errorf("create order: %w", err)
	}

	o.logger.Info("order created",
		zap.Int64("orderID", order.ID),
		zap.String("orderGuid", order.OrderGUID),
		zap.Float64("total", sub.Total))

	o.state = StateCompleted
	o.cart.Clear()
	o.discardDraftLocked()

	if o.onCompleted != nil {
		o.onCompleted()
	}
	return nil
}
