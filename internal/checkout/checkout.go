// Package checkout реализует пошаговое оформление заказа: выбор адреса,
// выбор оплаты, сверку остатков с сервером и отправку заказа.
package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mmeshcher/storefront-client/internal/api"
	"github.com/mmeshcher/storefront-client/internal/model"
	"github.com/mmeshcher/storefront-client/internal/storage"
	"github.com/mmeshcher/storefront-client/internal/validation"
)

// ShippingSurcharge — фиксированная надбавка за доставку. Она не зависит
// от адреса и состава заказа.
const ShippingSurcharge = 5.99

// Draft содержит черновик заказа между началом оформления и отправкой.
// Позиции — копия снимка корзины: параллельные правки корзины не меняют
// черновик до сверки остатков.
type Draft struct {
	ID              string               `json:"id"`
	CartLines       []model.CartLine     `json:"cartItems"`
	Subtotal        float64              `json:"subtotal"`
	Shipping        float64              `json:"shipping"`
	Total           float64              `json:"total"`
	DeliveryMethod  model.DeliveryMethod `json:"deliveryMethod"`
	SelectedAddress *model.UserAddress   `json:"selectedAddress,omitempty"`
	PaymentMethodID int                  `json:"paymentMethodId"`
	Notes           *string              `json:"notes,omitempty"`
}

// Cart описывает контракт корзины, используемый оформлением заказа.
type Cart interface {
	Snapshot() model.CartSnapshot
	ClampQuantity(productID int64, stock int)
	Clear()
}

// Session описывает контракт менеджера сессии.
type Session interface {
	IsAuthenticated() bool
	CurrentIdentity() *model.Identity
}

// ProductCatalog возвращает авторитетное состояние товара.
type ProductCatalog interface {
	ProductByID(ctx context.Context, id int64) (model.Product, error)
}

// AddressBook управляет адресами пользователя.
type AddressBook interface {
	AddressesByUser(ctx context.Context, userID int64) ([]model.UserAddress, error)
	CreateAddress(ctx context.Context, addr model.UserAddress) (model.UserAddress, error)
}

// OrderSubmitter создаёт заказ на бэкенде.
type OrderSubmitter interface {
	CreateOrder(ctx context.Context, sub api.OrderSubmission) (model.Order, error)
}

// Config собирает зависимости оформления заказа.
type Config struct {
	Cart       Cart
	Session    Session
	Catalog    ProductCatalog
	Addresses  AddressBook
	Orders     OrderSubmitter
	DraftStore storage.Storage
	Logger     *zap.Logger

	// OnCompleted вызывается после успешного создания заказа
	// (переход к истории заказов). Допускается nil.
	OnCompleted func()
	// OnSignIn вызывается при попытке начать оформление без входа.
	// Допускается nil.
	OnSignIn func()
}

// Orchestrator ведёт оформление заказа через последовательность шагов.
type Orchestrator struct {
	mu sync.Mutex

	state     State
	draft     *Draft
	addresses []model.UserAddress

	cart       Cart
	session    Session
	catalog    ProductCatalog
	addrBook   AddressBook
	orders     OrderSubmitter
	draftStore storage.Storage
	logger     *zap.Logger

	onCompleted func()
	onSignIn    func()
}

// New создаёт оформление заказа в состоянии Idle.
func New(cfg Config) *Orchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Orchestrator{
		state:       StateIdle,
		cart:        cfg.Cart,
		session:     cfg.Session,
		catalog:     cfg.Catalog,
		addrBook:    cfg.Addresses,
		orders:      cfg.Orders,
		draftStore:  cfg.DraftStore,
		logger:      logger,
		onCompleted: cfg.OnCompleted,
		onSignIn:    cfg.OnSignIn,
	}
}

// State возвращает текущий шаг оформления.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Draft возвращает копию черновика заказа или nil вне оформления.
func (o *Orchestrator) Draft() *Draft {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.draft == nil {
		return nil
	}
	copied := *o.draft
	copied.CartLines = append([]model.CartLine(nil), o.draft.CartLines...)
	return &copied
}

// Addresses возвращает загруженный список адресов пользователя.
func (o *Orchestrator) Addresses() []model.UserAddress {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]model.UserAddress(nil), o.addresses...)
}

// Start начинает оформление: проверяет вход и непустую корзину, копирует
// снимок корзины в черновик и загружает адреса пользователя.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.session.IsAuthenticated() {
		if o.onSignIn != nil {
			o.onSignIn()
		}
		return ErrNotAuthenticated
	}

	snap := o.cart.Snapshot()
	if len(snap.Lines) == 0 {
		return ErrEmptyCart
	}

	o.draft = &Draft{
		ID:             uuid.NewString(),
		CartLines:      snap.Lines,
		DeliveryMethod: model.DeliveryMethodDelivery,
	}
	o.recomputeTotalsLocked()
	o.state = StateAddressSelection
	o.persistDraftLocked()

	if err := o.loadAddressesLocked(ctx); err != nil {
		return fmt.Errorf("load addresses: %w", err)
	}
	return nil
}

// Resume восстанавливает черновик, пережив перезапуск интерфейса в
// середине оформления. Возвращает false, если восстанавливать нечего.
func (o *Orchestrator) Resume(ctx context.Context) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.session.IsAuthenticated() {
		return false
	}

	raw, ok := o.draftStore.Get(storage.KeyOrderDraft)
	if !ok || raw == "" {
		return false
	}

	var draft Draft
	if err := json.Unmarshal([]byte(raw), &draft); err != nil {
		o.logger.Warn("persisted draft unreadable, discarding", zap.Error(err))
		o.draftStore.Remove(storage.KeyOrderDraft)
		return false
	}
	if len(draft.CartLines) == 0 {
		o.draftStore.Remove(storage.KeyOrderDraft)
		return false
	}

	o.draft = &draft
	if draft.PaymentMethodID != 0 {
		o.state = StatePaymentSelection
	} else {
		o.state = StateAddressSelection
	}

	if err := o.loadAddressesLocked(ctx); err != nil {
		o.logger.Warn("address reload after resume failed", zap.Error(err))
	}
	return true
}

// Abandon сбрасывает оформление, сохраняя черновик для возврата в рамках
// текущего сеанса.
func (o *Orchestrator) Abandon() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.state = StateIdle
	o.addresses = nil
}

// loadAddressesLocked загружает адреса и выбирает адрес по умолчанию,
// иначе первый из списка, иначе ничего.
func (o *Orchestrator) loadAddressesLocked(ctx context.Context) error {
	identity := o.session.CurrentIdentity()
	if identity == nil {
		return ErrNotAuthenticated
	}

	addresses, err := o.addrBook.AddressesByUser(ctx, identity.ID)
	if err != nil {
		return err
	}
	o.addresses = addresses

	if o.draft.SelectedAddress == nil {
		o.autoSelectAddressLocked()
	}
	return nil
}

func (o *Orchestrator) autoSelectAddressLocked() {
	for i := range o.addresses {
		if o.addresses[i].IsDefault {
			addr := o.addresses[i]
			o.draft.SelectedAddress = &addr
			o.persistDraftLocked()
			return
		}
	}
	if len(o.addresses) > 0 {
		addr := o.addresses[0]
		o.draft.SelectedAddress = &addr
		o.persistDraftLocked()
	}
}

// SelectAddress выбирает адрес из загруженного списка.
func (o *Orchestrator) SelectAddress(addressID int64) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != StateAddressSelection {
		return ErrWrongState
	}

	for i := range o.addresses {
		if o.addresses[i].ID == addressID {
			addr := o.addresses[i]
			o.draft.SelectedAddress = &addr
			o.persistDraftLocked()
			return nil
		}
	}
	return ErrUnknownAddress
}

// CreateAddress проверяет и сохраняет новый адрес, перезагружает список
// и выбирает созданный адрес. Ошибка сохранения оставляет форму
// открытой для повтора.
func (o *Orchestrator) CreateAddress(ctx context.Context, addr model.UserAddress) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != StateAddressSelection {
		return ErrWrongState
	}

	if err := validation.ValidateAddress(addr); err != nil {
		return err
	}

	created, err := o.addrBook.CreateAddress(ctx, addr)
	if err != nil {
		return fmt.Errorf("save address: %w", err)
	}

	identity := o.session.CurrentIdentity()
	if identity != nil {
		if addresses, err := o.addrBook.AddressesByUser(ctx, identity.ID); err == nil {
			o.addresses = addresses
		} else {
			o.logger.Warn("address reload failed", zap.Error(err))
			o.addresses = append(o.addresses, created)
		}
	}

	o.draft.SelectedAddress = &created
	o.persistDraftLocked()
	return nil
}

// SetDeliveryMethod переключает способ получения и пересчитывает итог.
// Состояние оформления не меняется.
func (o *Orchestrator) SetDeliveryMethod(m model.DeliveryMethod) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != StateAddressSelection && o.state != StatePaymentSelection {
		return ErrWrongState
	}

	o.draft.DeliveryMethod = m
	o.recomputeTotalsLocked()
	o.persistDraftLocked()
	return nil
}

// SetNotes сохраняет примечание покупателя к заказу.
func (o *Orchestrator) SetNotes(notes string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.draft == nil {
		return
	}
	if notes == "" {
		o.draft.Notes = nil
	} else {
		o.draft.Notes = &notes
	}
	o.persistDraftLocked()
}

// ProceedToPayment переводит оформление к выбору оплаты. Для доставки
// требуется выбранный адрес; самовывоз проходит без адреса.
func (o *Orchestrator) ProceedToPayment() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != StateAddressSelection {
		return ErrWrongState
	}
	if o.draft.DeliveryMethod == model.DeliveryMethodDelivery && o.draft.SelectedAddress == nil {
		return ErrNoAddressSelected
	}

	o.state = StatePaymentSelection
	o.persistDraftLocked()
	return nil
}

// SelectPaymentMethod выбирает способ оплаты по идентификатору.
func (o *Orchestrator) SelectPaymentMethod(id int) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != StatePaymentSelection {
		return ErrWrongState
	}
	if model.PaymentMethodName(id) == "" {
		return ErrUnknownPaymentMethod
	}

	o.draft.PaymentMethodID = id
	o.persistDraftLocked()
	return nil
}

// Subtotal возвращает сумму позиций черновика.
func (o *Orchestrator) Subtotal() float64 {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.draft == nil {
		return 0
	}
	return o.draft.Subtotal
}

// Total возвращает итог заказа с учётом способа получения.
func (o *Orchestrator) Total() float64 {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.draft == nil {
		return 0
	}
	return o.draft.Total
}

// recomputeTotalsLocked пересчитывает суммы черновика: итог равен сумме
// позиций плюс надбавка за доставку, самовывоз надбавки не имеет.
func (o *Orchestrator) recomputeTotalsLocked() {
	var subtotal float64
	for _, line := range o.draft.CartLines {
		subtotal += line.Price * float64(line.Quantity)
	}

	o.draft.Subtotal = subtotal
	if o.draft.DeliveryMethod == model.DeliveryMethodDelivery {
		o.draft.Shipping = ShippingSurcharge
	} else {
		o.draft.Shipping = 0
	}
	o.draft.Total = subtotal + o.draft.Shipping
}

func (o *Orchestrator) persistDraftLocked() {
	data, err := json.Marshal(o.draft)
	if err != nil {
		o.logger.Warn("draft marshal failed", zap.Error(err))
		return
	}
	if err := o.draftStore.Set(storage.KeyOrderDraft, string(data)); err != nil {
		o.logger.Warn("draft persist failed", zap.Error(err))
	}
}

func (o *Orchestrator) discardDraftLocked() {
	o.draft = nil
	o.draftStore.Remove(storage.KeyOrderDraft)
}
