// Package cart реализует хранилище корзины покупателя с подписками на
// производное состояние и сохранением в локальное хранилище.
package cart

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/mmeshcher/storefront-client/internal/model"
	"github.com/mmeshcher/storefront-client/internal/storage"
)

// Subscriber получает снимок корзины после каждой мутации. Снимки
// доставляются в порядке возникновения. Подписчик вызывается с
// удержанной блокировкой корзины и не должен мутировать её из своего
// тела.
type Subscriber func(model.CartSnapshot)

// Store владеет позициями корзины. Все мутации сериализованы; после
// каждой пересчитывается снимок, уведомляются подписчики и состояние
// записывается в хранилище.
type Store struct {
	mu          sync.Mutex
	lines       []model.CartLine
	subscribers []Subscriber
	storage     storage.Storage
	logger      *zap.Logger
}

// NewStore создаёт корзину и восстанавливает её содержимое из
// хранилища. Нечитаемое сохранённое состояние даёт пустую корзину.
func NewStore(st storage.Storage, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Store{
		storage: st,
		logger:  logger,
	}

	s.restore()
	return s
}

// AddItem добавляет товар в корзину. Существующая позиция увеличивается
// на единицу, пока не упрётся в зафиксированный потолок запаса; новая
// позиция получает количество 1 и текущий запас как потолок.
func (s *Store) AddItem(p model.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.lines {
		if s.lines[i].ProductID == p.ID {
			if s.lines[i].Quantity < s.lines[i].Stock {
				s.lines[i].Quantity++
				s.publish()
			}
			return
		}
	}

	if p.Stock < 1 {
		return
	}

	s.lines = append(s.lines, model.CartLine{
		ProductID:   p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Quantity:    1,
		Base64Image: p.Base64Image,
		Stock:       p.Stock,
	})
	s.publish()
}

// RemoveItem удаляет позицию по идентификатору товара.
func (s *Store) RemoveItem(productID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked(productID)
}

func (s *Store) removeLocked(productID int64) {
	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			s.publish()
			return
		}
	}
}

// SetQuantity выставляет количество позиции. Нулевое и отрицательное
// количество удаляет позицию; количество сверх потолка запаса
// отклоняется, позиция остаётся без изменений.
func (s *Store) SetQuantity(productID int64, qty int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if qty <= 0 {
		s.removeLocked(productID)
		return
	}

	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			if qty > s.lines[i].Stock {
				return
			}
			s.lines[i].Quantity = qty
			s.publish()
			return
		}
	}
}

// ClampQuantity принудительно опускает количество позиции до указанного
// авторитетного запаса, обходя локальный потолок, и обновляет сам
// потолок. Используется сверкой остатков при оформлении заказа.
func (s *Store) ClampQuantity(productID int64, stock int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if stock <= 0 {
		s.removeLocked(productID)
		return
	}

	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			s.lines[i].Stock = stock
			if s.lines[i].Quantity > stock {
				s.lines[i].Quantity = stock
				s.publish()
			}
			return
		}
	}
}

// Clear опустошает корзину.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = nil
	s.publish()
}

// Snapshot возвращает текущий снимок корзины.
func (s *Store) Snapshot() model.CartSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshotLocked()
}

// Subscribe регистрирует подписчика и сразу доставляет ему текущий
// снимок. Возвращённая функция снимает подписку.
func (s *Store) Subscribe(fn Subscriber) func() {
	s.mu.Lock()
	s.subscribers = append(s.subscribers, fn)
	idx := len(s.subscribers) - 1
	snap := s.snapshotLocked()
	s.mu.Unlock()

	fn(snap)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.subscribers[idx] = nil
	}
}

func (s *Store) snapshotLocked() model.CartSnapshot {
	snap := model.CartSnapshot{
		Lines: make([]model.CartLine, len(s.lines)),
	}
	copy(snap.Lines, s.lines)

	for _, line := range s.lines {
		snap.Count += line.Quantity
		snap.Subtotal += line.Price * float64(line.Quantity)
	}
	return snap
}

// publish пересчитывает снимок, уведомляет подписчиков и сохраняет
// позиции. Вызывается с удержанной блокировкой.
func (s *Store) publish() {
	snap := s.snapshotLocked()

	for _, fn := range s.subscribers {
		if fn != nil {
			fn(snap)
		}
	}

	s.persist()
}

func (s *Store) persist() {
	lines := s.lines
	if lines == nil {
		lines = []model.CartLine{}
	}

	data, err := json.Marshal(lines)
	if err != nil {
		s.logger.Warn("cart marshal failed", zap.Error(err))
		return
	}
	if err := s.storage.Set(storage.KeyCart, string(data)); err != nil {
		s.logger.Warn("cart persist failed", zap.Error(err))
	}
}

func (s *Store) restore() {
	raw, ok := s.storage.Get(storage.KeyCart)
	if !ok || raw == "" {
		return
	}

	var lines []model.CartLine
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		s.logger.Warn("persisted cart unreadable, starting empty", zap.Error(err))
		return
	}
	s.lines = lines
}
