// Package search реализует подсказки поиска по мере ввода с
// коалесцированием запросов по таймеру.
package search

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mmeshcher/storefront-client/internal/model"
)

// DefaultDebounce — задержка между последним нажатием клавиши и
// обращением к бэкенду.
const DefaultDebounce = 300 * time.Millisecond

// Catalog запрашивает подсказки у бэкенда.
type Catalog interface {
	ProductSuggestions(ctx context.Context, query string) ([]model.Product, error)
}

// Suggester коалесцирует ввод: каждое нажатие перезапускает таймер, до
// бэкенда доходит только последний ожидающий запрос. Ответ устаревшего
// запроса отбрасывается сверкой токена с последним введённым запросом;
// сам сетевой запрос при этом не прерывается.
type Suggester struct {
	mu     sync.Mutex
	timer  *time.Timer
	latest string

	catalog   Catalog
	delay     time.Duration
	onResults func(query string, products []model.Product)
	logger    *zap.Logger
}

// New создаёт подсказчик. onResults вызывается с результатами последнего
// актуального запроса; для пустого запроса — немедленно с nil.
func New(catalog Catalog, delay time.Duration, onResults func(string, []model.Product), logger *zap.Logger) *Suggester {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Suggester{
		catalog:   catalog,
		delay:     delay,
		onResults: onResults,
		logger:    logger,
	}
}

// SetQuery регистрирует очередное состояние строки поиска.
func (s *Suggester) SetQuery(ctx context.Context, query string) {
	query = strings.TrimSpace(query)

	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}

	token := uuid.NewString()
	s.latest = token

	if query == "" {
		s.mu.Unlock()
		s.onResults("", nil)
		return
	}

	s.timer = time.AfterFunc(s.delay, func() {
		s.fetch(ctx, token, query)
	})
	s.mu.Unlock()
}

// Stop отменяет ожидающий запрос подсказок.
func (s *Suggester) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.latest = ""
}

func (s *Suggester) fetch(ctx context.Context, token, query string) {
	products, err := s.catalog.ProductSuggestions(ctx, query)
	if err != nil {
		s.logger.Warn("suggestions fetch failed", zap.String("query", query), zap.Error(err))
		products = nil
	}

	s.mu.Lock()
	stale := token != s.latest
	s.mu.Unlock()

	// Результат, пришедший после нового ввода, уже никому не нужен.
	if stale {
		return
	}

	s.onResults(query, products)
}
