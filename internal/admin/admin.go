// Package admin содержит операции панели управления: товары, категории
// и пользователи. Локальная проверка роли только скрывает операции в
// интерфейсе, настоящая авторизация выполняется бэкендом.
package admin

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/storefront-client/internal/model"
)

// ErrNotAdmin возвращается, когда текущая сессия не принадлежит
// администратору.
var ErrNotAdmin = errors.New("current user is not an administrator")

// Backend — подмножество клиента API, нужное панели управления.
type Backend interface {
	Products(ctx context.Context) ([]model.Product, error)
	CreateProduct(ctx context.Context, p model.Product) (model.Product, error)
	UpdateProduct(ctx context.Context, id int64, p model.Product) (model.Product, error)
	DeleteProduct(ctx context.Context, id int64) (bool, error)
	Categories(ctx context.Context) ([]model.Category, error)
	CreateCategory(ctx context.Context, name string) (model.Category, error)
	ActivateCategory(ctx context.Context, id int64) error
	DeactivateCategory(ctx context.Context, id int64) error
	AllUsers(ctx context.Context) ([]model.User, error)
	UserJoinDate(ctx context.Context, userID int64) (time.Time, error)
	UpdateUser(ctx context.Context, u model.User) (model.User, error)
	DeleteUser(ctx context.Context, id int64) (bool, error)
}

// Session сообщает, от чьего имени выполняются операции.
type Session interface {
	CurrentIdentity() *model.Identity
}

// Service выполняет административные операции от имени текущей сессии.
type Service struct {
	backend Backend
	session Session
	logger  *zap.Logger
}

// NewService создаёт сервис панели управления.
func NewService(backend Backend, session Session, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		backend: backend,
		session: session,
		logger:  logger,
	}
}

func (s *Service) requireAdmin() error {
	identity := s.session.CurrentIdentity()
	if identity == nil || identity.Role != model.RoleAdmin {
		return ErrNotAdmin
	}

	return nil
}

// Products возвращает полный каталог, включая скрытые товары.
func (s *Service) Products(ctx context.Context) ([]model.Product, error) {
	if err := s.requireAdmin(); err != nil {
		return nil, err
	}

	return s.backend.Products(ctx)
}

// CreateProduct добавляет товар в каталог.
func (s *Service) CreateProduct(ctx context.Context, p model.Product) (model.Product, error) {
	if err := s.requireAdmin(); err != nil {
		return model.Product{}, err
	}

	created, err := s.backend.CreateProduct(ctx, p)
	if err != nil {
		return model.Product{}, fmt.Errorf("create product: %w", err)
	}

	s.logger.Info("product created", zap.Int64("id", created.ID), zap.String("name", created.Name))

	return created, nil
}

// UpdateProduct заменяет данные товара.
func (s *Service) UpdateProduct(ctx context.Context, id int64, p model.Product) (model.Product, error) {
	if err := s.requireAdmin(); err != nil {
		return model.Product{}, err
	}

	updated, err := s.backend.UpdateProduct(ctx, id, p)
	if err != nil {
		return model.Product{}, fmt.Errorf("update product %d: %w", id, err)
	}

	return updated, nil
}

// DeleteProduct удаляет товар из каталога.
func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.requireAdmin(); err != nil {
		return err
	}

	ok, err := s.backend.DeleteProduct(ctx, id)
	if err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	if !ok {
		return fmt.Errorf("delete product %d: backend refused", id)
	}

	s.logger.Info("product deleted", zap.Int64("id", id))

	return nil
}

// Categories возвращает список категорий с признаком активности.
func (s *Service) Categories(ctx context.Context) ([]model.Category, error) {
	if err := s.requireAdmin(); err != nil {
		return nil, err
	}

	return s.backend.Categories(ctx)
}

// CreateCategory заводит новую категорию.
func (s *Service) CreateCategory(ctx context.Context, name string) (model.Category, error) {
	if err := s.requireAdmin(); err != nil {
		return model.Category{}, err
	}

	created, err := s.backend.CreateCategory(ctx, name)
	if err != nil {
		return model.Category{}, fmt.Errorf("create category: %w", err)
	}

	return created, nil
}

// SetCategoryActive включает или выключает показ категории на витрине.
func (s *Service) SetCategoryActive(ctx context.Context, id int64, active bool) error {
	if err := s.requireAdmin(); err != nil {
		return err
	}

	var err error
	if active {
		err = s.backend.ActivateCategory(ctx, id)
	} else {
		err = s.backend.DeactivateCategory(ctx, id)
	}
	if err != nil {
		return fmt.Errorf("set category %d active=%t: %w", id, active, err)
	}

	return nil
}

// Users возвращает всех зарегистрированных пользователей.
func (s *Service) Users(ctx context.Context) ([]model.User, error) {
	if err := s.requireAdmin(); err != nil {
		return nil, err
	}

	return s.backend.AllUsers(ctx)
}

// UserJoinDate возвращает дату регистрации пользователя; при ошибке
// бэкенда отдаёт нулевое время без ошибки, страница переживает пробел.
func (s *Service) UserJoinDate(ctx context.Context, userID int64) time.Time {
	if err := s.requireAdmin(); err != nil {
		return time.Time{}
	}

	joined, err := s.backend.UserJoinDate(ctx, userID)
	if err != nil {
		s.logger.Warn("join date unavailable", zap.Int64("user", userID), zap.Error(err))
		return time.Time{}
	}

	return joined
}

// UpdateUser заменяет данные пользователя.
func (s *Service) UpdateUser(ctx context.Context, u model.User) (model.User, error) {
	if err := s.requireAdmin(); err != nil {
		return model.User{}, err
	}

	updated, err := s.backend.UpdateUser(ctx, u)
	if err != nil {
		return model.User{}, fmt.Errorf("update user %d: %w", u.ID, err)
	}

	return updated, nil
}

// DeleteUser удаляет учётную запись.
func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	if err := s.requireAdmin(); err != nil {
		return err
	}

	ok, err := s.backend.DeleteUser(ctx, id)
	if err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	if !ok {
		return fmt.Errorf("delete user %d: backend refused", id)
	}

	return nil
}

// ExtractCategories собирает уникальные непустые категории каталога в
// алфавитном порядке.
func ExtractCategories(products []model.Product) []string {
	seen := make(map[string]struct{})
	for _, p := range products {
		if p.Category == "" {
			continue
		}
		seen[p.Category] = struct{}{}
	}

	categories := make([]string, 0, len(seen))
	for c := range seen {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	return categories
}

// FilterProducts сужает каталог по категории и текстовому запросу.
// Категория "all" пропускает всё; запрос ищется в имени и описании без
// учёта регистра.
func FilterProducts(products []model.Product, category, query string) []model.Product {
	filtered := make([]model.Product, 0, len(products))

	query = strings.ToLower(strings.TrimSpace(query))
	for _, p := range products {
		if category != "" && category != "all" && !strings.EqualFold(p.Category, category) {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(p.Name), query) &&
			!strings.Contains(strings.ToLower(p.Description), query) {
			continue
		}
		filtered = append(filtered, p)
	}

	return filtered
}

// Paginate возвращает окно страницы page размера perPage. Номера
// страниц начинаются с единицы; окно за пределами списка пусто.
func Paginate[T any](items []T, page, perPage int) []T {
	if page < 1 || perPage < 1 {
		return nil
	}

	start := (page - 1) * perPage
	if start >= len(items) {
		return nil
	}

	end := start + perPage
	if end > len(items) {
		end = len(items)
	}

	return items[start:end]
}

// TotalPages считает число страниц для списка длины total.
func TotalPages(total, perPage int) int {
	if total <= 0 || perPage < 1 {
		return 0
	}

	return (total + perPage - 1) / perPage
}
