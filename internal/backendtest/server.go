// Package backendtest реализует тестовый бэкенд магазина в памяти.
// Сервер отдаёт ответы в том же конверте, что и боевой API, и служит
// площадкой для интеграционных тестов клиента.
package backendtest

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mmeshcher/storefront-client/internal/model"
)

type account struct {
	user     model.User
	password string
}

// Server хранит состояние магазина в памяти и обслуживает REST-маршруты.
type Server struct {
	mu         sync.Mutex
	nextID     int64
	accounts   map[string]*account
	products   map[int64]model.Product
	productIDs []int64
	categories map[int64]model.Category
	addresses  map[int64][]model.UserAddress
	orders     map[int64][]model.Order
	tokens     map[string]int64

	router *chi.Mux
}

// New создаёт пустой тестовый бэкенд.
func New() *Server {
	s := &Server{
		nextID:     1,
		accounts:   make(map[string]*account),
		products:   make(map[int64]model.Product),
		categories: make(map[int64]model.Category),
		addresses:  make(map[int64][]model.UserAddress),
		orders:     make(map[int64][]model.Order),
		tokens:     make(map[string]int64),
	}
	s.router = s.setupRouter()

	return s
}

// Handler возвращает корневой обработчик для httptest.NewServer.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) allocID() int64 {
	id := s.nextID
	s.nextID++
	return id
}

// SeedUser регистрирует пользователя с паролем и возвращает запись с
// присвоенным идентификатором.
func (s *Server) SeedUser(u model.User, password string) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.ID == 0 {
		u.ID = s.allocID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	u.IsActive = true
	s.accounts[strings.ToLower(u.Email)] = &account{user: u, password: password}

	return u
}

// SeedProduct добавляет товар в каталог.
func (s *Server) SeedProduct(p model.Product) model.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == 0 {
		p.ID = s.allocID()
	}
	s.products[p.ID] = p
	s.productIDs = append(s.productIDs, p.ID)

	return p
}

// SeedAddress привязывает адрес к пользователю.
func (s *Server) SeedAddress(userID int64, a model.UserAddress) model.UserAddress {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ID == 0 {
		a.ID = s.allocID()
	}
	s.addresses[userID] = append(s.addresses[userID], a)

	return a
}

// SetProductStock меняет остаток товара, имитируя параллельные покупки.
func (s *Server) SetProductStock(id int64, stock int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return
	}
	p.Stock = stock
	s.products[id] = p
}

// OrdersOf возвращает заказы пользователя в порядке создания.
func (s *Server) OrdersOf(userID int64) []model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]model.Order(nil), s.orders[userID]...)
}

// ExpireToken отзывает выданный токен, имитируя истёкшую сессию.
func (s *Server) ExpireToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.tokens, token)
}

// envelope повторяет формат ответа боевого бэкенда.
type envelope struct {
	Success bool   `json:"success"`
	Data    []any  `json:"data,omitempty"`
	Title   string `json:"title,omitempty"`
	Detail  string `json:"detail,omitempty"`
	Status  int    `json:"status,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

func writeData(w http.ResponseWriter, items ...any) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: items})
}

func writeFault(w http.ResponseWriter, status int, title, detail string) {
	writeJSON(w, status, envelope{Title: title, Detail: detail, Status: status})
}

// issueToken выдаёт неподписанный JWT с клиентскими claims.
func (s *Server) issueToken(u model.User) string {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none","typ":"JWT"}`))

	payload, _ := json.Marshal(map[string]any{
		"sub":         strconv.FormatInt(u.ID, 10),
		"given_name":  u.Name,
		"family_name": u.Surname,
		"email":       u.Email,
		"role":        string(u.Role),
		"exp":         time.Now().Add(time.Hour).Unix(),
	})

	token := header + "." + base64.RawURLEncoding.EncodeToString(payload) + "."
	s.tokens[token] = u.ID

	return token
}

func (s *Server) userByToken(r *http.Request) (model.User, bool) {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return model.User{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.tokens[strings.TrimPrefix(auth, "Bearer ")]
	if !ok {
		return model.User{}, false
	}

	for _, acc := range s.accounts {
		if acc.user.ID == id {
			return acc.user, true
		}
	}
	return model.User{}, false
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := s.userByToken(r); !ok {
			writeFault(w, http.StatusUnauthorized, "Unauthorized", "Token is invalid or expired")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := s.userByToken(r)
		if !ok {
			writeFault(w, http.StatusUnauthorized, "Unauthorized", "Token is invalid or expired")
			return
		}
		if u.Role != model.RoleAdmin {
			writeFault(w, http.StatusForbidden, "Forbidden", "Administrator role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) setupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", s.handleLogin)
		r.Post("/register", s.handleRegister)
	})

	r.Route("/product", func(r chi.Router) {
		r.Get("/all/visible", s.handleVisibleProducts)
		r.Get("/suggestions", s.handleSuggestions)
		r.Get("/specified/{id}", s.handleProductByID)
		r.Get("/category/all", s.handleCategories)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAdmin)

			r.Get("/all", s.handleAllProducts)
			r.Post("/create", s.handleCreateProduct)
			r.Put("/update/{id}", s.handleUpdateProduct)
			r.Delete("/{id}", s.handleDeleteProduct)
			r.Post("/category/create", s.handleCreateCategory)
			r.Put("/category/activate/{id}", s.handleCategoryActive(true))
			r.Put("/category/deactivate/{id}", s.handleCategoryActive(false))
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)

		r.Get("/address/user/{id}", s.handleAddressesByUser)
		r.Post("/address/create", s.handleCreateAddress)
		r.Get("/order/user/{id}", s.handleOrdersByUser)
		r.Post("/order/create", s.handleCreateOrder)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.requireAdmin)

		r.Get("/user/all", s.handleAllUsers)
		r.Get("/user/{id}/joindate", s.handleJoinDate)
		r.Put("/user/update/{id}", s.handleUpdateUser)
		r.Delete("/user/{id}", s.handleDeleteUser)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeFault(w, http.StatusNotFound, "Not Found", "No such endpoint")
	})

	return r
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeFault(w, http.StatusBadRequest, "Bad Request", "Malformed form data")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[strings.ToLower(r.PostForm.Get("email"))]
	if !ok || acc.password != r.PostForm.Get("password") {
		writeJSON(w, http.StatusOK, envelope{Success: false, Title: "Login failed"})
		return
	}

	writeData(w, s.issueToken(acc.user))
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeFault(w, http.StatusBadRequest, "Bad Request", "Malformed form data")
		return
	}

	email := strings.ToLower(r.PostForm.Get("email"))
	if email == "" || r.PostForm.Get("password") == "" {
		writeJSON(w, http.StatusOK, envelope{Success: false, Title: "Registration failed"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[email]; exists {
		writeJSON(w, http.StatusOK, envelope{Success: false, Title: "Email already registered"})
		return
	}

	u := model.User{
		ID:        s.allocID(),
		Name:      r.PostForm.Get("name"),
		Surname:   r.PostForm.Get("surname"),
		Email:     email,
		Role:      model.RoleUser,
		CreatedAt: time.Now().UTC(),
		IsActive:  true,
	}
	s.accounts[email] = &account{user: u, password: r.PostForm.Get("password")}

	writeData(w)
}

func (s *Server) productList(visibleOnly bool) []model.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	inactive := make(map[string]bool)
	for _, c := range s.categories {
		if !c.IsActive {
			inactive[c.Name] = true
		}
	}

	list := make([]model.Product, 0, len(s.productIDs))
	for _, id := range s.productIDs {
		p, ok := s.products[id]
		if !ok {
			continue
		}
		// Товары выключенных категорий не попадают на витрину.
		if visibleOnly && inactive[p.Category] {
			continue
		}
		list = append(list, p)
	}
	return list
}

func asAny[T any](items []T) []any {
	out := make([]any, len(items))
	for i, it := range items {
		out[i] = it
	}
	return out
}

func (s *Server) handleVisibleProducts(w http.ResponseWriter, _ *http.Request) {
	writeData(w, asAny(s.productList(true))...)
}

func (s *Server) handleAllProducts(w http.ResponseWriter, _ *http.Request) {
	writeData(w, asAny(s.productList(false))...)
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	query := strings.ToLower(r.URL.Query().Get("query"))

	matched := make([]model.Product, 0)
	for _, p := range s.productList(true) {
		if strings.Contains(strings.ToLower(p.Name), query) {
			matched = append(matched, p)
		}
	}

	writeData(w, asAny(matched)...)
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

func (s *Server) handleProductByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeFault(w, http.StatusBadRequest, "Bad Request", "Malformed product id")
		return
	}

	s.mu.Lock()
	p, found := s.products[id]
	s.mu.Unlock()

	if !found {
		writeFault(w, http.StatusNotFound, "Not Found", "Product does not exist")
		return
	}

	writeData(w, p)
}

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var p model.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeFault(w, http.StatusBadRequest, "Bad Request", "Malformed product payload")
		return
	}

	s.mu.Lock()
	p.ID = s.allocID()
	s.products[p.ID] = p
	s.productIDs = append(s.productIDs, p.ID)
	s.mu.Unlock()

	writeData(w, p)
}

func (s *Server) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeFault(w, http.StatusBadRequest, "Bad Request", "Malformed product id")
		return
	}

	var p model.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeFault(w, http.StatusBadRequest, "Bad Request", "Malformed product payload")
		return
	}

	s.mu.Lock()
	_, found := s.products[id]
	if found {
		p.ID = id
		s.products[id] = p
	}
	s.mu.Unlock()

	if !found {
		writeFault(w, http.StatusNotFound, "Not Found", "Product does not exist")
		return
	}

	writeData(w, p)
}

func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeFault(w, http.StatusBadRequest, "Bad Request", "Malformed product id")
		return
	}

	s.mu.Lock()
	delete(s.products, id)
	s.mu.Unlock()

	writeData(w, true)
}

func (s *Server) handleCategories(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	list := make([]model.Category, 0, len(s.categories))
	for _, c := range s.categories {
		list = append(list, c)
	}
	s.mu.Unlock()

	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	writeData(w, asAny(list)...)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var c model.Category
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeFault(w, http.StatusBadRequest, "Bad Request", "Malformed category payload")
		return
	}

	s.mu.Lock()
	c.ID = s.allocID()
	c.IsActive = true
	s.categories[c.ID] = c
	s.mu.Unlock()

	writeData(w, c)
}

func (s *Server) handleCategoryActive(active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			writeFault(w, http.StatusBadRequest, "Bad Request", "Malformed category id")
			return
		}

		s.mu.Lock()
		c, found := s.categories[id]
		if found {
			c.IsActive = active
			s.categories[id] = c
		}
		s.mu.Unlock()

		if !found {
			writeFault(w, http.StatusNotFound, "Not Found", "Category does not exist")
			return
		}

		writeData(w)
	}
}

func (s *Server) handleAddressesByUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeFault(w, http.StatusBadRequest, "Bad Request", "Malformed user id")
		return
	}

	s.mu.Lock()
	list := append([]model.UserAddress(nil), s.addresses[id]...)
	s.mu.Unlock()

	writeData(w, asAny(list)...)
}

func (s *Server) handleCreateAddress(w http.ResponseWriter, r *http.Request) {
	u, _ := s.userByToken(r)

	var a model.UserAddress
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		writeFault(w, http.StatusBadRequest, "Bad Request", "Malformed address payload")
		return
	}

	s.mu.Lock()
	a.ID = s.allocID()
	s.addresses[u.ID] = append(s.addresses[u.ID], a)
	s.mu.Unlock()

	writeData(w, a)
}

// orderSubmission повторяет форму тела запроса оформления заказа.
type orderSubmission struct {
	UserID          int64              `json:"userId"`
	DeliveryMethod  string             `json:"deliveryMethod"`
	SelectedAddress *model.UserAddress `json:"selectedAddress"`
	PaymentMethodID int                `json:"paymentMethodId"`
	CartItems       []model.CartLine   `json:"cartItems"`
	Total           float64            `json:"total"`
	Notes           *string            `json:"notes"`
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var sub orderSubmission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		writeFault(w, http.StatusBadRequest, "Bad Request", "Malformed order payload")
		return
	}
	if len(sub.CartItems) == 0 {
		writeFault(w, http.StatusBadRequest, "Bad Request", "Order has no items")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Проверка остатков на момент оформления.
	for _, line := range sub.CartItems {
		p, found := s.products[line.ProductID]
		if !found || p.Stock < line.Quantity {
			writeFault(w, http.StatusConflict, "Conflict", "Insufficient stock")
			return
		}
	}

	items := make([]model.OrderItem, 0, len(sub.CartItems))
	for _, line := range sub.CartItems {
		p := s.products[line.ProductID]
		p.Stock -= line.Quantity
		s.products[line.ProductID] = p

		items = append(items, model.OrderItem{
			ID:        s.allocID(),
			Product:   p,
			Quantity:  line.Quantity,
			UnitPrice: line.Price,
			Subtotal:  line.Price * float64(line.Quantity),
		})
	}

	order := model.Order{
		ID:          s.allocID(),
		OrderGUID:   uuid.NewString(),
		TotalAmount: sub.Total,
		Status:      "Pending",
		Notes:       sub.Notes,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
		Items:       items,
	}
	s.orders[sub.UserID] = append(s.orders[sub.UserID], order)

	writeData(w, order)
}

func (s *Server) handleOrdersByUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeFault(w, http.StatusBadRequest, "Bad Request", "Malformed user id")
		return
	}

	s.mu.Lock()
	list := append([]model.Order(nil), s.orders[id]...)
	s.mu.Unlock()

	writeData(w, asAny(list)...)
}

func (s *Server) handleAllUsers(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	list := make([]model.User, 0, len(s.accounts))
	for _, acc := range s.accounts {
		list = append(list, acc.user)
	}
	s.mu.Unlock()

	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	writeData(w, asAny(list)...)
}

func (s *Server) handleJoinDate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeFault(w, http.StatusBadRequest, "Bad Request", "Malformed user id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, acc := range s.accounts {
		if acc.user.ID == id {
			writeData(w, acc.user.CreatedAt.Format(time.RFC3339))
			return
		}
	}

	writeFault(w, http.StatusNotFound, "Not Found", "User does not exist")
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeFault(w, http.StatusBadRequest, "Bad Request", "Malformed user id")
		return
	}

	var u model.User
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		writeFault(w, http.StatusBadRequest, "Bad Request", "Malformed user payload")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for email, acc := range s.accounts {
		if acc.user.ID == id {
			u.ID = id
			u.CreatedAt = acc.user.CreatedAt
			s.accounts[email].user = u
			writeData(w, u)
			return
		}
	}

	writeFault(w, http.StatusNotFound, "Not Found", "User does not exist")
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeFault(w, http.StatusBadRequest, "Bad Request", "Malformed user id")
		return
	}

	s.mu.Lock()
	for email, acc := range s.accounts {
		if acc.user.ID == id {
			delete(s.accounts, email)
			break
		}
	}
	s.mu.Unlock()

	writeData(w, true)
}
