package admin

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/mmeshcher/storefront-client/internal/model"
)

type stubBackend struct {
	products  []model.Product
	users     []model.User
	joinDate  time.Time
	joinErr   error
	deleted   []int64
	activated map[int64]bool
}

func newStubBackend() *stubBackend {
	return &stubBackend{activated: make(map[int64]bool)}
}

func (b *stubBackend) Products(context.Context) ([]model.Product, error) {
	return b.products, nil
}

func (b *stubBackend) CreateProduct(_ context.Context, p model.Product) (model.Product, error) {
	p.ID = int64(len(b.products) + 1)
	b.products = append(b.products, p)
	return p, nil
}

func (b *stubBackend) UpdateProduct(_ context.Context, id int64, p model.Product) (model.Product, error) {
	p.ID = id
	return p, nil
}

func (b *stubBackend) DeleteProduct(_ context.Context, id int64) (bool, error) {
	b.deleted = append(b.deleted, id)
	return true, nil
}

func (b *stubBackend) Categories(context.Context) ([]model.Category, error) {
	return nil, nil
}

func (b *stubBackend) CreateCategory(_ context.Context, name string) (model.Category, error) {
	return model.Category{ID: 1, Name: name, IsActive: true}, nil
}

func (b *stubBackend) ActivateCategory(_ context.Context, id int64) error {
	b.activated[id] = true
	return nil
}

func (b *stubBackend) DeactivateCategory(_ context.Context, id int64) error {
	b.activated[id] = false
	return nil
}

func (b *stubBackend) AllUsers(context.Context) ([]model.User, error) {
	return b.users, nil
}

func (b *stubBackend) UserJoinDate(context.Context, int64) (time.Time, error) {
	return b.joinDate, b.joinErr
}

func (b *stubBackend) UpdateUser(_ context.Context, u model.User) (model.User, error) {
	return u, nil
}

func (b *stubBackend) DeleteUser(_ context.Context, id int64) (bool, error) {
	b.deleted = append(b.deleted, id)
	return true, nil
}

type stubSession struct {
	identity *model.Identity
}

func (s *stubSession) CurrentIdentity() *model.Identity {
	return s.identity
}

func adminSession() *stubSession {
	return &stubSession{identity: &model.Identity{ID: 1, Name: "Anna", Role: model.RoleAdmin}}
}

func TestOperationsRequireAdminRole(t *testing.T) {
	backend := newStubBackend()

	sessions := map[string]*stubSession{
		"anonymous": {},
		"customer":  {identity: &model.Identity{ID: 2, Role: model.RoleUser}},
	}

	for name, sess := range sessions {
		t.Run(name, func(t *testing.T) {
			svc := NewService(backend, sess, nil)

			if _, err := svc.Products(context.Background()); !errors.Is(err, ErrNotAdmin) {
				t.Errorf("Products error = %v, want ErrNotAdmin", err)
			}
			if err := svc.DeleteProduct(context.Background(), 1); !errors.Is(err, ErrNotAdmin) {
				t.Errorf("DeleteProduct error = %v, want ErrNotAdmin", err)
			}
			if _, err := svc.Users(context.Background()); !errors.Is(err, ErrNotAdmin) {
				t.Errorf("Users error = %v, want ErrNotAdmin", err)
			}
			if len(backend.deleted) != 0 {
				t.Error("backend was reached without admin role")
			}
		})
	}
}

func TestProductLifecycle(t *testing.T) {
	backend := newStubBackend()
	svc := NewService(backend, adminSession(), nil)

	created, err := svc.CreateProduct(context.Background(), model.Product{Name: "Rye bread", Price: 4.50})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	if created.ID == 0 {
		t.Error("created product has no id")
	}

	if err := svc.DeleteProduct(context.Background(), created.ID); err != nil {
		t.Fatalf("DeleteProduct: %v", err)
	}
	if len(backend.deleted) != 1 || backend.deleted[0] != created.ID {
		t.Errorf("deleted ids = %v, want [%d]", backend.deleted, created.ID)
	}
}

func TestSetCategoryActive(t *testing.T) {
	backend := newStubBackend()
	svc := NewService(backend, adminSession(), nil)

	if err := svc.SetCategoryActive(context.Background(), 3, true); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if err := svc.SetCategoryActive(context.Background(), 4, false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	if !backend.activated[3] || backend.activated[4] {
		t.Errorf("activation state = %v, want 3 on and 4 off", backend.activated)
	}
}

func TestUserJoinDateFallsBackToZero(t *testing.T) {
	backend := newStubBackend()
	backend.joinErr = errors.New("boom")
	svc := NewService(backend, adminSession(), nil)

	if got := svc.UserJoinDate(context.Background(), 7); !got.IsZero() {
		t.Errorf("join date = %v, want zero time on backend error", got)
	}

	backend.joinErr = nil
	backend.joinDate = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	if got := svc.UserJoinDate(context.Background(), 7); !got.Equal(backend.joinDate) {
		t.Errorf("join date = %v, want %v", got, backend.joinDate)
	}
}

func TestExtractCategories(t *testing.T) {
	products := []model.Product{
		{Name: "Croissant", Category: "Pastry"},
		{Name: "Baguette", Category: "Bread"},
		{Name: "Eclair", Category: "Pastry"},
		{Name: "Mystery"},
	}

	got := ExtractCategories(products)
	want := []string{"Bread", "Pastry"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("categories = %v, want %v", got, want)
	}
}

func TestFilterProducts(t *testing.T) {
	products := []model.Product{
		{ID: 1, Name: "Sourdough", Category: "Bread", Description: "Classic loaf"},
		{ID: 2, Name: "Croissant", Category: "Pastry", Description: "Butter layers"},
		{ID: 3, Name: "Rye loaf", Category: "Bread", Description: "Dark and dense"},
	}

	tests := []struct {
		name     string
		category string
		query    string
		wantIDs  []int64
	}{
		{name: "all", category: "all", wantIDs: []int64{1, 2, 3}},
		{name: "by category", category: "bread", wantIDs: []int64{1, 3}},
		{name: "by name query", category: "all", query: "crois", wantIDs: []int64{2}},
		{name: "by description query", category: "all", query: "LOAF", wantIDs: []int64{1, 3}},
		{name: "category and query", category: "Bread", query: "rye", wantIDs: []int64{3}},
		{name: "no match", category: "Pastry", query: "sourdough", wantIDs: []int64{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := FilterProducts(products, tc.category, tc.query)

			ids := make([]int64, 0, len(got))
			for _, p := range got {
				ids = append(ids, p.ID)
			}
			if !reflect.DeepEqual(ids, tc.wantIDs) {
				t.Errorf("filtered ids = %v, want %v", ids, tc.wantIDs)
			}
		})
	}
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	tests := []struct {
		name    string
		page    int
		perPage int
		want    []int
	}{
		{name: "first page", page: 1, perPage: 3, want: []int{1, 2, 3}},
		{name: "middle page", page: 2, perPage: 3, want: []int{4, 5, 6}},
		{name: "short last page", page: 3, perPage: 3, want: []int{7}},
		{name: "past end", page: 4, perPage: 3, want: nil},
		{name: "zero page", page: 0, perPage: 3, want: nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Paginate(items, tc.page, tc.perPage)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("Paginate(%d, %d) = %v, want %v", tc.page, tc.perPage, got, tc.want)
			}
		})
	}

	if got := TotalPages(7, 3); got != 3 {
		t.Errorf("TotalPages(7, 3) = %d, want 3", got)
	}
	if got := TotalPages(0, 3); got != 0 {
		t.Errorf("TotalPages(0, 3) = %d, want 0", got)
	}
}
