package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mmeshcher/storefront-client/internal/model"
)

func TestLogin_Success(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/auth/login" {
			t.Fatalf("path = %s, want /auth/login", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if r.PostForm.Get("email") != "user@shop.test" {
			t.Fatalf("email = %q", r.PostForm.Get("email"))
		}
		if r.PostForm.Get("password") != "secret" {
			t.Fatalf("password field missing")
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":["abc.def.ghi"]}`))
	}))
	defer ts.Close()

	client := NewClient(ts.URL, time.Second, nil)

	token, err := client.Login(context.Background(), "user@shop.test", "secret")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if token != "abc.def.ghi" {
		t.Fatalf("token = %q, want abc.def.ghi", token)
	}
}

func TestLogin_Unsuccessful(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":false}`))
	}))
	defer ts.Close()

	client := NewClient(ts.URL, time.Second, nil)

	token, err := client.Login(context.Background(), "user@shop.test", "wrong")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if token != "" {
		t.Fatalf("token = %q, want empty", token)
	}
}

func TestProducts_DecodesList(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/product/all" {
			t.Fatalf("path = %s, want /product/all", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":[
			{"id":1,"name":"Sourdough","price":4.5,"stock":12},
			{"id":2,"name":"Croissant","price":2.2,"stock":40}
		]}`))
	}))
	defer ts.Close()

	client := NewClient(ts.URL, time.Second, nil)

	products, err := client.Products(context.Background())
	if err != nil {
		t.Fatalf("Products error: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("len = %d, want 2", len(products))
	}
	if products[0].Name != "Sourdough" || products[1].Stock != 40 {
		t.Fatalf("unexpected products: %+v", products)
	}
}

func TestProductSuggestions_EmptyQueryNoRequest(t *testing.T) {
	requested := false
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = true
	}))
	defer ts.Close()

	client := NewClient(ts.URL, time.Second, nil)

	suggestions, err := client.ProductSuggestions(context.Background(), "")
	if err != nil {
		t.Fatalf("ProductSuggestions error: %v", err)
	}
	if suggestions != nil {
		t.Fatalf("expected nil suggestions for empty query")
	}
	if requested {
		t.Fatalf("empty query must not reach the backend")
	}
}

func TestOrdersByUser_SortsNewestFirst(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/order/user/7" {
			t.Fatalf("path = %s, want /order/user/7", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":[
			{"id":1,"orderGuid":"a","createdAt":"2026-01-10T10:00:00Z"},
			{"id":2,"orderGuid":"b","createdAt":"2026-03-01T10:00:00Z"},
			{"id":3,"orderGuid":"c","createdAt":"2026-02-15T10:00:00Z"}
		]}`))
	}))
	defer ts.Close()

	client := NewClient(ts.URL, time.Second, nil)

	orders, err := client.OrdersByUser(context.Background(), 7)
	if err != nil {
		t.Fatalf("OrdersByUser error: %v", err)
	}
	if len(orders) != 3 {
		t.Fatalf("len = %d, want 3", len(orders))
	}
	if orders[0].OrderGUID != "b" || orders[1].OrderGUID != "c" || orders[2].OrderGUID != "a" {
		t.Fatalf("orders not sorted newest first: %+v", orders)
	}
}

func TestCreateAddress_DecodesSingleObject(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/address/create" {
			t.Fatalf("path = %s, want /address/create", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":{"id":5,"street":"Main 1","city":"Gdansk"}}`))
	}))
	defer ts.Close()

	client := NewClient(ts.URL, time.Second, nil)

	addr, err := client.CreateAddress(context.Background(), testAddress())
	if err != nil {
		t.Fatalf("CreateAddress error: %v", err)
	}
	if addr.ID != 5 || addr.City != "Gdansk" {
		t.Fatalf("unexpected address: %+v", addr)
	}
}

func testAddress() model.UserAddress {
	return model.UserAddress{
		Label:         "Home",
		Street:        "Main 1",
		City:          "Gdansk",
		PostalCode:    "80-001",
		Country:       "Poland",
		PhoneAreaCode: "48",
		PhoneNumber:   "500100200",
	}
}

func TestUserJoinDate(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user/3/joindate" {
			t.Fatalf("path = %s, want /user/3/joindate", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":["2024-05-01T12:00:00Z"]}`))
	}))
	defer ts.Close()

	client := NewClient(ts.URL, time.Second, nil)

	joined, err := client.UserJoinDate(context.Background(), 3)
	if err != nil {
		t.Fatalf("UserJoinDate error: %v", err)
	}
	if joined.Year() != 2024 || joined.Month() != time.May {
		t.Fatalf("unexpected join date: %v", joined)
	}
}
