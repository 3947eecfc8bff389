// Package main запускает консольный клиент интернет-магазина: поднимает
// стек клиента, входит по учётным данным из окружения и печатает сводку
// витрины, корзины и заказов.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/mmeshcher/storefront-client/internal/api"
	"github.com/mmeshcher/storefront-client/internal/cart"
	"github.com/mmeshcher/storefront-client/internal/config"
	"github.com/mmeshcher/storefront-client/internal/model"
	"github.com/mmeshcher/storefront-client/internal/prompts"
	"github.com/mmeshcher/storefront-client/internal/session"
	"github.com/mmeshcher/storefront-client/internal/storage"
)

// logPresenter выводит глобальные диалоги в журнал.
type logPresenter struct {
	sugar *zap.SugaredLogger
}

func (p logPresenter) Show(prompt *prompts.Prompt) {
	p.sugar.Warnw("prompt shown", "kind", prompt.Kind, "title", prompt.Title, "message", prompt.Message)
}

func (p logPresenter) Hide(prompt *prompts.Prompt) {
	p.sugar.Infow("prompt hidden", "kind", prompt.Kind)
}

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	store, err := storage.NewFileStorage(cfg.StateDir)
	if err != nil {
		sugar.Fatalw("state storage initialization error", "error", err.Error())
	}

	host := prompts.NewHost(logPresenter{sugar: sugar}, func() {
		sugar.Infow("navigation requested", "target", "sign-in")
	})

	transport := api.NewFaultTransport(nil, store, host)
	client := api.NewClient(cfg.APIBaseURL, cfg.RequestTimeout, transport)
	sess := session.NewManager(store, client)
	cartStore := cart.NewStore(store, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if !sess.IsAuthenticated() {
		email := os.Getenv("STOREFRONT_EMAIL")
		password := os.Getenv("STOREFRONT_PASSWORD")
		if email != "" && password != "" {
			if sess.Login(ctx, email, password) {
				sugar.Infow("logged in", "email", email)
			} else {
				sugar.Warnw("login rejected", "email", email)
			}
		}
	}

	if identity := sess.CurrentIdentity(); identity != nil {
		sugar.Infow("session active",
			"user", identity.Name+" "+identity.Surname,
			"role", identity.Role,
		)

		orders, err := client.OrdersByUser(ctx, identity.ID)
		if err != nil {
			sugar.Warnw("orders unavailable", "error", err.Error())
		} else {
			sugar.Infow("order history", "count", len(orders))
		}
	} else {
		sugar.Info("no active session")
	}

	products, err := client.VisibleProducts(ctx)
	if err != nil {
		sugar.Fatalw("catalog unavailable", "error", err.Error())
	}
	sugar.Infow("catalog loaded", "products", len(products))

	unsubscribe := cartStore.Subscribe(func(snap model.CartSnapshot) {
		sugar.Infow("cart updated", "items", snap.Count, "subtotal", snap.Subtotal)
	})
	defer unsubscribe()
}
