package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	goredis "github.com/redis/go-redis/v9"

	"github.com/storefront-poc-v1/server/internal/analytics"
	"github.com/storefront-poc-v1/server/internal/cart/catalog"
	"github.com/storefront-poc-v1/server/internal/cart/model"
	"github.com/storefront-poc-v1/server/internal/cart/repo"
	"github.com/storefront-poc-v1/server/internal/cart/store"
	"github.com/storefront-poc-v1/server/internal/core"
	logx "github.com/storefront-poc-v1/server/pkg/logger"
	pkgredis "github.com/storefront-poc-v1/server/pkg/redis"
)

// AppConfig defines all configurable parameters for the storefront demo,
// sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment core.Environment `envconfig:"ENVIRONMENT" default:"development"`

	// Infrastructure
	Redis pkgredis.Config

	Cart      model.CartConfig
	DataLayer model.DataLayerConfig
}

func main() {
	ctx := context.Background()
	// Load .env file
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	var envCfg AppConfig
	if err := envconfig.Process("", &envCfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}
	logx.Init(logx.LoggerOpts{Environment: envCfg.Environment, Service: "storefront"})

	sessionID := envCfg.Cart.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	cat := catalog.Default()
	if envCfg.Cart.CatalogPath != "" {
		loaded, err := catalog.LoadFile(envCfg.Cart.CatalogPath)
		if err != nil {
			logx.Fatal().Err(err).Str("path", envCfg.Cart.CatalogPath).Msg("failed to load catalog")
		}
		cat = loaded
	}

	var rdb *goredis.Client
	if envCfg.Cart.Storage == model.StorageRedis || envCfg.DataLayer.Sink == "redis" {
		rdb = envCfg.Redis.MustNew(ctx)
		defer rdb.Close()
		logx.Info().Msg("connected to redis")
	}

	var storage model.StateStorage
	switch envCfg.Cart.Storage {
	case model.StorageRedis:
		storage = repo.NewRedisStorage(rdb, sessionID, envCfg.Cart.TTL)
	case model.StorageFile:
		storage = repo.NewFileStorage(envCfg.Cart.FilePath)
	default:
		storage = repo.NewMemoryStorage()
	}

	var sink analytics.Sink
	switch envCfg.DataLayer.Sink {
	case "redis":
		sink = analytics.NewRedisSink(rdb, sessionID, envCfg.DataLayer.TTL)
	case "none":
	default:
		sink = analytics.NewMemorySink()
	}
	dl := analytics.New(sink, analytics.Page{
		Title:    envCfg.DataLayer.PageTitle,
		Location: envCfg.DataLayer.PageLocation,
	})
	dl.PageView(ctx)

	cart := store.New(cat, storage, store.WithObserver(analytics.NewCartEvents(dl)))
	restored := cart.Load(ctx)

	fmt.Printf("Session %s (storage=%s), restored %d line(s)\n", sessionID, envCfg.Cart.Storage, restored.Len())

	// ====================================================
	// Simulated UI clicks, keyed by the control's class name
	steps := []struct {
		description string
		control     string
		productID   int
		delta       int
	}{
		{description: "Add tote bag", control: "add-to-cart", productID: 1},
		{description: "Add tote bag again", control: "add-to-cart", productID: 1},
		{description: "Add mug via + button", control: "inc", productID: 2},
		{description: "Add unknown product", control: "add-to-cart", productID: 404},
		{description: "Bump notebook by 3", control: "change", productID: 3, delta: 3},
		{description: "Remove notebook", control: "remove", productID: 3},
		{description: "Decrement mug", control: "dec", productID: 2},
		{description: "Click an unmapped control", control: "wishlist", productID: 1},
	}

	for i, step := range steps {
		kind, ok := store.ParseActionKind(step.control)
		if !ok {
			logx.Debug().Str("control", step.control).Msg("no cart action for control")
		}
		cart.Dispatch(ctx, store.Action{Kind: kind, ProductID: step.productID, Delta: step.delta})
		fmt.Printf("\nStep %d: %s\n", i+1, step.description)
		printCart(cart)
	}

	form := dl.NewFormTracker("checkoutForm", 4)
	form.Focus(ctx)
	time.Sleep(200 * time.Millisecond)
	form.Submit(ctx)
	checkout, _ := store.ParseActionKind("checkout")
	cart.Dispatch(ctx, store.Action{Kind: checkout})

	fmt.Println("\nCheckout completed")
	printCart(cart)

	if ms, ok := sink.(*analytics.MemorySink); ok {
		fmt.Printf("\nData layer captured %d event(s):\n", len(ms.Events()))
		for _, e := range ms.Events() {
			fmt.Printf("  - %s\n", e.Name())
		}
	}
}

func printCart(cart *store.Store) {
	for _, line := range cart.Snapshot() {
		fmt.Printf("  %-18s x%-3d %8s\n", line.Product.Name, line.Quantity, line.LineTotal.StringFixed(2))
	}
	fmt.Printf("  items: %d  total: %s\n", cart.TotalQuantity(), cart.TotalPrice().StringFixed(2))
}
