package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/pickmart/pickmart-go/internal/api"
	"github.com/pickmart/pickmart-go/internal/credentials"
	"github.com/pickmart/pickmart-go/internal/logger"
	"github.com/pickmart/pickmart-go/internal/orderwatch"
	"github.com/pickmart/pickmart-go/internal/transport"
)

const usage = `Usage: pickmart [flags] <command>

Commands:
  register <username> <password>   Create an account and log in
  login <username> <password>      Log in
  logout                           Log out and forget credentials
  whoami                           Show the current session
  products [query]                 List products
  cart                             Show the cart
  cart add <product-id> <qty>      Add a product to the cart
  cart rm <product-id>             Remove a product from the cart
  order <pickup-point> [comment]   Place a pickup order from the cart
  orders                           List your orders
  watch <order-id>                 Watch an order until it is ready
`

type App struct {
	client  *api.Client
	watcher *orderwatch.Watcher
	logger  logger.Logger
	out     io.Writer
	cleanup func()
}

func NewApp(ctx context.Context, c *Config, out io.Writer) (*App, error) {
	log, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	store, cleanup, err := buildStore(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("error while initializing credential store: %w", err)
	}

	client, err := api.New(api.Config{
		BaseURL: c.APIAddr,
		Store:   store,
		Logger:  log,
	})
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("error while creating api client: %w", err)
	}

	// Bind session-expiry handling once at startup. The transport fires this
	// a single time per failed refresh cycle no matter how many requests
	// were queued behind it.
	client.OnSessionExpired(transport.SessionListenerFunc(func(err error) {
		log.Warn("Session ended", "error", err)
		fmt.Fprintln(out, "Your session has expired. Run 'pickmart login' to sign in again.")
	}))

	return &App{
		client:  client,
		watcher: orderwatch.New(client.Orders, log),
		logger:  log,
		out:     out,
		cleanup: cleanup,
	}, nil
}

// buildStore picks the credential backend: Postgres when a DSN is set, then
// Redis, then the JSON file.
func buildStore(ctx context.Context, c *Config) (credentials.Store, func(), error) {
	switch {
	case c.DatabaseDSN != "":
		pool, err := credentials.ConnectAndMigrate(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, nil, err
		}
		return &credentials.PostgresStore{DB: pool, Name: "default"}, pool.Close, nil

	case c.RedisAddr != "":
		rdb := redis.NewClient(&redis.Options{Addr: c.RedisAddr})
		cleanup := func() { _ = rdb.Close() }
		return credentials.NewRedisStore(rdb, "pickmart:credentials:default"), cleanup, nil

	default:
		path, err := c.CredentialsPath()
		if err != nil {
			return nil, nil, err
		}
		return credentials.NewFileStore(path), func() {}, nil
	}
}

func (a *App) Close() {
	a.cleanup()
}

func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.out, usage)
		return errors.New("no command given")
	}

	command, rest := args[0], args[1:]

	switch command {
	case "register":
		return a.register(ctx, rest)
	case "login":
		return a.login(ctx, rest)
	case "logout":
		return a.client.Auth.Logout(ctx)
	case "whoami":
		return a.whoami(ctx)
	case "products":
		return a.products(ctx, rest)
	case "cart":
		return a.cart(ctx, rest)
	case "order":
		return a.order(ctx, rest)
	case "orders":
		return a.orders(ctx)
	case "watch":
		return a.watch(ctx, rest)
	default:
		fmt.Fprint(a.out, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func (a *App) register(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: pickmart register <username> <password>")
	}

	profile, err := a.client.Auth.Register(ctx, args[0], args[1])
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Registered and logged in as %s\n", profile.Username)
	return nil
}

func (a *App) login(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: pickmart login <username> <password>")
	}

	profile, err := a.client.Auth.Login(ctx, args[0], args[1])
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Logged in as %s\n", profile.Username)
	return nil
}

func (a *App) whoami(ctx context.Context) error {
	session, err := a.client.Auth.Session(ctx)
	if err != nil {
		return err
	}

	if session.Profile != nil {
		fmt.Fprintf(a.out, "Logged in as %s (id %s)\n", session.Profile.Username, session.Profile.ID)
	} else {
		fmt.Fprintln(a.out, "Logged in (no cached profile)")
	}
	if !session.AccessExpiresAt.IsZero() {
		fmt.Fprintf(a.out, "Access token expires at %s\n", session.AccessExpiresAt.Format(time.RFC3339))
	}
	return nil
}

func (a *App) products(ctx context.Context, args []string) error {
	opts := api.ListProductsOpts{}
	if len(args) > 0 {
		opts.Search = args[0]
	}

	products, err := a.client.Catalog.ListProducts(ctx, opts)
	if err != nil {
		return err
	}

	for _, p := range products {
		stock := ""
		if !p.InStock {
			stock = " (out of stock)"
		}
		fmt.Fprintf(a.out, "%s  %-30s %8s%s\n", p.ID, p.Name, p.Price.StringFixed(2), stock)
	}
	return nil
}

func (a *App) cart(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return a.showCart(ctx)
	}

	switch args[0] {
	case "add":
		if len(args) != 3 {
			return errors.New("usage: pickmart cart add <product-id> <qty>")
		}
		productID, err := uuid.Parse(args[1])
		if err != nil {
			return fmt.Errorf("invalid product id: %w", err)
		}
		qty, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid quantity: %w", err)
		}

		if _, err := a.client.Cart.AddItem(ctx, productID, qty); err != nil {
			return err
		}
		return a.showCart(ctx)

	case "rm":
		if len(args) != 2 {
			return errors.New("usage: pickmart cart rm <product-id>")
		}
		productID, err := uuid.Parse(args[1])
		if err != nil {
			return fmt.Errorf("invalid product id: %w", err)
		}

		if _, err := a.client.Cart.RemoveItem(ctx, productID); err != nil {
			return err
		}
		return a.showCart(ctx)

	default:
		return fmt.Errorf("unknown cart command %q", args[0])
	}
}

func (a *App) showCart(ctx context.Context) error {
	cart, err := a.client.Cart.Get(ctx)
	if err != nil {
		return err
	}

	for _, item := range cart.Items {
		fmt.Fprintf(a.out, "%dx %-30s %8s\n", item.Quantity, item.Name, item.LineTotal.StringFixed(2))
	}
	fmt.Fprintf(a.out, "Total: %s\n", cart.Total.StringFixed(2))
	return nil
}

func (a *App) order(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: pickmart order <pickup-point> [comment]")
	}

	comment := ""
	if len(args) > 1 {
		comment = args[1]
	}

	order, err := a.client.Orders.Create(ctx, args[0], comment)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Order %s placed, status %s, total %s\n", order.Number, order.Status, order.Total.StringFixed(2))
	fmt.Fprintf(a.out, "Track it with: pickmart watch %s\n", order.ID)
	return nil
}

func (a *App) orders(ctx context.Context) error {
	orders, err := a.client.Orders.List(ctx)
	if err != nil {
		return err
	}

	for _, o := range orders {
		fmt.Fprintf(a.out, "%s  %-10s %8s  %s\n", o.ID, o.Status, o.Total.StringFixed(2), o.CreatedAt.Format(time.RFC3339))
	}
	return nil
}

func (a *App) watch(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: pickmart watch <order-id>")
	}
	orderID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid order id: %w", err)
	}

	for order := range a.watcher.Watch(ctx, orderID) {
		fmt.Fprintf(a.out, "Order %s is now %s\n", order.Number, order.Status)
	}
	return ctx.Err()
}
