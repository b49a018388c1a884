package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"

	"github.com/pricepoint/go-admin-console/backend"
	"github.com/pricepoint/go-admin-console/credentials"
	"github.com/pricepoint/go-admin-console/guard"
	"github.com/pricepoint/go-admin-console/identity"
	"github.com/pricepoint/go-admin-console/identity/localprovider"
	"github.com/pricepoint/go-admin-console/identity/oidcprovider"
	"github.com/pricepoint/go-admin-console/internal/config"
	"github.com/pricepoint/go-admin-console/internal/utils"
	"github.com/pricepoint/go-admin-console/session"
)

const usage = `usage: console <command> [flags]

commands:
  login           sign in as an administrator (-email, -password)
  logout          sign out and clear stored credentials
  whoami          show the current session
  refresh         mint a new access token for the current session
  watch           keep the session alive, refreshing on an interval
  users           list users (-page, -size)
  products        list products (-page, -size)
  establishments  list establishments (-page, -size)
  prices          list reported prices (-page, -size)
  dashboard       show aggregate counts (-from, -to as YYYY-MM-DD)
`

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error: %s\n", err)
	}
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	if len(os.Args) < 2 {
		fmt.Print(usage)
		return nil
	}
	command, args := os.Args[1], os.Args[2:]

	c := config.New()
	logger := newLogger(c)

	store, err := credentials.NewFileStore(c.GetDataFolder())
	if err != nil {
		return fmt.Errorf("open credential store: %w", err)
	}

	provider, err := newProvider(c, logger)
	if err != nil {
		return fmt.Errorf("configure identity provider: %w", err)
	}

	resolver := &backendResolver{client: backend.NewIdentityClient(c.GetBackendURL(), backend.WithLogger(logger))}

	controller, err := session.NewController(store, provider, resolver,
		session.WithAdminRole(c.GetAdminRole()),
		session.WithRefreshInterval(c.GetRefreshInterval()),
		session.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("build session controller: %w", err)
	}
	defer controller.Close()
	controller.Hydrate()

	client := backend.NewClient(c.GetBackendURL(),
		backend.WithLogger(logger),
		backend.WithHTTPClient(&http.Client{
			Timeout: c.GetHTTPTimeout(),
			Transport: &backend.AuthTransport{
				Tokens:            controller,
				Fallback:          store,
				RetryAfterRefresh: true,
			},
		}),
	)

	console := &console{config: c, controller: controller, client: client, logger: logger}
	return console.dispatch(context.Background(), command, args)
}

type console struct {
	config     config.Config
	controller *session.Controller
	client     *backend.Client
	logger     zerolog.Logger
}

func (a *console) dispatch(ctx context.Context, command string, args []string) error {
	switch command {
	case "login":
		return a.login(ctx, args)
	case "logout":
		return a.controller.Logout(ctx)
	case "whoami":
		return a.whoami()
	case "refresh":
		return a.requireSession(func() error { return a.controller.Refresh(ctx) })
	case "watch":
		return a.requireSession(func() error { return a.watch(ctx) })
	case "users":
		return a.requireSession(func() error { return a.listUsers(ctx, args) })
	case "products":
		return a.requireSession(func() error { return a.listProducts(ctx, args) })
	case "establishments":
		return a.requireSession(func() error { return a.listEstablishments(ctx, args) })
	case "prices":
		return a.requireSession(func() error { return a.listPrices(ctx, args) })
	case "dashboard":
		return a.requireSession(func() error { return a.dashboard(ctx, args) })
	default:
		fmt.Print(usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

// requireSession gates protected commands the same way protected views are
// gated: anything short of a fully authenticated session is turned away.
func (a *console) requireSession(fn func() error) error {
	if decision := guard.Check(a.controller.Snapshot()); !decision.Allow {
		return fmt.Errorf("not signed in; use 'console login' (%s)", decision.RedirectTo)
	}
	return fn()
}

func (a *console) login(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("login", flag.ExitOnError)
	email := flags.String("email", "", "account email")
	password := flags.String("password", "", "account password")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *email == "" || *password == "" {
		return errors.New("login requires -email and -password")
	}

	displayAppname(a.config.GetAppName())

	user, err := a.controller.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Printf("signed in as %s <%s> (%s)\n", user.Name, user.Email, user.Role)
	return nil
}

func (a *console) whoami() error {
	snapshot := a.controller.Snapshot()
	fmt.Printf("state: %s\n", snapshot.State)
	if snapshot.User != nil {
		fmt.Printf("user:  %s <%s> (%s)\n", snapshot.User.Name, snapshot.User.Email, snapshot.User.Role)
	}
	return nil
}

// watch holds the session open and pre-emptively refreshes the access token
// until interrupted.
func (a *console) watch(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	unsubscribe := a.controller.Subscribe(func(s session.Snapshot) {
		a.logger.Info().Str("state", s.State.String()).Msg("session changed")
	})
	defer unsubscribe()

	go a.controller.RunPeriodicRefresh(ctx)
	fmt.Println("watching session; press Ctrl-C to stop")
	waitForStopSignal()
	return nil
}

func (a *console) listUsers(ctx context.Context, args []string) error {
	params, err := parseListParams("users", args)
	if err != nil {
		return err
	}
	page, err := a.client.ListUsers(ctx, params)
	if err != nil {
		return err
	}
	for _, user := range page.Items {
		fmt.Printf("%s  %-30s %-30s %s\n", user.ID, user.Name, user.Email, user.Role)
	}
	printPageFooter(page.Page, page.TotalPages, page.Total)
	return nil
}

func (a *console) listProducts(ctx context.Context, args []string) error {
	params, err := parseListParams("products", args)
	if err != nil {
		return err
	}
	page, err := a.client.ListProducts(ctx, params)
	if err != nil {
		return err
	}
	for _, product := range page.Items {
		lowest := ""
		if product.LowestPrice != nil {
			lowest = fmt.Sprintf("%.2f @ %s", utils.Value(product.LowestPrice), utils.Value(product.LowestPriceEstablishment))
		}
		fmt.Printf("%s  %-40s %-4s %s\n", product.ID, product.Name, product.Unit, lowest)
	}
	printPageFooter(page.Page, page.TotalPages, page.Total)
	return nil
}

func (a *console) listEstablishments(ctx context.Context, args []string) error {
	params, err := parseListParams("establishments", args)
	if err != nil {
		return err
	}
	page, err := a.client.ListEstablishments(ctx, params)
	if err != nil {
		return err
	}
	for _, est := range page.Items {
		fmt.Printf("%s  %-40s %.5f,%.5f\n", est.ID, est.Name, est.Latitude, est.Longitude)
	}
	printPageFooter(page.Page, page.TotalPages, page.Total)
	return nil
}

func (a *console) listPrices(ctx context.Context, args []string) error {
	params, err := parseListParams("prices", args)
	if err != nil {
		return err
	}
	page, err := a.client.ListPrices(ctx, params)
	if err != nil {
		return err
	}
	for _, price := range page.Items {
		mark := " "
		if price.IsProductWithNearExpirationDate {
			mark = "!"
		}
		fmt.Printf("%s  %8.2f  %-6s %s\n", price.ID, price.Value, price.Type, mark)
	}
	printPageFooter(page.Page, page.TotalPages, page.Total)
	return nil
}

func (a *console) dashboard(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("dashboard", flag.ExitOnError)
	fromArg := flags.String("from", "", "start date (YYYY-MM-DD)")
	toArg := flags.String("to", "", "end date (YYYY-MM-DD)")
	if err := flags.Parse(args); err != nil {
		return err
	}

	from, err := parseDate(*fromArg)
	if err != nil {
		return fmt.Errorf("invalid -from: %w", err)
	}
	to, err := parseDate(*toArg)
	if err != nil {
		return fmt.Errorf("invalid -to: %w", err)
	}

	totals, err := a.client.Totals(ctx, from, to)
	if err != nil {
		return err
	}
	fmt.Printf("users:          %d\n", totals.Users)
	fmt.Printf("products:       %d\n", totals.Products)
	fmt.Printf("establishments: %d\n", totals.Establishments)
	fmt.Printf("prices:         %d\n", totals.Prices)
	return nil
}

// backendResolver adapts the backend's identity endpoint to the session's
// resolver interface.
type backendResolver struct {
	client *backend.IdentityClient
}

func (r *backendResolver) ResolveIdentity(ctx context.Context, accessToken string) (*session.BackendIdentity, error) {
	user, err := r.client.ResolveIdentity(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	return &session.BackendIdentity{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  string(user.Role),
	}, nil
}

func newProvider(c config.Config, logger zerolog.Logger) (identity.Provider, error) {
	switch c.GetProviderMode() {
	case config.ProviderModeOIDC:
		return oidcprovider.New(context.Background(), oidcprovider.Config{
			Issuer:       c.GetIdentityIssuer(),
			ClientID:     c.GetIdentityClientID(),
			ClientSecret: c.GetIdentityClientSecret(),
		}, logger)
	case config.ProviderModeLocal:
		provider := localprovider.New(c.GetLocalProviderSecret())
		email := config.GetEnv("LOCAL_ADMIN_EMAIL", "admin@local.test")
		password := config.GetEnv("LOCAL_ADMIN_PASSWORD", "admin")
		name := config.GetEnv("LOCAL_ADMIN_NAME", "Local Admin")
		if err := provider.RegisterUser(email, password, name); err != nil {
			return nil, err
		}
		return provider, nil
	default:
		return nil, fmt.Errorf("unknown provider mode %q", c.GetProviderMode())
	}
}

func newLogger(c config.Config) zerolog.Logger {
	level := zerolog.InfoLevel
	if c.GetEnv() == "DEV" {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Logger()
}

func parseListParams(name string, args []string) (backend.ListParams, error) {
	flags := flag.NewFlagSet(name, flag.ExitOnError)
	page := flags.Int("page", 1, "page number, 1-based")
	size := flags.Int("size", 10, "page size")
	if err := flags.Parse(args); err != nil {
		return backend.ListParams{}, err
	}
	return backend.ListParams{Page: *page, PageSize: *size}, nil
}

func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", value)
}

func printPageFooter(page, totalPages, total int) {
	fmt.Printf("page %d of %d (%d total)\n", page, totalPages, total)
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
