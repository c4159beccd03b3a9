package cli

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dnovikovs/recordkeeper/internal/client/api"
	"github.com/dnovikovs/recordkeeper/internal/client/config"
	"github.com/dnovikovs/recordkeeper/internal/client/guard"
	"github.com/dnovikovs/recordkeeper/internal/client/models"
	"github.com/dnovikovs/recordkeeper/internal/client/notify"
	"github.com/dnovikovs/recordkeeper/internal/client/records"
	"github.com/dnovikovs/recordkeeper/internal/client/session"
	"github.com/dnovikovs/recordkeeper/internal/logging"
)

type Mode string

const (
	ModeOnline  Mode = "online"
	ModeOffline Mode = "offline"
)

// sessionService is the slice of session.Manager the CLI needs.
type sessionService interface {
	Login(ctx context.Context, creds models.Credentials) error
	Register(ctx context.Context, reg models.Registration) error
	Logout(ctx context.Context)
	CheckAuth(ctx context.Context)
	IsLoggedIn() bool
	User() *models.User
	Preferences(ctx context.Context) (models.Preferences, error)
	UpdatePreferences(ctx context.Context, patch models.Preferences) (models.Preferences, error)
}

// recordService is the slice of records.Store the CLI needs.
type recordService interface {
	List(ctx context.Context, filters map[string]string) error
	Create(ctx context.Context, form models.RecordForm) (*models.Record, error)
	Update(ctx context.Context, id string, form models.RecordForm) (*models.Record, error)
	Delete(ctx context.Context, id string) error
	GetOne(ctx context.Context, id string) (*models.Record, error)
	Records() []models.Record
	Total() int
	Page() int
	TotalPages() int
	Statistics() records.Statistics
	GoToPage(ctx context.Context, page int) error
	NextPage(ctx context.Context) error
	PrevPage(ctx context.Context) error
}

type guardService interface {
	Check(ctx context.Context, target string) guard.Decision
}

type pinger interface {
	Ping(ctx context.Context) error
}

// App is the terminal front end. The original web pages collapse into views
// addressed by path; every move between them goes through the route guard.
type App struct {
	config   *config.Config
	sessions sessionService
	records  recordService
	guard    guardService
	bus      *notify.Bus
	api      pinger
	store    *session.SQLiteStore
	log      logging.Logger
	reader   *bufio.Reader

	path            string
	pendingRedirect string
	Mode            Mode
}

// sessionDBFile is the local store holding the auth token and preferences.
const sessionDBFile = "session.db"

func NewApp(cfg *config.Config) (*App, error) {
	ctx := context.Background()

	logger := logging.NewTextLogger(os.Stderr, slog.LevelInfo)
	bus := notify.NewBus()
	client := api.New(cfg.APIBaseURL, bus, logger)

	store, err := session.OpenStore(ctx, sessionDBFile)
	if err != nil {
		logger.Error(ctx, "error initializing session store", "err", err)
		return nil, err
	}

	a := &App{
		config: cfg,
		bus:    bus,
		api:    client,
		store:  store,
		log:    logger,
		reader: bufio.NewReader(os.Stdin),
		path:   "/",
		Mode:   ModeOnline,
	}

	mgr := session.NewManager(ctx, client, store, a, logger)
	client.SetTokenSource(mgr)

	a.sessions = mgr
	a.guard = guard.New(mgr)
	a.records = records.NewStore(client)

	bus.OnPush(a.printToast)

	return a, nil
}

// Navigate implements session.Navigator: auth transitions move the app
// between views directly, bypassing the guard (they are its outcomes).
func (a *App) Navigate(path string) {
	a.path = path
}

func (a *App) Run(ctx context.Context) {
	defer a.store.Close()

	// reconcile persisted auth state before the first prompt
	a.sessions.CheckAuth(ctx)

	go a.startOnlineStatusWatcher(ctx, a.config.HealthCheckInterval)

	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.sessions.IsLoggedIn()
}

func (a *App) printToast(n notify.Notification) {
	printlnFn(fmt.Sprintf("[%s] %s", strings.ToUpper(string(n.Type)), n.Message))
}

func (a *App) setMode(mode Mode) {
	if a.Mode != mode {
		a.Mode = mode
		printlnFn(fmt.Sprintf("Switched to %s mode", mode))
	}
}

// startOnlineStatusWatcher probes the health endpoint on an interval and
// flips the connectivity mode shown in the prompt.
func (a *App) startOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			probeCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			err := a.api.Ping(probeCtx)
			cancel()

			if err != nil {
				a.setMode(ModeOffline)
			} else {
				a.setMode(ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}
