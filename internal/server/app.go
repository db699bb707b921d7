// Package server initializes and runs the timesheet server.
// It opens the configured table store behind a read cache, checks the
// schema, wires the services and serves gRPC until a shutdown signal.
package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/timesheet/internal/common"
	"github.com/dmitrijs2005/timesheet/internal/logging"
	"github.com/dmitrijs2005/timesheet/internal/server/config"
	"github.com/dmitrijs2005/timesheet/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/timesheet/internal/server/services"
	"github.com/dmitrijs2005/timesheet/internal/server/sessions"
	"github.com/dmitrijs2005/timesheet/internal/server/tabular"

	gs "github.com/dmitrijs2005/timesheet/internal/server/grpc"
)

// sweepInterval is how often expired sessions are dropped.
const sweepInterval = 5 * time.Minute

type App struct {
	config   *config.Config
	logger   logging.Logger
	server   *gs.GRPCServer
	sessions *sessions.Manager
	closers  []func() error
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	if err := c.Validate(); err != nil {
		return nil, err
	}

	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrConfiguration, err)
	}
	logger := logging.NewJSONLogger(os.Stdout, level)

	store, closers, err := openStore(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("store init error: %w", err)
	}
	cached := tabular.NewCached(store, c.CacheTTL)

	rm := repomanager.NewTabularRepositoryManager(cached)
	if err := rm.CheckSchema(ctx); err != nil {
		closeAll(closers)
		return nil, fmt.Errorf("schema check: %w", err)
	}

	sm := sessions.NewManager(c.SecretKey, c.SessionLifetime)
	audit := services.NewAuditRecorder(rm, logger)

	srv, err := gs.NewGRPCServer(c.EndpointAddrGRPC, logger, gs.Services{
		Credentials: services.NewCredentialService(rm, sm, audit, logger, c.BcryptCost),
		Preferences: services.NewPreferenceService(rm, sm, audit, logger),
		Timesheets:  services.NewTimesheetService(rm, audit, logger),
		Audit:       audit,
		Sessions:    sm,
	})
	if err != nil {
		closeAll(closers)
		return nil, err
	}

	logger.Info(ctx, "store ready", "backend", c.Backend, "cache_ttl", c.CacheTTL.String())

	return &App{config: c, logger: logger, server: srv, sessions: sm, closers: closers}, nil
}

// openStore builds the configured backend. The returned closers release
// its connections.
func openStore(ctx context.Context, c *config.Config) (tabular.Store, []func() error, error) {
	switch c.Backend {
	case config.BackendWorkbook:
		blob, err := openBlob(ctx, c)
		if err != nil {
			return nil, nil, err
		}
		return tabular.NewWorkbook(blob), nil, nil

	case config.BackendPostgres:
		db, err := tabular.OpenPostgres(c.DatabaseDSN)
		if err != nil {
			return nil, nil, err
		}
		p := tabular.NewPostgres(db)
		if err := p.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return p, []func() error{db.Close}, nil

	case config.BackendMemory:
		m := tabular.NewMemory()
		if err := seedMemory(ctx, m, c); err != nil {
			return nil, nil, err
		}
		return m, nil, nil
	}

	return nil, nil, fmt.Errorf("%w: unknown backend %q", common.ErrConfiguration, c.Backend)
}

func openBlob(ctx context.Context, c *config.Config) (tabular.Blob, error) {
	bucket, key, ok := tabular.ParseS3Location(c.WorkbookLocation)
	if !ok {
		return tabular.FileBlob{Path: c.WorkbookLocation}, nil
	}

	client, err := tabular.NewS3Client(ctx, tabular.S3Config{
		AccessKey:    c.S3AccessKey,
		SecretKey:    c.S3SecretKey,
		Region:       c.S3Region,
		BaseEndpoint: c.S3BaseEndpoint,
	})
	if err != nil {
		return nil, err
	}
	return tabular.NewS3Blob(client, bucket, key), nil
}

// seedMemory copies the user and attendance tables from the configured
// workbook, when there is one, so the memory backend starts from a
// snapshot. Writes are never saved back.
func seedMemory(ctx context.Context, m *tabular.Memory, c *config.Config) error {
	if c.WorkbookLocation == "" {
		m.Seed(common.TableUsers, common.UserHeader)
		m.Seed(common.TableAttendance, common.AttendanceHeader)
		return nil
	}

	blob, err := openBlob(ctx, c)
	if err != nil {
		return err
	}
	src := tabular.NewWorkbook(blob)

	for _, t := range []struct {
		name   string
		header []string
	}{
		{common.TableUsers, common.UserHeader},
		{common.TableAttendance, common.AttendanceHeader},
	} {
		tbl, err := src.ReadAll(ctx, t.name)
		switch {
		case errors.Is(err, common.ErrNotFound):
			m.Seed(t.name, t.header)
			continue
		case err != nil:
			return err
		}

		rows := make([][]string, 0, len(tbl.Rows))
		for _, r := range tbl.Rows {
			row := make([]string, len(tbl.Header))
			for i, col := range tbl.Header {
				row[i] = r.Get(col)
			}
			rows = append(rows, row)
		}
		m.Seed(t.name, tbl.Header, rows...)
	}
	return nil
}

func closeAll(closers []func() error) error {
	var errs []error
	for _, c := range closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) sweepSessions(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := app.sessions.Sweep(); n > 0 {
				app.logger.Debug(ctx, "expired sessions dropped", "count", n)
			}
		}
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.sweepSessions(ctx)
	}()

	wg.Wait()

	if err := closeAll(app.closers); err != nil {
		app.logger.Error(ctx, "close store", "error", err)
	}
	app.logger.Info(ctx, "Stopped")
}
