package main

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/image-compressor/internal/codec"
	"github.com/aliskhannn/image-compressor/internal/commit"
	"github.com/aliskhannn/image-compressor/internal/config"
	"github.com/aliskhannn/image-compressor/internal/pathlock"
	"github.com/aliskhannn/image-compressor/internal/processor"
	"github.com/aliskhannn/image-compressor/internal/repository/outcome"
	"github.com/aliskhannn/image-compressor/internal/resize"
	"github.com/aliskhannn/image-compressor/internal/service/compress"
	"github.com/aliskhannn/image-compressor/internal/trash"
)

type commandContext struct {
	configFlag  *string
	workersFlag *int

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string, workersFlag *int) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		workersFlag: workersFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.workersFlag != nil && *c.workersFlag > 0 {
			cfg.Workers = *c.workersFlag
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// app holds the wired pipeline for one command invocation.
type app struct {
	cfg     *config.Config
	service *compress.Service
	journal *outcome.Repository
	db      *dbpg.DB
}

// newApp wires the pipeline: trash, commit, codecs, resize, locks, and the
// outcome journal when the database is enabled.
func (c *commandContext) newApp(ctx context.Context) (*app, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}

	t, err := trash.New(ctx, cfg.Trash, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to set up trash: %w", err)
	}

	dispatcher := codec.NewDispatcher(cfg.TotalThreads())
	engine := resize.NewEngine(dispatcher)
	committer := commit.NewManager(t)

	p := processor.New(engine, dispatcher, committer, nil)
	if cfg.LockPaths {
		p = processor.New(engine, dispatcher, committer, pathlock.New(""))
	}

	a := &app{cfg: cfg}
	if cfg.Database.Enabled {
		if a.db, err = connectDB(cfg.Database); err != nil {
			return nil, err
		}
		a.journal = outcome.NewRepository(a.db)
		a.service = compress.New(p, a.journal, cfg.Workers)
	} else {
		a.service = compress.New(p, nil, cfg.Workers)
	}

	return a, nil
}

func (a *app) close() {
	if a.db == nil {
		return
	}
	// Close master and slave databases.
	if err := a.db.Master.Close(); err != nil {
		zlog.Logger.Err(err).Msg("failed to close master DB")
	}
	for i, s := range a.db.Slaves {
		if err := s.Close(); err != nil {
			zlog.Logger.Err(err).Int("slave", i).Msg("failed to close slave DB")
		}
	}
}

// connectDB connects to PostgreSQL (master and slaves).
func connectDB(cfg config.Database) (*dbpg.DB, error) {
	opts := &dbpg.Options{
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}

	slaveDSNs := make([]string, 0, len(cfg.Slaves))
	for _, s := range cfg.Slaves {
		slaveDSNs = append(slaveDSNs, s.DSN())
	}

	db, err := dbpg.New(cfg.Master.DSN(), slaveDSNs, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}
