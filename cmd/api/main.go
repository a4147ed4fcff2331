package main

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/robinjoseph08/golib/signals"
	"github.com/shishobooks/shoka/pkg/config"
	"github.com/shishobooks/shoka/pkg/database"
	"github.com/shishobooks/shoka/pkg/migrations"
	"github.com/shishobooks/shoka/pkg/plugins"
	"github.com/shishobooks/shoka/pkg/refresh"
	"github.com/shishobooks/shoka/pkg/server"
	"github.com/shishobooks/shoka/pkg/version"
	"github.com/shishobooks/shoka/pkg/worker"
)

func main() {
	ctx := context.Background()
	log := logger.New()

	log.Info("starting shoka", logger.Data{"version": version.Version})

	cfg, err := config.New()
	if err != nil {
		log.Err(err).Fatal("config error")
	}

	// Only one process may own the database and the job queue.
	lock := flock.New(cfg.DatabaseFilePath + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		log.Err(err).Fatal("lock error")
	}
	if !locked {
		log.Fatal("another shoka instance is already running", logger.Data{"lock": lock.Path()})
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Err(err).Fatal("database error")
	}

	group, err := migrations.BringUpToDate(ctx, db)
	if err != nil {
		log.Err(err).Fatal("migrations error")
	}
	if group.ID == 0 {
		log.Info("no new migrations to run")
	} else {
		log.Info("migrated to new group", logger.Data{"group_id": group.ID, "migration_names": group.Migrations.String()})
	}

	pluginManager := plugins.NewManager(cfg.PluginDir)
	if err := pluginManager.Load(ctx); err != nil {
		log.Err(err).Warn("plugin load error")
	}

	providers, err := refresh.Providers(cfg, pluginManager)
	if err != nil {
		log.Err(err).Fatal("metadata providers error")
	}

	wrkr := worker.New(cfg, db, providers)

	srv, err := server.New(cfg, db, pluginManager)
	if err != nil {
		log.Err(err).Fatal("server error")
	}

	graceful := signals.Setup()

	go func() {
		lc := net.ListenConfig{}
		listener, err := lc.Listen(ctx, "tcp", fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort))
		if err != nil {
			log.Err(err).Fatal("failed to bind port")
		}
		log.Info("server started", logger.Data{"addr": listener.Addr().String()})

		err = srv.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Err(err).Fatal("server stopped")
		}
		log.Info("server stopped")
	}()

	wrkr.Start()
	log.Info("worker started")

	<-graceful
	log.Info("starting graceful shutdown")

	err = srv.Shutdown(ctx)
	if err != nil {
		log.Err(err).Error("server shutdown error")
	}
	log.Info("server shutdown")

	wrkr.Shutdown()
	log.Info("worker shutdown")

	err = db.Close()
	if err != nil {
		log.Err(err).Error("database close error")
	}
	log.Info("database closed")

	if err := lock.Unlock(); err != nil {
		log.Err(err).Error("unlock error")
	}
}
