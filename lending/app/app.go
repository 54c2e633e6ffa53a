package app

import (
	"context"
	"net"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Astemirdum/bookbuster/lending/config"
	"github.com/Astemirdum/bookbuster/lending/internal/handler"
	"github.com/Astemirdum/bookbuster/lending/internal/repository"
	"github.com/Astemirdum/bookbuster/lending/internal/server"
	"github.com/Astemirdum/bookbuster/lending/internal/service"
	"github.com/Astemirdum/bookbuster/lending/migrations"
	"github.com/Astemirdum/bookbuster/pkg/kafka"
	"github.com/Astemirdum/bookbuster/pkg/logger"
	"github.com/Astemirdum/bookbuster/pkg/sqldb"
)

// Run serves the lending API until SIGINT or SIGTERM.
func Run(ctx context.Context, cfg *config.Config) error {
	log, err := logger.NewLogger(cfg.Log, "lending")
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	db, err := sqldb.NewDB(ctx, &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		log.Error("db init", zap.Error(err))
		return err
	}
	defer db.Close()

	repo, err := repository.NewRepository(db, cfg.Database.Driver, log)
	if err != nil {
		log.Error("repo", zap.Error(err))
		return err
	}

	pub := kafka.NopPublisher()
	if cfg.Kafka.Enabled() {
		producer, err := kafka.NewProducer(cfg.Kafka)
		if err != nil {
			log.Error("kafka.NewProducer", zap.Error(err))
			return err
		}
		pub = kafka.NewPublisher(producer, cfg.Kafka.Topic)
	}
	defer pub.Close()

	svc := service.NewService(repo, log, service.WithPublisher(pub))
	h := handler.New(svc, log)
	srv := server.NewServer(cfg.Server, h.NewRouter())

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http server start ON: ",
			zap.String("addr", net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))
		return srv.Run()
	})
	g.Go(func() error {
		<-gCtx.Done()
		log.Debug("Graceful shutdown")

		closeCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()
		return srv.Stop(closeCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server", zap.Error(err))
		return err
	}
	log.Info("Graceful shutdown finished")
	return nil
}

// Migrate applies the schema migrations of the configured dialect and exits.
func Migrate(ctx context.Context, cfg *config.Config) error {
	log, err := logger.NewLogger(cfg.Log, "migrate")
	if err != nil {
		return err
	}
	db, err := sqldb.NewDB(ctx, &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		log.Error("migrate", zap.Error(err))
		return err
	}
	log.Info("migrations applied", zap.String("driver", string(cfg.Database.Driver)))
	return db.Close()
}
