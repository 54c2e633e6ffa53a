package main

import (
	"context"
	"errors"
	stdLog "log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/Astemirdum/bookbuster/lending/app"
	"github.com/Astemirdum/bookbuster/lending/config"
	"github.com/Astemirdum/bookbuster/pkg/sqldb"
)

type flags struct {
	envFile  string
	logLevel string
	port     string
	driver   string
}

func (f *flags) config() (*config.Config, error) {
	if err := godotenv.Load(f.envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	level, err := zapcore.ParseLevel(f.logLevel)
	if err != nil {
		return nil, err
	}
	return config.NewConfig(
		config.WithLogLevel(level),
		config.WithWriteTimeout(time.Minute),
		config.WithPort(f.port),
		config.WithDriver(sqldb.Dialect(f.driver)),
	), nil
}

func main() {
	f := &flags{}

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the lending HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := f.config()
			if err != nil {
				return err
			}
			return app.Run(cmd.Context(), cfg)
		},
	}
	serve.Flags().StringVar(&f.port, "port", "", "listen port, overrides LENDING_HTTP_PORT")

	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := f.config()
			if err != nil {
				return err
			}
			return app.Migrate(cmd.Context(), cfg)
		},
	}

	root := &cobra.Command{
		Use:           "lending",
		Short:         "BookBuster lending service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}
	root.PersistentFlags().StringVar(&f.envFile, "env", ".env", "dotenv file to load")
	root.PersistentFlags().StringVar(&f.logLevel, "log-level", "debug", "log level")
	root.PersistentFlags().StringVar(&f.driver, "driver", "", "database driver: postgres, mysql or sqlite3")
	root.AddCommand(serve, migrate)

	if err := root.ExecuteContext(context.Background()); err != nil {
		stdLog.Fatal("lending: ", err)
	}
}
