package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/orgchart/internal/server"
	"github.com/iota-uz/orgchart/modules"
	"github.com/iota-uz/orgchart/modules/orgchart"
	"github.com/iota-uz/orgchart/pkg/application"
	"github.com/iota-uz/orgchart/pkg/configuration"
	"github.com/iota-uz/orgchart/pkg/eventbus"
)

func main() {
	conf := configuration.Use()
	logger := conf.Logger()

	defer func() {
		if r := recover(); r != nil {
			logger.WithFields(logrus.Fields{
				"panic": r,
				"stack": string(debug.Stack()),
			}).Error("server panicked")
			os.Exit(1)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, conf.Database.ConnectionString())
	if err != nil {
		panic(fmt.Errorf("failed to connect to database: %w", err))
	}
	defer pool.Close()

	if err := applySchema(ctx, pool); err != nil {
		panic(fmt.Errorf("failed to apply schema: %w", err))
	}

	app := application.New(&application.ApplicationOptions{
		Pool:     pool,
		EventBus: eventbus.NewEventPublisher(logger),
		Logger:   logger,
	})
	if err := modules.Load(app); err != nil {
		panic(err)
	}

	srv, err := server.Default(&server.DefaultOptions{
		Configuration: conf,
		Application:   app,
	})
	if err != nil {
		panic(fmt.Errorf("failed to assemble server: %w", err))
	}

	logger.WithField("address", conf.SocketAddress).Info("starting server")
	if err := srv.Start(conf.SocketAddress); err != nil {
		panic(fmt.Errorf("server stopped: %w", err))
	}
}

func applySchema(ctx context.Context, pool *pgxpool.Pool) error {
	sql, err := orgchart.SchemaSQL()
	if err != nil {
		return err
	}
	_, err = pool.Exec(ctx, string(sql))
	return err
}
