package app

import (
	"context"
	"errors"
	"time"

	"github.com/gilsonricardopeloso/devretain/internal/config"
	"github.com/gilsonricardopeloso/devretain/internal/database"
	dbpostgres "github.com/gilsonricardopeloso/devretain/internal/database/postgres"
	"github.com/gilsonricardopeloso/devretain/internal/events"
	"github.com/gilsonricardopeloso/devretain/internal/infrastructure/broker"
	"github.com/gilsonricardopeloso/devretain/internal/infrastructure/cache"
	"github.com/gilsonricardopeloso/devretain/internal/pkg/logger"
	"github.com/gilsonricardopeloso/devretain/internal/ws"
)

// Container owns the process-wide resources. Postgres is required; Redis and
// RabbitMQ degrade to no-ops when unreachable.
type Container struct {
	Config config.Config
	Logger *logger.Logger
	DB     database.DB
	Redis  *cache.Redis
	Broker *broker.RabbitMQ
	Hub    *ws.Hub
	Events events.Publisher
}

func NewContainer(cfg config.Config, log *logger.Logger) (*Container, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := dbpostgres.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	log.Info("postgres connected", "host", cfg.Database.DBHost, "db", cfg.Database.DBName)

	c := &Container{
		Config: cfg,
		Logger: log,
		DB:     db,
		Redis:  cache.NewRedis(cfg.Redis, log),
		Hub:    ws.NewHub(log),
	}

	sinks := []events.Publisher{c.Hub}
	if cfg.AMQP.URL != "" {
		b, err := broker.NewRabbitMQ(cfg.AMQP, log)
		if err != nil {
			log.Warn("rabbitmq unavailable, events stay in process", "error", err)
		} else {
			c.Broker = b
			sinks = append(sinks, b)
		}
	}
	c.Events = events.NewFanout(sinks...)

	return c, nil
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.Broker != nil {
		errs = append(errs, c.Broker.Close())
	}
	if c.Redis != nil {
		errs = append(errs, c.Redis.Close())
	}
	if c.DB != nil {
		errs = append(errs, c.DB.Close())
	}
	return errors.Join(errs...)
}
