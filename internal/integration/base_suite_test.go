package integration_test

import (
	"context"
	"log"
	"net/http/httptest"
	"time"

	"github.com/cinetick/ticketing/internal/app"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
)

const (
	dbName         = "ticketing"
	dbUser         = "test_user"
	dbPassword     = "test_password"
	dbImageName    = "postgres:17-alpine"
	cacheImageName = "redis:7"
	queueImageName = "rabbitmq:3.12-alpine"
)

type BaseSuite struct {
	suite.Suite
	app            *TestApp
	dbContainer    *PostgresContainer
	cacheContainer *RedisContainer
	queueContainer *RabbitContainer
	server         *httptest.Server
	stopPipeline   context.CancelFunc
}

func (s *BaseSuite) SetupSuite() {
	ctx := context.Background()

	postgresContainer, err := getDbContainer(ctx)
	if err != nil {
		log.Printf("failed to start container: %s", err)
		return
	}

	redisContainer, err := getCacheContainer(ctx)
	if err != nil {
		log.Printf("failed to start container: %s", err)
		return
	}

	rabbitContainer, err := getQueueContainer(ctx)
	if err != nil {
		log.Printf("failed to start container: %s", err)
		return
	}

	s.dbContainer = postgresContainer
	s.cacheContainer = redisContainer
	s.queueContainer = rabbitContainer

	cfg := app.Config{
		Port: 3000,
		Env:  "test",
	}
	cfg.DB.Dsn = postgresContainer.ConnectionString
	cfg.DB.MaxOpenConns = 25
	cfg.DB.MaxIdleTime = 2 * time.Minute
	cfg.Redis.Url = redisContainer.ConnectionString
	cfg.Rabbit.Url = rabbitContainer.ConnectionString
	cfg.Pipeline.Workers = 1
	cfg.Pipeline.MaxRetries = 3
	cfg.Pipeline.LockTTL = time.Minute
	cfg.Stripe.Currency = "usd"

	testApp, err := newTestApp(cfg)
	if err != nil {
		log.Printf("cannot initialize app: %s", err)
		return
	}

	s.app = testApp
	s.server = httptest.NewServer(testApp.App.Routes())

	pipelineCtx, cancel := context.WithCancel(context.Background())
	s.stopPipeline = cancel
	testApp.App.StartPipeline(pipelineCtx)

	if err := seedCatalog(ctx, testApp); err != nil {
		log.Printf("failed to seed catalog: %s", err)
	}
}

func (s *BaseSuite) TearDownSuite() {
	if s.stopPipeline != nil {
		s.stopPipeline()
	}
	if s.server != nil {
		s.server.Close()
	}
	if s.app != nil {
		s.app.Close()
	}

	for _, c := range []testcontainers.Container{
		containerOrNil(s.dbContainer),
		cacheOrNil(s.cacheContainer),
		queueOrNil(s.queueContainer),
	} {
		if c == nil {
			continue
		}
		if err := testcontainers.TerminateContainer(c); err != nil {
			log.Printf("failed to terminate container: %s", err)
		}
	}
}

func containerOrNil(c *PostgresContainer) testcontainers.Container {
	if c == nil {
		return nil
	}
	return c.Container
}

func cacheOrNil(c *RedisContainer) testcontainers.Container {
	if c == nil {
		return nil
	}
	return c.Container
}

func queueOrNil(c *RabbitContainer) testcontainers.Container {
	if c == nil {
		return nil
	}
	return c.Container
}
