package bootstrap

import (
	"context"
	"errors"
	"net/http"

	"fxfolio-service/internal/application"
	"fxfolio-service/internal/config"
	httpserver "fxfolio-service/internal/infrastructure/http"
	"fxfolio-service/internal/infrastructure/httpx"
	"fxfolio-service/internal/infrastructure/logx"
	"fxfolio-service/internal/infrastructure/pg"
	"fxfolio-service/internal/infrastructure/provider"
	redisstore "fxfolio-service/internal/infrastructure/redis"
	"fxfolio-service/internal/infrastructure/worker"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var ErrMissingDBURL = errors.New("DATABASE_URL is required")

type Repos struct {
	Bars        application.BarStore
	Investments application.InvestmentRepo
	Sells       application.SellRecordRepo
	UoW         application.UnitOfWork
}

func ProvideLogger() *zap.Logger { return logx.L() }

func ProvideConfig() config.Config { return config.Load() }

func ProvideDB(ctx context.Context, log *zap.Logger, cfg config.Config) (*pg.DB, func(), error) {
	if cfg.DatabaseURL == "" {
		return nil, func() {}, ErrMissingDBURL
	}
	db, err := pg.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, func() {}, err
	}
	if err := pg.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, func() {}, err
	}
	cleanup := func() {
		if log != nil {
			log.Info("closing pg")
		}
		db.Close()
	}
	return db, cleanup, nil
}

func ProvideRepos(db *pg.DB) Repos {
	return Repos{
		Bars:        pg.NewBarRepo(db),
		Investments: pg.NewInvestmentRepo(db),
		Sells:       pg.NewSellRecordRepo(db),
		UoW:         &pg.UnitOfWork{Pool: db.Pool},
	}
}

// ProvideRedisClient returns nil when REDIS_ADDR is unset; the history cache
// degrades to a pass-through in that case.
func ProvideRedisClient(cfg config.Config) (*redis.Client, func(), error) {
	if cfg.RedisAddr == "" {
		return nil, func() {}, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	return client, func() { _ = client.Close() }, nil
}

func ProvideMarketProvider(cfg config.Config) (application.MarketProvider, error) {
	switch cfg.Provider {
	case "yahoo":
		httpClient := &http.Client{Timeout: cfg.RequestTimeout}
		return &provider.YahooChartProvider{
			BaseURL: cfg.YahooAPIBase,
			Client:  httpClient,
			Live:    &httpx.Client{HTTP: httpClient},
		}, nil
	default:
		return provider.NewFake(cfg.FakePrice), nil
	}
}

func ProvideHistoryService(r Repos, mp application.MarketProvider, log *zap.Logger) *application.HistoryService {
	return application.NewHistoryService(r.Bars, mp, application.WithLogger(log))
}

func ProvideHistoryFetcher(svc *application.HistoryService, client *redis.Client, cfg config.Config) application.HistoryFetcher {
	return redisstore.NewHistoryCache(client, svc, cfg.HistoryTTL)
}

func ProvideRatesService(mp application.MarketProvider, r Repos, log *zap.Logger) *application.RatesService {
	return application.NewRatesService(mp, r.Bars, application.WithRatesLogger(log))
}

func ProvideIndicatorsService(history application.HistoryFetcher, rates *application.RatesService) *application.IndicatorsService {
	return application.NewIndicatorsService(history, rates)
}

func ProvidePortfolioService(r Repos) *application.PortfolioService {
	return application.NewPortfolioService(r.Investments, r.Sells, r.UoW)
}

func ProvideServer(
	db *pg.DB,
	history application.HistoryFetcher,
	rates *application.RatesService,
	indicators *application.IndicatorsService,
	portfolio *application.PortfolioService,
) *httpserver.Server {
	return httpserver.NewServer(history, rates, indicators, portfolio, httpserver.WithPing(db.Ping))
}

func ProvideRefresher(history application.HistoryFetcher, log *zap.Logger, cfg config.Config) application.Worker {
	return &worker.Refresher{
		History:  history,
		Interval: cfg.RefreshInterval,
		Months:   cfg.HistoryMonths,
		Log:      log,
	}
}
