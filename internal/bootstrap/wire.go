//go:build wireinject

package bootstrap

import (
	"context"

	"fxfolio-service/internal/application"
	httpserver "fxfolio-service/internal/infrastructure/http"

	"github.com/google/wire"
)

var infraSet = wire.NewSet(
	ProvideLogger,
	ProvideConfig,
	ProvideDB,
	ProvideRepos,
	ProvideRedisClient,
	ProvideMarketProvider,
	ProvideHistoryService,
	ProvideHistoryFetcher,
	ProvideRatesService,
	ProvideIndicatorsService,
	ProvidePortfolioService,
)

// API injector: builds *httpserver.Server + Cleanup
func InitAPI(ctx context.Context) (*httpserver.Server, func(), error) {
	wire.Build(
		infraSet,
		ProvideServer,
	)
	return nil, nil, nil
}

// Refresher injector: builds application.Worker + Cleanup
func InitRefresher(ctx context.Context) (application.Worker, func(), error) {
	wire.Build(
		infraSet,
		ProvideRefresher,
	)
	return nil, nil, nil
}
