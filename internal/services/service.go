package services

import (
	"soundsocial/config"
	"soundsocial/internal/cache"
	"soundsocial/internal/database"
	"soundsocial/internal/logger"
	"soundsocial/internal/repositories"
)

type Service struct {
	Transaction *TransactionService
	RateGate    *RateGateService
	MusicBrainz *MusicBrainzService
	Catalog     *CatalogService
	Rating      *RatingService
}

func New(db database.DB, config config.Config) Service {
	repos := repositories.New(db)
	transactionService := NewTransactionService(db)

	// The response cache and rate gate are created once per process and
	// shared by every request; neither survives a restart.
	responseCache := cache.New[string, any](config.CacheTTL(), config.CatalogCacheSize)
	rateGateService := NewRateGateService(config.RemoteDelay())

	musicBrainzService := NewMusicBrainzService(config, rateGateService, responseCache)
	catalogService := NewCatalogService(repos, musicBrainzService)
	ratingService := NewRatingService(repos, transactionService)

	logger.New("services").Function("New").Info("initialized services",
		"remoteDelay", rateGateService.Delay(),
		"cacheTTL", config.CacheTTL(),
		"cacheCapacity", config.CatalogCacheSize,
	)

	return Service{
		Transaction: transactionService,
		RateGate:    rateGateService,
		MusicBrainz: musicBrainzService,
		Catalog:     catalogService,
		Rating:      ratingService,
	}
}
