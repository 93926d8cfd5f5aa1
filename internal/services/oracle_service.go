package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"weathercover/internal/database/redis"
	"weathercover/internal/engine"
	"weathercover/internal/event"
	"weathercover/internal/models"
	"weathercover/internal/observability"
	"weathercover/internal/worker"

	"github.com/google/uuid"
)

const (
	readingCacheKeyPrefix = "weathercover:reading:"
	priceCacheKey         = "weathercover:price_usd"
	readingCacheTTL       = 24 * time.Hour
)

// OracleService handles reading submission from the data authority, the
// cached reference price, and authority reassignment. Readings are
// write-through cached in Redis so downstream consumers can read the
// latest value without hitting the engine.
type OracleService struct {
	engine      *engine.Engine
	redisClient *redis.Client
	persistor   *worker.Persistor
	publisher   *event.Publisher
	metrics     *observability.Metrics
}

// NewOracleService creates a new oracle service. The Redis client may be
// nil, which disables caching.
func NewOracleService(eng *engine.Engine, redisClient *redis.Client, persistor *worker.Persistor, publisher *event.Publisher, metrics *observability.Metrics) *OracleService {
	return &OracleService{
		engine:      eng,
		redisClient: redisClient,
		persistor:   persistor,
		publisher:   publisher,
		metrics:     metrics,
	}
}

// SubmitReading stores a reading for a location: a single trusted value,
// or the median of exactly three source values.
func (s *OracleService) SubmitReading(ctx context.Context, caller string, req models.SubmitReadingRequest) (models.WeatherReading, error) {
	if err := req.Validate(); err != nil {
		return models.WeatherReading{}, err
	}

	var reading models.WeatherReading
	var err error
	if req.Value != nil {
		reading, err = s.engine.SubmitReading(caller, req.Location, *req.Value)
	} else {
		reading, err = s.engine.SubmitAggregatedReading(caller, req.Location, req.Values)
	}
	if err != nil {
		return models.WeatherReading{}, err
	}

	slog.Info("Reading stored",
		"location", reading.Location,
		"value", reading.Value,
		"source_count", reading.SourceCount)

	s.metrics.ReadingsSubmitted.Inc()
	if s.persistor != nil {
		s.persistor.SaveReading(reading)
	}
	s.cacheReading(ctx, reading)

	if s.publisher != nil {
		s.publisher.PublishReading(ctx, event.ReadingEvent{
			ID:          uuid.New().String(),
			Location:    reading.Location,
			Value:       reading.Value,
			Timestamp:   reading.Timestamp,
			SourceCount: reading.SourceCount,
		})
	}

	return reading, nil
}

func (s *OracleService) cacheReading(ctx context.Context, reading models.WeatherReading) {
	if s.redisClient == nil {
		return
	}
	data, err := json.Marshal(reading)
	if err != nil {
		return
	}
	key := readingCacheKeyPrefix + reading.Location
	if err := s.redisClient.GetClient().Set(ctx, key, data, readingCacheTTL).Err(); err != nil {
		slog.Error("failed to cache reading", "location", reading.Location, "error", err)
	}
}

// GetReading returns the latest reading for a location.
func (s *OracleService) GetReading(location string) (models.WeatherReading, error) {
	return s.engine.GetReading(location)
}

// SetPrice stores the reference asset price in USD. Authority or owner
// only. The price lives in Redis rather than the engine: it informs
// clients pricing premiums off-platform and has no effect on settlement.
func (s *OracleService) SetPrice(ctx context.Context, caller string, req models.SetPriceRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if caller == "" || (caller != s.engine.DataAuthority() && caller != s.engine.Owner()) {
		return engine.ErrUnauthorized
	}
	if s.redisClient == nil {
		return fmt.Errorf("price cache unavailable")
	}

	err := s.redisClient.GetClient().Set(ctx, priceCacheKey, strconv.FormatFloat(req.PriceUSD, 'f', -1, 64), 0).Err()
	if err != nil {
		return fmt.Errorf("failed to store price: %w", err)
	}

	slog.Info("Reference price updated", "price_usd", req.PriceUSD)
	return nil
}

// GetPrice returns the stored reference price in USD.
func (s *OracleService) GetPrice(ctx context.Context) (float64, error) {
	if s.redisClient == nil {
		return 0, engine.ErrNotFound
	}

	raw, err := s.redisClient.GetClient().Get(ctx, priceCacheKey).Result()
	if err != nil {
		return 0, engine.ErrNotFound
	}
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt price value: %w", err)
	}
	return price, nil
}

// SetAuthority reassigns the data-authority identity. Owner only.
func (s *OracleService) SetAuthority(ctx context.Context, caller string, req models.SetAuthorityRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if err := s.engine.SetDataAuthority(caller, req.Authority); err != nil {
		return err
	}

	slog.Info("Data authority reassigned", "authority", req.Authority)

	if s.persistor != nil {
		s.persistor.SavePoolState(poolState(s.engine))
	}
	return nil
}
