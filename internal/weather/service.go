package weather

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Service fronts a Fetcher: it applies the default range, calls the fetcher,
// and refuses payloads whose series do not line up.
type Service struct {
	fetcher Fetcher
	logger  *zap.Logger
}

// NewService creates a new Service.
func NewService(fetcher Fetcher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		fetcher: fetcher,
		logger:  logger,
	}
}

// Get fetches weather for req. A nil payload is reported as ErrNoData.
func (s *Service) Get(ctx context.Context, req Request) (*Info, error) {
	req = req.WithDefaults()

	s.logger.Debug("fetching weather",
		zap.String("region", req.RegionName),
		zap.String("start", req.StartDate),
		zap.String("end", req.EndDate),
	)

	info, err := s.fetcher.FetchWeather(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("fetch weather for %s: %w", req.RegionName, err)
	}
	if info == nil {
		return nil, ErrNoData
	}
	if err := info.Validate(); err != nil {
		s.logger.Warn("discarding inconsistent weather payload",
			zap.String("region", req.RegionName),
			zap.Error(err),
		)
		return nil, err
	}
	return info, nil
}
