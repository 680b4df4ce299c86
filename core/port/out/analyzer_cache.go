package out

import (
	"context"
	"time"

	"analyzer_server/core/domain"
)

// AnalysisCache stores finished analysis results keyed by task content hash.
// A miss is (nil, false, nil); cache errors are never fatal to analysis.
type AnalysisCache interface {
	GetResult(ctx context.Context, key string) (*domain.AnalysisResult, bool, error)
	SetResult(ctx context.Context, key string, result *domain.AnalysisResult, ttl time.Duration) error
}
