package detector

import (
	"context"
	"fmt"

	"github.com/ivmarkin/veridoc/internal/core/domain"
	"github.com/ivmarkin/veridoc/internal/infrastructure/resilience"
	"github.com/ivmarkin/veridoc/pkg/api"
)

// Scorer rates a single text for AI authorship.
type Scorer interface {
	Score(ctx context.Context, text string) (domain.Detection, error)
}

// Router dispatches detection requests to the scorer registered for the
// requested provider, with retries and a per-provider circuit breaker.
type Router struct {
	executor *resilience.Executor
	scorers  map[api.Provider]Scorer
}

func NewRouter(executor *resilience.Executor) *Router {
	return &Router{
		executor: executor,
		scorers:  make(map[api.Provider]Scorer),
	}
}

func (r *Router) Register(provider api.Provider, scorer Scorer) {
	r.scorers[provider] = scorer
}

func (r *Router) Detect(ctx context.Context, text string, provider api.Provider) (domain.Detection, error) {
	scorer, ok := r.scorers[provider]
	if !ok {
		return domain.Detection{}, domain.WrapError(
			domain.ErrInvalidInput,
			"detect",
			fmt.Errorf("provider %s is not configured", provider),
		)
	}

	operation := "detector." + string(provider)
	var result domain.Detection
	err := r.executor.Execute(ctx, operation, func(ctx context.Context) error {
		scored, scoreErr := scorer.Score(ctx, text)
		if scoreErr != nil {
			return scoreErr
		}
		result = scored
		return nil
	}, classifyDetectorError)
	if err != nil {
		return domain.Detection{}, wrapTemporaryIfNeeded(operation, err)
	}

	result.Provider = provider
	return result, nil
}
