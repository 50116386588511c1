package estimator

import (
	"context"
	"errors"
	"fmt"

	"github.com/Carveion/JUNKFU-V2/internal/domain"
)

// Estimate is the calorie guess for a free-text food description.
type Estimate struct {
	FoodName     string   `json:"foodName"`
	Calories     int      `json:"calories"`
	AssumedGrams *float64 `json:"assumedGrams,omitempty"`
}

// Estimator turns free-text food descriptions into calorie numbers. Every
// failure wraps domain.ErrEstimatorFailure; a failed call never yields a
// zero-calorie result.
type Estimator interface {
	Estimate(ctx context.Context, description string) (*Estimate, error)
	ParseMealDescription(ctx context.Context, description string) ([]domain.StandardMealItem, error)
}

// Disabled is used when no estimator is configured.
type Disabled struct{}

var errNotConfigured = errors.New("estimator is not configured (set ANTHROPIC_API_KEY)")

func (Disabled) Estimate(context.Context, string) (*Estimate, error) {
	return nil, failure(errNotConfigured)
}

func (Disabled) ParseMealDescription(context.Context, string) ([]domain.StandardMealItem, error) {
	return nil, failure(errNotConfigured)
}

func failure(err error) error {
	return fmt.Errorf("%w: %v", domain.ErrEstimatorFailure, err)
}
