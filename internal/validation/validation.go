package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/rvallee/portfolio-analytics/internal/apperrors"
	"github.com/rvallee/portfolio-analytics/internal/model"
)

// ValidateSymbol checks that an instrument symbol is non-empty and free
// of whitespace.
func ValidateSymbol(symbol string) error {
	if symbol == "" || strings.TrimSpace(symbol) != symbol || strings.ContainsAny(symbol, " \t\n") {
		return fmt.Errorf("%w: %q", apperrors.ErrInvalidSymbol, symbol)
	}
	return nil
}

// ValidatePeriod checks a period selector string, defaulting empty input
// to "all".
func ValidatePeriod(raw string) (model.Period, error) {
	if raw == "" {
		return model.PeriodAll, nil
	}
	period, err := model.ParsePeriod(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %q", apperrors.ErrInvalidPeriod, raw)
	}
	return period, nil
}

// ValidateHolding checks one holding record at the request boundary.
func ValidateHolding(h model.Holding, now time.Time) error {
	if err := ValidateSymbol(h.Symbol); err != nil {
		return err
	}
	if h.Quantity < 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrNegativeQuantity, h.Symbol)
	}
	if h.AverageCost < 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrNegativeCost, h.Symbol)
	}
	if model.Day(h.AcquiredOn).After(model.Day(now)) {
		return fmt.Errorf("%w: %s", apperrors.ErrFutureAcquisition, h.Symbol)
	}
	return nil
}

// ValidateHoldings checks a holdings payload. The slice may be empty;
// services treat an empty portfolio as a degenerate case with neutral
// results rather than an error.
func ValidateHoldings(holdings []model.Holding, now time.Time) error {
	for _, h := range holdings {
		if err := ValidateHolding(h, now); err != nil {
			return err
		}
	}
	return nil
}
