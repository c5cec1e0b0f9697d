package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/shopspring/decimal"

	"github.com/iho/goloan/internal/domain"
)

// PreviewScheduleInput represents an ad-hoc schedule request.
type PreviewScheduleInput struct {
	StartDate    time.Time
	Method       domain.Method
	Amount       decimal.Decimal
	InterestRate decimal.Decimal
	TermMonths   int
}

// SchedulePreview is a computed, unpersisted schedule.
type SchedulePreview struct {
	Method  domain.Method
	Rows    []domain.AmortizationRow
	Summary domain.ScheduleSummary
	Cached  bool
}

// PreviewSchedule computes a schedule without storing it. Results are cached
// when a cache is configured; cache failures only cost a recomputation.
func (uc *LoanUseCase) PreviewSchedule(ctx context.Context, input PreviewScheduleInput) (*SchedulePreview, error) {
	if !input.Method.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidMethod, string(input.Method))
	}
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}
	if err := domain.ValidateTermMonths(input.TermMonths); err != nil {
		return nil, err
	}
	if err := domain.ValidateInterestRate(input.InterestRate); err != nil {
		return nil, err
	}

	key := scheduleCacheKey(input)

	if rows, ok := uc.cachedSchedule(ctx, key); ok {
		uc.metrics.ObserveCache("hit")
		return &SchedulePreview{
			Method:  input.Method,
			Rows:    rows,
			Summary: domain.SummarizeSchedule(rows),
			Cached:  true,
		}, nil
	}

	started := time.Now()
	rows, err := domain.GenerateSchedule(input.Method, domain.CalculationParams{
		Amount:             input.Amount,
		AnnualInterestRate: input.InterestRate,
		TermMonths:         input.TermMonths,
		StartDate:          input.StartDate,
	})
	if err != nil {
		return nil, err
	}
	uc.metrics.ObserveSchedule(string(input.Method), len(rows), time.Since(started))

	if uc.cache != nil {
		uc.metrics.ObserveCache("miss")
		uc.storeSchedule(ctx, key, rows)
	}

	return &SchedulePreview{
		Method:  input.Method,
		Rows:    rows,
		Summary: domain.SummarizeSchedule(rows),
	}, nil
}

func (uc *LoanUseCase) cachedSchedule(ctx context.Context, key string) ([]domain.AmortizationRow, bool) {
	if uc.cache == nil {
		return nil, false
	}

	data, err := uc.cache.Get(ctx, key)
	if err != nil {
		uc.logger.Warn().Err(err).Str("key", key).Msg("schedule cache read failed")
		return nil, false
	}
	if data == nil {
		return nil, false
	}

	var rows []domain.AmortizationRow
	if err := json.Unmarshal(data, &rows); err != nil {
		uc.logger.Warn().Err(err).Str("key", key).Msg("discarding corrupt cached schedule")
		return nil, false
	}

	return rows, true
}

func (uc *LoanUseCase) storeSchedule(ctx context.Context, key string, rows []domain.AmortizationRow) {
	data, err := json.Marshal(rows)
	if err != nil {
		uc.logger.Warn().Err(err).Msg("failed to encode schedule for cache")
		return
	}

	if err := uc.cache.Set(ctx, key, data, uc.cacheTTL); err != nil {
		uc.logger.Warn().Err(err).Str("key", key).Msg("schedule cache write failed")
	}
}

// scheduleCacheKey hashes the canonical form of the parameters, so 1000 and
// 1000.00 share an entry.
func scheduleCacheKey(input PreviewScheduleInput) string {
	canonical := strings.Join([]string{
		string(input.Method),
		input.Amount.String(),
		input.InterestRate.String(),
		strconv.Itoa(input.TermMonths),
		input.StartDate.Format(time.RFC3339),
	}, "|")

	return scheduleCacheKeyPrefix + strconv.FormatUint(xxhash.Sum64String(canonical), 16)
}
