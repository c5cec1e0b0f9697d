package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/iho/goloan/internal/domain"
	"github.com/iho/goloan/internal/usecase"
	"github.com/iho/goloan/internal/usecase/mocks"
)

func previewInput() usecase.PreviewScheduleInput {
	return usecase.PreviewScheduleInput{
		Method:       domain.MethodGerman,
		Amount:       decimal.NewFromInt(12000),
		InterestRate: decimal.NewFromInt(12),
		TermMonths:   12,
		StartDate:    time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
	}
}

func newPreviewUseCase() *usecase.LoanUseCase {
	return usecase.NewLoanUseCase(nil, nil, nil, nil, nil, mocks.NewMockIDGenerator())
}

func TestPreviewSchedule_WithoutCache(t *testing.T) {
	preview, err := newPreviewUseCase().PreviewSchedule(context.Background(), previewInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(preview.Rows) != 12 {
		t.Fatalf("expected 12 rows, got %d", len(preview.Rows))
	}
	if preview.Cached {
		t.Fatal("preview without cache must not be marked cached")
	}
	if !preview.Summary.TotalInterest.Equal(decimal.NewFromInt(780)) {
		t.Errorf("expected total interest 780, got %s", preview.Summary.TotalInterest)
	}
}

func TestPreviewSchedule_CacheMissStoresRows(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	cache := mocks.NewMockCache(ctrl)
	cache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, nil)

	var stored []byte
	cache.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any(), 5*time.Minute).DoAndReturn(
		func(_ context.Context, key string, value []byte, _ time.Duration) error {
			if !strings.HasPrefix(key, "schedule:") {
				t.Errorf("unexpected cache key %q", key)
			}
			stored = value
			return nil
		},
	)

	uc := newPreviewUseCase().WithScheduleCache(cache, 5*time.Minute)

	preview, err := uc.PreviewSchedule(context.Background(), previewInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if preview.Cached {
		t.Fatal("expected fresh computation")
	}

	var rows []domain.AmortizationRow
	if err := json.Unmarshal(stored, &rows); err != nil {
		t.Fatalf("cached value is not a schedule: %v", err)
	}
	if len(rows) != 12 || !rows[0].TotalAmount.Equal(decimal.NewFromInt(1120)) {
		t.Fatalf("unexpected cached rows: %+v", rows[0])
	}
}

func TestPreviewSchedule_CacheHit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	rows, err := domain.GermanSchedule(domain.CalculationParams{
		Amount:             decimal.NewFromInt(12000),
		AnnualInterestRate: decimal.NewFromInt(12),
		TermMonths:         12,
		StartDate:          time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	payload, err := json.Marshal(rows)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	cache := mocks.NewMockCache(ctrl)
	cache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(payload, nil)

	preview, err := newPreviewUseCase().WithScheduleCache(cache, time.Minute).
		PreviewSchedule(context.Background(), previewInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !preview.Cached {
		t.Fatal("expected cached preview")
	}
	if !preview.Rows[11].InterestAmount.Equal(decimal.NewFromInt(10)) {
		t.Errorf("expected last interest 10, got %s", preview.Rows[11].InterestAmount)
	}
}

func TestPreviewSchedule_CacheFailuresAreIgnored(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	cache := mocks.NewMockCache(ctrl)
	cache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection refused"))
	cache.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("connection refused"))

	preview, err := newPreviewUseCase().WithScheduleCache(cache, time.Minute).
		PreviewSchedule(context.Background(), previewInput())
	if err != nil {
		t.Fatalf("cache errors must not fail the preview: %v", err)
	}
	if len(preview.Rows) != 12 {
		t.Fatalf("expected 12 rows, got %d", len(preview.Rows))
	}
}

func TestPreviewSchedule_EquivalentAmountsShareKey(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	var keys []string
	cache := mocks.NewMockCache(ctrl)
	cache.EXPECT().Get(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, key string) ([]byte, error) {
			keys = append(keys, key)
			return nil, nil
		},
	).Times(3)
	cache.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(3)

	uc := newPreviewUseCase().WithScheduleCache(cache, time.Minute)
	ctx := context.Background()

	in := previewInput()
	if _, err := uc.PreviewSchedule(ctx, in); err != nil {
		t.Fatalf("preview: %v", err)
	}

	in.Amount = decimal.RequireFromString("12000.00")
	if _, err := uc.PreviewSchedule(ctx, in); err != nil {
		t.Fatalf("preview: %v", err)
	}

	in.Method = domain.MethodFrench
	if _, err := uc.PreviewSchedule(ctx, in); err != nil {
		t.Fatalf("preview: %v", err)
	}

	if keys[0] != keys[1] {
		t.Errorf("expected 12000 and 12000.00 to share a key: %s vs %s", keys[0], keys[1])
	}
	if keys[0] == keys[2] {
		t.Errorf("expected different methods to use different keys")
	}
}

func TestPreviewSchedule_Validation(t *testing.T) {
	uc := newPreviewUseCase()
	ctx := context.Background()

	in := previewInput()
	in.Method = "american"
	if _, err := uc.PreviewSchedule(ctx, in); !errors.Is(err, domain.ErrInvalidMethod) {
		t.Fatalf("expected ErrInvalidMethod, got %v", err)
	}

	in = previewInput()
	in.TermMonths = domain.MaxTermMonths + 1
	if _, err := uc.PreviewSchedule(ctx, in); !errors.Is(err, domain.ErrInvalidTerm) {
		t.Fatalf("expected ErrInvalidTerm, got %v", err)
	}

	in = previewInput()
	in.Amount = decimal.Zero
	if _, err := uc.PreviewSchedule(ctx, in); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestPreviewSchedule_AmountBounds(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// Rejected amounts never reach the cache.
	cache := mocks.NewMockCache(ctrl)
	uc := newPreviewUseCase().WithScheduleCache(cache, time.Minute)

	tests := []struct {
		name   string
		amount string
		want   error
	}{
		{"below minimum", "0.001", domain.ErrAmountTooSmall},
		{"above maximum", "1e13", domain.ErrAmountTooLarge},
		{"far above maximum", "1e200000", domain.ErrAmountTooLarge},
		{"negative", "-100", domain.ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := previewInput()
			in.TermMonths = domain.MaxTermMonths
			in.Amount = decimal.RequireFromString(tt.amount)

			preview, err := uc.PreviewSchedule(context.Background(), in)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if preview != nil {
				t.Fatalf("expected no preview, got %d rows", len(preview.Rows))
			}
		})
	}
}
