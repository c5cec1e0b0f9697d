package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pashagolub/pgxmock/v4"

	"github.com/iho/goloan/internal/domain"
)

func TestOutboxRepositoryCreate(t *testing.T) {
	pool := newMockPool(t)
	repo := newOutboxRepository(pool)

	created := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	event := &domain.OutboxEvent{
		ID:            "e1",
		AggregateID:   "l1",
		AggregateType: domain.AggregateTypeLoan,
		EventType:     domain.EventTypeLoanDeleted,
		Payload:       domain.LoanDeletedEvent{LoanID: "l1"}.ToPayload(),
		CreatedAt:     created,
	}

	pool.ExpectExec(insertOutboxEventSQL).
		WithArgs("e1", "l1", "loan", "loan.deleted", []byte(`{"loan_id":"l1"}`), timeToPgTimestamptz(created), false).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Create(context.Background(), mockTx(pool), event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertExpectations(t, pool)
}

func TestOutboxRepositoryGetUnpublished(t *testing.T) {
	pool := newMockPool(t)
	repo := newOutboxRepository(pool)

	created := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	pool.ExpectQuery(getUnpublishedEventsSQL).
		WithArgs(50).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "aggregate_id", "aggregate_type", "event_type", "payload", "created_at", "published_at", "published",
		}).AddRow("e1", "p1", "payment", "payment.recorded", []byte(`{"amount_paid":"10.00"}`), created, pgtype.Timestamptz{}, false))

	events, err := repo.GetUnpublished(context.Background(), 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Payload["amount_paid"] != "10.00" || events[0].PublishedAt != nil || events[0].Published {
		t.Fatalf("unexpected event: %+v", events[0])
	}

	assertExpectations(t, pool)
}

func TestOutboxRepositoryMarkPublishedAndCleanup(t *testing.T) {
	pool := newMockPool(t)
	repo := newOutboxRepository(pool)

	now := time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC)
	pool.ExpectExec(markEventPublishedSQL).
		WithArgs("e1", timeToPgTimestamptz(now)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	pool.ExpectExec(deletePublishedEventsSQL).
		WithArgs(timeToPgTimestamptz(now.Add(-24 * time.Hour))).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	if err := repo.MarkPublished(context.Background(), "e1", now); err != nil {
		t.Fatalf("mark published: %v", err)
	}
	if err := repo.DeletePublished(context.Background(), now.Add(-24 * time.Hour)); err != nil {
		t.Fatalf("delete published: %v", err)
	}

	assertExpectations(t, pool)
}
