package integration

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/goloan/internal/domain"
	"github.com/iho/goloan/internal/infrastructure/eventpublisher"
	"github.com/iho/goloan/tests/testutil"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events map[string]*domain.OutboxEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event *domain.OutboxEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events[event.ID] = event
	return nil
}

func (p *recordingPublisher) find(aggregateID, eventType string) *domain.OutboxEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, e := range p.events {
		if e.AggregateID == aggregateID && e.EventType == eventType {
			return e
		}
	}
	return nil
}

func TestOutboxEventCreation(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()

	svc := newServices(testDB)
	client := testDB.CreateTestClient(ctx, "Outbox")

	loan, err := svc.loans.CreateLoan(ctx, activeLoanInput(client.ID, domain.MethodFrench))
	if err != nil {
		t.Fatalf("failed to create loan: %v", err)
	}

	events, err := svc.outbox.GetUnpublished(ctx, 1000)
	if err != nil {
		t.Fatalf("failed to get unpublished events: %v", err)
	}

	var created *domain.OutboxEvent
	for _, event := range events {
		if event.EventType == domain.EventTypeLoanCreated && event.AggregateID == loan.ID {
			created = event
			break
		}
	}
	if created == nil {
		t.Fatal("loan created event not found in outbox")
	}
	if created.AggregateType != domain.AggregateTypeLoan {
		t.Errorf("expected aggregate type %s, got %s", domain.AggregateTypeLoan, created.AggregateType)
	}
	if created.Payload["loan_number"] != loan.LoanNumber {
		t.Errorf("unexpected payload: %v", created.Payload)
	}
}

func TestEventPublisherMarksEventsPublished(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()

	svc := newServices(testDB)
	client := testDB.CreateTestClient(ctx, "Publisher")

	loan, err := svc.loans.CreateLoan(ctx, activeLoanInput(client.ID, domain.MethodGerman))
	if err != nil {
		t.Fatalf("failed to create loan: %v", err)
	}

	rec := &recordingPublisher{events: make(map[string]*domain.OutboxEvent)}
	publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: svc.outbox,
		Publisher:  rec,
		Logger:     zerolog.Nop(),
		BatchSize:  1000,
		Interval:   50 * time.Millisecond,
	})

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = publisher.Start(runCtx)
	}()

	deadline := time.Now().Add(5 * time.Second)
	for rec.find(loan.ID, domain.EventTypeLoanCreated) == nil {
		if time.Now().After(deadline) {
			cancel()
			t.Fatal("loan created event was not published")
		}
		time.Sleep(20 * time.Millisecond)
	}
	cancel()
	<-done

	var published bool
	err = testDB.Pool.QueryRow(ctx,
		`SELECT published FROM outbox_events WHERE aggregate_id = $1 AND event_type = $2`,
		loan.ID, domain.EventTypeLoanCreated,
	).Scan(&published)
	if err != nil {
		t.Fatalf("failed to read event: %v", err)
	}
	if !published {
		t.Fatal("expected event to be marked published")
	}
}
