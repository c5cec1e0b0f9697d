package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/goloan/internal/domain"
	"github.com/iho/goloan/internal/infrastructure/metrics"
)

// ClientUseCase handles client business logic.
type ClientUseCase struct {
	clientRepo ClientRepository
	idGen      IDGenerator
	metrics    *metrics.Metrics
}

// NewClientUseCase creates a new ClientUseCase. m may be nil.
func NewClientUseCase(clientRepo ClientRepository, idGen IDGenerator, m *metrics.Metrics) *ClientUseCase {
	return &ClientUseCase{
		clientRepo: clientRepo,
		idGen:      idGen,
		metrics:    m,
	}
}

// CreateClientInput represents input for registering a client.
type CreateClientInput struct {
	BirthDate     *time.Time
	MonthlyIncome *decimal.Decimal
	NationalID    string
	FirstName     string
	LastName      string
	Phone         string
	Email         string
	Address       string
	Occupation    string
	Status        domain.ClientStatus
}

// UpdateClientInput carries the fields to change. Nil fields are left as is.
type UpdateClientInput struct {
	BirthDate     *time.Time
	MonthlyIncome *decimal.Decimal
	NationalID    *string
	FirstName     *string
	LastName      *string
	Phone         *string
	Email         *string
	Address       *string
	Occupation    *string
	Status        *domain.ClientStatus
	ID            string
}

// CreateClient registers a new client.
func (uc *ClientUseCase) CreateClient(ctx context.Context, input CreateClientInput) (*domain.Client, error) {
	status := input.Status
	if status == "" {
		status = domain.ClientStatusActive
	}

	client := &domain.Client{
		ID:            uc.idGen.Generate(),
		NationalID:    strings.TrimSpace(input.NationalID),
		FirstName:     strings.TrimSpace(input.FirstName),
		LastName:      strings.TrimSpace(input.LastName),
		Phone:         strings.TrimSpace(input.Phone),
		Email:         strings.ToLower(strings.TrimSpace(input.Email)),
		Address:       strings.TrimSpace(input.Address),
		BirthDate:     input.BirthDate,
		Occupation:    strings.TrimSpace(input.Occupation),
		MonthlyIncome: input.MonthlyIncome,
		Status:        status,
		CreatedAt:     time.Now().UTC(),
	}

	if err := domain.ValidateClient(client); err != nil {
		return nil, err
	}

	if err := uc.clientRepo.Create(ctx, client); err != nil {
		return nil, err
	}

	uc.metrics.ClientCreated()

	return client, nil
}

// GetClient retrieves a client by ID.
func (uc *ClientUseCase) GetClient(ctx context.Context, id string) (*domain.Client, error) {
	return uc.clientRepo.GetByID(ctx, id)
}

// ListClients lists clients, newest first.
func (uc *ClientUseCase) ListClients(ctx context.Context, limit, offset int) ([]*domain.Client, error) {
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.clientRepo.List(ctx, limit, offset)
}

// UpdateClient applies a partial update to a client.
func (uc *ClientUseCase) UpdateClient(ctx context.Context, input UpdateClientInput) (*domain.Client, error) {
	client, err := uc.clientRepo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	applyString(&client.NationalID, input.NationalID)
	applyString(&client.FirstName, input.FirstName)
	applyString(&client.LastName, input.LastName)
	applyString(&client.Phone, input.Phone)
	applyString(&client.Address, input.Address)
	applyString(&client.Occupation, input.Occupation)
	if input.Email != nil {
		client.Email = strings.ToLower(strings.TrimSpace(*input.Email))
	}
	if input.BirthDate != nil {
		client.BirthDate = input.BirthDate
	}
	if input.MonthlyIncome != nil {
		client.MonthlyIncome = input.MonthlyIncome
	}
	if input.Status != nil {
		client.Status = *input.Status
	}

	if err := domain.ValidateClient(client); err != nil {
		return nil, err
	}

	if err := uc.clientRepo.Update(ctx, client); err != nil {
		return nil, err
	}

	return client, nil
}

// DeleteClient removes a client without loans.
func (uc *ClientUseCase) DeleteClient(ctx context.Context, id string) error {
	return uc.clientRepo.Delete(ctx, id)
}

func applyString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}
