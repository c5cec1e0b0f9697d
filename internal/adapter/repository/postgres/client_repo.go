package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/goloan/internal/domain"
)

const clientColumns = `id, national_id, first_name, last_name, phone, email, address,
	birth_date, occupation, monthly_income, status, created_at`

const (
	insertClientSQL = `INSERT INTO clients (` + clientColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	getClientSQL = `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`

	listClientsSQL = `SELECT ` + clientColumns + ` FROM clients
	ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`

	updateClientSQL = `UPDATE clients SET national_id = $2, first_name = $3, last_name = $4,
	phone = $5, email = $6, address = $7, birth_date = $8, occupation = $9,
	monthly_income = $10, status = $11 WHERE id = $1`

	deleteClientSQL = `DELETE FROM clients WHERE id = $1`
)

// ClientRepository implements usecase.ClientRepository.
type ClientRepository struct {
	db DBTX
}

// NewClientRepository creates a new ClientRepository.
func NewClientRepository(pool *pgxpool.Pool) *ClientRepository {
	return newClientRepository(pool)
}

func newClientRepository(db DBTX) *ClientRepository {
	return &ClientRepository{db: db}
}

// Create inserts a new client.
func (r *ClientRepository) Create(ctx context.Context, client *domain.Client) error {
	_, err := r.db.Exec(ctx, insertClientSQL,
		client.ID,
		client.NationalID,
		client.FirstName,
		client.LastName,
		client.Phone,
		client.Email,
		client.Address,
		timePtrToPgDate(client.BirthDate),
		client.Occupation,
		decimalPtrToNumeric(client.MonthlyIncome),
		string(client.Status),
		timeToPgTimestamptz(client.CreatedAt),
	)

	return translateError(err, domain.ErrDuplicateClient, nil)
}

// GetByID retrieves a client by ID.
func (r *ClientRepository) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	client, err := scanClient(r.db.QueryRow(ctx, getClientSQL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrClientNotFound
		}

		return nil, err
	}

	return client, nil
}

// List returns clients newest first.
func (r *ClientRepository) List(ctx context.Context, limit, offset int) ([]*domain.Client, error) {
	rows, err := r.db.Query(ctx, listClientsSQL, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	clients := make([]*domain.Client, 0, limit)
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, client)
	}

	return clients, rows.Err()
}

// Update overwrites every mutable column of a client.
func (r *ClientRepository) Update(ctx context.Context, client *domain.Client) error {
	tag, err := r.db.Exec(ctx, updateClientSQL,
		client.ID,
		client.NationalID,
		client.FirstName,
		client.LastName,
		client.Phone,
		client.Email,
		client.Address,
		timePtrToPgDate(client.BirthDate),
		client.Occupation,
		decimalPtrToNumeric(client.MonthlyIncome),
		string(client.Status),
	)
	if err != nil {
		return translateError(err, domain.ErrDuplicateClient, nil)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrClientNotFound
	}

	return nil
}

// Delete removes a client. Clients that still own loans cannot be removed.
func (r *ClientRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, deleteClientSQL, id)
	if err != nil {
		return translateError(err, nil, domain.ErrClientHasLoans)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrClientNotFound
	}

	return nil
}

func scanClient(row pgx.Row) (*domain.Client, error) {
	var (
		c         domain.Client
		birthDate pgtype.Date
		income    pgtype.Numeric
		status    string
		createdAt time.Time
	)

	err := row.Scan(
		&c.ID,
		&c.NationalID,
		&c.FirstName,
		&c.LastName,
		&c.Phone,
		&c.Email,
		&c.Address,
		&birthDate,
		&c.Occupation,
		&income,
		&status,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	c.BirthDate = pgDateToTimePtr(birthDate)
	c.MonthlyIncome = numericToDecimalPtr(income)
	c.Status = domain.ClientStatus(status)
	c.CreatedAt = createdAt

	return &c, nil
}
