package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ClientStatus is the standing of a borrower.
type ClientStatus string

const (
	ClientStatusActive    ClientStatus = "active"
	ClientStatusBlocked   ClientStatus = "blocked"
	ClientStatusDefaulted ClientStatus = "defaulted"
)

// IsValid checks if the status is known.
func (s ClientStatus) IsValid() bool {
	switch s {
	case ClientStatusActive, ClientStatusBlocked, ClientStatusDefaulted:
		return true
	}
	return false
}

// Client is a borrower registered in the back office.
type Client struct {
	ID            string
	NationalID    string
	FirstName     string
	LastName      string
	Phone         string
	Email         string
	Address       string
	BirthDate     *time.Time
	Occupation    string
	MonthlyIncome *decimal.Decimal
	Status        ClientStatus
	CreatedAt     time.Time
}

// FullName returns first and last name joined.
func (c *Client) FullName() string {
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

// CanBorrow reports whether new loans may be originated for the client.
func (c *Client) CanBorrow() bool {
	return c.Status == ClientStatusActive
}
