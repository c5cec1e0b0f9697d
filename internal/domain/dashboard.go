package domain

import "github.com/shopspring/decimal"

// DashboardStats summarises the portfolio.
type DashboardStats struct {
	ActiveLoansAmount decimal.Decimal
	ActiveLoansCount  int64
	TotalClients      int64
	TotalCollected    decimal.Decimal
}

// MethodCount is the number of loans using a method.
type MethodCount struct {
	Method Method
	Count  int64
}

// MonthlyDisbursement is the amount disbursed in a calendar month.
type MonthlyDisbursement struct {
	Month  string // e.g. "Jan 2024"
	Amount decimal.Decimal
}
