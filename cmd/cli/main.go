package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/iho/goloan/internal/adapter/http/dto"
	"github.com/iho/goloan/internal/domain"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "goloan-cli",
		Short:         "GoLoan CLI tool",
		Long:          `A command line interface for computing amortization schedules and querying the GoLoan API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the GoLoan API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(scheduleCmd())
	rootCmd.AddCommand(loansCmd())
	rootCmd.AddCommand(dashboardCmd())
	rootCmd.AddCommand(healthCmd())

	return rootCmd
}

// scheduleCmd computes a schedule locally; no server is involved.
func scheduleCmd() *cobra.Command {
	var (
		amount, rate, method, start string
		term                        int
		asJSON                      bool
	)

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Compute an amortization schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := domain.ParseMethod(method)
			if err != nil {
				return err
			}
			params, err := parseParams(amount, rate, term, start)
			if err != nil {
				return err
			}

			rows, err := domain.GenerateSchedule(m, params)
			if err != nil {
				return err
			}

			preview := dto.SchedulePreviewResponse{
				Method:   string(m),
				Summary:  dto.ScheduleSummaryFromDomain(domain.SummarizeSchedule(rows)),
				Schedule: dto.ScheduleRowsFromDomain(rows),
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), preview)
			}
			return printSchedule(cmd.OutOrStdout(), preview)
		},
	}

	cmd.Flags().StringVar(&amount, "amount", "", "Principal amount, e.g. 12000.00")
	cmd.Flags().StringVar(&rate, "rate", "", "Nominal annual interest rate in percent")
	cmd.Flags().IntVar(&term, "term", 0, "Number of monthly installments")
	cmd.Flags().StringVar(&method, "method", string(domain.MethodFrench), "Amortization method: french or german")
	cmd.Flags().StringVar(&start, "start", "", "Start date (YYYY-MM-DD), defaults to today")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the schedule as JSON")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("rate")
	_ = cmd.MarkFlagRequired("term")

	return cmd
}

func parseParams(amount, rate string, term int, start string) (domain.CalculationParams, error) {
	var params domain.CalculationParams

	a, err := decimal.NewFromString(amount)
	if err != nil {
		return params, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	r, err := decimal.NewFromString(rate)
	if err != nil {
		return params, fmt.Errorf("invalid rate %q: %w", rate, err)
	}

	startDate := time.Now().UTC().Truncate(24 * time.Hour)
	if start != "" {
		startDate, err = time.Parse(time.DateOnly, start)
		if err != nil {
			return params, fmt.Errorf("invalid start date %q: %w", start, err)
		}
	}

	params = domain.CalculationParams{
		Amount:             a,
		AnnualInterestRate: r,
		TermMonths:         term,
		StartDate:          startDate,
	}
	return params, params.Validate()
}

func printSchedule(w io.Writer, p dto.SchedulePreviewResponse) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "#\tDue date\tPrincipal\tInterest\tTotal\tBalance\t")
	for _, row := range p.Schedule {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t\n",
			row.InstallmentNumber, row.DueDate, row.PrincipalAmount,
			row.InterestAmount, row.TotalAmount, row.RemainingBalance)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\nMethod: %s  Principal: %s  Interest: %s  Total: %s\n",
		p.Method, p.Summary.TotalPrincipal, p.Summary.TotalInterest, p.Summary.TotalPayments)
	return err
}

func loansCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "loans",
		Short: "Loan operations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List loans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.ListLoansResponse
			if err := getJSON("/api/v1/loans", &resp); err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNUMBER\tAMOUNT\tMETHOD\tSTATUS\tPURPOSE")
			for _, l := range resp.Loans {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
					l.ID, l.LoanNumber, l.Amount, l.Method, l.Status, truncate(l.Purpose, 30))
			}
			return tw.Flush()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Show a loan with its client and schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.LoanResponse
			if err := getJSON("/api/v1/loans/"+args[0], &resp); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "schedule <id>",
		Short: "Show the stored schedule of a loan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.ScheduleResponse
			if err := getJSON("/api/v1/loans/"+args[0]+"/schedule", &resp); err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "#\tDUE\tTOTAL\tBALANCE\tSTATUS")
			for _, i := range resp.Schedule {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
					i.InstallmentNumber, i.DueDate, i.TotalAmount, i.RemainingBalance, i.Status)
			}
			return tw.Flush()
		},
	})

	return cmd
}

func dashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Portfolio statistics",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show portfolio totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.DashboardStatsResponse
			if err := getJSON("/api/v1/dashboard/stats", &resp); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Active loans:    %d (%s)\n", resp.ActiveLoans.Count, resp.ActiveLoans.Amount)
			fmt.Fprintf(out, "Total collected: %s\n", resp.TotalCollected)
			fmt.Fprintf(out, "Clients:         %d\n", resp.TotalClients)
			return nil
		},
	})

	return cmd
}

func healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server readiness",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp map[string]any
			if err := getJSON("/ready", &resp); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Status: %v\n", resp["status"])
			return nil
		},
	}
}

func getJSON(path string, out any) error {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(strings.TrimRight(baseURL, "/") + path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr dto.ErrorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s (status %d)", apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
