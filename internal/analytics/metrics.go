package analytics

import (
	"time"

	"github.com/shopspring/decimal"
)

// Statuses that exclude an onboarding record from the active population.
var TerminatedStatuses = []string{"TERMINATED", "BLOCKED", "SUSPENDED", "INACTIVE"}

// Transaction status buckets.
var (
	SuccessStatuses = []string{"SUCCESS", "COMPLETED"}
	FailureStatuses = []string{"FAILED", "REJECTED"}
)

// Entity values in the onboarding dataset.
const (
	EntityAgent  = "AGENT"
	EntityTeller = "AGENT TELLER"
)

// Params configures a metric computation.
type Params struct {
	// Year is the report year.
	Year int
	// MinDepositsForActive is the deposit count at which a user counts
	// as active.
	MinDepositsForActive int
	// TopN bounds the top-performer list.
	TopN int
}

// DefaultParams returns the standard analysis parameters.
func DefaultParams() Params {
	return Params{
		Year:                 time.Now().UTC().Year(),
		MinDepositsForActive: 20,
		TopN:                 10,
	}
}

// Performer is one row of the top-performer ranking.
type Performer struct {
	UserID           string          `json:"user_id"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	TransactionCount int64           `json:"transaction_count"`
}

// ServiceStat aggregates a single service's transactions.
type ServiceStat struct {
	ServiceName      string          `json:"service_name"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	TransactionCount int64           `json:"transaction_count"`
}

// MonthStat is one month of the trend series.
type MonthStat struct {
	Month            string          `json:"month"`
	MonthNumber      int             `json:"month_number"`
	ActiveUsers      int64           `json:"active_users"`
	DepositCount     int64           `json:"deposit_count"`
	TransactionCount int64           `json:"transaction_count"`
	Volume           decimal.Decimal `json:"transaction_volume"`
}

// StatusCount is one onboarding status bucket.
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// DayVolume is one day of the trailing volume series.
type DayVolume struct {
	Date   string          `json:"date"`
	Volume decimal.Decimal `json:"volume"`
}

// Metrics holds every figure the performance dashboard reports.
type Metrics struct {
	Year int `json:"year"`

	TotalActiveAgents    int64 `json:"total_active_agents"`
	TotalActiveTellers   int64 `json:"total_active_tellers"`
	AgentsWithTellers    int64 `json:"agents_with_tellers"`
	AgentsWithoutTellers int64 `json:"agents_without_tellers"`

	OnboardedTotal   int64 `json:"onboarded_total"`
	OnboardedAgents  int64 `json:"onboarded_agents"`
	OnboardedTellers int64 `json:"onboarded_tellers"`

	ActiveUsers   int64 `json:"active_users_overall"`
	InactiveUsers int64 `json:"inactive_users_overall"`

	// Indexed by month-1 (January at 0).
	MonthlyActiveUsers [12]int64 `json:"monthly_active_users"`
	MonthlyDeposits    [12]int64 `json:"monthly_deposits"`

	TotalTransactions      int64           `json:"total_transactions"`
	TransactionVolume      decimal.Decimal `json:"transaction_volume"`
	SuccessfulTransactions int64           `json:"successful_transactions"`
	FailedTransactions     int64           `json:"failed_transactions"`

	TopPerformers   []Performer   `json:"top_performing_agents"`
	Services        []ServiceStat `json:"service_breakdown"`
	MonthlyTrends   []MonthStat   `json:"monthly_trends"`
	StatusBreakdown []StatusCount `json:"status_breakdown"`
}

// SuccessRate returns the percentage of successful transactions among
// those with a recognized terminal status. Zero when nothing terminal.
func (m *Metrics) SuccessRate() float64 {
	total := m.SuccessfulTransactions + m.FailedTransactions
	if total == 0 {
		return 0
	}
	return float64(m.SuccessfulTransactions) / float64(total) * 100
}

// PeakActiveUsers returns the highest monthly active-user count.
func (m *Metrics) PeakActiveUsers() int64 {
	var peak int64
	for _, n := range m.MonthlyActiveUsers {
		if n > peak {
			peak = n
		}
	}
	return peak
}
