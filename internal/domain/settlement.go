package domain

import "fmt"

// SettlementState tracks how far an order got through settlement
type SettlementState string

const (
	StateReceived              SettlementState = "received"
	StatePersisted             SettlementState = "persisted"
	StateInventoryReconciled   SettlementState = "inventory_reconciled"
	StateLedgerUpdated         SettlementState = "ledger_updated"
	StateRendered              SettlementState = "rendered"
	StateDelivered             SettlementState = "delivered"
	StateCompleted             SettlementState = "completed"
	StateCompletedWithWarnings SettlementState = "completed_with_warnings"
)

// WarningKind classifies a non-fatal settlement problem
type WarningKind string

const (
	WarningNotFound       WarningKind = "not_found"
	WarningLowStock       WarningKind = "low_stock"
	WarningStockError     WarningKind = "stock_error"
	WarningMemberNotFound WarningKind = "member_not_found"
	WarningLedgerError    WarningKind = "ledger_error"
	WarningPrintFailed    WarningKind = "print_failed"
)

// Warning is a classified problem that did not fail the sale
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Subject string      `json:"subject,omitempty"`
	Message string      `json:"message"`
}

func (w Warning) String() string {
	if w.Subject == "" {
		return fmt.Sprintf("%s: %s", w.Kind, w.Message)
	}
	return fmt.Sprintf("%s [%s]: %s", w.Kind, w.Subject, w.Message)
}

// AdjustmentStatus is the outcome class of one inventory adjustment
type AdjustmentStatus string

const (
	AdjustmentApplied  AdjustmentStatus = "applied"
	AdjustmentNotFound AdjustmentStatus = "not_found"
	AdjustmentSkipped  AdjustmentStatus = "skipped"
)

// Adjustment is the result of decrementing stock for one line item
type Adjustment struct {
	Status   AdjustmentStatus `json:"status"`
	Code     string           `json:"code"`
	Name     string           `json:"name"`
	OldStock int              `json:"old_stock"`
	Sold     int              `json:"sold"`
	NewStock int              `json:"new_stock"`
	LowStock bool             `json:"low_stock"`
}

// LedgerEntry is the result of applying an order to a member balance
type LedgerEntry struct {
	Skipped  bool   `json:"skipped"`
	Phone    string `json:"phone,omitempty"`
	Earned   int64  `json:"earned"`
	Redeemed int64  `json:"redeemed"`
	Delta    int64  `json:"delta"`
	// Balance is the stored balance right after the increment
	Balance int64 `json:"balance"`
}

// PrintStatus reports what happened to a rendered document
type PrintStatus struct {
	Printed  bool   `json:"printed"`
	Artifact string `json:"artifact,omitempty"`
	Error    string `json:"error,omitempty"`
}

// SettlementResult is returned for every order whose record was persisted
type SettlementResult struct {
	Order        *Order          `json:"order"`
	State        SettlementState `json:"state"`
	StockUpdates []Adjustment    `json:"stock_updates"`
	Ledger       *LedgerEntry    `json:"ledger,omitempty"`
	Print        PrintStatus     `json:"print"`
	Warnings     []Warning       `json:"warnings"`
}

// AddWarning records a warning on the result
func (r *SettlementResult) AddWarning(kind WarningKind, subject, message string) {
	r.Warnings = append(r.Warnings, Warning{Kind: kind, Subject: subject, Message: message})
}

// WarningMessages returns the warnings as plain strings
func (r *SettlementResult) WarningMessages() []string {
	messages := make([]string, 0, len(r.Warnings))
	for _, w := range r.Warnings {
		messages = append(messages, w.String())
	}
	return messages
}
