// Package ledger reads a participant's profit detail rows and reduces them to
// the running totals the allocation needs for the effective year.
package ledger

import (
	"context"
	"errors"
	"strings"

	"github.com/rgehrsitz/psupdate/internal/domain"
)

// ErrNotFound is returned by a Reader when no ledger exists for a participant.
// The run skips that participant and counts it as an invalid record.
var ErrNotFound = errors.New("ledger record not found")

// Reader supplies ordered profit detail rows per participant
type Reader interface {
	DetailRowsForParticipant(ctx context.Context, ssn int64) ([]domain.ProfitDetail, error)
	DetailRowsForPayee(ctx context.Context, ssn int64) ([]domain.ProfitDetail, error)
}

// outbound transfer and QDRO remarks on fully vested payments
var outboundRemarks = []string{"XFER >", "QDRO >", "XFER>", "QDRO>"}

// IsOutboundTransfer reports whether a code 9 remark marks a transfer or QDRO
// out of the account rather than an ordinary distribution.
func IsOutboundTransfer(remark string) bool {
	for _, prefix := range outboundRemarks {
		if strings.HasPrefix(remark, prefix) {
			return true
		}
	}
	return false
}

// Summarize scans rows and accumulates totals for effectiveYear only.
// Rows from any other year are ignored.
func Summarize(rows []domain.ProfitDetail, effectiveYear int) domain.LedgerTotals {
	var t domain.LedgerTotals
	for _, row := range rows {
		if row.ProfitYear != effectiveYear {
			continue
		}

		switch row.CodeByte() {
		case domain.CodePartialWithdrawal, domain.CodeDirectPayment:
			t.DistributionTotal = t.DistributionTotal.Add(row.Forfeiture)
		case domain.CodeFullyVestedPayment:
			if IsOutboundTransfer(row.Remark) {
				t.PriorAllocationTotal = t.PriorAllocationTotal.Add(row.Forfeiture)
			} else {
				t.DistributionTotal = t.DistributionTotal.Add(row.Forfeiture)
			}
		case domain.CodeForfeiture:
			t.ForfeitureTotal = t.ForfeitureTotal.Add(row.Forfeiture)
		case domain.CodeOutgoingXferBene:
			t.PriorAllocationTotal = t.PriorAllocationTotal.Add(row.Forfeiture)
		case domain.CodeIncomingQDROBene:
			t.AllocationTotal = t.AllocationTotal.Add(row.Contribution)
		}

		switch row.YearExtension {
		case domain.ExtensionMilitary:
			t.MilitaryContribution = t.MilitaryContribution.Add(row.Contribution)
		case domain.ExtensionCAF:
			t.ClassActionFundEarnings = t.ClassActionFundEarnings.Add(row.Earnings)
		}
	}
	return t
}
