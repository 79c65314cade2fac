package calculation

import (
	"fmt"

	"github.com/rgehrsitz/psupdate/internal/domain"
	"github.com/shopspring/decimal"
)

// CapDiagnostic describes a capped participant whose forfeiture could not absorb
// the overage. The participant keeps a zero forfeiture and the run continues.
type CapDiagnostic struct {
	Badge      int64
	Over       decimal.Decimal
	Forfeiture decimal.Decimal
}

func (d *CapDiagnostic) Error() string {
	return fmt.Sprintf("FORFEITURES NOT ENOUGH FOR AMOUNT OVER MAX FOR EMPLOYEE BADGE #%d (over %s, forfeiture %s)",
		d.Badge, d.Over.StringFixed(2), d.Forfeiture.StringFixed(2))
}

// Cap applies the plan maximum to contribution + military + forfeiture. It
// reports whether the participant was capped, which makes the run require a rerun.
func Cap(a domain.Allocation, military decimal.Decimal, badge, points int64, pv domain.PointValues) (domain.Allocation, bool, *CapDiagnostic) {
	total := a.Contribution.Add(military).Add(a.Forfeiture)
	if !total.GreaterThan(pv.MaximumContribution) {
		a.MaxOver = decimal.Zero
		a.MaxPoints = 0
		return a, false, nil
	}

	over := total.Sub(pv.MaximumContribution)
	var diag *CapDiagnostic
	if over.LessThan(a.Forfeiture) {
		a.Forfeiture = a.Forfeiture.Sub(over)
	} else {
		diag = &CapDiagnostic{Badge: badge, Over: over, Forfeiture: a.Forfeiture}
		a.Forfeiture = decimal.Zero
	}
	a.MaxOver = over
	a.MaxPoints = points
	return a, true, diag
}
