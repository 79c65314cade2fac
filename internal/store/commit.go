package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rgehrsitz/psupdate/internal/domain"
)

// ErrNotCommittable is returned when a run that is not COMPLETE is committed.
// Rerun-required and aborted runs must never reach the ledger.
var ErrNotCommittable = errors.New("run is not committable")

// RunRecord is a committed run as stored
type RunRecord struct {
	RunID         string        `db:"run_id"`
	EffectiveYear int           `db:"effective_year"`
	State         string        `db:"state"`
	CommittedAt   time.Time     `db:"-"`
	RecordCount   int           `db:"record_count"`
	InvalidCount  int           `db:"invalid_count"`
	Totals        domain.Totals `db:"-"`
}

// CommitRun stores a completed run's allocations and carries each member's
// contribution and forfeiture forward as the prior values for a special run.
func (s *Store) CommitRun(ctx context.Context, outcome *domain.RunOutcome) error {
	if outcome == nil {
		return fmt.Errorf("%w: no outcome", ErrNotCommittable)
	}
	if !outcome.State.IsFinal() || outcome.RerunRequired {
		return fmt.Errorf("%w: run %s is %s", ErrNotCommittable, outcome.RunID, outcome.State)
	}

	totals, err := json.Marshal(outcome.GrandTotals)
	if err != nil {
		return fmt.Errorf("failed to marshal totals: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO allocation_runs (run_id, effective_year, state, committed_at, record_count, invalid_count, totals_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		outcome.RunID, outcome.EffectiveYear, string(outcome.State), time.Now().UTC().Format(time.RFC3339),
		len(outcome.Records), outcome.InvalidRecordCount, string(totals))
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", outcome.RunID, err)
	}

	for _, r := range outcome.Records {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO allocations (run_id, kind, badge, psn, name, contribution, forfeiture, earnings,
			                         etva_earnings, secondary_earnings, secondary_etva_earnings, earn_points, ending_balance)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			outcome.RunID, r.Kind.String(), r.Badge, r.PSN, r.Name, r.Contributions, r.IncomingForfeitures,
			r.Earnings, r.EtvaEarnings, r.SecondaryEarnings, r.SecondaryEtvaEarnings, r.EarningPoints, r.EndingBalance())
		if err != nil {
			return fmt.Errorf("failed to insert allocation for %d: %w", r.Key(), err)
		}

		if r.Kind != domain.KindMember {
			continue
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE member_rows SET prior_contribution = ?, prior_forfeiture = ?, employee_type = ?
			WHERE badge = ?`,
			r.Contributions, r.IncomingForfeitures, int(persistedEmployeeType(r.EmployeeType)), r.Badge)
		if err != nil {
			return fmt.Errorf("failed to update member badge %d: %w", r.Badge, err)
		}
	}

	return tx.Commit()
}

// persistedEmployeeType drops the also-a-beneficiary marker, which only holds
// for the run that set it.
func persistedEmployeeType(t domain.EmployeeType) domain.EmployeeType {
	if t == domain.EmployeeTypeAlsoBeneficiary {
		return domain.EmployeeTypeNormal
	}
	return t
}

// Run loads a committed run
func (s *Store) Run(ctx context.Context, runID string) (*RunRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var row struct {
		RunRecord
		CommittedAt string `db:"committed_at"`
		TotalsJSON  string `db:"totals_json"`
	}
	err := s.db.GetContext(ctx, &row, `
		SELECT run_id, effective_year, state, committed_at, record_count, invalid_count, totals_json
		FROM allocation_runs WHERE run_id = ?`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", runID, err)
	}

	rec := row.RunRecord
	if rec.CommittedAt, err = time.Parse(time.RFC3339, row.CommittedAt); err != nil {
		return nil, fmt.Errorf("run %s has a malformed commit time: %w", runID, err)
	}
	if err := json.Unmarshal([]byte(row.TotalsJSON), &rec.Totals); err != nil {
		return nil, fmt.Errorf("run %s has malformed totals: %w", runID, err)
	}
	return &rec, nil
}
