package store

import (
	"context"
	"fmt"
	"os"

	"github.com/rgehrsitz/psupdate/internal/domain"
	"gopkg.in/yaml.v3"
)

// LedgerEntry registers one participant ledger together with its detail rows
type LedgerEntry struct {
	SSN  int64                 `yaml:"ssn"`
	Kind string                `yaml:"kind"`
	Rows []domain.ProfitDetail `yaml:"rows"`
}

// Dataset is the import format for loading participants and ledgers
type Dataset struct {
	Members       []domain.MemberRow      `yaml:"members"`
	Beneficiaries []domain.BeneficiaryRow `yaml:"beneficiaries"`
	Ledgers       []LedgerEntry           `yaml:"ledgers"`
}

// LoadDataset reads a YAML dataset file
func LoadDataset(filename string) (*Dataset, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	var ds Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("failed to parse dataset: %w", err)
	}
	for i, l := range ds.Ledgers {
		if _, err := parseKind(l.Kind); err != nil {
			return nil, fmt.Errorf("ledger %d: %w", i, err)
		}
	}
	return &ds, nil
}

func parseKind(s string) (domain.ParticipantKind, error) {
	switch s {
	case "", domain.KindMember.String():
		return domain.KindMember, nil
	case domain.KindBeneficiary.String():
		return domain.KindBeneficiary, nil
	default:
		return 0, fmt.Errorf("unknown ledger kind %q", s)
	}
}

// Import writes a dataset in one transaction
func (s *Store) Import(ctx context.Context, ds *Dataset) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, m := range ds.Members {
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO member_rows (badge, ssn, name, points, beginning_balance, prior_etva, years_in_plan,
			                         employee_type, enrolled, prior_contribution, prior_forfeiture)
			VALUES (:badge, :ssn, :name, :points, :beginning_balance, :prior_etva, :years_in_plan,
			        :employee_type, :enrolled, :prior_contribution, :prior_forfeiture)`, m)
		if err != nil {
			return fmt.Errorf("failed to insert member badge %d: %w", m.Badge, err)
		}
	}

	for _, b := range ds.Beneficiaries {
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO beneficiary_rows (psn, ssn, name, beginning_balance)
			VALUES (:psn, :ssn, :name, :beginning_balance)`, b)
		if err != nil {
			return fmt.Errorf("failed to insert beneficiary psn %d: %w", b.PSN, err)
		}
	}

	for _, l := range ds.Ledgers {
		kind, err := parseKind(l.Kind)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO ledgers (ssn, kind) VALUES (?, ?)`, l.SSN, kind.String()); err != nil {
			return fmt.Errorf("failed to register ledger for ssn %d: %w", l.SSN, err)
		}
		for _, row := range l.Rows {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO profit_detail (ssn, kind, profit_year, year_extension, code, contribution, earnings, forfeiture, remark)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				l.SSN, kind.String(), row.ProfitYear, row.YearExtension, row.Code,
				row.Contribution, row.Earnings, row.Forfeiture, row.Remark)
			if err != nil {
				return fmt.Errorf("failed to insert ledger row for ssn %d: %w", l.SSN, err)
			}
		}
	}

	return tx.Commit()
}
