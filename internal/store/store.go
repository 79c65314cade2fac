// Package store keeps participant streams, ledgers and committed allocation
// runs in SQLite.
package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rgehrsitz/psupdate/internal/domain"
	"github.com/rgehrsitz/psupdate/internal/ledger"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

const defaultTimeout = 30 * time.Second

// Store is a SQLite-backed ledger reader and result sink
type Store struct {
	db      *sqlx.DB
	timeout time.Duration
}

var _ ledger.Reader = (*Store)(nil)

// Open opens (creating if needed) the database at path and applies the schema.
// ":memory:" and file: URIs are passed to the driver untouched.
func Open(ctx context.Context, path string) (*Store, error) {
	dsn := path
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve database path: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = "file:" + absPath + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	}

	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps :memory: databases alive and serialises writers
	db.SetMaxOpenConns(1)

	s := &Store{db: db, timeout: defaultTimeout}
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates any missing tables
func (s *Store) Migrate(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

func (s *Store) DetailRowsForParticipant(ctx context.Context, ssn int64) ([]domain.ProfitDetail, error) {
	return s.detailRows(ctx, ssn, domain.KindMember)
}

func (s *Store) DetailRowsForPayee(ctx context.Context, ssn int64) ([]domain.ProfitDetail, error) {
	return s.detailRows(ctx, ssn, domain.KindBeneficiary)
}

func (s *Store) detailRows(ctx context.Context, ssn int64, kind domain.ParticipantKind) ([]domain.ProfitDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var registered int
	err := s.db.GetContext(ctx, &registered,
		`SELECT COUNT(*) FROM ledgers WHERE ssn = ? AND kind = ?`, ssn, kind.String())
	if err != nil {
		return nil, fmt.Errorf("failed to look up ledger for ssn %d: %w", ssn, err)
	}
	if registered == 0 {
		return nil, fmt.Errorf("%s ssn %d: %w", kind, ssn, ledger.ErrNotFound)
	}

	rows := []domain.ProfitDetail{}
	err = s.db.SelectContext(ctx, &rows, `
		SELECT ssn, profit_year, year_extension, code, contribution, earnings, forfeiture, remark
		FROM profit_detail
		WHERE ssn = ? AND kind = ?
		ORDER BY profit_year, year_extension, id`, ssn, kind.String())
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger rows for ssn %d: %w", ssn, err)
	}
	return rows, nil
}

// MemberRows returns every profile row in stream order (SSN, then insertion)
func (s *Store) MemberRows(ctx context.Context) ([]domain.MemberRow, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows := []domain.MemberRow{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT badge, ssn, name, points, beginning_balance, prior_etva, years_in_plan,
		       employee_type, enrolled, prior_contribution, prior_forfeiture
		FROM member_rows
		ORDER BY ssn, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to read member rows: %w", err)
	}
	return rows, nil
}

// BeneficiaryRows returns every payee row ordered by payee key
func (s *Store) BeneficiaryRows(ctx context.Context) ([]domain.BeneficiaryRow, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows := []domain.BeneficiaryRow{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT psn, ssn, name, beginning_balance
		FROM beneficiary_rows
		ORDER BY psn, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to read beneficiary rows: %w", err)
	}
	return rows, nil
}
