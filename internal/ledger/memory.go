package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/rgehrsitz/psupdate/internal/domain"
)

// MemoryReader is a Reader over in-memory rows, keyed by SSN.
// Participant and payee ledgers are held separately.
type MemoryReader struct {
	mu           sync.RWMutex
	participants map[int64][]domain.ProfitDetail
	payees       map[int64][]domain.ProfitDetail
}

// NewMemoryReader creates an empty in-memory reader
func NewMemoryReader() *MemoryReader {
	return &MemoryReader{
		participants: make(map[int64][]domain.ProfitDetail),
		payees:       make(map[int64][]domain.ProfitDetail),
	}
}

// AddParticipant registers a member ledger. Calling it with no rows registers
// an empty ledger, which is distinct from a missing one.
func (m *MemoryReader) AddParticipant(ssn int64, rows ...domain.ProfitDetail) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.participants[ssn] = append(m.participants[ssn], rows...)
}

// AddPayee registers a beneficiary ledger
func (m *MemoryReader) AddPayee(ssn int64, rows ...domain.ProfitDetail) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payees[ssn] = append(m.payees[ssn], rows...)
}

func (m *MemoryReader) DetailRowsForParticipant(ctx context.Context, ssn int64) ([]domain.ProfitDetail, error) {
	return m.lookup(ctx, m.participants, ssn)
}

func (m *MemoryReader) DetailRowsForPayee(ctx context.Context, ssn int64) ([]domain.ProfitDetail, error) {
	return m.lookup(ctx, m.payees, ssn)
}

func (m *MemoryReader) lookup(ctx context.Context, src map[int64][]domain.ProfitDetail, ssn int64) ([]domain.ProfitDetail, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	rows, ok := src[ssn]
	if !ok {
		return nil, fmt.Errorf("ssn %d: %w", ssn, ErrNotFound)
	}
	out := make([]domain.ProfitDetail, len(rows))
	copy(out, rows)
	return out, nil
}
