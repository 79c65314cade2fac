package calculation

import (
	"context"
	"errors"
	"fmt"

	"github.com/rgehrsitz/psupdate/internal/domain"
)

// ErrOutOfOrder marks a member group whose SSN was already seen earlier in the
// stream. The input is expected to be sorted by SSN.
var ErrOutOfOrder = errors.New("member stream out of order")

// MemberSource yields raw profile rows sorted by SSN. ok is false at end of stream.
type MemberSource interface {
	Next(ctx context.Context) (row domain.MemberRow, ok bool, err error)
}

// BeneficiarySource yields payee rows in payee order
type BeneficiarySource interface {
	Next(ctx context.Context) (row domain.BeneficiaryRow, ok bool, err error)
}

// SliceMemberSource serves member rows from memory
type SliceMemberSource struct {
	rows []domain.MemberRow
	pos  int
}

func NewSliceMemberSource(rows []domain.MemberRow) *SliceMemberSource {
	return &SliceMemberSource{rows: rows}
}

func (s *SliceMemberSource) Next(context.Context) (domain.MemberRow, bool, error) {
	if s.pos >= len(s.rows) {
		return domain.MemberRow{}, false, nil
	}
	row := s.rows[s.pos]
	s.pos++
	return row, true, nil
}

// SliceBeneficiarySource serves beneficiary rows from memory
type SliceBeneficiarySource struct {
	rows []domain.BeneficiaryRow
	pos  int
}

func NewSliceBeneficiarySource(rows []domain.BeneficiaryRow) *SliceBeneficiarySource {
	return &SliceBeneficiarySource{rows: rows}
}

func (s *SliceBeneficiarySource) Next(context.Context) (domain.BeneficiaryRow, bool, error) {
	if s.pos >= len(s.rows) {
		return domain.BeneficiaryRow{}, false, nil
	}
	row := s.rows[s.pos]
	s.pos++
	return row, true, nil
}

// MemberGrouper sums consecutive rows that share an SSN into one
// ParticipantPoints. A change of SSN, or the end of the stream, closes a group.
type MemberGrouper struct {
	src     MemberSource
	pending *domain.MemberRow
	seen    map[int64]struct{}
	done    bool
}

func NewMemberGrouper(src MemberSource) *MemberGrouper {
	return &MemberGrouper{src: src, seen: make(map[int64]struct{})}
}

// Next returns the next complete participant. An out-of-order group is still
// returned, together with an error wrapping ErrOutOfOrder, so callers can skip
// it and keep reading.
func (g *MemberGrouper) Next(ctx context.Context) (domain.ParticipantPoints, bool, error) {
	var p domain.ParticipantPoints
	if g.pending == nil && !g.done {
		row, ok, err := g.src.Next(ctx)
		if err != nil {
			return p, false, err
		}
		if !ok {
			g.done = true
		} else {
			g.pending = &row
		}
	}
	if g.pending == nil {
		return p, false, nil
	}

	p.Accumulate(*g.pending)
	g.pending = nil
	for {
		row, ok, err := g.src.Next(ctx)
		if err != nil {
			return p, false, err
		}
		if !ok {
			g.done = true
			break
		}
		if row.SSN != p.SSN {
			g.pending = &row
			break
		}
		p.Accumulate(row)
	}

	if _, dup := g.seen[p.SSN]; dup {
		return p, true, fmt.Errorf("ssn %d reappears after a key change: %w", p.SSN, ErrOutOfOrder)
	}
	g.seen[p.SSN] = struct{}{}
	return p, true, nil
}

// BeneficiaryDeduper drops a payee row when it repeats the previous row's payee key or SSN
type BeneficiaryDeduper struct {
	src     BeneficiarySource
	started bool
	lastPSN int64
	lastSSN int64
	Skipped int
}

func NewBeneficiaryDeduper(src BeneficiarySource) *BeneficiaryDeduper {
	return &BeneficiaryDeduper{src: src}
}

// Next returns the next distinct payee; first occurrence wins
func (d *BeneficiaryDeduper) Next(ctx context.Context) (domain.BeneficiaryRow, bool, error) {
	for {
		row, ok, err := d.src.Next(ctx)
		if err != nil || !ok {
			return row, ok, err
		}
		if d.started && (row.PSN == d.lastPSN || row.SSN == d.lastSSN) {
			d.Skipped++
			continue
		}
		d.started = true
		d.lastPSN, d.lastSSN = row.PSN, row.SSN
		return row, true, nil
	}
}
