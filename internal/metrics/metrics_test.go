package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rgehrsitz/psupdate/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRecordsRun(t *testing.T) {
	r := NewRegistry()

	r.ParticipantProcessed(domain.KindMember)
	r.ParticipantProcessed(domain.KindMember)
	r.ParticipantProcessed(domain.KindBeneficiary)
	r.ParticipantSkipped(domain.KindMember, "ledger_not_found")
	r.ParticipantCapped(true)

	outcome := &domain.RunOutcome{
		RerunRequired:      true,
		InvalidRecordCount: 1,
		GrandTotals: domain.Totals{
			EndingBalance: decimal.RequireFromString("12345.67"),
			MaxOverTotal:  decimal.RequireFromString("10.00"),
		},
	}
	r.RunFinished(outcome, 1500*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.Participants.WithLabelValues("member")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Participants.WithLabelValues("beneficiary")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Skipped.WithLabelValues("member", "ledger_not_found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Capped.WithLabelValues("true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.RerunRequired))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.InvalidRecords))
	assert.Equal(t, 1.5, testutil.ToFloat64(r.RunDuration))
	assert.InDelta(t, 12345.67, testutil.ToFloat64(r.EndingBalance), 0.001)
}

func TestWriteTextfile(t *testing.T) {
	r := NewRegistry()
	r.ParticipantProcessed(domain.KindMember)
	r.RunFinished(&domain.RunOutcome{}, time.Second)

	path := filepath.Join(t.TempDir(), "psupdate.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.Contains(text, `psupdate_participants_processed_total{kind="member"} 1`), text)
	assert.Contains(t, text, "psupdate_rerun_required 0")
}

func TestSeparateRegistriesDoNotShareState(t *testing.T) {
	a, b := NewRegistry(), NewRegistry()
	a.ParticipantProcessed(domain.KindMember)
	assert.Equal(t, 0.0, testutil.ToFloat64(b.Participants.WithLabelValues("member")))
}
