package approvals

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pms/internal/core/id"
	"pms/internal/domain/leaves"
)

func newPolicy(t *testing.T, now time.Time) *CELPolicy {
	t.Helper()
	p, err := NewCELPolicy(DefaultRules())
	require.NoError(t, err)
	p.now = func() time.Time { return now }
	return p
}

func roles(steps []leaves.ApprovalStep) []string {
	out := make([]string, 0, len(steps))
	for _, s := range steps {
		out = append(out, s.Role)
	}
	return out
}

func TestCELPolicy_LongLeaveEscalates(t *testing.T) {
	now := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
	p := newPolicy(t, now)

	req := leaves.NewLeaveRequest(id.New(),
		now.AddDate(0, 0, 30), now.AddDate(0, 0, 37),
		decimal.NewFromInt(6), false)

	steps, err := p.Steps(t.Context(), req)
	require.NoError(t, err)
	assert.Equal(t, []string{"manager", "admin"}, roles(steps))
}

func TestCELPolicy_ShortNotice(t *testing.T) {
	now := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
	p := newPolicy(t, now)

	req := leaves.NewLeaveRequest(id.New(),
		now.AddDate(0, 0, 1), now.AddDate(0, 0, 1),
		decimal.NewFromInt(1), false)

	steps, err := p.Steps(t.Context(), req)
	require.NoError(t, err)
	assert.Equal(t, []string{"manager"}, roles(steps))
}

func TestCELPolicy_DefaultChain(t *testing.T) {
	now := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
	p := newPolicy(t, now)

	req := leaves.NewLeaveRequest(id.New(),
		now.AddDate(0, 0, 10), now.AddDate(0, 0, 10),
		decimal.NewFromInt(1), false)

	steps, err := p.Steps(t.Context(), req)
	require.NoError(t, err)
	assert.Equal(t, []string{"manager"}, roles(steps))
}

func TestCELPolicy_HalfDayNeverEscalates(t *testing.T) {
	now := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
	p := newPolicy(t, now)

	req := leaves.NewLeaveRequest(id.New(),
		now.AddDate(0, 0, 10), now.AddDate(0, 0, 10),
		decimal.NewFromFloat(0.5), true)

	steps, err := p.Steps(t.Context(), req)
	require.NoError(t, err)
	assert.Equal(t, []string{"manager"}, roles(steps))
}

func TestNewCELPolicy_RejectsBadRules(t *testing.T) {
	_, err := NewCELPolicy([]Rule{{Name: "broken", Condition: `days +`, Roles: []string{"manager"}}})
	assert.Error(t, err)

	_, err = NewCELPolicy([]Rule{{Name: "non_bool", Condition: `days + 1.0`, Roles: []string{"manager"}}})
	assert.ErrorContains(t, err, "bool")
}
