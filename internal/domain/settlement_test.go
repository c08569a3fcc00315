package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMonth(t *testing.T) {
	m, err := ParseMonth("2025-03")
	require.NoError(t, err)
	assert.Equal(t, Month("2025-03"), m)

	for _, bad := range []string{"2025-3", "2025/03", "202503", "2025-13", "march"} {
		_, err := ParseMonth(bad)
		assert.ErrorIs(t, err, ErrInvalidFormat, bad)
	}
}

func TestMonthOf(t *testing.T) {
	seoul, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)

	assert.Equal(t, Month("2025-03"), MonthOf(fixedNow, time.UTC))
	assert.Equal(t, Month("2025-04"), MonthOf(fixedNow, seoul))
	assert.Equal(t, Month("2025-03"), MonthOf(fixedNow, nil))
}

func TestPricingPolicy(t *testing.T) {
	p := DefaultPricing
	assert.Equal(t, int64(1000), p.AmountFor(TaskTypeComment, 5000))
	assert.Equal(t, int64(5000), p.AmountFor(TaskTypeReview, 5000))
	assert.Equal(t, int64(3000), p.AmountFor(TaskTypeInfo, 0))
}

func TestAggregateAndDiff(t *testing.T) {
	alice := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	bob := uuid.MustParse("22222222-2222-2222-2222-222222222222")
	march := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	april := time.Date(2025, time.April, 2, 9, 0, 0, 0, time.UTC)

	approvals := []Approval{
		{TaskID: uuid.New(), ReviewerID: alice, Amount: 3000, ApprovedAt: march},
		{TaskID: uuid.New(), ReviewerID: alice, Amount: 1000, ApprovedAt: march},
		{TaskID: uuid.New(), ReviewerID: alice, Amount: 3000, ApprovedAt: april},
		{TaskID: uuid.New(), ReviewerID: bob, Amount: 2500, ApprovedAt: april},
	}

	totals := AggregateApprovals(approvals, time.UTC)
	assert.Equal(t, SettlementTotals{TaskCount: 2, TotalAmount: 4000}, totals[SettlementKey{alice, "2025-03"}])
	assert.Equal(t, SettlementTotals{TaskCount: 1, TotalAmount: 3000}, totals[SettlementKey{alice, "2025-04"}])
	assert.Equal(t, SettlementTotals{TaskCount: 1, TotalAmount: 2500}, totals[SettlementKey{bob, "2025-04"}])

	stored := []*Settlement{
		{ReviewerID: alice, Month: "2025-03", TaskCount: 2, TotalAmount: 4000},
		{ReviewerID: alice, Month: "2025-04", TaskCount: 2, TotalAmount: 6000},
		{ReviewerID: bob, Month: "2025-02", TaskCount: 1, TotalAmount: 100},
	}

	drifts := DiffSettlements(stored, totals)
	require.Len(t, drifts, 3)
	assert.Equal(t, Month("2025-02"), drifts[0].Month)
	assert.Equal(t, SettlementTotals{}, drifts[0].Expected)
	assert.Equal(t, alice, drifts[1].ReviewerID)
	assert.Equal(t, SettlementTotals{TaskCount: 1, TotalAmount: 3000}, drifts[1].Expected)
	assert.Equal(t, bob, drifts[2].ReviewerID)
	assert.Equal(t, SettlementTotals{}, drifts[2].Stored)

	assert.Empty(t, DiffSettlements(stored[:1], map[SettlementKey]SettlementTotals{
		{alice, "2025-03"}: {TaskCount: 2, TotalAmount: 4000},
	}))
}

func TestDateParsing(t *testing.T) {
	d, err := ParseDate("2025-04-10")
	require.NoError(t, err)
	assert.Equal(t, "2025-04-10", d.String())

	for _, bad := range []string{"2025-4-10", "10/04/2025", "2025-02-30", ""} {
		_, err := ParseDate(bad)
		assert.ErrorIs(t, err, ErrInvalidFormat, bad)
	}

	var scanned Date
	require.NoError(t, scanned.Scan(time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2025-05-01", scanned.String())
}
