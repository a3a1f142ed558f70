package report

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"cancelflow/database"
	"cancelflow/entities"
	cancelRepoImp "cancelflow/pkg/cancellation/repositoryImp"
	subRepoImp "cancelflow/pkg/subscription/repositoryImp"
	"cancelflow/pkg/wizard"
)

func seed(t *testing.T) *Builder {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)

	sub := &entities.Subscription{UserID: "u1", MonthlyPrice: 2500}
	require.NoError(t, db.Create(sub).Error)
	for _, c := range []*entities.Cancellation{
		{UserID: "u1", SubscriptionID: sub.ID, DownsellVariant: "B",
			StateJSONArray: `[{"screen":"start","foundJob":false},{"screen":"downsell-offer"},{"screen":"offer-accepted"}]`},
		{UserID: "u2", DownsellVariant: "A", StateJSONArray: "[]"},
		{UserID: "u3", DownsellVariant: "A", StateJSONArray: `[{"screen":"nowhere"}]`},
		{UserID: "u4", DownsellVariant: "A",
			StateJSONArray: `[{"screen":"start","foundJob":false},{"screen":"downsell-offer"},{"screen":"offer-declined-survey"}]`},
	} {
		require.NoError(t, db.Create(c).Error)
	}
	return NewBuilder(cancelRepoImp.New(db), subRepoImp.New(db))
}

func byUser(rows []Row) map[string]Row {
	m := map[string]Row{}
	for _, r := range rows {
		m[r.UserID] = r
	}
	return m
}

func TestRows(t *testing.T) {
	rows, err := seed(t).Rows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 4)
	m := byUser(rows)

	assert.Equal(t, 2500, m["u1"].MonthlyPrice)
	assert.Equal(t, "offer accepted", m["u1"].Status())
	assert.Equal(t, wizard.TagOfferAccepted, m["u1"].Summary.Outcome)
	require.NotNil(t, m["u1"].Summary.FoundJob)
	assert.False(t, *m["u1"].Summary.FoundJob)

	assert.Equal(t, "not started", m["u2"].Status())
	assert.Zero(t, m["u2"].MonthlyPrice)
	assert.Equal(t, "unreadable", m["u3"].Status())
	assert.Equal(t, "in progress", m["u4"].Status())
}

func TestTotals(t *testing.T) {
	rows, err := seed(t).Rows(context.Background())
	require.NoError(t, err)

	totals := Totals(rows)
	require.Len(t, totals, 2)
	assert.Equal(t, VariantTotals{Variant: "A", Flows: 3}, totals[0])
	assert.Equal(t, VariantTotals{Variant: "B", Flows: 1, Completed: 1, Accepted: 1}, totals[1])
	assert.Equal(t, 1.0, totals[1].AcceptanceRate())
	assert.Zero(t, totals[0].AcceptanceRate())
}

func TestWrite(t *testing.T) {
	rows, err := seed(t).Rows(context.Background())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, rows))

	x, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer x.Close()

	assert.Equal(t, []string{SheetFlows, SheetVariants}, x.GetSheetList())
	got, err := x.GetRows(SheetFlows)
	require.NoError(t, err)
	require.Len(t, got, 5)
	assert.Equal(t, "User ID", got[0][0])
	assert.Equal(t, "Status", got[0][3])

	variants, err := x.GetRows(SheetVariants)
	require.NoError(t, err)
	require.Len(t, variants, 3)
	assert.Equal(t, []string{"B", "1", "1", "1", "1"}, variants[2])
}
