// Package report exports cancellation flows as an Excel workbook.
package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"cancelflow/entities"
	cancelrepo "cancelflow/pkg/cancellation/repository"
	subrepo "cancelflow/pkg/subscription/repository"
	"cancelflow/pkg/wizard"
)

const (
	SheetFlows    = "Cancellations"
	SheetVariants = "Variants"
)

// Row is one user's flow as exported.
type Row struct {
	UserID       string
	Variant      string
	MonthlyPrice int
	Summary      wizard.Summary
	// Problem is set when the stored history could not be read.
	Problem   string
	UpdatedAt time.Time
}

func (r Row) Status() string {
	switch {
	case r.Problem != "":
		return "unreadable"
	case r.Summary.Steps == 0:
		return "not started"
	case r.Summary.AcceptedOffer:
		return "offer accepted"
	case r.Summary.Completed:
		return "completed"
	}
	return "in progress"
}

type Builder struct {
	cancels cancelrepo.CancellationRepository
	subs    subrepo.SubscriptionRepository
}

func NewBuilder(cancels cancelrepo.CancellationRepository, subs subrepo.SubscriptionRepository) *Builder {
	return &Builder{cancels: cancels, subs: subs}
}

// Rows reads every cancellation, newest first, with the subscription price.
func (b *Builder) Rows(ctx context.Context) ([]Row, error) {
	cs, err := b.cancels.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list cancellations: %w", err)
	}
	prices := map[string]int{}
	rows := make([]Row, 0, len(cs))
	for _, c := range cs {
		price, ok := prices[c.SubscriptionID]
		if !ok && c.SubscriptionID != "" {
			sub, err := b.subs.FindByID(ctx, c.SubscriptionID)
			switch {
			case err == nil:
				price = sub.MonthlyPrice
			case !errors.Is(err, entities.ErrNotFound):
				return nil, fmt.Errorf("subscription %s: %w", c.SubscriptionID, err)
			}
			prices[c.SubscriptionID] = price
		}
		rows = append(rows, rowOf(c, price))
	}
	return rows, nil
}

func rowOf(c entities.Cancellation, price int) Row {
	r := Row{UserID: c.UserID, Variant: c.DownsellVariant, MonthlyPrice: price, UpdatedAt: c.UpdatedAt}
	state := strings.TrimSpace(c.StateJSONArray)
	if state == "" || state == "[]" {
		return r
	}
	h, err := wizard.DecodeHistory([]byte(state))
	if err != nil {
		r.Problem = err.Error()
		return r
	}
	r.Summary = wizard.Summarize(h)
	return r
}

var flowHeader = []any{
	"User ID", "Variant", "Monthly price", "Status", "Last screen",
	"Found job", "Reason", "Detail", "Steps", "Updated at", "Problem",
}

// Workbook lays rows out on two sheets: one line per flow, and per-variant
// totals.
func Workbook(rows []Row) (*excelize.File, error) {
	x := excelize.NewFile()
	if err := x.SetSheetName("Sheet1", SheetFlows); err != nil {
		return nil, err
	}
	if err := x.SetSheetRow(SheetFlows, "A1", &flowHeader); err != nil {
		return nil, err
	}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		line := []any{
			r.UserID, r.Variant, float64(r.MonthlyPrice) / 100, r.Status(), string(r.Summary.Outcome),
			foundJob(r.Summary.FoundJob), string(r.Summary.Reason), r.Summary.Detail, r.Summary.Steps,
			r.UpdatedAt.UTC().Format(time.RFC3339), r.Problem,
		}
		if err := x.SetSheetRow(SheetFlows, cell, &line); err != nil {
			return nil, err
		}
	}
	if err := x.SetPanes(SheetFlows, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return nil, err
	}

	if _, err := x.NewSheet(SheetVariants); err != nil {
		return nil, err
	}
	header := []any{"Variant", "Flows", "Completed", "Offer accepted", "Acceptance rate"}
	if err := x.SetSheetRow(SheetVariants, "A1", &header); err != nil {
		return nil, err
	}
	for i, t := range Totals(rows) {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		line := []any{t.Variant, t.Flows, t.Completed, t.Accepted, t.AcceptanceRate()}
		if err := x.SetSheetRow(SheetVariants, cell, &line); err != nil {
			return nil, err
		}
	}
	return x, nil
}

// Write renders rows as an .xlsx document to w.
func Write(w io.Writer, rows []Row) error {
	x, err := Workbook(rows)
	if err != nil {
		return err
	}
	defer x.Close()
	_, err = x.WriteTo(w)
	return err
}

func foundJob(b *bool) string {
	switch {
	case b == nil:
		return ""
	case *b:
		return "yes"
	}
	return "no"
}

type VariantTotals struct {
	Variant   string
	Flows     int
	Completed int
	Accepted  int
}

// AcceptanceRate is accepted offers over completed flows.
func (t VariantTotals) AcceptanceRate() float64 {
	if t.Completed == 0 {
		return 0
	}
	return float64(t.Accepted) / float64(t.Completed)
}

func Totals(rows []Row) []VariantTotals {
	by := map[string]*VariantTotals{}
	for _, r := range rows {
		v := r.Variant
		if v == "" {
			v = "unassigned"
		}
		t, ok := by[v]
		if !ok {
			t = &VariantTotals{Variant: v}
			by[v] = t
		}
		t.Flows++
		if r.Summary.Completed {
			t.Completed++
		}
		if r.Summary.AcceptedOffer {
			t.Accepted++
		}
	}
	out := make([]VariantTotals, 0, len(by))
	for _, t := range by {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Variant < out[j].Variant })
	return out
}
