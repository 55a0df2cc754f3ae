// Package viewmodel holds screen state derived from the store, independent
// of how it is rendered.
package viewmodel

import (
	"context"
	"fmt"

	"github.com/Veraticus/pennywise/internal/model"
	"github.com/Veraticus/pennywise/internal/service"
	"golang.org/x/sync/errgroup"
)

// HomeView is everything the home screen shows for one month.
type HomeView struct {
	Month        model.Month
	MonthLabel   string
	Transactions []model.Transaction
	Spend        []model.CategorySpend
	Categories   []model.Category
	Totals       model.MonthlyTotals
	TotalCents   int64
	Loading      bool
}

// Count returns the number of listed transactions.
func (v HomeView) Count() int {
	return len(v.Transactions)
}

// BreakdownRow is one expense category's share of the month's spending.
type BreakdownRow struct {
	Name       string
	TotalCents int64
	Percent    float64
}

// Breakdown returns the categories with spending, in the store's order,
// with each one's percentage of the categorized expense total.
func (v HomeView) Breakdown() []BreakdownRow {
	var rows []BreakdownRow
	for _, s := range v.Spend {
		if s.TotalCents == 0 {
			continue
		}
		row := BreakdownRow{Name: s.CategoryName, TotalCents: s.TotalCents}
		if v.Totals.ExpenseCents != 0 {
			row.Percent = float64(s.TotalCents) / float64(v.Totals.ExpenseCents) * 100
		}
		rows = append(rows, row)
	}
	return rows
}

// LoadingView returns the placeholder shown while month is fetched.
func LoadingView(month model.Month) HomeView {
	return HomeView{Month: month, MonthLabel: month.Label(), Loading: true}
}

// HomeLoader fetches a HomeView from the store.
type HomeLoader struct {
	Store service.HomeStore
}

// NewHomeLoader creates a loader reading from store.
func NewHomeLoader(store service.HomeStore) *HomeLoader {
	return &HomeLoader{Store: store}
}

// Load ensures the schema exists, then fetches the month's transactions,
// totals, category spend and the category list concurrently.
func (l *HomeLoader) Load(ctx context.Context, month model.Month) (HomeView, error) {
	if err := l.Store.Migrate(ctx); err != nil {
		return HomeView{}, fmt.Errorf("failed to prepare database: %w", err)
	}

	var (
		txns   []model.Transaction
		totals *model.MonthlyTotals
		spend  []model.CategorySpend
		cats   []model.Category
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txns, err = l.Store.ListTransactionsByMonth(gctx, month)
		return err
	})
	g.Go(func() error {
		var err error
		totals, err = l.Store.MonthlyTotals(gctx, month)
		return err
	})
	g.Go(func() error {
		var err error
		spend, err = l.Store.SpendByCategory(gctx, month)
		return err
	})
	g.Go(func() error {
		var err error
		cats, err = l.Store.GetCategories(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return HomeView{}, fmt.Errorf("failed to load %s: %w", month, err)
	}

	view := HomeView{
		Month:        month,
		MonthLabel:   month.Label(),
		Transactions: txns,
		Spend:        spend,
		Categories:   cats,
		Totals:       *totals,
		TotalCents:   SumAmounts(txns),
	}
	return view, nil
}

// SumAmounts adds up the amounts of txns, whatever their category.
func SumAmounts(txns []model.Transaction) int64 {
	var total int64
	for _, t := range txns {
		total += t.AmountCents
	}
	return total
}
