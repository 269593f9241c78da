package aggregate

import (
	"context"
	"errors"
	"testing"
	"time"

	"sitehours/period"
	"sitehours/report"
)

func TestWorkerAggregate_GroupsByDayWithSubtotals(t *testing.T) {
	t.Parallel()

	store := &fakeStore{records: []report.Record{
		{ID: "r1", Timestamp: at(time.March, 1, 8), Description: "formwork", Hours: 3,
			Workers: []report.Worker{{ID: "W1", Name: "Ivan"}}},
		{ID: "r2", Timestamp: at(time.March, 1, 15), Description: "rebar", Hours: 2.5,
			Workers: []report.Worker{{ID: "W2", Name: "Oleg"}, {ID: "W1", Name: "Ivan"}}},
		{ID: "r3", Timestamp: at(time.March, 3, 9), Description: "pour", Hours: 4,
			Workers: []report.Worker{{ID: "W1", Name: "Ivan"}}},
	}}

	got, err := NewWorkerAggregator(store, utcOptions()).Aggregate(context.Background(), "W1", day(time.March, 1), day(time.March, 5))
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}

	if got.WorkerName != "Ivan" {
		t.Fatalf("expected worker name Ivan, got %q", got.WorkerName)
	}
	if store.lastWorkerID != "W1" {
		t.Fatalf("expected query for W1, got %q", store.lastWorkerID)
	}
	if len(got.Days) != 2 {
		t.Fatalf("expected 2 day groups, got %d", len(got.Days))
	}
	if got.Days[0].Date != day(time.March, 1) || got.Days[0].TotalHours != 5.5 || len(got.Days[0].Reports) != 2 {
		t.Fatalf("unexpected first day: %+v", got.Days[0])
	}
	if got.Days[0].Reports[0].ID != "r1" || got.Days[0].Reports[1].ID != "r2" {
		t.Fatalf("expected store order within day")
	}
	if got.Days[1].Date != day(time.March, 3) || got.Days[1].TotalHours != 4 {
		t.Fatalf("unexpected second day: %+v", got.Days[1])
	}
	if got.TotalHours != 9.5 {
		t.Fatalf("expected period total 9.5, got %v", got.TotalHours)
	}
	if got.Count() != 3 {
		t.Fatalf("expected count 3, got %d", got.Count())
	}

	rows := got.Rows()
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	wantFirst := []bool{true, false, true}
	wantDayTotal := []float64{5.5, 5.5, 4}
	for i, row := range rows {
		if row.FirstOfDay != wantFirst[i] {
			t.Fatalf("row %d: expected FirstOfDay=%t", i, wantFirst[i])
		}
		if row.DayTotal != wantDayTotal[i] {
			t.Fatalf("row %d: expected day total %v, got %v", i, wantDayTotal[i], row.DayTotal)
		}
		if row.PeriodTotal != 9.5 {
			t.Fatalf("row %d: expected period total 9.5, got %v", i, row.PeriodTotal)
		}
	}
}

func TestWorkerAggregate_DaysAreChronologicalEvenWhenStoreIsNot(t *testing.T) {
	t.Parallel()

	store := &fakeStore{records: []report.Record{
		{ID: "late", Timestamp: at(time.March, 4, 8), Hours: 1, Workers: []report.Worker{{ID: "W1"}}},
		{ID: "early", Timestamp: at(time.March, 2, 8), Hours: 2, Workers: []report.Worker{{ID: "W1"}}},
	}}

	got, err := NewWorkerAggregator(store, utcOptions()).Aggregate(context.Background(), "W1", day(time.March, 1), day(time.March, 5))
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if got.Days[0].Date != day(time.March, 2) || got.Days[1].Date != day(time.March, 4) {
		t.Fatalf("expected chronological days, got %s, %s", got.Days[0].Date, got.Days[1].Date)
	}
	if got.WorkerName != "W1" {
		t.Fatalf("expected id fallback for unnamed worker, got %q", got.WorkerName)
	}
}

func TestWorkerAggregate_NotFoundIsDistinctFromInvalidRange(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	aggregator := NewWorkerAggregator(store, utcOptions())

	_, err := aggregator.Aggregate(context.Background(), "W1", day(time.March, 1), day(time.March, 3))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if period.IsInvalidRange(err) {
		t.Fatalf("not found must not be an invalid range error")
	}

	_, err = aggregator.Aggregate(context.Background(), "W1", day(time.March, 3), day(time.March, 1))
	if !period.IsInvalidRange(err) {
		t.Fatalf("expected invalid range error, got %v", err)
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatalf("invalid range must not be not found")
	}
	if store.workerCalls != 1 {
		t.Fatalf("expected invalid range to skip the store, got %d calls", store.workerCalls)
	}
}

func TestWorkerAggregate_StoreErrorPropagates(t *testing.T) {
	t.Parallel()

	boom := errors.New("disk I/O error")
	_, err := NewWorkerAggregator(&fakeStore{err: boom}, utcOptions()).Aggregate(context.Background(), "W1", day(time.March, 1), day(time.March, 1))
	if !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
}
