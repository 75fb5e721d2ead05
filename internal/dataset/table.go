// Package dataset loads the water-usage table and answers the selection
// queries the dashboard panels are built from.
//
// A Table is immutable once constructed. Every query returns fresh slices, so
// callers may sort or modify results without affecting other readers, and a
// Table can be shared freely between goroutines.
package dataset

import (
	"slices"
	"time"

	"ecodrops-dashboard/internal/models"
)

// MalformedRow describes an input row that was skipped during load.
type MalformedRow struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

type recordKey struct {
	country string
	year    int
}

type Table struct {
	records  []models.UsageRecord
	skipped  []MalformedRow
	index    map[recordKey]int
	source   string
	loadedAt time.Time
}

// NewTable builds a table over a copy of records.
func NewTable(records []models.UsageRecord) *Table {
	return newTable(records, nil)
}

func newTable(records []models.UsageRecord, skipped []MalformedRow) *Table {
	t := &Table{
		records: slices.Clone(records),
		skipped: slices.Clone(skipped),
		index:   make(map[recordKey]int, len(records)),
	}
	for i, rec := range t.records {
		key := recordKey{country: rec.Country, year: rec.Year}
		// First occurrence wins for repeated keys.
		if _, exists := t.index[key]; !exists {
			t.index[key] = i
		}
	}
	return t
}

func (t *Table) Len() int {
	return len(t.records)
}

// Records returns every record in file order.
func (t *Table) Records() []models.UsageRecord {
	return slices.Clone(t.records)
}

// Skipped returns the rows excluded while loading.
func (t *Table) Skipped() []MalformedRow {
	return slices.Clone(t.skipped)
}

// Duplicates reports how many records share a (Country, Year) key with an
// earlier record. Those records are unreachable through ByKey.
func (t *Table) Duplicates() int {
	return len(t.records) - len(t.index)
}

// Source is the path the table was loaded from, empty for in-memory tables.
func (t *Table) Source() string {
	return t.source
}

func (t *Table) LoadedAt() time.Time {
	return t.loadedAt
}

// ByKey returns the record for an exact (country, year) match.
func (t *Table) ByKey(country string, year int) (models.UsageRecord, bool) {
	i, ok := t.index[recordKey{country: country, year: year}]
	if !ok {
		return models.UsageRecord{}, false
	}
	return t.records[i], true
}

// BySeries returns a country's records ordered by ascending year.
func (t *Table) BySeries(country string) []models.UsageRecord {
	series := make([]models.UsageRecord, 0)
	for _, rec := range t.records {
		if rec.Country == country {
			series = append(series, rec)
		}
	}
	slices.SortStableFunc(series, func(a, b models.UsageRecord) int {
		return a.Year - b.Year
	})
	return series
}

// ByAnomaly returns the records flagged as outliers, in table order.
func (t *Table) ByAnomaly() []models.UsageRecord {
	anomalies := make([]models.UsageRecord, 0)
	for _, rec := range t.records {
		if rec.IsAnomaly() {
			anomalies = append(anomalies, rec)
		}
	}
	return anomalies
}

// Countries returns the distinct countries in ascending order.
func (t *Table) Countries() []string {
	seen := make(map[string]struct{})
	countries := make([]string, 0)
	for _, rec := range t.records {
		if _, ok := seen[rec.Country]; ok {
			continue
		}
		seen[rec.Country] = struct{}{}
		countries = append(countries, rec.Country)
	}
	slices.Sort(countries)
	return countries
}

// Years returns the distinct years in ascending order.
func (t *Table) Years() []int {
	seen := make(map[int]struct{})
	years := make([]int, 0)
	for _, rec := range t.records {
		if _, ok := seen[rec.Year]; ok {
			continue
		}
		seen[rec.Year] = struct{}{}
		years = append(years, rec.Year)
	}
	slices.Sort(years)
	return years
}
