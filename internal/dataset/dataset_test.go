package dataset

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"ecodrops-dashboard/internal/models"
)

const header = "Country,Year,Water Score,Predicted Score,Agricultural Water Use (%),Industrial Water Use (%),Household Water Use (%),Per Capita Water Use (Liters per Day),Groundwater Depletion Rate (%),Anomaly,Sustainability Tip\n"

const sampleCSV = header +
	`Brazil,2021,74.5,70,58,27,15,180.2,1.4,1,"Reuse greywater, fix leaks"
Brazil,2020,72,68,60,25,15,175.5,1.2,1,Promote drip irrigation
India,2020,38.2,55.1,80,12,8,140,3.9,-1,Recharge aquifers
Brazil,2019,69.9,71,61,24,15,171,1.1,1,Meter household use
Spain,2020,85,83.5,65,20,15,260,2.2,-1,Cap groundwater pumping
`

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "usage.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func mustParse(t *testing.T, content string) *Table {
	t.Helper()
	table, err := Parse(strings.NewReader(content))
	require.NoError(t, err)
	return table
}

func TestParse_ValidData(t *testing.T) {
	table := mustParse(t, sampleCSV)

	assert.Equal(t, 5, table.Len())
	assert.Empty(t, table.Skipped())

	rec, ok := table.ByKey("Brazil", 2021)
	require.True(t, ok)
	assert.Equal(t, models.UsageRecord{
		Country:              "Brazil",
		Year:                 2021,
		WaterScore:           74.5,
		PredictedScore:       70,
		AgriculturalUse:      58,
		IndustrialUse:        27,
		HouseholdUse:         15,
		PerCapitaUse:         180.2,
		GroundwaterDepletion: 1.4,
		Anomaly:              1,
		SustainabilityTip:    "Reuse greywater, fix leaks",
	}, rec)
}

func TestParse_LoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		csv     string
		wantErr error
	}{
		{name: "empty file", csv: "", wantErr: ErrEmptyFile},
		{name: "missing anomaly column", csv: "Country,Year,Water Score,Predicted Score,Agricultural Water Use (%),Industrial Water Use (%),Household Water Use (%),Per Capita Water Use (Liters per Day),Groundwater Depletion Rate (%),Sustainability Tip\n", wantErr: ErrMissingColumns},
		{name: "unrelated header", csv: "a,b,c\n1,2,3\n", wantErr: ErrMissingColumns},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.csv))
			require.Error(t, err)

			var loadErr *LoadError
			assert.True(t, errors.As(err, &loadErr), "expected *LoadError, got %T", err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParse_MissingColumnsAreNamed(t *testing.T) {
	_, err := Parse(strings.NewReader("Country,Year\nBrazil,2020\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Water Score")
	assert.Contains(t, err.Error(), "Sustainability Tip")
}

func TestParse_HeaderOnlyIsEmptyTable(t *testing.T) {
	table := mustParse(t, header)
	assert.Equal(t, 0, table.Len())
	assert.Empty(t, table.Countries())
	assert.Empty(t, table.Years())
}

func TestParse_SkipsMalformedRows(t *testing.T) {
	content := header +
		"Brazil,2020,72,68,60,25,15,175.5,1.2,1,ok\n" +
		"Chile,twenty,50,50,50,30,20,100,1,1,bad year\n" +
		",2020,50,50,50,30,20,100,1,1,no country\n" +
		"Peru,2020,50\n" +
		"Chile,2020,55,54,50,30,20,100,1,-1,ok\n"

	table := mustParse(t, content)

	assert.Equal(t, 2, table.Len())
	skipped := table.Skipped()
	require.Len(t, skipped, 3)
	assert.Equal(t, 3, skipped[0].Line)
	assert.Contains(t, skipped[0].Reason, "Year")
	assert.Contains(t, skipped[1].Reason, "Country")
	assert.Contains(t, skipped[2].Reason, "missing field")
}

func TestParse_ExtraColumnsAndBOM(t *testing.T) {
	content := "\ufeffNotes," + strings.Replace(header, "\n", ",Region\n", 1) +
		"x,Brazil,2020,72,68,60,25,15,175.5,1.2,1,tip,South\n"

	table := mustParse(t, content)
	require.Equal(t, 1, table.Len())

	rec, ok := table.ByKey("Brazil", 2020)
	require.True(t, ok)
	assert.Equal(t, 72.0, rec.WaterScore)
	assert.Equal(t, "tip", rec.SustainabilityTip)
}

func TestParse_IntegralFloatYear(t *testing.T) {
	table := mustParse(t, header+"Brazil,2020.0,72,68,60,25,15,175.5,1.2,-1.0,tip\n")

	rec, ok := table.ByKey("Brazil", 2020)
	require.True(t, ok)
	assert.Equal(t, -1, rec.Anomaly)
}

func TestTable_ByKey(t *testing.T) {
	table := mustParse(t, sampleCSV)

	for _, rec := range table.Records() {
		got, ok := table.ByKey(rec.Country, rec.Year)
		require.True(t, ok)
		assert.Equal(t, rec.Country, got.Country)
		assert.Equal(t, rec.Year, got.Year)
	}

	_, ok := table.ByKey("Brazil", 1999)
	assert.False(t, ok)
	_, ok = table.ByKey("brazil", 2020)
	assert.False(t, ok, "country match is case-sensitive")
}

func TestTable_ByKeyDuplicatePicksFirst(t *testing.T) {
	table := NewTable([]models.UsageRecord{
		{Country: "Brazil", Year: 2020, WaterScore: 10},
		{Country: "Brazil", Year: 2020, WaterScore: 20},
	})

	rec, ok := table.ByKey("Brazil", 2020)
	require.True(t, ok)
	assert.Equal(t, 10.0, rec.WaterScore)
	assert.Equal(t, 1, table.Duplicates())
}

func TestTable_BySeries(t *testing.T) {
	table := mustParse(t, sampleCSV)

	series := table.BySeries("Brazil")
	require.Len(t, series, 3)
	for i := 1; i < len(series); i++ {
		assert.Less(t, series[i-1].Year, series[i].Year)
	}
	for _, rec := range series {
		assert.Equal(t, "Brazil", rec.Country)
	}

	assert.Empty(t, table.BySeries("Atlantis"))
	assert.NotNil(t, table.BySeries("Atlantis"))
}

func TestTable_ByAnomaly(t *testing.T) {
	table := mustParse(t, sampleCSV)

	anomalies := table.ByAnomaly()
	require.Len(t, anomalies, 2)
	assert.Equal(t, "India", anomalies[0].Country)
	assert.Equal(t, "Spain", anomalies[1].Country)
	for _, rec := range anomalies {
		assert.Equal(t, -1, rec.Anomaly)
	}

	assert.Equal(t, anomalies, table.ByAnomaly(), "repeated calls return the same rows")

	none := NewTable([]models.UsageRecord{{Country: "Brazil", Year: 2020, Anomaly: 1}})
	assert.Empty(t, none.ByAnomaly())
}

func TestTable_ResultsAreCopies(t *testing.T) {
	table := mustParse(t, sampleCSV)

	series := table.BySeries("Brazil")
	series[0].WaterScore = -1

	rec, ok := table.ByKey(series[0].Country, series[0].Year)
	require.True(t, ok)
	assert.NotEqual(t, -1.0, rec.WaterScore)
}

func TestTable_CountriesAndYears(t *testing.T) {
	table := mustParse(t, sampleCSV)

	assert.Equal(t, []string{"Brazil", "India", "Spain"}, table.Countries())
	assert.Equal(t, []int{2019, 2020, 2021}, table.Years())
}

func TestExportCSV_RoundTrip(t *testing.T) {
	records := []models.UsageRecord{
		{
			Country:              "Côte d'Ivoire",
			Year:                 2020,
			WaterScore:           0.1 + 0.2,
			PredictedScore:       68.123456789,
			AgriculturalUse:      60,
			IndustrialUse:        25,
			HouseholdUse:         15,
			PerCapitaUse:         175.5,
			GroundwaterDepletion: 1.2,
			Anomaly:              -1,
			SustainabilityTip:    "Say \"no\" to waste,\nalways",
		},
		{Country: "Brazil", Year: 2021, WaterScore: 72, Anomaly: 1},
	}

	data, err := ExportCSV(records)
	require.NoError(t, err)

	table, err := Parse(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, records, table.Records())
	assert.Empty(t, table.Skipped())
}

func TestExportCSV_LoadedSubsetRoundTrip(t *testing.T) {
	table := mustParse(t, sampleCSV)

	subsets := map[string][]models.UsageRecord{
		"full table": table.Records(),
		"series":     table.BySeries("Brazil"),
		"anomalies":  table.ByAnomaly(),
		"empty":      nil,
	}
	for name, subset := range subsets {
		t.Run(name, func(t *testing.T) {
			data, err := ExportCSV(subset)
			require.NoError(t, err)

			reloaded, err := Parse(bytes.NewReader(data))
			require.NoError(t, err)
			assert.Equal(t, len(subset), reloaded.Len())
			if len(subset) > 0 {
				assert.Equal(t, subset, reloaded.Records())
			}
		})
	}
}

func TestExportCSV_HeaderOrder(t *testing.T) {
	data, err := ExportCSV(nil)
	require.NoError(t, err)
	assert.Equal(t, header, string(data))
}

func TestWriteXLSX(t *testing.T) {
	table := mustParse(t, sampleCSV)
	rec, _ := table.ByKey("India", 2020)

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, []models.UsageRecord{rec}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, models.Columns, rows[0])
	assert.Equal(t, "India", rows[1][0])
	assert.Equal(t, "2020", rows[1][1])
	assert.Equal(t, "-1", rows[1][9])
	assert.Equal(t, "Recharge aquifers", rows[1][10])
}

func TestReportFilename(t *testing.T) {
	assert.Equal(t, "Brazil_2020_water_report.csv", ReportFilename("Brazil", 2020, "csv"))
	assert.Equal(t, "Brazil_2020_water_report.xlsx", ReportFilename("Brazil", 2020, "xlsx"))
}

func TestLoader_Load(t *testing.T) {
	loadedAt := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	path := writeCSV(t, sampleCSV)

	loader := NewLoader(WithClock(clockwork.NewFakeClockAt(loadedAt)))
	table, err := loader.Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 5, table.Len())
	assert.Equal(t, path, table.Source())
	assert.Equal(t, loadedAt, table.LoadedAt())
}

func TestLoader_LoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := NewLoader().Load(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))

		var loadErr *LoadError
		require.ErrorAs(t, err, &loadErr)
		assert.ErrorIs(t, err, os.ErrNotExist)
		assert.Contains(t, err.Error(), "nope.csv")
	})

	t.Run("missing columns", func(t *testing.T) {
		path := writeCSV(t, "Country,Year\nBrazil,2020\n")
		_, err := NewLoader().Load(context.Background(), path)

		var loadErr *LoadError
		require.ErrorAs(t, err, &loadErr)
		assert.Equal(t, path, loadErr.Path)
		assert.ErrorIs(t, err, ErrMissingColumns)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewLoader().Load(ctx, writeCSV(t, sampleCSV))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestLoader_Cache(t *testing.T) {
	cacheDir := t.TempDir()
	path := writeCSV(t, sampleCSV)
	loader := NewLoader(WithCacheDir(cacheDir))

	first, err := loader.Load(context.Background(), path)
	require.NoError(t, err)

	entries, err := os.ReadDir(cacheDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasSuffix(entries[0].Name(), "_v1.gob"))

	cached, err := loader.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, first.Records(), cached.Records())

	// A changed source invalidates the snapshot.
	require.NoError(t, os.WriteFile(path, []byte(header+"Chile,2020,55,54,50,30,20,100,1,-1,ok\n"), 0o644))
	reloaded, err := loader.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Chile"}, reloaded.Countries())
}
