package dataset

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"ecodrops-dashboard/internal/models"
)

const xlsxSheet = "Sheet1"

// ReportFilename names the download for a single (country, year) selection.
func ReportFilename(country string, year int, ext string) string {
	return fmt.Sprintf("%s_%d_water_report.%s", country, year, ext)
}

// ExportCSV serializes records with a header row in canonical column order.
// Parse(ExportCSV(x)) yields records equal to x.
func ExportCSV(records []models.UsageRecord) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func WriteCSV(w io.Writer, records []models.UsageRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(models.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, rec := range records {
		if err := cw.Write(csvRow(rec)); err != nil {
			return fmt.Errorf("write record %s/%d: %w", rec.Country, rec.Year, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvRow(rec models.UsageRecord) []string {
	return []string{
		rec.Country,
		strconv.Itoa(rec.Year),
		formatFloat(rec.WaterScore),
		formatFloat(rec.PredictedScore),
		formatFloat(rec.AgriculturalUse),
		formatFloat(rec.IndustrialUse),
		formatFloat(rec.HouseholdUse),
		formatFloat(rec.PerCapitaUse),
		formatFloat(rec.GroundwaterDepletion),
		strconv.Itoa(rec.Anomaly),
		rec.SustainabilityTip,
	}
}

// formatFloat uses the shortest representation that parses back exactly.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteXLSX writes records as a single-sheet workbook with the same header and
// column order as the CSV export. Numeric columns are stored as numbers.
func WriteXLSX(w io.Writer, records []models.UsageRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	header := make([]any, len(models.Columns))
	for i, col := range models.Columns {
		header[i] = col
	}
	if err := f.SetSheetRow(xlsxSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			rec.Country,
			rec.Year,
			rec.WaterScore,
			rec.PredictedScore,
			rec.AgriculturalUse,
			rec.IndustrialUse,
			rec.HouseholdUse,
			rec.PerCapitaUse,
			rec.GroundwaterDepletion,
			rec.Anomaly,
			rec.SustainabilityTip,
		}
		if err := f.SetSheetRow(xlsxSheet, cell, &row); err != nil {
			return fmt.Errorf("write record %s/%d: %w", rec.Country, rec.Year, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
