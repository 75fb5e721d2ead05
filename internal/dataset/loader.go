package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"ecodrops-dashboard/internal/models"
)

const utf8BOM = "\ufeff"

type Loader struct {
	cacheDir string
	logger   *slog.Logger
	clock    clockwork.Clock
}

type LoaderOption func(*Loader)

// WithCacheDir enables the parsed-table snapshot cache. An empty dir disables it.
func WithCacheDir(dir string) LoaderOption {
	return func(l *Loader) { l.cacheDir = dir }
}

func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) { l.logger = logger }
}

func WithClock(clock clockwork.Clock) LoaderOption {
	return func(l *Loader) { l.clock = clock }
}

func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		logger: slog.Default(),
		clock:  clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads the CSV at path into an immutable Table. Any failure that leaves
// the dashboard without a table is reported as a *LoadError.
func (l *Loader) Load(ctx context.Context, path string) (*Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	if info.IsDir() {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("is a directory")}
	}

	if l.cacheDir != "" {
		if snap, err := l.loadSnapshot(path); err == nil && snap.matches(info) {
			table := newTable(snap.Records, snap.Skipped)
			l.finish(table, path)
			l.logger.Info("loaded dataset from cache",
				"path", path,
				"records", table.Len(),
				"skipped", len(snap.Skipped),
			)
			return table, nil
		}
	}

	start := l.clock.Now()
	l.logger.Info("processing CSV file", "path", path)

	file, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer file.Close()

	table, err := parse(ctx, file, l.logger)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			loadErr.Path = path
			return nil, loadErr
		}
		return nil, &LoadError{Path: path, Err: err}
	}
	l.finish(table, path)

	if l.cacheDir != "" {
		if err := l.saveSnapshot(path, info, table); err != nil {
			l.logger.Warn("failed to save cache", "error", err)
		}
	}

	l.logger.Info("csv processing complete",
		"records", table.Len(),
		"skipped", len(table.skipped),
		"duplicates", table.Duplicates(),
		"duration", l.clock.Since(start),
	)
	return table, nil
}

func (l *Loader) finish(table *Table, path string) {
	table.source = path
	table.loadedAt = l.clock.Now()
}

// Parse reads a CSV stream into a Table. Rows that cannot be typed are skipped
// and reported through Table.Skipped.
func Parse(r io.Reader) (*Table, error) {
	return parse(context.Background(), r, slog.Default())
}

func parse(ctx context.Context, r io.Reader, logger *slog.Logger) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &LoadError{Err: ErrEmptyFile}
	}
	if err != nil {
		return nil, &LoadError{Err: fmt.Errorf("read header: %w", err)}
	}

	cols, err := mapColumns(header)
	if err != nil {
		return nil, &LoadError{Err: err}
	}

	var (
		records []models.UsageRecord
		skipped []MalformedRow
	)
	for {
		if err := ctx.Err(); err != nil {
			return nil, &LoadError{Err: err}
		}

		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			line := 0
			if errors.As(err, &parseErr) {
				line = parseErr.Line
			}
			skipped = append(skipped, MalformedRow{Line: line, Reason: err.Error()})
			logger.Warn("skipping malformed row", "line", line, "error", err)
			continue
		}

		line, _ := reader.FieldPos(0)
		rec, err := cols.record(row)
		if err != nil {
			skipped = append(skipped, MalformedRow{Line: line, Reason: err.Error()})
			logger.Warn("skipping malformed row", "line", line, "error", err)
			continue
		}
		records = append(records, rec)
	}

	return newTable(records, skipped), nil
}

// columnIndex maps each required column to its position in the input header.
type columnIndex map[string]int

func mapColumns(header []string) (columnIndex, error) {
	cols := make(columnIndex, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if i == 0 {
			name = strings.TrimSpace(strings.TrimPrefix(name, utf8BOM))
		}
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}

	var missing []string
	for _, col := range models.Columns {
		if _, ok := cols[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}
	return cols, nil
}

func (c columnIndex) record(row []string) (models.UsageRecord, error) {
	var rec models.UsageRecord
	var errs []error

	field := func(col string) string {
		i := c[col]
		if i >= len(row) {
			errs = append(errs, fmt.Errorf("%s: missing field", col))
			return ""
		}
		return row[i]
	}
	float := func(col string) float64 {
		raw := strings.TrimSpace(field(col))
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: invalid number %q", col, raw))
		}
		return v
	}
	integer := func(col string) int {
		raw := strings.TrimSpace(field(col))
		v, err := parseInt(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: invalid integer %q", col, raw))
		}
		return v
	}

	rec.Country = field(models.ColCountry)
	rec.Year = integer(models.ColYear)
	rec.WaterScore = float(models.ColWaterScore)
	rec.PredictedScore = float(models.ColPredictedScore)
	rec.AgriculturalUse = float(models.ColAgriculturalUse)
	rec.IndustrialUse = float(models.ColIndustrialUse)
	rec.HouseholdUse = float(models.ColHouseholdUse)
	rec.PerCapitaUse = float(models.ColPerCapitaUse)
	rec.GroundwaterDepletion = float(models.ColGroundwaterDepletion)
	rec.Anomaly = integer(models.ColAnomaly)
	rec.SustainabilityTip = field(models.ColSustainabilityTip)

	if strings.TrimSpace(rec.Country) == "" && len(errs) == 0 {
		errs = append(errs, fmt.Errorf("%s: empty", models.ColCountry))
	}

	if len(errs) > 0 {
		return models.UsageRecord{}, errors.Join(errs...)
	}
	return rec, nil
}

// parseInt accepts plain integers and integral floats such as "2020.0", which
// some dataframe exports write for integer columns.
func parseInt(raw string) (int, error) {
	if v, err := strconv.Atoi(raw); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not an integer: %s", raw)
	}
	return int(f), nil
}

// snapshot is the gob-encoded form of a parsed table, keyed on the source
// file's size and modification time.
type snapshot struct {
	Version       string
	SourceModTime time.Time
	SourceSize    int64
	Records       []models.UsageRecord
	Skipped       []MalformedRow
}

func (s *snapshot) matches(info os.FileInfo) bool {
	return s.Version == cacheVersion &&
		s.SourceSize == info.Size() &&
		s.SourceModTime.Equal(info.ModTime())
}
