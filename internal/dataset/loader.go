package dataset

import (
	"bytes"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"
)

// maxRowErrors caps how many per-row problems a LoadResult keeps.
const maxRowErrors = 20

var (
	// ErrNoRows is returned when a source has a valid header but no row
	// survives parsing.
	ErrNoRows = errors.New("no parsable rows")
	// ErrBadHeader is returned when required columns are missing.
	ErrBadHeader = errors.New("invalid header")
)

// LoadError reports why a dataset source could not be turned into records.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load dataset %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// LoadResult is the outcome of a successful load.
type LoadResult struct {
	Records []Record
	// Total counts data rows read, including skipped ones.
	Total   int
	Skipped int
	Errors  []string
	Columns []string
	// Fingerprint is the hex BLAKE2b-256 digest of the source bytes.
	Fingerprint string
	LoadedAt    time.Time
	Duration    time.Duration
}

// layout identifies which header family a source uses.
type layout int

const (
	layoutRaw layout = iota
	layoutProcessed
)

// Load reads the CSV file at path. Any failure, including a file that yields
// zero records, is returned as a *LoadError.
func Load(path string) (*LoadResult, error) {
	start := time.Now()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	res, err := parse(data)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	res.Duration = time.Since(start)
	log.Printf("loaded %d records from %s (%d skipped, %s)", len(res.Records), path, res.Skipped, res.Duration)
	log.Printf("columns: %v", res.Columns)
	return res, nil
}

// Parse reads CSV data from r. Errors are returned unwrapped.
func Parse(r io.Reader) (*LoadResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return parse(data)
}

func parse(data []byte) (*LoadResult, error) {
	sum := blake2b.Sum256(data)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, ErrNoRows
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	headerMap := make(map[string]int, len(headers))
	columns := make([]string, 0, len(headers))
	for i, h := range headers {
		key := normalizeHeader(h)
		if _, dup := headerMap[key]; !dup {
			headerMap[key] = i
		}
		columns = append(columns, key)
	}

	lay, err := detectLayout(headerMap)
	if err != nil {
		return nil, err
	}

	res := &LoadResult{
		Columns:     columns,
		Fingerprint: hex.EncodeToString(sum[:]),
		LoadedAt:    time.Now().UTC(),
	}

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		res.Total++
		if err != nil {
			res.skip(fmt.Sprintf("line %d: %v", res.Total+1, err))
			continue
		}
		rec, err := parseRow(row, headerMap, lay)
		if err != nil {
			res.skip(fmt.Sprintf("line %d: %v", res.Total+1, err))
			continue
		}
		res.Records = append(res.Records, rec)
	}

	if len(res.Records) == 0 {
		return nil, ErrNoRows
	}
	return res, nil
}

func (r *LoadResult) skip(msg string) {
	r.Skipped++
	if len(r.Errors) < maxRowErrors {
		r.Errors = append(r.Errors, msg)
	}
}

// normalizeHeader turns "Energy MMBtu" or "energy-MMBtu" into "energy_mmbtu".
func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.ReplaceAll(h, " ", "_")
	return strings.ReplaceAll(h, "-", "_")
}

func detectLayout(headerMap map[string]int) (layout, error) {
	for _, req := range []string{"building", "year"} {
		if _, ok := headerMap[req]; !ok {
			return 0, fmt.Errorf("%w: missing column %q", ErrBadHeader, req)
		}
	}
	if _, ok := headerMap["energy_consumption_kwh"]; ok {
		return layoutProcessed, nil
	}
	if _, ok := headerMap["energy_mmbtu"]; ok {
		return layoutRaw, nil
	}
	if _, ok := headerMap["energy"]; ok {
		return layoutRaw, nil
	}
	return 0, fmt.Errorf("%w: missing energy column (energy_mmbtu or energy_consumption_kwh)", ErrBadHeader)
}

func parseRow(row []string, headerMap map[string]int, lay layout) (Record, error) {
	get := func(col string) string {
		if idx, ok := headerMap[col]; ok && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	var rec Record

	rec.Building = get("building")
	if rec.Building == "" {
		return Record{}, errors.New("building is empty")
	}

	year, err := parseYear(get("year"))
	if err != nil {
		return Record{}, err
	}
	rec.Year = year

	month, err := parseMonth(get("month"))
	if err != nil {
		return Record{}, err
	}
	rec.Month = month

	rec.GrossSqFt = parseOptional(get("gross_square_feet"))
	rec.Occupancy = parseOptional(get("occupancy"))
	rec.PrimaryUse = get("primary_use")

	switch lay {
	case layoutProcessed:
		kwh, err := parseEnergy(get("energy_consumption_kwh"))
		if err != nil {
			return Record{}, err
		}
		rec.EnergyKWh = kwh
		derive(&rec)
		// Precomputed columns win over the ratios when present.
		if v, ok := parseNonNegative(get("water_consumption_gallons")); ok {
			rec.WaterGallons = v
		}
		if v, ok := parseNonNegative(get("waste_diverted_lbs")); ok {
			rec.WasteLbs = v
		}
		if v, ok := parseNonNegative(get("co2_emissions_tons")); ok {
			rec.CO2Tons = v
		}
		rec.MetricType = strings.ToLower(strings.TrimSpace(get("metric_type")))
		if isMissing(rec.MetricType) {
			rec.MetricType = MetricTypeFor(rec.PrimaryUse)
		}
	default:
		raw := get("energy_mmbtu")
		if raw == "" {
			raw = get("energy")
		}
		mmbtu, err := parseEnergy(raw)
		if err != nil {
			return Record{}, err
		}
		rec.EnergyKWh = KWhFromMMBtu(mmbtu)
		derive(&rec)
		rec.MetricType = MetricTypeFor(rec.PrimaryUse)
	}

	return rec, nil
}

func parseYear(v string) (int, error) {
	if isMissing(v) {
		return 0, errors.New("year is empty")
	}
	year, err := strconv.Atoi(v)
	if err != nil {
		// Spreadsheet exports sometimes write years as "2022.0".
		f, ferr := strconv.ParseFloat(v, 64)
		if ferr != nil || f != float64(int(f)) {
			return 0, fmt.Errorf("invalid year %q", v)
		}
		year = int(f)
	}
	if year <= 0 {
		return 0, fmt.Errorf("invalid year %q", v)
	}
	return year, nil
}

func parseMonth(v string) (*int, error) {
	if isMissing(v) {
		return nil, nil
	}
	if n, err := strconv.Atoi(v); err == nil {
		if n < 1 || n > 12 {
			return nil, fmt.Errorf("month %d out of range", n)
		}
		return &n, nil
	}
	for _, format := range []string{"January", "Jan"} {
		if t, err := time.Parse(format, v); err == nil {
			n := int(t.Month())
			return &n, nil
		}
	}
	return nil, fmt.Errorf("invalid month %q", v)
}

func parseEnergy(v string) (float64, error) {
	if isMissing(v) {
		return 0, errors.New("energy value is missing")
	}
	f, err := parseNumber(v)
	if err != nil {
		return 0, fmt.Errorf("invalid energy value %q", v)
	}
	if f < 0 {
		return 0, fmt.Errorf("negative energy value %q", v)
	}
	return f, nil
}

// parseOptional reads a descriptive numeric column; blanks, placeholders and
// garbage all read as zero.
func parseOptional(v string) float64 {
	f, ok := parseNonNegative(v)
	if !ok {
		return 0
	}
	return f
}

func parseNonNegative(v string) (float64, bool) {
	if isMissing(v) {
		return 0, false
	}
	f, err := parseNumber(v)
	if err != nil || f < 0 {
		return 0, false
	}
	return f, true
}

func parseNumber(v string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(v, ",", ""), 64)
}
