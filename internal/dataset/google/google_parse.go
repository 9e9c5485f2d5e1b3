package google

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"ventas/internal/core"
)

// sheetsEpoch is day zero of spreadsheet serial dates.
var sheetsEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// parseSales converts a values matrix (as returned by Sheets API) into
// records. The first row must carry the Fecha, Categoría, Región and Ventas
// headers in any order; blank rows are skipped.
func parseSales(values [][]interface{}) ([]core.Record, error) {
	if len(values) == 0 {
		return nil, nil
	}
	headers := toStrings(values[0])
	cols := map[string]int{}
	var missing []string
	for _, h := range []string{"Fecha", "Categoría", "Región", "Ventas"} {
		idx := indexOf(headers, h)
		if idx == -1 {
			missing = append(missing, h)
		}
		cols[h] = idx
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("unexpected header: missing %s; got headers=%v", strings.Join(missing, ","), headers)
	}

	out := make([]core.Record, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		row := values[i]
		if blank(row) {
			continue
		}
		date, err := parseDate(safeGet(row, cols["Fecha"]))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		cat, err := core.ParseCategory(fmt.Sprint(safeGet(row, cols["Categoría"])))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		reg, err := core.ParseRegion(fmt.Sprint(safeGet(row, cols["Región"])))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		amount, err := parseAmount(safeGet(row, cols["Ventas"]))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		out = append(out, core.Record{Date: date, Category: cat, Region: reg, Amount: amount})
	}
	return out, nil
}

// parseDate accepts ISO strings and spreadsheet serial numbers.
func parseDate(v interface{}) (core.Date, error) {
	switch x := v.(type) {
	case float64:
		return core.DateOf(sheetsEpoch.AddDate(0, 0, int(x))), nil
	case string:
		if serial, err := strconv.Atoi(strings.TrimSpace(x)); err == nil {
			return core.DateOf(sheetsEpoch.AddDate(0, 0, serial)), nil
		}
		return core.ParseDate(x)
	default:
		return core.Date{}, fmt.Errorf("%w: %v", core.ErrInvalidDate, v)
	}
}

// parseAmount accepts numbers and plain decimal strings.
func parseAmount(v interface{}) (float64, error) {
	switch x := v.(type) {
	case float64:
		if x < 0 {
			return 0, core.ErrInvalidAmount
		}
		return x, nil
	case string:
		return core.ParseAmount(x)
	default:
		return 0, fmt.Errorf("%w: %v", core.ErrInvalidAmount, v)
	}
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func indexOf(arr []string, target string) int {
	for i, v := range arr {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(target)) {
			return i
		}
	}
	return -1
}

func safeGet(row []interface{}, idx int) interface{} {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func blank(row []interface{}) bool {
	for _, v := range row {
		if strings.TrimSpace(fmt.Sprint(v)) != "" {
			return false
		}
	}
	return true
}
