// Package coerce converts raw sheet cells to typed warehouse values.
//
// Coercion never fails: a malformed cell degrades to null, except for BOOL
// where it degrades to false. Downstream consumers rely on booleans never
// being null, so the asymmetry is kept.
package coerce

import (
	"math"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/araddon/dateparse"

	"github.com/rudderlabs/sheetsync/internal/model"
)

var (
	trueValues  = map[string]struct{}{"TRUE": {}, "1": {}, "YES": {}}
	falseValues = map[string]struct{}{"FALSE": {}, "0": {}, "NO": {}}

	timeOfDayLayouts = []string{
		"15:04:05",
		"15:04",
		"3:04:05 PM",
		"3:04 PM",
		"3:04:05PM",
		"3:04PM",
	}
)

// Result is the outcome of coercing a single cell. Degraded is set when a
// non-empty cell could not be parsed and the fallback value was used.
type Result struct {
	Value    model.Value
	Degraded bool
}

func ok(v model.Value) Result { return Result{Value: v} }

func degraded(v model.Value) Result { return Result{Value: v, Degraded: true} }

// Cell coerces raw to the target type. Unknown type tags are treated as text.
func Cell(t model.DataType, raw string) Result {
	switch t {
	case model.TypeInteger:
		return toInteger(raw)
	case model.TypeFloat:
		return toFloat(raw)
	case model.TypeDate:
		return toDate(raw)
	case model.TypeDateTime:
		return toDateTime(raw)
	case model.TypeTime:
		return toTime(raw)
	case model.TypeBool:
		return toBool(raw)
	default:
		return ok(model.StringValue(raw))
	}
}

// Column coerces every cell of a column and returns the values together with
// the number of degraded cells.
func Column(t model.DataType, raw []string) ([]model.Value, int) {
	values := make([]model.Value, len(raw))
	var degradedCells int
	for i, s := range raw {
		r := Cell(t, s)
		values[i] = r.Value
		if r.Degraded {
			degradedCells++
		}
	}
	return values, degradedCells
}

func toInteger(raw string) Result {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if s == "" {
		return ok(model.Null())
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ok(model.IntValue(i))
	}
	// integral spellings such as "30.0" or "1e3"
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) || math.Abs(f) >= math.MaxInt64 {
		return degraded(model.Null())
	}
	return ok(model.IntValue(int64(f)))
}

func toFloat(raw string) Result {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ok(model.Null())
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return degraded(model.Null())
	}
	return ok(model.FloatValue(f))
}

func parseTimestamp(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func toDate(raw string) Result {
	if strings.TrimSpace(raw) == "" {
		return ok(model.Null())
	}
	t, parsed := parseTimestamp(raw)
	if !parsed {
		return degraded(model.Null())
	}
	return ok(model.DateValue(civil.DateOf(t)))
}

func toDateTime(raw string) Result {
	if strings.TrimSpace(raw) == "" {
		return ok(model.Null())
	}
	t, parsed := parseTimestamp(raw)
	if !parsed {
		return degraded(model.Null())
	}
	return ok(model.DateTimeValue(civil.DateTimeOf(t)))
}

func toTime(raw string) Result {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ok(model.Null())
	}
	for _, layout := range timeOfDayLayouts {
		if t, err := time.Parse(layout, strings.ToUpper(s)); err == nil {
			return ok(model.TimeValue(civil.TimeOf(t)))
		}
	}
	t, parsed := parseTimestamp(s)
	if !parsed {
		return degraded(model.Null())
	}
	return ok(model.TimeValue(civil.TimeOf(t)))
}

func toBool(raw string) Result {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if _, found := trueValues[s]; found {
		return ok(model.BoolValue(true))
	}
	if _, found := falseValues[s]; found {
		return ok(model.BoolValue(false))
	}
	if s == "" {
		return ok(model.BoolValue(false))
	}
	return degraded(model.BoolValue(false))
}
