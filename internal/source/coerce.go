package source

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Column names every vertex table must expose. Edge tables swap the
// first two for vertex_from and vertex_to.
const (
	colVertex     = "vertex"
	colWeight     = "weight"
	colSnapshot   = "snapshot"
	colVertexFrom = "vertex_from"
	colVertexTo   = "vertex_to"
)

// coerceID turns a backend value into a vertex identifier.
func coerceID(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case []byte:
		return strings.TrimSpace(string(t))
	case fmt.Stringer:
		return strings.TrimSpace(t.String())
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// coerceWeight maps anything non-numeric to NaN so the graph builder
// applies its default weight.
func coerceWeight(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

// coerceSnapshot renders snapshot keys as opaque strings. Date-typed
// columns collapse to the calendar day so SQL and inline rows for the
// same snapshot compare equal.
func coerceSnapshot(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case time.Time:
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
			return t.Format("2006-01-02")
		}
		return t.Format(time.RFC3339)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}
