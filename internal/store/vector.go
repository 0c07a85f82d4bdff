package store

import (
	"fmt"
	"strconv"
	"strings"
)

// encodeVector renders an embedding in pgvector's text format: [x1,x2,...].
func encodeVector(v []float32) string {
	var sb strings.Builder
	sb.Grow(len(v)*10 + 2)
	sb.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatFloat(float64(f), 'g', -1, 32))
	}
	sb.WriteByte(']')
	return sb.String()
}

// parseVector parses pgvector's text format back into a float32 slice.
// An empty string maps to nil, matching a NULL column.
func parseVector(s string) ([]float32, error) {
	if s == "" {
		return nil, nil
	}
	if len(s) < 2 || s[0] != '[' || s[len(s)-1] != ']' {
		return nil, fmt.Errorf("malformed vector literal %q", truncate(s, 32))
	}
	inner := s[1 : len(s)-1]
	if inner == "" {
		return []float32{}, nil
	}

	parts := strings.Split(inner, ",")
	out := make([]float32, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, fmt.Errorf("vector element %d: %w", i, err)
		}
		out[i] = float32(f)
	}
	return out, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
