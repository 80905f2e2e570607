// Package source defines the provider adapter contract and the shared HTTP fetcher.
package source

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/llehouerou/novatone/internal/track"
)

// Adapter fetches raw payloads from one provider and maps them to tracks.
// Fetch methods return the provider's raw JSON; Parse never fails and skips
// records it cannot map.
type Adapter interface {
	Name() string
	Source() track.Source
	FetchTrending(ctx context.Context, offset int) ([]byte, error)
	FetchSearch(ctx context.Context, query string, offset int) ([]byte, error)
	Parse(payload []byte) []track.Track
}

// Trending fetches and maps one trending page.
func Trending(ctx context.Context, a Adapter, offset int) ([]track.Track, error) {
	payload, err := a.FetchTrending(ctx, offset)
	if err != nil {
		return nil, err
	}
	return a.Parse(payload), nil
}

// Search fetches and maps one search page.
func Search(ctx context.Context, a Adapter, query string, offset int) ([]track.Track, error) {
	payload, err := a.FetchSearch(ctx, query, offset)
	if err != nil {
		return nil, err
	}
	return a.Parse(payload), nil
}

// Elements splits a JSON array into its raw elements.
// Anything that is not an array yields nil.
func Elements(raw json.RawMessage) []json.RawMessage {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil
	}
	return elems
}

// Scalar renders a JSON string, number or boolean as trimmed text.
// Objects, arrays, null and malformed input yield "".
func Scalar(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return strconv.FormatBool(b)
	}
	return ""
}

// Field returns Scalar of key in a JSON object, or "" when raw is not an object.
func Field(raw json.RawMessage, key string) string {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return ""
	}
	return Scalar(obj[key])
}

// Seconds parses a duration given as a number or numeric string.
// Negative, non-finite and invalid values are 0.
func Seconds(raw json.RawMessage) int {
	v, err := strconv.ParseFloat(Scalar(raw), 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(v)
}
