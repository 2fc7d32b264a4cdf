package httpserver

import (
	"net/url"
	"testing"
)

func FuzzBuildComparisonFilters(f *testing.F) {
	seeds := []string{
		"user=alice&limit=10",
		"limit=abc",
		"cursor=eyJjcmVhdGVkQXQiOiIyMDI0LTAxLTAxVDAwOjAwOjAwWiIsImlkIjoiYWJjIn0=",
		"",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, raw string) {
		values, err := url.ParseQuery(raw)
		if err != nil {
			return
		}
		_, _ = buildComparisonFilters(values)
	})
}
