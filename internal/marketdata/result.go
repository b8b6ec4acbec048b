// Package marketdata provides the external data providers feeding the
// dashboard: Finnhub insider data, IEX quotes, NewsAPI headlines, and
// a local market simulator. Every remote call degrades to a canned
// payload instead of failing; callers inspect Source to tell the two
// apart.
package marketdata

// Source marks whether a payload came from the live API or the canned
// fallback
type Source string

const (
	SourceLive     Source = "live"
	SourceFallback Source = "fallback"
)

// Result wraps provider data with its provenance. Reason is set only
// on fallback results.
type Result[T any] struct {
	Data   T      `json:"data"`
	Source Source `json:"source"`
	Reason string `json:"reason,omitempty"`
}

// Live wraps data fetched from the upstream API
func Live[T any](data T) Result[T] {
	return Result[T]{Data: data, Source: SourceLive}
}

// Fallback wraps the canned stand-in payload with the failure reason
func Fallback[T any](data T, reason string) Result[T] {
	return Result[T]{Data: data, Source: SourceFallback, Reason: reason}
}
