// Package pagination implements the opaque cursor used by the expense
// and activity list endpoints: a base64-encoded {sortValue, id} pair that
// lets a caller resume a keyset scan without exposing the underlying
// ordering column.
package pagination

import (
	"encoding/base64"
	"encoding/json"
	"strconv"
)

// Cursor identifies a resume point in a DESC keyset scan: sortValue is the
// ordering column (typically a timestamp in nanoseconds) and ID breaks ties
// between rows that share it.
type Cursor struct {
	SortValue int64  `json:"sortValue"`
	ID        string `json:"id"`
}

// Encode returns c as an opaque, URL-safe token.
func Encode(c Cursor) string {
	raw, _ := json.Marshal(c)
	return base64.URLEncoding.EncodeToString(raw)
}

// Decode reverses Encode. Callers treat a decode failure as a bad request
// — the token is opaque and never constructed by hand.
func Decode(token string) (Cursor, error) {
	var c Cursor
	raw, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return c, err
	}
	if err := json.Unmarshal(raw, &c); err != nil {
		return c, err
	}
	return c, nil
}

// Page is the {limit, hasMore, nextCursor, prevCursor} block attached to
// every cursor-paginated list response.
type Page struct {
	Limit      int    `json:"limit"`
	HasMore    bool   `json:"hasMore"`
	NextCursor string `json:"nextCursor,omitempty"`
	PrevCursor string `json:"prevCursor,omitempty"`
}

// ParseLimit clamps raw to [1, 100], defaulting to 20 when raw is empty or
// not a positive integer.
func ParseLimit(raw string) int {
	if raw == "" {
		return 20
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 20
	}
	if n > 100 {
		return 100
	}
	return n
}
