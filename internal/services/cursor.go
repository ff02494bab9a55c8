package services

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// pageCursor is the decoded form of an opaque keyset page token. It pins the
// sort mode it was issued for plus the last returned row's sort key and id.
// Callers must treat the encoded token as a black box and only round-trip it
// from a prior response.
type pageCursor struct {
	Sort string `json:"s"`
	Key  string `json:"k"`
	ID   uint   `json:"id"`
}

// encodeCursor produces a URL-safe opaque token.
func encodeCursor(sort, key string, id uint) string {
	raw, _ := json.Marshal(pageCursor{Sort: sort, Key: key, ID: id})
	return base64.RawURLEncoding.EncodeToString(raw)
}

// decodeCursor reverses encodeCursor. Any undecodable token, and any token
// issued for a different sort mode, fails with ErrInvalidCursor.
func decodeCursor(token, sort string) (*pageCursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	var cur pageCursor
	if err := json.Unmarshal(raw, &cur); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	if cur.Sort != sort {
		return nil, fmt.Errorf("%w: token was issued for sort=%s", ErrInvalidCursor, cur.Sort)
	}
	return &cur, nil
}
