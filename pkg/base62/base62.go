// Package base62 derives short codes from database-assigned identifiers.
package base62

import "errors"

const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// ErrNegativeID signals an identifier outside the encodable range.
var ErrNegativeID = errors.New("base62: id cannot be negative")

// Encode maps a non-negative id to its base-62 representation.
// Distinct ids always yield distinct codes, so codes never need a
// uniqueness check of their own.
func Encode(id int64) (string, error) {
	if id < 0 {
		return "", ErrNegativeID
	}
	if id == 0 {
		return string(alphabet[0]), nil
	}

	// Digits come out least-significant first; reverse at the end.
	buf := make([]byte, 0, 11)
	for id > 0 {
		buf = append(buf, alphabet[id%62])
		id /= 62
	}
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf), nil
}
