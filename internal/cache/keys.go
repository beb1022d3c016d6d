package cache

import (
	"crypto/sha256"
	"fmt"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// DeriveKey constructs a canonical cache key from the request parts.
//
// For GET requests the key is a deterministic composition of category, method,
// path and query string. For mutating requests (POST) the key additionally
// incorporates an xxhash fingerprint of the request body, so two POSTs to the
// same path with different bodies occupy different cache slots.
//
// The composed string is run through sha256 for a fixed-length key.
func DeriveKey(method, path, rawQuery, category string, body []byte) string {
	var b strings.Builder
	b.WriteString(category)
	b.WriteByte('|')
	b.WriteString(method)
	b.WriteByte('|')
	b.WriteString(path)
	if rawQuery != "" {
		b.WriteByte('?')
		b.WriteString(rawQuery)
	}

	if IsMutatingMethod(method) {
		b.WriteString("|body:")
		b.WriteString(strconv.FormatUint(xxhash.Sum64(body), 16))
	}

	hash := sha256.Sum256([]byte(b.String()))
	return fmt.Sprintf("%x", hash)
}

// IsMutatingMethod returns true if the HTTP method may mutate resources.
func IsMutatingMethod(method string) bool {
	switch method {
	case "POST", "PUT", "PATCH", "DELETE":
		return true
	}
	return false
}
