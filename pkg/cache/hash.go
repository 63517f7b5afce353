package cache

import (
	"encoding/json"
	"fmt"

	farm "github.com/dgryski/go-farm"
)

// hashKey builds "prefix:<digest>" from the JSON encoding of parts.
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return prefix + ":" + digest(data)
}

// digest is the 128-bit farmhash of data as 32 hex digits.
func digest(data []byte) string {
	hi, lo := farm.Fingerprint128(data)
	return fmt.Sprintf("%016x%016x", hi, lo)
}
