package cache

import "fmt"

// Keyer builds cache keys.
type Keyer interface {
	// SolutionKey identifies a satisfying ordering of an instance by its
	// constraint-set fingerprint and item count.
	SolutionKey(fingerprint uint64, n int) string

	// InstanceKey identifies a generated instance.
	InstanceKey(opts InstanceKeyOpts) string
}

// InstanceKeyOpts are the generator parameters that determine an instance.
type InstanceKeyOpts struct {
	Strategy string `json:"strategy"`
	N        int    `json:"n"`
	K        int    `json:"k"`
	Seed     uint64 `json:"seed"`
}

// DefaultKeyer is the standard key layout.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// SolutionKey returns "solution:<n>:<fingerprint hex>".
func (DefaultKeyer) SolutionKey(fingerprint uint64, n int) string {
	return fmt.Sprintf("solution:%d:%016x", n, fingerprint)
}

// InstanceKey hashes the generator parameters.
func (DefaultKeyer) InstanceKey(opts InstanceKeyOpts) string {
	return hashKey("instance", opts)
}
