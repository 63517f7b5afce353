package cache

// ScopedKeyer wraps a Keyer with a prefix so that several projects or
// users can share one backend without their keys colliding.
//
//	shared := NewScopedKeyer(NewDefaultKeyer(), "team-a:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// SolutionKey generates a prefixed solution key.
func (k *ScopedKeyer) SolutionKey(fingerprint uint64, n int) string {
	return k.prefix + k.inner.SolutionKey(fingerprint, n)
}

// InstanceKey generates a prefixed instance key.
func (k *ScopedKeyer) InstanceKey(opts InstanceKeyOpts) string {
	return k.prefix + k.inner.InstanceKey(opts)
}
