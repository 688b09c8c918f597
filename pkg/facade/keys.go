package facade

// keyConfig holds per-call key resolution settings.
type keyConfig struct {
	prefix string
}

// KeyOption adjusts how a single call resolves its keys.
type KeyOption func(*keyConfig)

// WithPrefix selects the namespace for one call instead of the Session default.
// An empty prefix addresses the raw session map.
func WithPrefix(prefix string) KeyOption {
	return func(c *keyConfig) {
		c.prefix = prefix
	}
}

func (s *Session) resolve(opts []KeyOption) keyConfig {
	cfg := keyConfig{prefix: s.prefix}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// key builds the composite key prefix+key.
func (s *Session) key(key string, opts []KeyOption) string {
	return s.resolve(opts).prefix + key
}
