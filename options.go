package moc

import "log/slog"

type readConfig struct {
	limits      Limits
	compression Compression
	strict      bool
	logger      *slog.Logger
}

type ReadOption func(*readConfig)

func WithReadLimits(l Limits) ReadOption {
	return func(c *readConfig) { c.limits = l }
}

// WithInputCompression fixes the packing of the input instead of sniffing it.
// Brotli streams carry no signature and are only read when requested here.
func WithInputCompression(comp Compression) ReadOption {
	return func(c *readConfig) { c.compression = comp }
}

// WithStrictValidation runs Validate on the decoded document.
func WithStrictValidation(v bool) ReadOption {
	return func(c *readConfig) { c.strict = v }
}

// WithLogger sets the logger for decode diagnostics. The default discards them.
func WithLogger(l *slog.Logger) ReadOption {
	return func(c *readConfig) { c.logger = l }
}

type writeConfig struct {
	compression   Compression
	shareStrings  bool
	shareSamples  bool
	validateFirst bool
}

type WriteOption func(*writeConfig)

func WithCompression(comp Compression) WriteOption {
	return func(c *writeConfig) { c.compression = comp }
}

// WithStringSharing controls whether repeated strings are written as
// backreferences to their first occurrence.
func WithStringSharing(v bool) WriteOption {
	return func(c *writeConfig) { c.shareStrings = v }
}

// WithSampleSharing controls whether a *ParameterSamples reachable from more
// than one owner is written once and referenced afterwards.
func WithSampleSharing(v bool) WriteOption {
	return func(c *writeConfig) { c.shareSamples = v }
}

// WithValidateOnWrite runs Validate before anything is written.
func WithValidateOnWrite(v bool) WriteOption {
	return func(c *writeConfig) { c.validateFirst = v }
}
