package cdaconvert

import (
	"runtime"

	"github.com/rs/zerolog"

	"github.com/gofhir/cdaconvert/cache"
)

// CodeClassifier is an optional, caller-supplied classification lookup.
// It is consulted only when template-based classification is unavailable;
// its absence is always safe.
type CodeClassifier interface {
	// Classify returns a classification for a code, or false when the
	// code is not classified.
	Classify(system, code string) (string, bool)
}

type classification struct {
	category string
	ok       bool
}

type cachedClassifier struct {
	inner CodeClassifier
	cache *cache.Cache[string, classification]
}

// CachedClassifier wraps a classifier with a small LRU so repeated codes
// across documents hit the underlying lookup once. Classifier lookups are
// the only external calls on the conversion path; everything else is
// static tables.
func CachedClassifier(inner CodeClassifier, capacity int) CodeClassifier {
	return &cachedClassifier{
		inner: inner,
		cache: cache.New[string, classification](capacity),
	}
}

func (c *cachedClassifier) Classify(system, code string) (string, bool) {
	key := system + "|" + code
	if cached, ok := c.cache.Get(key); ok {
		return cached.category, cached.ok
	}
	category, ok := c.inner.Classify(system, code)
	c.cache.Set(key, classification{category: category, ok: ok})
	return category, ok
}

// Option configures the Converter.
type Option func(*Options)

// Options holds all configuration for the Converter.
type Options struct {
	// NormalizeMistags enables normalization of the documented, closed
	// vocabulary of vendor datatype mistags before validation. Anything
	// outside that vocabulary is rejected regardless of this flag.
	NormalizeMistags bool

	// IncludeProvenance appends provenance resources for entities carrying
	// authorship metadata.
	IncludeProvenance bool

	// Classifier is the optional code classification lookup
	Classifier CodeClassifier

	// Logger receives the structured decision log. Defaults to a no-op
	// logger; conversion correctness never depends on it.
	Logger zerolog.Logger

	// MaxIssues stops recording issues after this many (0 = unlimited).
	// Rejections are always recorded.
	MaxIssues int

	// WorkerCount is the number of workers for batch conversion
	WorkerCount int

	// CollectMetrics enables performance metric collection
	CollectMetrics bool
}

// DefaultOptions returns the default configuration.
func DefaultOptions() *Options {
	return &Options{
		NormalizeMistags:  true,
		IncludeProvenance: true,
		Logger:            zerolog.Nop(),
		MaxIssues:         0, // unlimited
		WorkerCount:       runtime.NumCPU(),
		CollectMetrics:    true,
	}
}

// WithMistagNormalization enables or disables the documented mistag
// normalization vocabulary.
func WithMistagNormalization(enable bool) Option {
	return func(o *Options) {
		o.NormalizeMistags = enable
	}
}

// WithProvenance enables or disables provenance resource emission.
func WithProvenance(enable bool) Option {
	return func(o *Options) {
		o.IncludeProvenance = enable
	}
}

// WithClassifier supplies the optional code classification lookup.
func WithClassifier(c CodeClassifier) Option {
	return func(o *Options) {
		o.Classifier = c
	}
}

// WithLogger sets the logger for the structured decision log.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithMaxIssues sets the maximum number of recorded issues.
// Use 0 for unlimited.
func WithMaxIssues(max int) Option {
	return func(o *Options) {
		o.MaxIssues = max
	}
}

// WithWorkerCount sets the number of workers for batch conversion.
// Defaults to runtime.NumCPU().
func WithWorkerCount(count int) Option {
	return func(o *Options) {
		if count > 0 {
			o.WorkerCount = count
		}
	}
}

// WithMetrics enables or disables metric collection.
func WithMetrics(enable bool) Option {
	return func(o *Options) {
		o.CollectMetrics = enable
	}
}

// --- Presets ---

// StrictOptions returns options that reject rather than repair: the mistag
// normalization vocabulary is disabled and every mistag becomes a rejection.
func StrictOptions() []Option {
	return []Option{
		WithMistagNormalization(false),
	}
}

// LenientOptions returns options for maximum tolerant conversion.
func LenientOptions() []Option {
	return []Option{
		WithMistagNormalization(true),
		WithMaxIssues(0),
	}
}
