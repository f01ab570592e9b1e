package taskrt

// config holds resolved Runtime configuration, assembled from Option
// values at Run time. Mirrors the source corpus's resolveLoopOptions
// pattern: a private options struct, functional-option setters, and a
// single resolution pass with sane defaults.
type config struct {
	stackSize        int
	pollsetCapacity  int
	blockedThreshPct int
	logger           Logger
	metricsEnabled   bool
}

const (
	defaultStackSize        = 128 * 1024
	defaultPollsetCapacity  = 1024
	defaultBlockedThreshPct = 75
)

func defaultConfig() *config {
	return &config{
		stackSize:        defaultStackSize,
		pollsetCapacity:  defaultPollsetCapacity,
		blockedThreshPct: defaultBlockedThreshPct,
		logger:           defaultLogger(),
		metricsEnabled:   false,
	}
}

// Option configures a Runtime created by Run.
type Option interface {
	apply(*config)
}

type optionFunc func(*config)

func (f optionFunc) apply(c *config) { f(c) }

// WithStackSize sets the notional per-task stack size reported by
// Task.StackSize. It has no effect on actual goroutine stack growth
// (which Go manages automatically) but is kept for API parity with the
// source design, and is validated the same way (must be positive).
func WithStackSize(n int) Option {
	return optionFunc(func(c *config) {
		if n > 0 {
			c.stackSize = n
		}
	})
}

// WithPollsetCapacity bounds the number of simultaneously outstanding
// FDWait registrations (including the self-pipe slot). Exceeding this
// bound is a fatal error, per the source design.
func WithPollsetCapacity(n int) Option {
	return optionFunc(func(c *config) {
		if n > 0 {
			c.pollsetCapacity = n
		}
	})
}

// WithBlockedThreshold sets BLOCKED_THRESH, the percentage of live
// workers allowed to be inside a blocking section concurrently.
func WithBlockedThreshold(pct int) Option {
	return optionFunc(func(c *config) {
		if pct > 0 && pct <= 100 {
			c.blockedThreshPct = pct
		}
	})
}

// WithLogger sets the runtime's structured logger. Pass a
// NewLogifaceLogger to get real output, or any Logger implementation.
func WithLogger(l Logger) Option {
	return optionFunc(func(c *config) {
		if l != nil {
			c.logger = l
		}
	})
}

// WithMetrics enables the runtime's lightweight metrics counters,
// readable via Runtime.Metrics.
func WithMetrics(enabled bool) Option {
	return optionFunc(func(c *config) {
		c.metricsEnabled = enabled
	})
}

func resolveOptions(opts []Option) *config {
	c := defaultConfig()
	for _, o := range opts {
		if o == nil {
			continue
		}
		o.apply(c)
	}
	return c
}
