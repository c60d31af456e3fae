package flashd

import "github.com/moffa90/go-eefc/efc"

// Config holds the driver configuration.
type Config struct {
	// Logger is used for logging operations (optional)
	Logger Logger

	// Progress is called during Write to report progress (optional)
	Progress ProgressCallback

	// IAPCall routes commands through the boot ROM IAP routine instead of
	// direct register polling (optional)
	IAPCall efc.CallFunc

	// WaitState is applied to every controller's mode register when
	// hasWaitState is set
	WaitState uint8

	hasWaitState bool
}

// defaultConfig returns the default configuration: direct command issue,
// no logging, wait states left as the target configured them.
func defaultConfig() Config {
	return Config{}
}

// Option is a functional option for configuring the Driver.
type Option func(*Config)

// WithLogger sets a logger for driver operations.
//
// Example:
//
//	drv, err := flashd.New(bus, geom, flashd.WithLogger(myLogger))
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithProgress sets a callback reporting page-by-page write progress.
//
// Example:
//
//	drv, err := flashd.New(bus, geom,
//	    flashd.WithProgress(func(p flashd.Progress) {
//	        fmt.Printf("%.1f%% complete\n", p.Percentage())
//	    }),
//	)
func WithProgress(callback ProgressCallback) Option {
	return func(c *Config) {
		c.Progress = callback
	}
}

// WithIAP issues every command through the In-Application Programming
// routine in boot ROM, using call to execute target code. Required when
// the target CPU runs from the flash bank being modified.
//
// Example:
//
//	drv, err := flashd.New(bus, geom, flashd.WithIAP(probe.Call))
func WithIAP(call efc.CallFunc) Option {
	return func(c *Config) {
		c.IAPCall = call
	}
}

// WithWaitState programs the flash wait-state count on every controller
// during initialization. The field is four bits wide; wider values are
// truncated by hardware.
//
// Example:
//
//	drv, err := flashd.New(bus, geom, flashd.WithWaitState(6))
func WithWaitState(cycles uint8) Option {
	return func(c *Config) {
		c.WaitState = cycles
		c.hasWaitState = true
	}
}
