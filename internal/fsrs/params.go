package fsrs

// Weights is the 17-parameter FSRS weight vector. The values are treated as
// fixed configuration; no fitting happens in this codebase.
type Weights [17]float64

// DefaultWeights are the published FSRS-4.5 defaults.
var DefaultWeights = Weights{
	0.4872, 1.4003, 3.7145, 13.8206,
	5.1618, 1.2298, 0.8975, 0.0312,
	1.6474, 0.1367, 1.0461, 2.1072,
	0.0793, 0.3246, 1.5870, 0.2272,
	2.8755,
}

// Params configures one scheduler track.
type Params struct {
	W Weights
	// RequestRetention is the recall probability the scheduler aims for at
	// the moment an item comes due.
	RequestRetention float64
	// MaximumInterval caps scheduled intervals, in days.
	MaximumInterval int
	// EnableFuzz randomizes intervals slightly to avoid review clustering.
	EnableFuzz bool
}

// DefaultParams returns the baseline parameterization.
func DefaultParams() Params {
	return Params{
		W:                DefaultWeights,
		RequestRetention: 0.9,
		MaximumInterval:  36500,
		EnableFuzz:       true,
	}
}

// Config holds the recognized scheduling options for both tracks. Zero values
// are replaced by the documented defaults in NewMemoryModel.
type Config struct {
	RequestRetention         float64 // word track, default 0.94
	FragmentRequestRetention float64 // fragment track, default 0.80
	HardIntervalCapDays      int     // default 5
	EnableFuzz               bool
	MaximumInterval          int
}

// DefaultConfig returns the production defaults for both tracks.
func DefaultConfig() Config {
	return Config{
		RequestRetention:         0.94,
		FragmentRequestRetention: 0.80,
		HardIntervalCapDays:      5,
		EnableFuzz:               true,
		MaximumInterval:          36500,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.RequestRetention <= 0 || c.RequestRetention >= 1 {
		c.RequestRetention = d.RequestRetention
	}
	if c.FragmentRequestRetention <= 0 || c.FragmentRequestRetention >= 1 {
		c.FragmentRequestRetention = d.FragmentRequestRetention
	}
	if c.HardIntervalCapDays <= 0 {
		c.HardIntervalCapDays = d.HardIntervalCapDays
	}
	if c.MaximumInterval <= 0 {
		c.MaximumInterval = d.MaximumInterval
	}
	return c
}
