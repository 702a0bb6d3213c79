package config

import "time"

type (
	Buffers struct {
		// ContentSize is the capacity in bytes of each of the two per-connection
		// content buffers. Together with the socket buffers it bounds the memory
		// footprint of a connection regardless of how large the messages are.
		ContentSize int
	}

	Workers struct {
		// PoolSize caps how many requests may be processed at once when the
		// pooled executor is used.
		PoolSize int
		// MaxIdle is how long a pooled worker may stay idle before it is reaped.
		MaxIdle time.Duration
	}

	HTTP struct {
		// Server is the token announced via the Server response header. Empty
		// disables the header.
		Server string
		// DefaultContentType is announced for entities which didn't set one.
		DefaultContentType string
	}
)

// Config holds settings used across various parts of sluice, mainly capacities
// and response defaults.
//
// You must ALWAYS modify defaults (returned via Default()) and NEVER try to
// initialize the config manually, because most likely this will result in
// ambiguous errors.
type Config struct {
	Buffers Buffers
	Workers Workers
	HTTP    HTTP
}

// Default returns the default config. The content buffer size matches the
// historical default of 20480 bytes.
func Default() *Config {
	return &Config{
		Buffers: Buffers{
			ContentSize: 20480,
		},
		Workers: Workers{
			PoolSize: 256,
			MaxIdle:  10 * time.Second,
		},
		HTTP: HTTP{
			Server:             "sluice",
			DefaultContentType: "text/html",
		},
	}
}
