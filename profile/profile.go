// Package profile provides CPU and heap profiling for CLI applications,
// with flag integration via [github.com/spf13/pflag].
//
// Typical usage registers flags, then brackets the work:
//
//	cfg := profile.NewConfig()
//	cfg.RegisterFlags(rootCmd.PersistentFlags())
//
//	p := cfg.NewProfiler()
//	if err := p.Start(); err != nil { ... }
//	defer p.Stop()
package profile

import (
	"fmt"
	"os"
	"runtime/pprof"

	"github.com/spf13/pflag"
)

// Config holds CLI flag values for profiling. Empty paths disable the
// corresponding profile.
type Config struct {
	CPUProfile  string
	HeapProfile string
}

// NewConfig returns a new [Config] with all profiles disabled.
func NewConfig() *Config {
	return &Config{}
}

// RegisterFlags adds profiling flags to the given [*pflag.FlagSet].
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringVar(&c.CPUProfile, "cpu-profile", "",
		"write CPU profile to file")
	flags.StringVar(&c.HeapProfile, "heap-profile", "",
		"write heap profile to file")
}

// NewProfiler creates a [Profiler] using this [Config].
func (c *Config) NewProfiler() *Profiler {
	return &Profiler{config: *c}
}

// Profiler controls the lifecycle of a profiling session. Call
// [Profiler.Start] before the work and [Profiler.Stop] after it.
type Profiler struct {
	config  Config
	cpuFile *os.File
}

// Start begins CPU profiling if enabled.
func (p *Profiler) Start() error {
	if p.config.CPUProfile == "" {
		return nil
	}

	f, err := os.Create(p.config.CPUProfile)
	if err != nil {
		return fmt.Errorf("creating CPU profile: %w", err)
	}

	err = pprof.StartCPUProfile(f)
	if err != nil {
		_ = f.Close()

		return fmt.Errorf("starting CPU profile: %w", err)
	}

	p.cpuFile = f

	return nil
}

// Stop ends CPU profiling and writes the heap profile if enabled.
func (p *Profiler) Stop() error {
	if p.cpuFile != nil {
		pprof.StopCPUProfile()

		err := p.cpuFile.Close()
		p.cpuFile = nil

		if err != nil {
			return fmt.Errorf("closing CPU profile: %w", err)
		}
	}

	if p.config.HeapProfile != "" {
		f, err := os.Create(p.config.HeapProfile)
		if err != nil {
			return fmt.Errorf("creating heap profile: %w", err)
		}

		defer func() { _ = f.Close() }()

		err = pprof.Lookup("heap").WriteTo(f, 0)
		if err != nil {
			return fmt.Errorf("writing heap profile: %w", err)
		}
	}

	return nil
}
