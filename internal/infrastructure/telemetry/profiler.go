package telemetry

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"sync"

	"github.com/grafana/pyroscope-go"
	"go.uber.org/zap"
)

// ProfilerConfig holds continuous profiling configuration.
type ProfilerConfig struct {
	Enabled         bool
	ServerAddress   string
	ApplicationName string
	// Tags are attached to every profile, e.g. the deployment environment.
	Tags map[string]string
}

// Validate reports missing settings of an enabled profiler.
func (c ProfilerConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	var errs []error
	if c.ServerAddress == "" {
		errs = append(errs, errors.New("profiler server address is required"))
	}
	if c.ApplicationName == "" {
		errs = append(errs, errors.New("profiler application name is required"))
	}
	return errors.Join(errs...)
}

// profileTypes covers the hot paths of the storefront: CPU for context
// resolution, allocations for the batch hydration.
var profileTypes = []pyroscope.ProfileType{
	pyroscope.ProfileCPU,
	pyroscope.ProfileAllocObjects,
	pyroscope.ProfileAllocSpace,
	pyroscope.ProfileInuseSpace,
	pyroscope.ProfileGoroutines,
}

// Profiler pushes continuous profiles to Pyroscope. A disabled profiler is a
// no-op.
type Profiler struct {
	profiler *pyroscope.Profiler
	stopOnce sync.Once
	stopErr  error
}

// NewProfiler starts the profiler when cfg is enabled
func NewProfiler(cfg ProfilerConfig, logger *zap.Logger) (*Profiler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !cfg.Enabled {
		return &Profiler{}, nil
	}

	tags := maps.Clone(cfg.Tags)
	if tags == nil {
		tags = make(map[string]string)
	}
	if hostname, err := os.Hostname(); err == nil {
		tags["hostname"] = hostname
	}

	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: cfg.ApplicationName,
		ServerAddress:   cfg.ServerAddress,
		Logger:          pyroscopeLogger{logger.Named("pyroscope").Sugar()},
		Tags:            tags,
		ProfileTypes:    profileTypes,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start Pyroscope profiler: %w", err)
	}

	logger.Info("Profiler started",
		zap.String("server_address", cfg.ServerAddress),
		zap.String("application_name", cfg.ApplicationName),
		zap.Any("tags", tags),
	)
	return &Profiler{profiler: profiler}, nil
}

// Stop flushes and stops the profiler. Later calls return the first result.
func (p *Profiler) Stop() error {
	p.stopOnce.Do(func() {
		if p.profiler == nil {
			return
		}
		if err := p.profiler.Stop(); err != nil {
			p.stopErr = fmt.Errorf("failed to stop profiler: %w", err)
		}
	})
	return p.stopErr
}

// IsEnabled reports whether the profiler is running
func (p *Profiler) IsEnabled() bool {
	return p.profiler != nil
}

type pyroscopeLogger struct {
	*zap.SugaredLogger
}
