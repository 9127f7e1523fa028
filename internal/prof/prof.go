// Package prof включает профилирование Go-рантайма для команд kiln.
package prof

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	rtrace "runtime/trace"
)

// Config lists output paths; empty paths are skipped.
type Config struct {
	CPU   string
	Mem   string
	Trace string
}

func (c Config) Enabled() bool {
	return c.CPU != "" || c.Mem != "" || c.Trace != ""
}

// Start begins CPU profiling and runtime tracing. The returned stop function
// ends them and writes the heap profile.
func Start(cfg Config) (stop func() error, err error) {
	var cpuFile, traceFile *os.File
	cleanup := func() {
		if cpuFile != nil {
			pprof.StopCPUProfile()
			_ = cpuFile.Close()
		}
		if traceFile != nil {
			rtrace.Stop()
			_ = traceFile.Close()
		}
	}

	if cfg.CPU != "" {
		if cpuFile, err = os.Create(cfg.CPU); err != nil {
			return nil, fmt.Errorf("cpu profile: %w", err)
		}
		if err = pprof.StartCPUProfile(cpuFile); err != nil {
			_ = cpuFile.Close()
			return nil, fmt.Errorf("cpu profile: %w", err)
		}
	}
	if cfg.Trace != "" {
		if traceFile, err = os.Create(cfg.Trace); err != nil {
			cleanup()
			return nil, fmt.Errorf("runtime trace: %w", err)
		}
		if err = rtrace.Start(traceFile); err != nil {
			_ = traceFile.Close()
			traceFile = nil
			cleanup()
			return nil, fmt.Errorf("runtime trace: %w", err)
		}
	}

	return func() error {
		var errs []error
		if cpuFile != nil {
			pprof.StopCPUProfile()
			errs = append(errs, cpuFile.Close())
		}
		if traceFile != nil {
			rtrace.Stop()
			errs = append(errs, traceFile.Close())
		}
		if cfg.Mem != "" {
			errs = append(errs, WriteMem(cfg.Mem))
		}
		return errors.Join(errs...)
	}, nil
}

// WriteMem captures a heap profile to path.
func WriteMem(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("heap profile: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()
	runtime.GC()
	return pprof.WriteHeapProfile(f)
}
