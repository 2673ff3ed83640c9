package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/sarchlab/ssdctrl/barrier"
	"github.com/sarchlab/ssdctrl/hostsim"
	"github.com/sarchlab/ssdctrl/sim"
)

// runConfig collects everything the run command needs.
type runConfig struct {
	Workload hostsim.Workload

	Barrier             bool
	Policy              string
	ReportFlushFailure  bool
	InternalFlushPeriod float64
	DMALatency          int
	MaxInFlight         int

	Trace     bool
	TraceDB   string
	LogEvents bool

	Monitor     bool
	MonitorPort int
	OpenBrowser bool
}

func defaultRunConfig() runConfig {
	return runConfig{
		Workload:    hostsim.DefaultWorkload(),
		Policy:      barrier.CapacityStrict.String(),
		DMALatency:  4,
		MaxInFlight: 8,
	}
}

// loadDotEnv reads the variables in the files into the process environment.
// Variables that are already set are kept. Missing files are ignored.
func loadDotEnv(files ...string) error {
	for _, f := range files {
		err := godotenv.Load(f)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}

	return nil
}

// envReader parses SSDCTRL_* variables and remembers the first failure.
type envReader struct {
	lookup func(string) (string, bool)
	err    error
}

func (r *envReader) str(name string, dst *string) {
	if v, ok := r.lookup(name); ok {
		*dst = v
	}
}

func (r *envReader) int(name string, dst *int) {
	v, ok := r.lookup(name)
	if !ok || r.err != nil {
		return
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		r.err = fmt.Errorf("%s: %w", name, err)
		return
	}

	*dst = n
}

func (r *envReader) bool(name string, dst *bool) {
	v, ok := r.lookup(name)
	if !ok || r.err != nil {
		return
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		r.err = fmt.Errorf("%s: %w", name, err)
		return
	}

	*dst = b
}

func (r *envReader) float(name string, dst *float64) {
	v, ok := r.lookup(name)
	if !ok || r.err != nil {
		return
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.err = fmt.Errorf("%s: %w", name, err)
		return
	}

	*dst = f
}

// configFromEnv applies the SSDCTRL_* variables found by lookup on top of the
// built-in defaults.
func configFromEnv(lookup func(string) (string, bool)) (runConfig, error) {
	c := defaultRunConfig()
	r := &envReader{lookup: lookup}

	r.int("SSDCTRL_NUM_WRITES", &c.Workload.NumWrites)
	r.int("SSDCTRL_NUM_READS", &c.Workload.NumReads)
	r.int("SSDCTRL_BLOCKS_PER_CMD", &c.Workload.BlocksPerCmd)
	r.int("SSDCTRL_FLUSH_INTERVAL", &c.Workload.FlushInterval)
	r.int("SSDCTRL_EPOCH_INTERVAL", &c.Workload.EpochInterval)
	r.int("SSDCTRL_QUEUE_DEPTH", &c.Workload.QueueDepth)
	r.int("SSDCTRL_NUM_QUEUES", &c.Workload.NumQueues)
	r.bool("SSDCTRL_WRITE_CACHE", &c.Workload.VolatileWriteCache)

	r.bool("SSDCTRL_BARRIER", &c.Barrier)
	r.str("SSDCTRL_CAPACITY_POLICY", &c.Policy)
	r.bool("SSDCTRL_REPORT_FLUSH_FAILURE", &c.ReportFlushFailure)
	r.float("SSDCTRL_INTERNAL_FLUSH_PERIOD", &c.InternalFlushPeriod)
	r.int("SSDCTRL_DMA_LATENCY", &c.DMALatency)
	r.int("SSDCTRL_MAX_IN_FLIGHT", &c.MaxInFlight)

	r.bool("SSDCTRL_TRACE", &c.Trace)
	r.str("SSDCTRL_TRACE_DB", &c.TraceDB)
	r.bool("SSDCTRL_LOG_EVENTS", &c.LogEvents)

	r.bool("SSDCTRL_MONITOR", &c.Monitor)
	r.int("SSDCTRL_MONITOR_PORT", &c.MonitorPort)
	r.bool("SSDCTRL_OPEN_BROWSER", &c.OpenBrowser)

	return c, r.err
}

func parsePolicy(s string) (barrier.CapacityPolicy, error) {
	for _, p := range []barrier.CapacityPolicy{
		barrier.CapacityStrict,
		barrier.CapacityLegacy,
	} {
		if p.String() == s {
			return p, nil
		}
	}

	return 0, fmt.Errorf("unknown capacity policy %q", s)
}

// platformBuilder turns the configuration into a platform builder.
func (c runConfig) platformBuilder() (hostsim.PlatformBuilder, error) {
	b := hostsim.MakePlatformBuilder().
		WithWorkload(c.Workload).
		WithDMALatency(c.DMALatency).
		WithMaxInFlight(c.MaxInFlight).
		WithInternalFlushPeriod(sim.VTimeInSec(c.InternalFlushPeriod))

	if c.Barrier {
		policy, err := parsePolicy(c.Policy)
		if err != nil {
			return b, err
		}

		b = b.WithBarrier(policy)
	}

	if c.ReportFlushFailure {
		b = b.WithFlushFailureReporting()
	}

	return b, nil
}
