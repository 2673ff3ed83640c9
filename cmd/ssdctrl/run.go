package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/sarchlab/ssdctrl/dispatch"
	"github.com/sarchlab/ssdctrl/hostsim"
	"github.com/sarchlab/ssdctrl/monitoring"
	"github.com/sarchlab/ssdctrl/sim"
	"github.com/sarchlab/ssdctrl/tracing"
)

var runCfg runConfig

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a workload against the firmware",
	Long: `Run brings the controller up from a simulated host, issues the ` +
		`workload, shuts the controller down and prints a summary.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runSimulation(runCfg)
	},
}

func init() {
	err := loadDotEnv(".env")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}

	runCfg, err = configFromEnv(os.LookupEnv)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		runCfg = defaultRunConfig()
	}

	f := runCmd.Flags()
	f.IntVar(&runCfg.Workload.NumWrites, "writes",
		runCfg.Workload.NumWrites, "number of write commands")
	f.IntVar(&runCfg.Workload.NumReads, "reads",
		runCfg.Workload.NumReads, "number of read commands")
	f.IntVar(&runCfg.Workload.BlocksPerCmd, "blocks",
		runCfg.Workload.BlocksPerCmd, "logical blocks per command")
	f.IntVar(&runCfg.Workload.FlushInterval, "flush-interval",
		runCfg.Workload.FlushInterval, "writes between flushes, 0 for none")
	f.IntVar(&runCfg.Workload.EpochInterval, "epoch-interval",
		runCfg.Workload.EpochInterval, "writes between epoch closures, 0 for none")
	f.IntVar(&runCfg.Workload.QueueDepth, "queue-depth",
		runCfg.Workload.QueueDepth, "outstanding commands allowed")
	f.IntVar(&runCfg.Workload.NumQueues, "queues",
		runCfg.Workload.NumQueues, "I/O queue pairs used, 1 to 8")
	f.BoolVar(&runCfg.Workload.VolatileWriteCache, "write-cache",
		runCfg.Workload.VolatileWriteCache, "enable the volatile write cache")

	f.BoolVar(&runCfg.Barrier, "barrier",
		runCfg.Barrier, "enable barrier-flagged writes")
	f.StringVar(&runCfg.Policy, "capacity-policy",
		runCfg.Policy, "barrier stream capacity policy, strict or legacy")
	f.BoolVar(&runCfg.ReportFlushFailure, "report-flush-failure",
		runCfg.ReportFlushFailure, "complete failed flushes with an error status")
	f.Float64Var(&runCfg.InternalFlushPeriod, "internal-flush-period",
		runCfg.InternalFlushPeriod, "seconds between internal flushes, 0 for none")
	f.IntVar(&runCfg.DMALatency, "dma-latency",
		runCfg.DMALatency, "scheduler rounds a DMA transfer takes")
	f.IntVar(&runCfg.MaxInFlight, "max-in-flight",
		runCfg.MaxInFlight, "concurrent DMA transfers")

	f.BoolVar(&runCfg.Trace, "trace",
		runCfg.Trace, "record firmware events into a SQLite database")
	f.StringVar(&runCfg.TraceDB, "trace-db",
		runCfg.TraceDB, "trace database name, a unique name if empty")
	f.BoolVar(&runCfg.LogEvents, "log-events",
		runCfg.LogEvents, "print every simulation event to stderr")

	f.BoolVar(&runCfg.Monitor, "monitor",
		runCfg.Monitor, "serve the monitoring dashboard")
	f.IntVar(&runCfg.MonitorPort, "monitor-port",
		runCfg.MonitorPort, "monitoring port, a random port if 0")
	f.BoolVar(&runCfg.OpenBrowser, "open-browser",
		runCfg.OpenBrowser, "open the dashboard in a browser")

	rootCmd.AddCommand(runCmd)
}

// progressHook moves a progress bar forward for every dispatched command.
type progressHook struct {
	bar *monitoring.ProgressBar
}

func (h progressHook) Func(ctx sim.HookCtx) {
	if ctx.Pos == dispatch.HookPosDispatch {
		h.bar.IncrementFinished(1)
	}
}

func runSimulation(cfg runConfig) error {
	builder, err := cfg.platformBuilder()
	if err != nil {
		return err
	}

	p := builder.Build("SSD")
	fw := p.Firmware

	counter := tracing.NewKindCounter()
	writer := tracing.MultiWriter{counter}

	if cfg.Trace {
		db := tracing.NewSQLiteWriter(cfg.TraceDB)
		writer = append(writer, db)
		defer func() {
			db.Flush()
			fmt.Fprintf(os.Stderr, "Trace written to %s\n", db.FileName())
		}()
	}

	writer.Init()

	if cfg.LogEvents {
		p.Engine.AcceptHook(sim.NewEventLogger(log.New(os.Stderr, "", 0)))
	}

	recorder := tracing.NewRecorder(p.Engine, writer)
	recorder.Attach(fw.Dispatcher(), fw.Name())
	recorder.Attach(fw.Controller(), fw.Name())

	if tracker := fw.Tracker(); tracker != nil {
		recorder.Attach(tracker, fw.Name())
	}

	if cfg.Monitor {
		m := monitoring.NewMonitor().
			WithPortNumber(cfg.MonitorPort).
			WithBrowser(cfg.OpenBrowser)
		m.RegisterEngine(p.Engine)
		m.RegisterFirmware(fw)
		m.RegisterComponent(p.Driver)
		m.RegisterTraceCounter(counter)
		m.StartServer()

		bar := m.CreateProgressBar("Commands",
			uint64(cfg.Workload.NumIOCommands()))
		fw.Dispatcher().AcceptHook(progressHook{bar: bar})

		defer m.CompleteProgressBar(bar)
	}

	err = p.Run()
	if err != nil {
		return err
	}

	printSummary(p, counter)

	return nil
}

func printSummary(p *hostsim.Platform, counter *tracing.KindCounter) {
	snapshot := p.Firmware.Snapshot()
	driver := p.Driver.Stats()
	ftl := p.FTL.Stats()

	fmt.Printf("Simulated time: %.9f s\n", p.Engine.CurrentTime())
	fmt.Printf("Final state: %s, host phase: %s\n",
		snapshot.State, p.Driver.Phase())
	fmt.Printf("Commands: %d admin, %d I/O\n",
		snapshot.NumAdminCommands, snapshot.NumIOCommands)
	fmt.Printf("Host: %d submitted, %d completed, %d failed\n",
		driver.Submitted, driver.Completed, driver.Failed)

	if driver.Completed > 0 {
		fmt.Printf("Latency: %.9f s average, %.9f s max\n",
			driver.TotalLatency/sim.VTimeInSec(driver.Completed),
			driver.MaxLatency)
	}

	fmt.Printf("FTL: %d reads, %d writes, %d flushes, %d blocks persisted\n",
		ftl.Reads, ftl.Writes, ftl.Flushes, ftl.BlocksPersisted)

	if flushed := p.FTL.FlushedEpochs(); len(flushed) > 0 {
		fmt.Printf("Epochs flushed: %d\n", len(flushed))
	}

	for _, kind := range counter.Kinds() {
		fmt.Printf("Trace %s: %d\n", kind, counter.Count(kind))
	}
}
