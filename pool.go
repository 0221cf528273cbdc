package hwbench

import (
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
)

// Tick is the load worker cycle: work, maybe re-measure, sleep the rest.
const Tick = 100 * time.Millisecond

// samplerWorker is the only worker that measures system CPU usage and
// writes the controller's measured load.
const samplerWorker = 0

// PoolConfig controls load worker execution.
type PoolConfig struct {
	Workers int           // number of workers (0 = runtime.NumCPU())
	Tick    time.Duration // cycle length (0 = Tick)
	Pin     bool          // pin worker i to logical CPU i
	Usage   UsageSampler  // required; feeds RecordAndRetune
	Logger  *slog.Logger  // nil = slog.Default()
}

// LoadPool is a fixed set of CPU-bound workers driven by a LoadController.
// Workers are spawned once and joined once; the pool is never resized.
type LoadPool struct {
	ctrl    *LoadController
	cfg     PoolConfig
	logger  *slog.Logger
	group   errgroup.Group
	workers int
}

// SpawnLoad starts the workers. The controller must already be started;
// workers return as soon as they observe it stopped.
func SpawnLoad(ctrl *LoadController, cfg PoolConfig) *LoadPool {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Tick <= 0 {
		cfg.Tick = Tick
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	p := &LoadPool{ctrl: ctrl, cfg: cfg, logger: logger, workers: cfg.Workers}
	for i := 0; i < cfg.Workers; i++ {
		id := i
		p.group.Go(func() error {
			return p.work(id)
		})
	}
	logger.Debug("load workers started",
		"workers", cfg.Workers,
		"target_load", ctrl.TargetLoad(),
		"work_units", ctrl.WorkUnits())
	return p
}

// Workers returns the number of spawned workers.
func (p *LoadPool) Workers() int { return p.workers }

// Join waits for every worker. It does not stop the controller and has
// no timeout. The first worker failure is returned; it wraps ErrWorkerJoin.
func (p *LoadPool) Join() error {
	err := p.group.Wait()
	p.logger.Debug("load workers joined", "total_work_done", p.ctrl.TotalWorkDone())
	return err
}

func (p *LoadPool) work(id int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &WorkerJoinError{Worker: id, Panic: r}
		}
	}()

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if p.cfg.Pin {
		if err := pinToCPU(id); err != nil {
			p.logger.Debug("cpu affinity not applied", "worker", id, "error", err)
		}
	}

	logger := p.logger.With("worker", id)
	lastAdjust := time.Now()
	var sink float64

	for p.ctrl.Running() {
		start := time.Now()

		res := PerformWork(p.ctrl.WorkUnits())
		p.ctrl.addWork(res.Iterations)
		sink += res.Checksum
		if res.Aborted {
			logger.Warn("busy-work aborted: too many non-finite values",
				"iterations", res.Iterations,
				"non_finite", res.NonFinite)
		}

		if id == samplerWorker && start.Sub(lastAdjust) >= p.cfg.Tick {
			p.adjust(logger)
			lastAdjust = time.Now()
		}

		if rest := p.cfg.Tick - time.Since(start); rest > 0 {
			time.Sleep(rest)
		}
	}

	logger.Debug("load worker stopped", "checksum", sink)
	return nil
}

func (p *LoadPool) adjust(logger *slog.Logger) {
	load, err := p.cfg.Usage.Usage()
	if err != nil {
		logger.Debug("cpu usage refresh failed", "error", err)
		return
	}
	p.ctrl.RecordAndRetune(load)
}
