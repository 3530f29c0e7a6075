package prometheus

import (
	"context"
	"sync"
	"time"

	"github.com/Swind/service-watcher/watcher"
	prom "github.com/prometheus/client_golang/prometheus"
)

// WatcherSnapshotProvider provides current watcher stats snapshots.
// *watcher.Watcher implements it.
type WatcherSnapshotProvider interface {
	Stats() watcher.Stats
}

// SnapshotPoller periodically exports watcher Stats() snapshots into Prometheus gauges.
type SnapshotPoller struct {
	interval time.Duration

	watchersMu sync.RWMutex
	watchers   map[string]WatcherSnapshotProvider

	pending        *prom.GaugeVec
	watcherActive  *prom.GaugeVec
	indicatorShown *prom.GaugeVec
	position       *prom.GaugeVec
	samplerAlive   *prom.GaugeVec

	stateMu sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSnapshotPoller creates a snapshot poller and registers its collectors.
func NewSnapshotPoller(reg prom.Registerer, interval time.Duration) (*SnapshotPoller, error) {
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	if interval <= 0 {
		interval = time.Second
	}

	gauge := func(name, help string) *prom.GaugeVec {
		return prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: "servicewatcher",
			Name:      name,
			Help:      help,
		}, []string{"watcher"})
	}

	p := &SnapshotPoller{
		interval:       interval,
		watchers:       make(map[string]WatcherSnapshotProvider),
		pending:        gauge("pending", "Number of queued launch requests."),
		watcherActive:  gauge("startup_watcher_active", "Startup watcher state (1=active, 0=idle)."),
		indicatorShown: gauge("waiting_indicator_shown", "Waiting indicator state (1=shown, 0=dismissed)."),
		position:       gauge("position_bytes", "Bytes processed by the current worker."),
		samplerAlive:   gauge("sampler_alive", "Progress sampler context state (1=alive, 0=gone)."),
	}

	var err error
	for _, vec := range []**prom.GaugeVec{&p.pending, &p.watcherActive, &p.indicatorShown, &p.position, &p.samplerAlive} {
		if *vec, err = registerCollector(reg, *vec); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// AddWatcher adds or replaces a snapshot provider by name.
func (p *SnapshotPoller) AddWatcher(name string, provider WatcherSnapshotProvider) {
	if p == nil || provider == nil {
		return
	}
	name = normalizeLabel(name, "watcher")
	p.watchersMu.Lock()
	p.watchers[name] = provider
	p.watchersMu.Unlock()
}

// Start begins periodic polling; repeated calls are no-ops.
func (p *SnapshotPoller) Start(ctx context.Context) {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if p.running {
		p.stateMu.Unlock()
		return
	}
	pollCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.running = true
	p.stateMu.Unlock()

	go p.loop(pollCtx)
}

// Stop stops periodic polling; repeated calls are safe.
func (p *SnapshotPoller) Stop() {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if !p.running {
		p.stateMu.Unlock()
		return
	}
	cancel := p.cancel
	done := p.done
	p.stateMu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}

	p.stateMu.Lock()
	p.running = false
	p.cancel = nil
	p.done = nil
	p.stateMu.Unlock()
}

func (p *SnapshotPoller) loop(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.collectOnce()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.collectOnce()
		}
	}
}

func (p *SnapshotPoller) collectOnce() {
	p.watchersMu.RLock()
	defer p.watchersMu.RUnlock()

	for name, provider := range p.watchers {
		stats := provider.Stats()
		p.pending.WithLabelValues(name).Set(float64(stats.Serializer.Pending))
		p.watcherActive.WithLabelValues(name).Set(boolGauge(stats.Serializer.WatcherActive))
		p.indicatorShown.WithLabelValues(name).Set(boolGauge(stats.Serializer.IndicatorShown))
		p.position.WithLabelValues(name).Set(float64(stats.Position))
		p.samplerAlive.WithLabelValues(name).Set(boolGauge(stats.SamplerAlive))
	}
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
