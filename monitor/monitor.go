// monitor/monitor.go
package monitor

import (
	"expvar"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	OnlinePlayers   prometheus.Gauge
	ActiveRooms     prometheus.Gauge
	KillsResolved   prometheus.Counter
	KillsRejected   prometheus.Counter
	LocationUpdates prometheus.Counter
	GamesFinished   prometheus.Counter
	KillLatency     prometheus.Histogram
}

func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		OnlinePlayers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "online_players",
			Help:      "Number of connected player sessions",
		}),
		ActiveRooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_rooms",
			Help:      "Number of game rooms with connected sessions",
		}),
		KillsResolved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kills_resolved_total",
			Help:      "Total kills committed by the ring engine",
		}),
		KillsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kills_rejected_total",
			Help:      "Total kill attempts rejected with a domain error",
		}),
		LocationUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "location_updates_total",
			Help:      "Total location updates written to the cache",
		}),
		GamesFinished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_finished_total",
			Help:      "Total games that reached a winner",
		}),
		KillLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "kill_latency_seconds",
			Help:      "Kill resolution latency, transaction included",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 10),
		}),
	}

	prometheus.MustRegister(
		m.OnlinePlayers,
		m.ActiveRooms,
		m.KillsResolved,
		m.KillsRejected,
		m.LocationUpdates,
		m.GamesFinished,
		m.KillLatency,
	)

	return m
}

type Monitor struct {
	metrics   *Metrics
	startTime time.Time
}

func NewMonitor(namespace string) *Monitor {
	return &Monitor{
		metrics:   NewMetrics(namespace),
		startTime: time.Now(),
	}
}

func (m *Monitor) StartServer(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/debug/vars", expvar.Handler())

	expvar.Publish("uptime", expvar.Func(func() interface{} {
		return time.Since(m.startTime).Seconds()
	}))

	go http.ListenAndServe(addr, mux)
}

func (m *Monitor) IncOnlinePlayers()  { m.metrics.OnlinePlayers.Inc() }
func (m *Monitor) DecOnlinePlayers()  { m.metrics.OnlinePlayers.Dec() }
func (m *Monitor) IncKillsResolved()  { m.metrics.KillsResolved.Inc() }
func (m *Monitor) IncKillsRejected()  { m.metrics.KillsRejected.Inc() }
func (m *Monitor) IncLocationUpdate() { m.metrics.LocationUpdates.Inc() }
func (m *Monitor) IncGamesFinished()  { m.metrics.GamesFinished.Inc() }

func (m *Monitor) SetActiveRooms(count int) {
	m.metrics.ActiveRooms.Set(float64(count))
}

func (m *Monitor) ObserveKillLatency(duration time.Duration) {
	m.metrics.KillLatency.Observe(duration.Seconds())
}
