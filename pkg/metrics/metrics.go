package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics коллектор метрик сервиса
// Все методы безопасны для вызова на nil (метрики выключены)
type Metrics struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	dbQueryDuration   *prometheus.HistogramVec
	dbOpenConnections prometheus.Gauge
	dbInUse           prometheus.Gauge
	dbIdle            prometheus.Gauge
	dbWaitCount       prometheus.Gauge

	allocationsTotal   *prometheus.CounterVec
	releasesTotal      *prometheus.CounterVec
	storeConflicts     *prometheus.CounterVec
	writeAttempts      prometheus.Histogram
	notificationsTotal *prometheus.CounterVec
}

// New создает коллектор и регистрирует его в глобальном реестре prometheus
func New(serviceName string) *Metrics {
	return NewWithRegisterer(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegisterer создает коллектор в указанном реестре (используется в тестах)
func NewWithRegisterer(serviceName string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(prometheus.WrapRegistererWith(prometheus.Labels{"service": serviceName}, reg))

	return &Metrics{
		httpRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		httpRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),

		dbQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query latency",
			Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),
		dbOpenConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name: "db_open_connections",
			Help: "Number of established connections",
		}),
		dbInUse: factory.NewGauge(prometheus.GaugeOpts{
			Name: "db_in_use_connections",
			Help: "Number of connections currently in use",
		}),
		dbIdle: factory.NewGauge(prometheus.GaugeOpts{
			Name: "db_idle_connections",
			Help: "Number of idle connections",
		}),
		dbWaitCount: factory.NewGauge(prometheus.GaugeOpts{
			Name: "db_wait_count",
			Help: "Total number of connections waited for",
		}),

		allocationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "slot_allocations_total",
			Help: "Slot allocation attempts by result",
		}, []string{"result"}),
		releasesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "slot_releases_total",
			Help: "Slot release attempts by result",
		}, []string{"result"}),
		storeConflicts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "availability_store_conflicts_total",
			Help: "Optimistic concurrency conflicts on availability records",
		}, []string{"operation"}),
		writeAttempts: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "availability_write_attempts",
			Help:    "Number of write attempts per availability record update",
			Buckets: []float64{1, 2, 3, 4, 5},
		}),
		notificationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "allocation_notifications_total",
			Help: "Published allocation events by type and result",
		}, []string{"event", "result"}),
	}
}

// ObserveHTTPRequest фиксирует обработанный HTTP запрос
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// ObserveDBQuery фиксирует длительность запроса к БД
func (m *Metrics) ObserveDBQuery(operation string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// SetDBPoolStats обновляет метрики пула соединений
func (m *Metrics) SetDBPoolStats(open, inUse, idle int, waitCount int64) {
	if m == nil {
		return
	}
	m.dbOpenConnections.Set(float64(open))
	m.dbInUse.Set(float64(inUse))
	m.dbIdle.Set(float64(idle))
	m.dbWaitCount.Set(float64(waitCount))
}

// RecordAllocation фиксирует исход аллокации (success, slot_taken, no_availability, conflict, error)
func (m *Metrics) RecordAllocation(result string) {
	if m == nil {
		return
	}
	m.allocationsTotal.WithLabelValues(result).Inc()
}

// RecordRelease фиксирует исход освобождения слотов (released, noop, conflict, error)
func (m *Metrics) RecordRelease(result string) {
	if m == nil {
		return
	}
	m.releasesTotal.WithLabelValues(result).Inc()
}

// RecordStoreConflict фиксирует конфликт оптимистичной блокировки (create, cas)
func (m *Metrics) RecordStoreConflict(operation string) {
	if m == nil {
		return
	}
	m.storeConflicts.WithLabelValues(operation).Inc()
}

// ObserveWriteAttempts фиксирует количество попыток записи
func (m *Metrics) ObserveWriteAttempts(attempts int) {
	if m == nil {
		return
	}
	m.writeAttempts.Observe(float64(attempts))
}

// RecordNotification фиксирует публикацию события
func (m *Metrics) RecordNotification(event, result string) {
	if m == nil {
		return
	}
	m.notificationsTotal.WithLabelValues(event, result).Inc()
}
