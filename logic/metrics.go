package logic

import (
	"github.com/prometheus/client_golang/prometheus"
	"roost/shared"
	"time"
)

//go:generate mockgen --build_flags=--mod=mod -destination ../test/mocks/mock_metrics.go -package mocks roost/logic IMetrics

type IMetrics interface {
	StartIngest(platform string) IRequestObserver
	StartLookupOut(platform string) IRequestObserver
	ServiceStarted()
	StatusCreated()
	StatusMerged()
	StatusSkipped()
	StaleWriteRejected()
	UserCreated()
	BackfillChunkFailed()
	BackfillStatusPatched()
	FeedAnchorCleared()
	TotalStatuses(count int)
}

type IRequestObserver interface {
	Finish()
}

type metrics struct {
	cfg                   *shared.Config
	ingestDuration        *prometheus.HistogramVec
	lookupsOut            *prometheus.HistogramVec
	serviceStarted        prometheus.Counter
	statusesCreated       prometheus.Counter
	statusesMerged        prometheus.Counter
	statusesSkipped       prometheus.Counter
	staleWritesRejected   prometheus.Counter
	usersCreated          prometheus.Counter
	backfillChunksFailed  prometheus.Counter
	backfillStatusPatched prometheus.Counter
	feedAnchorsCleared    prometheus.Counter
	totalStatuses         prometheus.Gauge
}

func NewMetrics(cfg *shared.Config) IMetrics {

	res := metrics{}
	res.cfg = cfg

	res.ingestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name: "ingest_duration",
		Help: "Duration in seconds of timeline page ingestions.",
	}, []string{"platform"})
	prometheus.Register(res.ingestDuration)

	res.lookupsOut = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name: "lookup_requests_out_duration",
		Help: "Duration in seconds of backfill lookup requests made.",
	}, []string{"platform"})
	prometheus.Register(res.lookupsOut)

	res.serviceStarted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "service_started",
		Help: "Incremented once at every service start",
	})
	prometheus.Register(res.serviceStarted)

	res.statusesCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "statuses_created",
		Help: "Number of new status records persisted",
	})
	prometheus.Register(res.statusesCreated)

	res.statusesMerged = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "statuses_merged",
		Help: "Number of merges into existing status records",
	})
	prometheus.Register(res.statusesMerged)

	res.statusesSkipped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "statuses_skipped",
		Help: "Number of statuses skipped because their author could not be resolved",
	})
	prometheus.Register(res.statusesSkipped)

	res.staleWritesRejected = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stale_writes_rejected",
		Help: "Number of merges rejected by the monotonic timestamp guard",
	})
	prometheus.Register(res.staleWritesRejected)

	res.usersCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "users_created",
		Help: "Number of new user records persisted",
	})
	prometheus.Register(res.usersCreated)

	res.backfillChunksFailed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "backfill_chunks_failed",
		Help: "Number of backfill lookup chunks that failed and were skipped",
	})
	prometheus.Register(res.backfillChunksFailed)

	res.backfillStatusPatched = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "backfill_statuses_patched",
		Help: "Number of statuses patched by the backfill pass",
	})
	prometheus.Register(res.backfillStatusPatched)

	res.feedAnchorsCleared = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "feed_anchors_cleared",
		Help: "Number of feed paging anchors closed by a max-id match",
	})
	prometheus.Register(res.feedAnchorsCleared)

	res.totalStatuses = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "total_statuses",
		Help: "Total number of status records in the store",
	})
	prometheus.Register(res.totalStatuses)

	return &res
}

type requestObserver struct {
	start     time.Time
	histogram *prometheus.HistogramVec
	label     string
}

func (m *metrics) startObserver(hist *prometheus.HistogramVec, label string) IRequestObserver {
	return &requestObserver{
		start:     time.Now(),
		histogram: hist,
		label:     label,
	}
}

func (obs *requestObserver) Finish() {
	elapsed := time.Since(obs.start).Seconds()
	obs.histogram.WithLabelValues(obs.label).Observe(elapsed)
}

func (m *metrics) StartIngest(platform string) IRequestObserver {
	return m.startObserver(m.ingestDuration, platform)
}

func (m *metrics) StartLookupOut(platform string) IRequestObserver {
	return m.startObserver(m.lookupsOut, platform)
}

func (m *metrics) ServiceStarted()        { m.serviceStarted.Inc() }
func (m *metrics) StatusCreated()         { m.statusesCreated.Inc() }
func (m *metrics) StatusMerged()          { m.statusesMerged.Inc() }
func (m *metrics) StatusSkipped()         { m.statusesSkipped.Inc() }
func (m *metrics) StaleWriteRejected()    { m.staleWritesRejected.Inc() }
func (m *metrics) UserCreated()           { m.usersCreated.Inc() }
func (m *metrics) BackfillChunkFailed()   { m.backfillChunksFailed.Inc() }
func (m *metrics) BackfillStatusPatched() { m.backfillStatusPatched.Inc() }
func (m *metrics) FeedAnchorCleared()     { m.feedAnchorsCleared.Inc() }

func (m *metrics) TotalStatuses(count int) {
	m.totalStatuses.Set(float64(count))
}
