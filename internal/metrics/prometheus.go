package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "socialvote"

// PrometheusRecorder exports metrics through a dedicated registry.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	usersRegistered prometheus.Counter
	logins          *prometheus.CounterVec
	authFailures    *prometheus.CounterVec
	posts           *prometheus.CounterVec
	votesCast       *prometheus.CounterVec
	votesRetracted  prometheus.Counter
	voteRetries     prometheus.Counter
	voteConflicts   prometheus.Counter
	requestDuration *prometheus.HistogramVec
	rateLimited     *prometheus.CounterVec
}

// NewPrometheus registers all collectors, plus Go runtime and process
// collectors, on a fresh registry.
func NewPrometheus() *PrometheusRecorder {
	p := &PrometheusRecorder{
		registry: prometheus.NewRegistry(),
		usersRegistered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "users_registered_total",
			Help:      "Number of registered users.",
		}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Login attempts by outcome.",
		}, []string{"outcome"}),
		authFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_failures_total",
			Help:      "Rejected bearer tokens by reason.",
		}, []string{"reason"}),
		posts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "post_mutations_total",
			Help:      "Post mutations by operation.",
		}, []string{"op"}),
		votesCast: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "votes_cast_total",
			Help:      "Vote casts by outcome.",
		}, []string{"outcome"}),
		votesRetracted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "votes_retracted_total",
			Help:      "Retracted votes.",
		}),
		voteRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vote_cast_retries_total",
			Help:      "Casts that lost a race and re-entered the state machine.",
		}),
		voteConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vote_cast_conflicts_total",
			Help:      "Casts that gave up after exhausting retries.",
		}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter.",
		}, []string{"scope"}),
	}

	p.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		p.usersRegistered,
		p.logins,
		p.authFailures,
		p.posts,
		p.votesCast,
		p.votesRetracted,
		p.voteRetries,
		p.voteConflicts,
		p.requestDuration,
		p.rateLimited,
	)

	return p
}

// Handler serves the registry in the Prometheus exposition format.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

func (p *PrometheusRecorder) IncUserRegistered()           { p.usersRegistered.Inc() }
func (p *PrometheusRecorder) IncLogin(outcome string)      { p.logins.WithLabelValues(outcome).Inc() }
func (p *PrometheusRecorder) IncAuthFailure(reason string) { p.authFailures.WithLabelValues(reason).Inc() }
func (p *PrometheusRecorder) IncPostCreated()              { p.posts.WithLabelValues("create").Inc() }
func (p *PrometheusRecorder) IncPostUpdated()              { p.posts.WithLabelValues("update").Inc() }
func (p *PrometheusRecorder) IncPostDeleted()              { p.posts.WithLabelValues("delete").Inc() }
func (p *PrometheusRecorder) IncVoteCast(outcome string)   { p.votesCast.WithLabelValues(outcome).Inc() }
func (p *PrometheusRecorder) IncVoteRetracted()            { p.votesRetracted.Inc() }
func (p *PrometheusRecorder) IncVoteRetry()                { p.voteRetries.Inc() }
func (p *PrometheusRecorder) IncVoteConflict()             { p.voteConflicts.Inc() }
func (p *PrometheusRecorder) IncRateLimited(scope string)  { p.rateLimited.WithLabelValues(scope).Inc() }

// ObserveRequest records request latency. route must be the route
// pattern, not the raw path, to keep label cardinality bounded.
func (p *PrometheusRecorder) ObserveRequest(method, route string, status int, duration time.Duration) {
	p.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
}
