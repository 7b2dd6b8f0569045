package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics — собственный реестр сервиса, чтобы тесты не конфликтовали с глобальным
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	quizzesGenerated   *prometheus.CounterVec
	questionsGenerated *prometheus.CounterVec
	shortSamples       prometheus.Counter
	generationErrors   *prometheus.CounterVec
}

// New создаёт и регистрирует все метрики
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"method", "endpoint"},
		),
		quizzesGenerated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quizgen_quizzes_total",
				Help: "Generated quizzes by selection mode",
			},
			[]string{"mode"},
		),
		questionsGenerated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quizgen_questions_total",
				Help: "Questions handed out by difficulty",
			},
			[]string{"difficulty"},
		),
		shortSamples: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quizgen_short_samples_total",
			Help: "Generations that returned fewer questions than requested",
		}),
		generationErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quizgen_errors_total",
				Help: "Failed generations by reason",
			},
			[]string{"reason"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.requestDuration,
		m.quizzesGenerated,
		m.questionsGenerated,
		m.shortSamples,
		m.generationErrors,
	)
	return m
}

// Registry нужен тестам для чтения значений
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveGeneration учитывает успешную генерацию
func (m *Metrics) ObserveGeneration(mode string, perDifficulty map[string]int, requested, returned int) {
	m.quizzesGenerated.WithLabelValues(mode).Inc()
	for difficulty, n := range perDifficulty {
		m.questionsGenerated.WithLabelValues(difficulty).Add(float64(n))
	}
	if returned < requested {
		m.shortSamples.Inc()
	}
}

// ObserveGenerationError учитывает отказ генерации
func (m *Metrics) ObserveGenerationError(reason string) {
	m.generationErrors.WithLabelValues(reason).Inc()
}

// Middleware считает запросы и их длительность по шаблону маршрута
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		m.requests.WithLabelValues(
			c.Request.Method,
			endpoint,
			strconv.Itoa(c.Writer.Status()),
		).Inc()

		m.requestDuration.WithLabelValues(
			c.Request.Method,
			endpoint,
		).Observe(time.Since(start).Seconds())
	}
}

// Handler отдаёт метрики в формате Prometheus
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
