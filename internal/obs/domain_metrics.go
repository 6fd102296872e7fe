package obs

import "github.com/prometheus/client_golang/prometheus"

// PricingMetrics groups Prometheus collectors for the price computation path.
// It satisfies the pricing engine's Metrics contract.
type PricingMetrics struct {
	CacheHits     prometheus.Counter
	CacheMisses   prometheus.Counter
	CacheBypasses prometheus.Counter
	Computations  prometheus.Counter
}

// NewPricingMetrics registers and returns pricing metrics collectors.
func NewPricingMetrics(namespace string, reg prometheus.Registerer) *PricingMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &PricingMetrics{
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pricing_cache_hits_total",
			Help:      "Number of price computations served from the cache.",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pricing_cache_misses_total",
			Help:      "Number of cache lookups that fell through to computation.",
		}),
		CacheBypasses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pricing_cache_bypass_total",
			Help:      "Number of computations that skipped the cache entirely.",
		}),
		Computations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pricing_computations_total",
			Help:      "Number of full price computations executed.",
		}),
	}
	for _, c := range []*prometheus.Counter{&m.CacheHits, &m.CacheMisses, &m.CacheBypasses, &m.Computations} {
		registerCounter(reg, c)
	}
	return m
}

func registerCounter(reg prometheus.Registerer, counter *prometheus.Counter) {
	if err := reg.Register(*counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				*counter = existing
			}
			return
		}
		panic(err)
	}
}

// CacheHit increments the cache hit counter.
func (m *PricingMetrics) CacheHit() { m.CacheHits.Inc() }

// CacheMiss increments the cache miss counter.
func (m *PricingMetrics) CacheMiss() { m.CacheMisses.Inc() }

// CacheBypass increments the cache bypass counter.
func (m *PricingMetrics) CacheBypass() { m.CacheBypasses.Inc() }

// Computation increments the computation counter.
func (m *PricingMetrics) Computation() { m.Computations.Inc() }
