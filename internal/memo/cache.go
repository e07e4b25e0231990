package memo

import (
	"container/list"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/singleflight"
)

const DefaultSize = 128

// Metrics counts cache traffic, labelled by cache name. Several caches can
// share one Metrics.
type Metrics struct {
	Hits      *prometheus.CounterVec
	Misses    *prometheus.CounterVec
	Evictions *prometheus.CounterVec
}

// NewMetrics registers the cache counters with reg. A nil reg yields working
// counters that are not exported anywhere.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Hits: f.NewCounterVec(prometheus.CounterOpts{
			Name: "siting_cache_hits_total",
			Help: "Memoized results served from cache",
		}, []string{"cache"}),
		Misses: f.NewCounterVec(prometheus.CounterOpts{
			Name: "siting_cache_misses_total",
			Help: "Lookups that had to compute a result",
		}, []string{"cache"}),
		Evictions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "siting_cache_evictions_total",
			Help: "Entries dropped to stay within the size bound",
		}, []string{"cache"}),
	}
}

type entry[V any] struct {
	key   string
	value V
}

// Cache is a bounded LRU map from a normalized key to a computed value.
// Concurrent misses on the same key share a single computation.
type Cache[V any] struct {
	name    string
	size    int
	metrics *Metrics

	mu    sync.Mutex
	order *list.List
	items map[string]*list.Element

	group singleflight.Group
}

func New[V any](name string, size int, metrics *Metrics) *Cache[V] {
	if size <= 0 {
		size = DefaultSize
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Cache[V]{
		name:    name,
		size:    size,
		metrics: metrics,
		order:   list.New(),
		items:   make(map[string]*list.Element),
	}
}

func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*entry[V]).value, true
}

func (c *Cache[V]) Add(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		el.Value.(*entry[V]).value = value
		c.order.MoveToFront(el)
		return
	}

	c.items[key] = c.order.PushFront(&entry[V]{key: key, value: value})
	for c.order.Len() > c.size {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*entry[V]).key)
		c.metrics.Evictions.WithLabelValues(c.name).Inc()
	}
}

// GetOrCompute returns the cached value for key, computing and storing it on
// a miss. Errors are returned to every waiter and never cached.
func (c *Cache[V]) GetOrCompute(key string, compute func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		c.metrics.Hits.WithLabelValues(c.name).Inc()
		return v, nil
	}

	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		// a flight that finished between Get and Do already stored it
		if v, ok := c.Get(key); ok {
			c.metrics.Hits.WithLabelValues(c.name).Inc()
			return v, nil
		}
		c.metrics.Misses.WithLabelValues(c.name).Inc()

		v, err := compute()
		if err != nil {
			return nil, err
		}
		c.Add(key, v)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return val.(V), nil
}

func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *Cache[V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	clear(c.items)
}
