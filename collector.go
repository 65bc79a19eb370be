/*
 * Copyright (c) 2023-present unTill Pro, Ltd. and Contributors
 *
 * This source code is licensed under the MIT license found in the
 * LICENSE file in the root directory of this source tree.
 */

package pool

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	freeObjectsDesc = prometheus.NewDesc("objpool_free_objects",
		"Objects held in the free list", []string{"pool"}, nil)
	freeCapacityDesc = prometheus.NewDesc("objpool_free_capacity",
		"Current free list capacity", []string{"pool"}, nil)
	objectsInUseDesc = prometheus.NewDesc("objpool_objects_in_use",
		"Objects allocated but not freed yet", []string{"pool"}, nil)
	allocatedDesc = prometheus.NewDesc("objpool_allocated_total",
		"Objects constructed by the pool", []string{"pool"}, nil)
	reusedDesc = prometheus.NewDesc("objpool_reused_total",
		"Allocations served from the free list", []string{"pool"}, nil)
	discardedDesc = prometheus.NewDesc("objpool_discarded_total",
		"Freed objects dropped because the free list could not grow", []string{"pool"}, nil)
	corruptedDesc = prometheus.NewDesc("objpool_corrupted_total",
		"Freed objects rejected because of a damaged redzone", []string{"pool"}, nil)
)

// Collector exposes Stats() of the pools as prometheus metrics
type Collector struct {
	mu    sync.RWMutex
	pools []IPool
}

var _ prometheus.Collector = (*Collector)(nil)

func NewCollector(pools ...IPool) *Collector {
	return &Collector{pools: pools}
}

// Add starts collecting the pool
func (c *Collector) Add(p IPool) {
	c.mu.Lock()
	c.pools = append(c.pools, p)
	c.mu.Unlock()
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- freeObjectsDesc
	ch <- freeCapacityDesc
	ch <- objectsInUseDesc
	ch <- allocatedDesc
	ch <- reusedDesc
	ch <- discardedDesc
	ch <- corruptedDesc
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, p := range c.pools {
		s := p.Stats()
		ch <- prometheus.MustNewConstMetric(freeObjectsDesc, prometheus.GaugeValue, float64(s.FreeCount), s.Name)
		ch <- prometheus.MustNewConstMetric(freeCapacityDesc, prometheus.GaugeValue, float64(s.FreeCapacity), s.Name)
		ch <- prometheus.MustNewConstMetric(objectsInUseDesc, prometheus.GaugeValue, float64(s.InUse), s.Name)
		ch <- prometheus.MustNewConstMetric(allocatedDesc, prometheus.CounterValue, float64(s.Allocated), s.Name)
		ch <- prometheus.MustNewConstMetric(reusedDesc, prometheus.CounterValue, float64(s.Reused), s.Name)
		ch <- prometheus.MustNewConstMetric(discardedDesc, prometheus.CounterValue, float64(s.Discarded), s.Name)
		ch <- prometheus.MustNewConstMetric(corruptedDesc, prometheus.CounterValue, float64(s.Corrupted), s.Name)
	}
}
