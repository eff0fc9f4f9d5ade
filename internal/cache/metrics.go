// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import "github.com/prometheus/client_golang/prometheus"

var (
	hitsDesc = prometheus.NewDesc(
		"ocms_pages_cache_hits_total", "Cache lookups that found a value", []string{"backend"}, nil)
	missesDesc = prometheus.NewDesc(
		"ocms_pages_cache_misses_total", "Cache lookups that found nothing", []string{"backend"}, nil)
	setsDesc = prometheus.NewDesc(
		"ocms_pages_cache_sets_total", "Values written to the cache", []string{"backend"}, nil)
	itemsDesc = prometheus.NewDesc(
		"ocms_pages_cache_items", "Entries held by the cache (memory backend only)", []string{"backend"}, nil)
	hitRateDesc = prometheus.NewDesc(
		"ocms_pages_cache_hit_rate_percent", "Hits as a percentage of all lookups", []string{"backend"}, nil)
)

// StatsCollector exports a cache's Stats on every scrape.
type StatsCollector struct {
	cache Cache
}

// NewStatsCollector returns a collector reading c.Stats().
func NewStatsCollector(c Cache) *StatsCollector {
	return &StatsCollector{cache: c}
}

// Describe implements prometheus.Collector.
func (sc *StatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- hitsDesc
	ch <- missesDesc
	ch <- setsDesc
	ch <- itemsDesc
	ch <- hitRateDesc
}

// Collect implements prometheus.Collector.
func (sc *StatsCollector) Collect(ch chan<- prometheus.Metric) {
	s := sc.cache.Stats()
	ch <- prometheus.MustNewConstMetric(hitsDesc, prometheus.CounterValue, float64(s.Hits), s.Backend)
	ch <- prometheus.MustNewConstMetric(missesDesc, prometheus.CounterValue, float64(s.Misses), s.Backend)
	ch <- prometheus.MustNewConstMetric(setsDesc, prometheus.CounterValue, float64(s.Sets), s.Backend)
	ch <- prometheus.MustNewConstMetric(itemsDesc, prometheus.GaugeValue, float64(s.Items), s.Backend)
	ch <- prometheus.MustNewConstMetric(hitRateDesc, prometheus.GaugeValue, s.HitRate, s.Backend)
}
