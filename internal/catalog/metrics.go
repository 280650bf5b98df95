package catalog

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	loadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feed_loads_total",
		Help: "Feed load attempts by outcome (committed, failed, stale).",
	}, []string{"outcome"})

	listingsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "catalog_listings",
		Help: "Listings in the current catalog snapshot.",
	})

	lastLoadTimestamp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "catalog_last_load_timestamp_seconds",
		Help: "Unix time of the last committed feed load.",
	})
)
