/*
Package monitoring provides Prometheus metrics collection.

Collectors cover the HTTP surface (request counts, latency), the cleaner
(run counts and durations by mode), and the supervised worker lifecycle
(launches, kills, active slot).

Usage:

	metrics := monitoring.NewMetrics(nil)
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
*/
package monitoring
