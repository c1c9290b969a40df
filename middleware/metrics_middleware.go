package middleware

import (
	"contests/metrics"
	"runtime"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/load"
	log "github.com/sirupsen/logrus"
)

// MetricsMiddleware collects HTTP request metrics
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Route template keeps label cardinality bounded
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method

		metrics.RequestInProgress.WithLabelValues(method, path).Inc()
		startTime := time.Now()

		c.Next()

		duration := time.Since(startTime).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		metrics.RequestCounter.WithLabelValues(status, method, path).Inc()
		metrics.RequestDuration.WithLabelValues(status, method, path).Observe(duration)
		metrics.RequestInProgress.WithLabelValues(method, path).Dec()
	}
}

// UpdateSystemMetrics periodically updates system metrics
func UpdateSystemMetrics(interval time.Duration) {
	go func() {
		for {
			sampleSystemMetrics()
			time.Sleep(interval)
		}
	}()
}

func sampleSystemMetrics() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	metrics.MemoryStats.WithLabelValues("alloc").Set(float64(memStats.Alloc))
	metrics.MemoryStats.WithLabelValues("sys").Set(float64(memStats.Sys))
	metrics.MemoryStats.WithLabelValues("heap_alloc").Set(float64(memStats.HeapAlloc))
	metrics.MemoryStats.WithLabelValues("heap_sys").Set(float64(memStats.HeapSys))
	metrics.MemoryStats.WithLabelValues("heap_idle").Set(float64(memStats.HeapIdle))
	metrics.MemoryStats.WithLabelValues("heap_inuse").Set(float64(memStats.HeapInuse))

	metrics.GoroutineCount.Set(float64(runtime.NumGoroutine()))

	if percents, err := cpu.Percent(0, true); err == nil {
		for i, p := range percents {
			metrics.SystemCPUUsage.WithLabelValues(strconv.Itoa(i)).Set(p)
		}
	} else {
		log.Debugf("cpu usage unavailable: %v", err)
	}

	if avg, err := load.Avg(); err == nil {
		metrics.SystemLoadAverage.WithLabelValues("1min").Set(avg.Load1)
		metrics.SystemLoadAverage.WithLabelValues("5min").Set(avg.Load5)
		metrics.SystemLoadAverage.WithLabelValues("15min").Set(avg.Load15)
	} else {
		log.Debugf("load average unavailable: %v", err)
	}
}
