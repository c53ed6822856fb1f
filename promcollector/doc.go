// Package promcollector exports annoset operation metrics to Prometheus.
//
//	reg := prometheus.NewRegistry()
//	mc, _ := promcollector.New(reg)
//	s, _ := annoset.New(annoset.WithMetricsCollector(mc))
package promcollector
