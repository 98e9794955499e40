package testutil

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

// Gathered 收集 g 的全部指标，返回 指标名 -> 值
//
// 只处理无标签的 gauge 与 counter。
func Gathered(t *testing.T, g prometheus.Gatherer) map[string]float64 {
	t.Helper()

	mfs, err := g.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	out := make(map[string]float64)
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetGauge() != nil:
				out[mf.GetName()] = m.GetGauge().GetValue()
			case m.GetCounter() != nil:
				out[mf.GetName()] = m.GetCounter().GetValue()
			}
		}
	}
	return out
}
