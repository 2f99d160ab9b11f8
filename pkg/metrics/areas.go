package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/robotalks/titan.go/pkg/l0/shm"
)

var (
	areaLabels = []string{"area", "name", "access"}

	areaCapacityDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "area", "capacity_bytes"),
		"Capacity of the shared area.", areaLabels, nil)
	areaDirtyDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "area", "dirty"),
		"1 if the area holds unread data.", areaLabels, nil)
	areaReadsDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "area", "reads_total"),
		"Successful reads of the area.", areaLabels, nil)
	areaWritesDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "area", "writes_total"),
		"Successful writes of the area.", areaLabels, nil)
)

// AreaCollector exports the counters of every registered area.
type AreaCollector struct {
	shm *shm.Manager
	// Names maps indices to display names, optional.
	Names func(index uint8) string
}

// NewAreaCollector creates an AreaCollector over m.
func NewAreaCollector(m *shm.Manager, names func(uint8) string) *AreaCollector {
	return &AreaCollector{shm: m, Names: names}
}

// Describe implements prometheus.Collector.
func (c *AreaCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- areaCapacityDesc
	ch <- areaDirtyDesc
	ch <- areaReadsDesc
	ch <- areaWritesDesc
}

// Collect implements prometheus.Collector.
func (c *AreaCollector) Collect(ch chan<- prometheus.Metric) {
	for _, st := range c.shm.Stats() {
		index := strconv.Itoa(int(st.Index))
		name := index
		if c.Names != nil {
			name = c.Names(st.Index)
		}
		labels := []string{index, name, st.Access.String()}
		var dirty float64
		if st.Dirty {
			dirty = 1
		}
		ch <- prometheus.MustNewConstMetric(areaCapacityDesc, prometheus.GaugeValue, float64(st.Capacity), labels...)
		ch <- prometheus.MustNewConstMetric(areaDirtyDesc, prometheus.GaugeValue, dirty, labels...)
		ch <- prometheus.MustNewConstMetric(areaReadsDesc, prometheus.CounterValue, float64(st.Reads), labels...)
		ch <- prometheus.MustNewConstMetric(areaWritesDesc, prometheus.CounterValue, float64(st.Writes), labels...)
	}
}
