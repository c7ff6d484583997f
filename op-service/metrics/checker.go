package metrics

import (
	"slices"

	"github.com/prometheus/client_golang/prometheus"
	gocl "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

// MetricFamiliesChecker searches a gathered snapshot of a registry in tests.
// Lookups fail the test when nothing, or more than one thing, matches.
type MetricFamiliesChecker struct {
	t        require.TestingT
	families []*gocl.MetricFamily
}

type MetricFamilyChecker struct {
	t   require.TestingT
	fam *gocl.MetricFamily
}

// NewMetricChecker gathers the registry once; later updates are not observed.
func NewMetricChecker(t require.TestingT, reg *prometheus.Registry) *MetricFamiliesChecker {
	families, err := reg.Gather()
	require.NoError(t, err, "must gather metrics")
	return &MetricFamiliesChecker{t: t, families: families}
}

func (m *MetricFamiliesChecker) FindByName(name string) *MetricFamilyChecker {
	i := slices.IndexFunc(m.families, func(f *gocl.MetricFamily) bool {
		return f.GetName() == name
	})
	require.GreaterOrEqual(m.t, i, 0, "cannot find metric family %q", name)
	return &MetricFamilyChecker{t: m.t, fam: m.families[i]}
}

// FindByLabels returns the single metric of the family that carries all the given labels.
func (f *MetricFamilyChecker) FindByLabels(labels map[string]string) *gocl.Metric {
	var found []*gocl.Metric
	for _, m := range f.fam.Metric {
		if matchLabels(m, labels) {
			found = append(found, m)
		}
	}
	require.Len(f.t, found, 1, "expected exactly one %s metric with labels %v", f.fam.GetName(), labels)
	return found[0]
}

// Value returns the value of a counter or gauge.
func (f *MetricFamilyChecker) Value(labels map[string]string) float64 {
	m := f.FindByLabels(labels)
	switch {
	case m.Counter != nil:
		return m.Counter.GetValue()
	case m.Gauge != nil:
		return m.Gauge.GetValue()
	}
	require.FailNow(f.t, "metric is neither counter nor gauge", f.fam.GetName())
	return 0
}

// SampleCount returns the number of observations of a histogram.
func (f *MetricFamilyChecker) SampleCount(labels map[string]string) uint64 {
	m := f.FindByLabels(labels)
	require.NotNil(f.t, m.Histogram, "metric %s is not a histogram", f.fam.GetName())
	return m.Histogram.GetSampleCount()
}

func matchLabels(m *gocl.Metric, labels map[string]string) bool {
	for k, v := range labels {
		if !slices.ContainsFunc(m.Label, func(l *gocl.LabelPair) bool {
			return l.GetName() == k && l.GetValue() == v
		}) {
			return false
		}
	}
	return true
}
