// Package observabilitytest provides in-memory observability ports for tests.
package observabilitytest

import (
	"sort"
	"strings"
	"sync"

	"github.com/Zhima-Mochi/minishop-inventory/app/internal/observability"
)

type Entry struct {
	Level  string
	Msg    string
	Fields map[string]any
}

// Recorder captures log entries and metric samples. It is safe for concurrent use.
type Recorder struct {
	mu       sync.Mutex
	entries  []Entry
	counts   map[string]float64
	observed map[string][]float64
}

func NewRecorder() *Recorder {
	return &Recorder{
		counts:   make(map[string]float64),
		observed: make(map[string][]float64),
	}
}

func (r *Recorder) Tracer() observability.Tracer   { return observability.NopTracer() }
func (r *Recorder) Logger() observability.Logger   { return &logger{r: r} }
func (r *Recorder) Metrics() observability.Metrics { return metrics{r: r} }

// Entries returns the log entries with the given message, in emission order.
func (r *Recorder) Entries(msg string) []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Entry
	for _, e := range r.entries {
		if e.Msg == msg {
			out = append(out, e)
		}
	}
	return out
}

// Count returns the counter value for name and labels given as "k=v" pairs.
func (r *Recorder) Count(name observability.MetricKey, labels ...string) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[seriesKey(string(name), labels)]
}

func (r *Recorder) Observations(name observability.MetricKey, labels ...string) []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]float64(nil), r.observed[seriesKey(string(name), labels)]...)
}

func seriesKey(name string, labels []string) string {
	sorted := append([]string(nil), labels...)
	sort.Strings(sorted)
	return name + "{" + strings.Join(sorted, ",") + "}"
}

func labelPairs(labels []observability.Label) []string {
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		out = append(out, l.Key+"="+l.Value)
	}
	return out
}

type logger struct {
	r     *Recorder
	fixed []observability.Field
}

func (l *logger) With(fields ...observability.Field) observability.Logger {
	fixed := append(append([]observability.Field(nil), l.fixed...), fields...)
	return &logger{r: l.r, fixed: fixed}
}

func (l *logger) Debug(msg string, fields ...observability.Field) { l.log("debug", msg, fields) }
func (l *logger) Info(msg string, fields ...observability.Field)  { l.log("info", msg, fields) }
func (l *logger) Warn(msg string, fields ...observability.Field)  { l.log("warn", msg, fields) }
func (l *logger) Error(msg string, fields ...observability.Field) { l.log("error", msg, fields) }

func (l *logger) log(level, msg string, fields []observability.Field) {
	m := make(map[string]any, len(l.fixed)+len(fields))
	for _, f := range l.fixed {
		m[f.Key] = f.Value
	}
	for _, f := range fields {
		m[f.Key] = f.Value
	}
	l.r.mu.Lock()
	l.r.entries = append(l.r.entries, Entry{Level: level, Msg: msg, Fields: m})
	l.r.mu.Unlock()
}

type metrics struct{ r *Recorder }

func (m metrics) Counter(name observability.MetricKey) observability.Counter {
	return counter{r: m.r, name: string(name)}
}

func (m metrics) Histogram(name observability.MetricKey) observability.Histogram {
	return histogram{r: m.r, name: string(name)}
}

type counter struct {
	r    *Recorder
	name string
}

func (c counter) Add(delta float64, labels ...observability.Label) {
	key := seriesKey(c.name, labelPairs(labels))
	c.r.mu.Lock()
	c.r.counts[key] += delta
	c.r.mu.Unlock()
}

func (c counter) Bind(labels ...observability.Label) observability.BoundCounter {
	return boundCounter{c: c, labels: labels}
}

type boundCounter struct {
	c      counter
	labels []observability.Label
}

func (b boundCounter) Add(delta float64) { b.c.Add(delta, b.labels...) }

type histogram struct {
	r    *Recorder
	name string
}

func (h histogram) Observe(v float64, labels ...observability.Label) {
	key := seriesKey(h.name, labelPairs(labels))
	h.r.mu.Lock()
	h.r.observed[key] = append(h.r.observed[key], v)
	h.r.mu.Unlock()
}

func (h histogram) Bind(labels ...observability.Label) observability.BoundHistogram {
	return boundHistogram{h: h, labels: labels}
}

type boundHistogram struct {
	h      histogram
	labels []observability.Label
}

func (b boundHistogram) Observe(v float64) { b.h.Observe(v, b.labels...) }
