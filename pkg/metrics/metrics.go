// Package metrics exports process and area counters to prometheus.
package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/robotalks/titan.go/pkg/l0/comm"
	"github.com/robotalks/titan.go/pkg/l0/wire"
)

const namespace = "titan"

// Collector holds the counters of all communication processes.
type Collector struct {
	framesReceived *prometheus.CounterVec
	framesSent     *prometheus.CounterVec
	decodeErrors   *prometheus.CounterVec
	acks           *prometheus.CounterVec
	writeErrors    *prometheus.CounterVec
	forwarded      *prometheus.CounterVec
}

// NewCollector creates a Collector.
func NewCollector() *Collector {
	counter := func(name, help string, labels ...string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "process",
			Name:      name,
			Help:      help,
		}, append([]string{"process"}, labels...))
	}
	return &Collector{
		framesReceived: counter("frames_received_total", "Frames decoded.", "command"),
		framesSent:     counter("frames_sent_total", "Frames written to the transport.", "command"),
		decodeErrors:   counter("decode_errors_total", "Frames rejected by the decoder.", "reason"),
		acks:           counter("acks_sent_total", "Link level acknowledgements sent.", "kind"),
		writeErrors:    counter("write_errors_total", "Transport write failures."),
		forwarded:      counter("forwarded_total", "Frames for other devices dropped."),
	}
}

func (c *Collector) vecs() []*prometheus.CounterVec {
	return []*prometheus.CounterVec{
		c.framesReceived, c.framesSent, c.decodeErrors,
		c.acks, c.writeErrors, c.forwarded,
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, v := range c.vecs() {
		v.Describe(ch)
	}
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, v := range c.vecs() {
		v.Collect(ch)
	}
}

// ForProcess returns the observer of the named process.
func (c *Collector) ForProcess(name string) comm.Observer {
	return &processObserver{c: c, name: name}
}

type processObserver struct {
	c    *Collector
	name string
}

func (o *processObserver) FrameReceived(cmd wire.Command) {
	o.c.framesReceived.WithLabelValues(o.name, cmd.String()).Inc()
}

func (o *processObserver) FrameSent(cmd wire.Command) {
	o.c.framesSent.WithLabelValues(o.name, cmd.String()).Inc()
}

func (o *processObserver) DecodeFailed(err error) {
	reason := "other"
	var perr wire.ProtocolError
	if errors.As(err, &perr) {
		reason = perr.Name()
	}
	o.c.decodeErrors.WithLabelValues(o.name, reason).Inc()
}

func (o *processObserver) Acknowledged(ack bool) {
	kind := "nak"
	if ack {
		kind = "ack"
	}
	o.c.acks.WithLabelValues(o.name, kind).Inc()
}

func (o *processObserver) WriteFailed() {
	o.c.writeErrors.WithLabelValues(o.name).Inc()
}

func (o *processObserver) Forwarded() {
	o.c.forwarded.WithLabelValues(o.name).Inc()
}

// NewRegistry creates a registry with the runtime collectors and cs.
func NewRegistry(cs ...prometheus.Collector) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewBuildInfoCollector())
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(cs...)
	return reg
}

// Handler serves reg.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
