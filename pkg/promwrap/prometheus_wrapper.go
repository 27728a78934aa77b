package promwrap

import (
	"errors"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Interface ...
type Interface interface {
	Register(kind int, name, help string, labels ...string) error
	Add(name string, v float64, labels ...string) error
	Set(name string, v float64, labels ...string) error
	Inc(name string, labels ...string) error
	Dec(name string, labels ...string) error
}

const (
	_ = iota
	// Gauge ...
	Gauge
	// GaugeVec ...
	GaugeVec
	// Counter ...
	Counter
	// CounterVec ...
	CounterVec
)

var (
	// ErrOperationNotImplemented ...
	ErrOperationNotImplemented = errors.New("operation not implemented")
	// ErrMetricNotExist ...
	ErrMetricNotExist = errors.New("metric not exist")
	// ErrLabels ...
	ErrLabels = errors.New("labels mismatch")
)

// gauge and counter share Add and Inc, only gauges can go down or be set.
type gauge interface {
	Add(float64)
	Inc()
	Set(float64)
	Dec()
}

type counter interface {
	Add(float64)
	Inc()
}

type metric struct {
	kind     int
	gauge    prometheus.Gauge
	gaugeVec *prometheus.GaugeVec
	counter  prometheus.Counter
	countVec *prometheus.CounterVec
}

// Prom keeps its metrics in a private registry, so several instances can
// live in one process.
type Prom struct {
	sync.Mutex
	port     string
	path     string
	registry *prometheus.Registry
	metric   map[string]*metric
}

// NewProm ...
func NewProm(port, path string) *Prom {
	s := &Prom{
		port:     port,
		path:     path,
		registry: prometheus.NewRegistry(),
		metric:   make(map[string]*metric),
	}
	return s
}

// Handler ...
func (s *Prom) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}

// Start ...
func (s *Prom) Start() error {
	mux := http.NewServeMux()
	mux.Handle(s.path, s.Handler())
	return http.ListenAndServe(s.port, mux)
}

// Register ...
func (s *Prom) Register(kind int, name, help string, labels ...string) error {
	s.Lock()
	defer s.Unlock()
	if _, ok := s.metric[name]; ok {
		return nil
	}

	m := &metric{kind: kind}
	var c prometheus.Collector
	switch kind {
	default:
		return ErrOperationNotImplemented
	case Gauge:
		m.gauge = prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: help})
		c = m.gauge
	case GaugeVec:
		m.gaugeVec = prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: name, Help: help}, labels)
		c = m.gaugeVec
	case Counter:
		m.counter = prometheus.NewCounter(prometheus.CounterOpts{Name: name, Help: help})
		c = m.counter
	case CounterVec:
		m.countVec = prometheus.NewCounterVec(prometheus.CounterOpts{Name: name, Help: help}, labels)
		c = m.countVec
	}
	if err := s.registry.Register(c); err != nil {
		return err
	}
	s.metric[name] = m
	return nil
}

func (s *Prom) lookup(name string) (*metric, error) {
	s.Lock()
	defer s.Unlock()
	m, ok := s.metric[name]
	if !ok {
		return nil, ErrMetricNotExist
	}
	return m, nil
}

func (s *metric) asGauge(labels []string) (gauge, error) {
	switch s.kind {
	case Gauge:
		return s.gauge, nil
	case GaugeVec:
		g, err := s.gaugeVec.GetMetricWithLabelValues(labels...)
		if err != nil {
			return nil, ErrLabels
		}
		return g, nil
	}
	return nil, ErrOperationNotImplemented
}

func (s *metric) asCounter(labels []string) (counter, error) {
	switch s.kind {
	case Gauge, GaugeVec:
		g, err := s.asGauge(labels)
		if err != nil {
			return nil, err
		}
		return g, nil
	case Counter:
		return s.counter, nil
	case CounterVec:
		c, err := s.countVec.GetMetricWithLabelValues(labels...)
		if err != nil {
			return nil, ErrLabels
		}
		return c, nil
	}
	return nil, ErrOperationNotImplemented
}

// Add ...
func (s *Prom) Add(name string, v float64, labels ...string) error {
	m, err := s.lookup(name)
	if err != nil {
		return err
	}
	c, err := m.asCounter(labels)
	if err != nil {
		return err
	}
	if v < 0 && (m.kind == Counter || m.kind == CounterVec) {
		return ErrOperationNotImplemented
	}
	c.Add(v)
	return nil
}

// Inc ...
func (s *Prom) Inc(name string, labels ...string) error {
	m, err := s.lookup(name)
	if err != nil {
		return err
	}
	c, err := m.asCounter(labels)
	if err != nil {
		return err
	}
	c.Inc()
	return nil
}

// Set ...
func (s *Prom) Set(name string, v float64, labels ...string) error {
	m, err := s.lookup(name)
	if err != nil {
		return err
	}
	g, err := m.asGauge(labels)
	if err != nil {
		return err
	}
	g.Set(v)
	return nil
}

// Dec ...
func (s *Prom) Dec(name string, labels ...string) error {
	m, err := s.lookup(name)
	if err != nil {
		return err
	}
	g, err := m.asGauge(labels)
	if err != nil {
		return err
	}
	g.Dec()
	return nil
}
