package metric

import (
	"context"

	"github.com/balugcath/tcpecho/internal/pkg/config"
	"github.com/balugcath/tcpecho/pkg/promwrap"
	log "github.com/sirupsen/logrus"
)

const (
	tcpechoConnections   = "tcpecho_connections"
	tcpechoTransferBytes = "tcpecho_transfer_bytes"
	tcpechoErrors        = "tcpecho_errors"
)

const metricsPath = "/metrics"

// Metric ...
type Metric struct {
	*config.Config
	metric promwrap.Interface
	prom   *promwrap.Prom
}

// NewMetric ...
func NewMetric(cfg *config.Config) *Metric {
	s := &Metric{
		Config: cfg,
	}
	if cfg.PrometheusListenPort != "" {
		s.prom = promwrap.NewProm(cfg.PrometheusListenPort, metricsPath)
		s.register(s.prom)
	}
	return s
}

func (s *Metric) register(m promwrap.Interface) {
	s.metric = m
	for _, v := range []struct {
		kind   int
		name   string
		help   string
		labels []string
	}{
		{promwrap.GaugeVec, tcpechoConnections, "How many connections are open, partition by role", []string{"role"}},
		{promwrap.CounterVec, tcpechoTransferBytes, "How many bytes transferred, partition by role and direction", []string{"role", "direction"}},
		{promwrap.CounterVec, tcpechoErrors, "How many flows failed, partition by role and kind", []string{"role", "kind"}},
	} {
		if err := m.Register(v.kind, v.name, v.help, v.labels...); err != nil {
			log.Errorf("metric register %s %s", v.name, err)
		}
	}
}

// Start ...
func (s *Metric) Start(doneCtx context.Context) *Metric {
	if s.prom == nil {
		return s
	}
	go func() {
		log.Debugf("metric listen on %s", s.Config.PrometheusListenPort)
		if err := s.prom.Start(); err != nil {
			select {
			case <-doneCtx.Done():
			default:
				log.Errorf("metric listen %s", err)
			}
		}
	}()
	return s
}

// ClientConnInc ...
func (s *Metric) ClientConnInc(role string) {
	if s.metric != nil {
		s.check(s.metric.Inc(tcpechoConnections, role))
	}
}

// ClientConnDec ...
func (s *Metric) ClientConnDec(role string) {
	if s.metric != nil {
		s.check(s.metric.Dec(tcpechoConnections, role))
	}
}

// TransferBytes ...
func (s *Metric) TransferBytes(role, direction string, n int) {
	if s.metric != nil {
		s.check(s.metric.Add(tcpechoTransferBytes, float64(n), role, direction))
	}
}

// Failure ...
func (s *Metric) Failure(role, kind string) {
	if s.metric != nil {
		s.check(s.metric.Inc(tcpechoErrors, role, kind))
	}
}

func (s *Metric) check(err error) {
	if err != nil {
		log.Debugf("metric %s", err)
	}
}
