package metric

import (
	"io/ioutil"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/balugcath/tcpecho/internal/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type m struct {
	r map[string]float64
}

func key(name string, labels []string) string {
	return name + "{" + strings.Join(labels, ",") + "}"
}

func (s *m) Register(_ int, name, _ string, _ ...string) error { return nil }
func (s *m) Add(name string, v float64, labels ...string) error {
	s.r[key(name, labels)] += v
	return nil
}
func (s *m) Set(name string, v float64, labels ...string) error {
	s.r[key(name, labels)] = v
	return nil
}
func (s *m) Inc(name string, labels ...string) error {
	s.r[key(name, labels)]++
	return nil
}
func (s *m) Dec(name string, labels ...string) error {
	s.r[key(name, labels)]--
	return nil
}

func TestMetric_Record(t *testing.T) {
	tests := []struct {
		name string
		run  func(*Metric)
		want map[string]float64
	}{
		{
			name: "test 1",
			run: func(s *Metric) {
				s.ClientConnInc("server")
				s.ClientConnInc("server")
				s.ClientConnDec("server")
			},
			want: map[string]float64{"tcpecho_connections{server}": 1},
		},
		{
			name: "test 2",
			run: func(s *Metric) {
				s.TransferBytes("client", "send", 5)
				s.TransferBytes("client", "send", 6)
				s.Failure("client", "connect failed")
			},
			want: map[string]float64{
				"tcpecho_transfer_bytes{client,send}":   11,
				"tcpecho_errors{client,connect failed}": 1,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &m{r: make(map[string]float64)}
			s := NewMetric(config.Default())
			s.register(fake)
			tt.run(s)
			assert.Equal(t, tt.want, fake.r)
		})
	}
}

func TestMetric_Disabled(t *testing.T) {
	s := NewMetric(config.Default())
	assert.Nil(t, s.prom)
	assert.NotPanics(t, func() {
		s.ClientConnInc("server")
		s.ClientConnDec("server")
		s.TransferBytes("server", "recv", 1)
		s.Failure("server", "bind failed")
	})
}

func TestMetric_Export(t *testing.T) {
	cfg := config.Default()
	cfg.PrometheusListenPort = ":0"
	s := NewMetric(cfg)
	require.NotNil(t, s.prom)

	s.ClientConnInc("server")
	s.TransferBytes("server", "recv", 1)
	s.TransferBytes("server", "send", 1)
	s.Failure("server", "accept failed")

	ts := httptest.NewServer(s.prom.Handler())
	defer ts.Close()
	resp, err := ts.Client().Get(ts.URL)
	require.NoError(t, err)
	b, err := ioutil.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)

	for _, v := range []string{
		`tcpecho_connections{role="server"} 1`,
		`tcpecho_transfer_bytes{direction="recv",role="server"} 1`,
		`tcpecho_transfer_bytes{direction="send",role="server"} 1`,
		`tcpecho_errors{kind="accept failed",role="server"} 1`,
	} {
		assert.Contains(t, string(b), v)
	}
}
