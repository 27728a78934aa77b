package config

import (
	"context"
	"io/ioutil"
	"time"

	"github.com/balugcath/tcpecho/internal/pkg/socket"
	"github.com/pkg/errors"
	"go.etcd.io/etcd/clientv3"
	"gopkg.in/yaml.v2"
)

const (
	// ModeServer ...
	ModeServer = "server"
	// ModeClient ...
	ModeClient = "client"
)

var connTimeout = time.Second * 8

var (
	// ErrConfigNotFound ...
	ErrConfigNotFound = errors.New("error reading config")
	// ErrConfigNotDefined ...
	ErrConfigNotDefined = errors.New("config not defined")
)

// Config ...
type Config struct {
	etcdAddress string
	etcdKey     string
	configFile  string

	Mode                 string `yaml:"mode"`
	IP                   string `yaml:"ip,omitempty"`
	Port                 uint16 `yaml:"port"`
	Message              string `yaml:"message,omitempty"`
	Backlog              int    `yaml:"backlog"`
	BufferSize           int    `yaml:"buffer_size"`
	PrometheusListenPort string `yaml:"prometheus_listen_port,omitempty"`
	JournalConn          string `yaml:"journal_conn,omitempty"`
}

var config = Config{
	Mode:       ModeServer,
	Backlog:    socket.DefaultBacklog,
	BufferSize: socket.DefaultBufferSize,
}

// Default ...
func Default() *Config {
	s := config
	return &s
}

// NewConfig reads the config from a file or an etcd key. With neither the
// defaults are returned.
func NewConfig(configFile, etcdAddress, etcdKey string) (*Config, error) {
	s := config
	s.configFile = configFile
	s.etcdAddress = etcdAddress
	s.etcdKey = etcdKey

	if err := s.load(); err != nil && err != ErrConfigNotDefined {
		return nil, err
	}
	if err := s.Check(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Check ...
func (s *Config) Check() error {
	if s.Mode != ModeServer && s.Mode != ModeClient {
		return errors.Errorf("unknown mode %q", s.Mode)
	}
	if s.Backlog <= 0 {
		return errors.New("backlog must be positive")
	}
	if s.BufferSize < 2 {
		return errors.New("buffer size must be at least 2")
	}
	return nil
}

// Save ...
func (s *Config) Save() error {
	b, err := yaml.Marshal(s)
	if err != nil {
		return err
	}

	switch {
	case s.configFile != "":
		if err := ioutil.WriteFile(s.configFile, b, 0644); err != nil {
			return errors.Wrap(err, "write config")
		}
	case s.etcdAddress != "" && s.etcdKey != "":
		cli, err := clientv3.New(clientv3.Config{
			Endpoints: []string{s.etcdAddress},
		})
		if err != nil {
			return errors.Wrap(err, "etcd client")
		}
		defer cli.Close()
		ctx, cancel := context.WithTimeout(context.Background(), connTimeout)
		defer cancel()
		if _, err = cli.Put(ctx, s.etcdKey, string(b)); err != nil {
			return errors.Wrapf(err, "etcd put %s", s.etcdKey)
		}
	default:
		return ErrConfigNotDefined
	}
	return nil
}

func (s *Config) load() error {
	var (
		b   []byte
		err error
	)

	switch {
	case s.configFile != "":
		b, err = ioutil.ReadFile(s.configFile)
		if err != nil {
			return errors.Wrap(err, "read config")
		}

	case s.etcdAddress != "" && s.etcdKey != "":
		cli, err := clientv3.New(clientv3.Config{
			Endpoints: []string{s.etcdAddress},
		})
		if err != nil {
			return errors.Wrap(err, "etcd client")
		}
		defer cli.Close()

		ctx, cancel := context.WithTimeout(context.Background(), connTimeout)
		defer cancel()
		resp, err := cli.Get(ctx, s.etcdKey)
		if err != nil {
			return errors.Wrapf(err, "etcd get %s", s.etcdKey)
		}

		if len(resp.Kvs) == 0 {
			return ErrConfigNotFound
		}
		b = resp.Kvs[0].Value

	default:
		return ErrConfigNotDefined
	}

	if err := yaml.Unmarshal(b, s); err != nil {
		return errors.Wrap(err, "parse config")
	}
	return nil
}
