package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/balugcath/tcpecho/internal/pkg/config"
	"github.com/balugcath/tcpecho/internal/pkg/journal"
	"github.com/balugcath/tcpecho/internal/pkg/metric"
	"github.com/balugcath/tcpecho/internal/pkg/session"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type opts struct {
	configFile  string
	etcdAddress string
	etcdKey     string
	debugLevel  bool
	mode        string
	ip          string
	port        int
	message     string
	history     int
	save        bool
}

// ErrNoJournal ...
var ErrNoJournal = errors.New("history needs journal_conn in the config")

type recorder interface {
	Record(journal.Session) error
}

// hostLogger shows the flow's lines the way the app's log view did.
type hostLogger struct{}

func (hostLogger) Log(message string) {
	log.Infoln(message)
}

func main() {
	options := opts{}
	flag.StringVar(&options.configFile, "f", "", "config file")
	flag.StringVar(&options.etcdAddress, "e", "", "etcd address")
	flag.StringVar(&options.etcdKey, "k", "", "etcd key")
	flag.BoolVar(&options.debugLevel, "v", false, "set debug log level")
	flag.StringVar(&options.mode, "mode", "", "server or client")
	flag.StringVar(&options.ip, "ip", "", "server address, client mode")
	flag.IntVar(&options.port, "p", -1, "port, 0 binds an ephemeral port in server mode")
	flag.StringVar(&options.message, "m", "", "message, client mode")
	flag.IntVar(&options.history, "history", 0, "print the last n journal sessions and exit")
	flag.BoolVar(&options.save, "save", false, "write the effective config back to -f or etcd")
	flag.Parse()

	log.SetFormatter(&log.TextFormatter{DisableColors: true})
	log.SetLevel(log.InfoLevel)
	if options.debugLevel {
		log.SetLevel(log.DebugLevel)
	}

	if err := start(options); err != nil {
		log.Fatalln(err)
	}
}

// start returns instead of exiting so the deferred closes run.
func start(options opts) error {
	cfg, err := options.prepare()
	if err != nil {
		return err
	}

	if options.history > 0 {
		if cfg.JournalConn == "" {
			return ErrNoJournal
		}
		pg := journal.NewPG(cfg.JournalConn)
		defer pg.Close()
		return printHistory(pg, options.history)
	}

	var rec recorder
	if cfg.JournalConn != "" {
		pg := journal.NewPG(cfg.JournalConn)
		defer pg.Close()
		if err := pg.Init(); err != nil {
			log.Errorln(err)
		}
		rec = pg
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	mtrc := metric.NewMetric(cfg).Start(ctx)

	done := make(chan struct{})
	go func() {
		defer close(done)
		run(cfg, mtrc, rec)
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGTERM, syscall.SIGINT)
	select {
	case <-done:
	case sig := <-sigs:
		log.Infof("%s received, exit", sig)
	}
	return nil
}

// prepare loads the config, applies the flags and, with -save, writes the
// result back to where it was loaded from.
func (s opts) prepare() (*config.Config, error) {
	cfg, err := config.NewConfig(s.configFile, s.etcdAddress, s.etcdKey)
	if err != nil {
		return nil, err
	}
	if err := s.apply(cfg); err != nil {
		return nil, err
	}
	if s.save {
		if err := cfg.Save(); err != nil {
			return nil, errors.Wrap(err, "save config")
		}
		log.Infoln("config saved")
	}
	return cfg, nil
}

func (s opts) apply(cfg *config.Config) error {
	if s.mode != "" {
		cfg.Mode = s.mode
	}
	if s.ip != "" {
		cfg.IP = s.ip
	}
	if s.message != "" {
		cfg.Message = s.message
	}
	if s.port > 0xffff {
		return errors.Errorf("port %d out of range", s.port)
	}
	if s.port >= 0 {
		cfg.Port = uint16(s.port)
	}
	return cfg.Check()
}

func run(cfg *config.Config, mtrc *metric.Metric, rec recorder) {
	logger := hostLogger{}
	switch cfg.Mode {
	case config.ModeServer:
		logger.Log("Starting server.")
		if err := session.NewServer(cfg, logger, mtrc, rec).Start(cfg.Port); err != nil {
			logger.Log(err.Error())
		}
		logger.Log("Server terminated.")
	case config.ModeClient:
		logger.Log("Starting client.")
		if err := session.NewClient(cfg, logger, mtrc, rec).Start(cfg.IP, cfg.Port, cfg.Message); err != nil {
			logger.Log(err.Error())
		}
		logger.Log("Client terminated.")
	}
}

func printHistory(pg *journal.PG, n int) error {
	sessions, err := pg.Recent(n)
	if err != nil {
		return errors.Wrap(err, "history")
	}
	for _, v := range sessions {
		fmt.Printf("%s\t%s\t%s\tin=%d out=%d\t%s\n",
			v.Started.Format("2006-01-02 15:04:05"), v.Role, v.Peer, v.BytesIn, v.BytesOut, v.Err)
	}
	return nil
}
