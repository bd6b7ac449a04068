package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"pingwatch/pkg/monitor"
	"pingwatch/pkg/probe"
	"pingwatch/pkg/server"
)

func main() {
	hostsFile := flag.String("hosts", "hosts.yaml", "path to the hosts file")
	listen := flag.String("listen", ":30500", "HTTP listen address")
	interval := flag.Duration("interval", monitor.DefaultInterval, "pause between probe passes")
	logDir := flag.String("log-dir", "", "write rotating logs to this directory instead of stderr")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	logger := setupLogging(*logDir, *debug)

	engine := monitor.New(probe.NewExecPinger(logger), logger, monitor.WithInterval(*interval))

	// A broken hosts file must not kill the daemon; it runs with an
	// empty topology until a reload succeeds.
	if count, err := engine.LoadTopology(*hostsFile); err != nil {
		logger.Errorf("Failed to load hosts: %v", err)
	} else {
		logger.Infof("Monitoring %d hosts", count)
	}

	// The hosts file's config section may override the interval and the
	// listen address, but explicit flags win.
	cfg := engine.Config()
	if !flagWasSet("interval") {
		if d, ok := configInterval(cfg); ok {
			engine.SetInterval(d)
		}
	}
	if !flagWasSet("listen") {
		if addr, ok := configListen(cfg); ok {
			*listen = addr
		}
	}

	engine.Start()

	srv := server.New(engine, logger, *listen)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("HTTP server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	logger.Info("pingwatchd is running. Press Ctrl+C to stop.")
	<-stop
	logger.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("HTTP shutdown: %v", err)
	}
	engine.Stop()
	logger.Info("Stopped.")
}

func configInterval(cfg map[string]any) (time.Duration, bool) {
	secs, ok := cfg["interval_seconds"].(int)
	if !ok || secs <= 0 {
		return 0, false
	}
	return time.Duration(secs) * time.Second, true
}

func configListen(cfg map[string]any) (string, bool) {
	addr, ok := cfg["listen"].(string)
	if !ok || addr == "" {
		return "", false
	}
	return addr, true
}

func flagWasSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func setupLogging(logDir string, debug bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if debug {
		logger.SetLevel(logrus.DebugLevel)
	}

	if logDir != "" {
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			logger.Fatalf("Failed to create log directory: %v", err)
		}
		logger.SetOutput(&lumberjack.Logger{
			Filename:   filepath.Join(logDir, "pingwatchd.log"),
			MaxSize:    10, // MB
			MaxBackups: 5,
			MaxAge:     14, // days
			Compress:   true,
		})
	}
	return logger
}
