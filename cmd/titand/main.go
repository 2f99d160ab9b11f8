package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"
	"net/http"
	"os"

	"github.com/golang/glog"

	"github.com/robotalks/titan.go/pkg/config"
	fx "github.com/robotalks/titan.go/pkg/framework"
	"github.com/robotalks/titan.go/pkg/kernel"
	"github.com/robotalks/titan.go/pkg/metrics"
)

var (
	configPath = os.Getenv(config.EnvConfigPath)
)

func init() {
	flag.StringVar(&configPath, "config", configPath, "Configuration file.")
}

func serveMetrics(k *kernel.Kernel) fx.Runnable {
	reg := metrics.NewRegistry(k.Metrics, metrics.NewAreaCollector(k.SHM, config.AreaName))
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(reg))
	srv := &http.Server{Addr: k.Config.MetricsAddr, Handler: mux}
	return fx.NamedRun("metrics", fx.RunnableFunc(func(ctx context.Context) error {
		glog.Infof("metrics on %s", srv.Addr)
		return fx.RunWithContextCloser(ctx, srv, srv.ListenAndServe)
	}))
}

func main() {
	flag.Parse()
	defer glog.Flush()

	if configPath == "" {
		glog.Exitf("-config or %s required", config.EnvConfigPath)
	}
	conf, err := config.Load(configPath)
	if err != nil {
		glog.Exitf("load %s: %v", configPath, err)
	}

	k := kernel.New(conf)
	k.ClientID = config.ClientID("titand")
	if err = k.Setup(); err != nil {
		glog.Exitf("setup: %v", err)
	}

	runner := fx.NewRunner().HandleSignals()
	runner.Go(k.Runnables()...)
	if conf.MetricsAddr != "" {
		runner.Go(serveMetrics(k))
	}
	if err = runner.Wait(); err != nil {
		glog.Exitf("stopped: %v", err)
	}
	glog.Info("stopped")
}
