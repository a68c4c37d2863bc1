package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/xuperchain/xstake/lib/metrics"
	httpserv "github.com/xuperchain/xstake/server/http"
)

type ServeCmd struct {
	BaseCmd
}

func GetServeCmd() *ServeCmd {
	serveCmdIns := new(ServeCmd)

	// 定义命令行参数变量
	var envCfgPath string
	var addr string

	serveCmdIns.cmd = &cobra.Command{
		Use:           "serve",
		Short:         "Start the http service.",
		Example:       "xstake serve --conf /home/rd/xstake/conf/env.yaml",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Serve(envCfgPath, addr)
		},
	}

	// 设置命令行参数并绑定变量
	serveCmdIns.cmd.Flags().StringVarP(&envCfgPath, "conf", "c", "",
		"engine environment config file path")
	serveCmdIns.cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides engine config")

	return serveCmdIns
}

// 启动服务, 阻塞直到收到退出信号
func Serve(envCfgPath, addr string) error {
	engine, err := openEngine(envCfgPath)
	if err != nil {
		return err
	}
	defer engine.Close()

	engCtx := engine.Context()
	if engCtx.EnvCfg.MetricSwitch {
		metrics.RegisterMetrics()
	}
	if addr == "" {
		addr = engCtx.EngCfg.HTTPAddr
	}

	serv, err := httpserv.NewHttpServ(engine, addr, engCtx.XLog)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(serv.Run)
	g.Go(func() error {
		<-gctx.Done()
		engCtx.XLog.Info("service exiting")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return serv.Exit(shutdownCtx)
	})
	return g.Wait()
}
