package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/rest"

	"github.com/shehrozeikram/ERP-sub009/internal/telemetry"
	"github.com/shehrozeikram/ERP-sub009/services/workflow/internal/config"
	"github.com/shehrozeikram/ERP-sub009/services/workflow/internal/handler"
	"github.com/shehrozeikram/ERP-sub009/services/workflow/internal/svc"
)

var configFile = flag.String("f", "etc/workflow.yaml", "the config file")

func main() {
	flag.Parse()

	var c config.Config
	conf.MustLoad(*configFile, &c, conf.UseEnv())

	otelConf := telemetry.ApplyEnv(c.Otel)
	if otelConf.ServiceName == "" {
		otelConf.ServiceName = c.Name
	}
	provider, err := telemetry.NewProvider(context.Background(), otelConf)
	logx.Must(err)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			logx.Errorf("telemetry shutdown: %v", err)
		}
	}()

	server := rest.MustNewServer(c.RestConf)
	defer server.Stop()

	ctx := svc.NewServiceContext(c)
	defer func() {
		if err := ctx.Close(); err != nil {
			logx.Errorf("close service context: %v", err)
		}
	}()
	handler.RegisterHandlers(server, ctx)

	fmt.Printf("Starting workflow server at %s:%d...\n", c.Host, c.Port)
	server.Start()
}
