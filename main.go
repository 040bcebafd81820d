package main

import (
	"context"

	"github.com/hatcher/voyage/focus/app"
	"github.com/hatcher/voyage/pkg/cfg"
	"github.com/hatcher/voyage/pkg/logs"
)

func main() {
	var conf app.Config
	if err := cfg.LoadConfig("etc", "config", "yaml", &conf); err != nil {
		logs.Fatalf("加载配置失败: %v", err)
	}
	if err := logs.InitLogger(conf.Log, "voyage.log"); err != nil {
		logs.Fatalf("初始化日志失败: %v", err)
	}

	a, err := app.New(context.Background(), conf)
	if err != nil {
		logs.Fatalf("应用启动失败: %v", err)
	}
	defer a.Shutdown()
	a.Run()
}
