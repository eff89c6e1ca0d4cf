package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iabetor/tingwen/internal/config"
	"github.com/iabetor/tingwen/internal/logger"
	"github.com/iabetor/tingwen/internal/service"
	"github.com/iabetor/tingwen/internal/web"
)

func main() {
	configPath := flag.String("config", "configs/tingwen.yaml", "配置文件路径")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 凭据检查必须在任何网络请求之前完成
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "配置无效: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(logger.Config{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	conv, err := service.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "创建转换服务失败: %v\n", err)
		os.Exit(1)
	}
	defer conv.Close()

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: web.NewServer(conv, cfg.Server.MaxUploadMB),
	}

	// 监听系统信号，优雅关闭
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Infof("[main] 收到信号 %v，正在关闭...", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}()

	logger.Infof("[main] TingWen 启动，监听 %s，引擎=%s", cfg.Server.Addr, cfg.TTS.Engine)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		fmt.Fprintf(os.Stderr, "HTTP 服务出错: %v\n", err)
		os.Exit(1)
	}

	logger.Info("[main] TingWen 已停止")
}
