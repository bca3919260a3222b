package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"voip-billing-service/internal/conf"

	"github.com/gaoyong06/go-pkg/logger"
	"github.com/go-kratos/kratos/v2/config"
	"github.com/go-kratos/kratos/v2/config/file"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/robfig/cron/v3"
	_ "go.uber.org/automaxprocs"
)

var (
	flagconf string
	flagonce bool
)

func init() {
	flag.StringVar(&flagconf, "conf", "../../configs/config.yaml", "config path, eg: -conf config.yaml")
	flag.BoolVar(&flagonce, "once", false, "run the auto top-up batch once and exit")
}

func main() {
	flag.Parse()

	// 初始化配置
	c := config.New(
		config.WithSource(
			file.NewSource(flagconf),
		),
	)
	defer c.Close()

	if err := c.Load(); err != nil {
		panic(err)
	}

	var bc conf.Bootstrap
	if err := c.Scan(&bc); err != nil {
		panic(err)
	}

	// 初始化日志 (使用 go-pkg/logger)
	logConfig := &logger.Config{
		Level:         "info",
		Format:        "json",
		Output:        "stdout",
		FilePath:      "logs/voip-billing-cron.log",
		MaxSize:       100,
		MaxAge:        30,
		MaxBackups:    10,
		Compress:      true,
		EnableConsole: true,
	}

	loggerInstance := logger.NewLogger(logConfig)

	// 添加基本字段
	loggerInstance = log.With(loggerInstance,
		"ts", log.DefaultTimestamp,
		"caller", log.DefaultCaller,
		"service.name", "voip-billing-cron",
	)

	logHelper := log.NewHelper(loggerInstance)

	// 初始化应用
	app, cleanup, err := wireApp(&bc)
	if err != nil {
		panic(err)
	}
	defer cleanup()

	runTopup := func() {
		logHelper.Info("[CRON] Starting auto top-up batch...")
		ctx, cancel := context.WithTimeout(context.Background(), app.topupConf.RunTimeout)
		defer cancel()

		report, err := app.topupUsecase.RunAutoTopup(ctx)
		if err != nil {
			logHelper.Errorf("[CRON] Auto top-up batch failed: %v", err)
			return
		}
		if report.Skipped {
			logHelper.Info("[CRON] Auto top-up batch skipped: previous run still in progress")
			return
		}
		logHelper.Infof("[CRON] Auto top-up batch completed: scanned=%d, processed=%d, succeeded=%d, elapsed=%s",
			report.Scanned, report.Processed, report.Succeeded, report.Elapsed)
	}

	// 单次运行模式（运维手动补跑用）
	if flagonce {
		ctx, cancel := context.WithTimeout(context.Background(), app.topupConf.RunTimeout)
		defer cancel()

		report, err := app.topupUsecase.RunAutoTopup(ctx)
		if err != nil {
			logHelper.Errorf("Auto top-up batch failed: %v", err)
			os.Exit(1)
		}
		logHelper.Infof("Auto top-up batch finished: scanned=%d, processed=%d, succeeded=%d, skipped=%v",
			report.Scanned, report.Processed, report.Succeeded, report.Skipped)
		return
	}

	// 创建定时任务调度器（支持秒级调度）
	cronScheduler := cron.New(cron.WithSeconds())

	// 自动充值批处理
	_, err = cronScheduler.AddFunc(app.topupConf.Schedule, runTopup)
	if err != nil {
		logHelper.Errorf("Failed to add auto top-up job: %v", err)
		os.Exit(1)
	}

	// 启动定时任务
	cronScheduler.Start()
	logHelper.Info("========================================")
	logHelper.Info("Cron jobs started successfully")
	logHelper.Info("Scheduled jobs:")
	logHelper.Infof("  - Auto top-up batch: %s", app.topupConf.Schedule)
	logHelper.Info("========================================")

	// 优雅退出
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logHelper.Info("Shutting down gracefully...")

	// 停止定时任务
	ctx := cronScheduler.Stop()
	select {
	case <-ctx.Done():
		logHelper.Info("Cron jobs stopped gracefully")
	case <-time.After(5 * time.Second):
		logHelper.Info("Cron jobs forced to stop after timeout")
	}
}
