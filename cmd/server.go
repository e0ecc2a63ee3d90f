/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>

*/
package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mautops/fiche-gin/internal/api"
	"github.com/mautops/fiche-gin/internal/config"
	"github.com/mautops/fiche-gin/internal/container"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the API server",
	Long: `Start the Fiche Gin API server.
The server will listen on the configured host and port,
and provide REST API interfaces for fiche workflow management.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. 加载配置
		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// 2. 初始化容器
		ctr, err := container.NewContainer(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize container: %w", err)
		}
		defer ctr.Close()

		// 3. 初始化控制器
		controllers := &api.Controllers{
			Fiche: api.NewFicheController(ctr.FicheService()),
			Query: api.NewQueryController(ctr.QueryService(), ctr.StatisticsService()),
			Alert: api.NewAlertController(ctr.AlertService()),
		}

		// 4. 设置路由
		router := api.SetupRoutes(cfg, ctr.DB(), ctr.Hub(), controllers)

		// 5. 启动配置监听,告警阈值和日志级别支持热更新
		watcher := config.NewConfigWatcher(cfg, configPath)
		watcher.OnConfigChange(func(newCfg *config.Config) {
			ctr.AlertService().UpdateThresholds(newCfg.Alert)
			if level, err := logrus.ParseLevel(newCfg.Log.Level); err == nil {
				api.SetLoggerLevel(level)
			}
			log.Printf("Alert thresholds reloaded: stale after %d days, overdue after %d days",
				newCfg.Alert.StaleAfterDays, newCfg.Alert.OverdueAfterDays)
		})
		if err := watcher.Start(); err != nil {
			log.Printf("Config watcher disabled: %v", err)
		} else {
			defer watcher.Stop()
		}

		// 6. 启动服务器
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		srv := &http.Server{
			Addr:    addr,
			Handler: router,
		}

		// 启动服务器（在 goroutine 中）
		go func() {
			log.Printf("Server starting on %s", addr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("Failed to start server: %v", err)
			}
		}()

		// 等待中断信号
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		log.Println("Shutting down server...")

		// 优雅关闭
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Fatalf("Server forced to shutdown: %v", err)
		}

		log.Println("Server exited")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	// 服务器配置标志
	serverCmd.Flags().String("config", "", "Config file path (default: config.yaml)")
}
