// main.go

package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jacl-coder/WordArena-Server/config"
	"github.com/jacl-coder/WordArena-Server/internal/battle"
	"github.com/jacl-coder/WordArena-Server/internal/feed"
	"github.com/jacl-coder/WordArena-Server/internal/gateway"
	"github.com/jacl-coder/WordArena-Server/pkg/db"
)

func main() {
	// 解析命令行参数
	configPath := flag.String("config", "config/config.yaml", "配置文件路径")
	serviceType := flag.String("service", "all", "服务类型 (battle, feed, gateway, all)")
	flag.Parse()

	// 加载配置
	if err := config.LoadConfig(*configPath); err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 初始化数据库连接
	if err := db.InitPostgres(); err != nil {
		log.Fatalf("初始化PostgreSQL失败: %v", err)
	}
	defer db.Close()

	// 初始化Redis连接
	if err := db.InitRedis(); err != nil {
		log.Fatalf("初始化Redis失败: %v", err)
	}
	defer db.CloseRedis()

	// 根据服务类型启动不同的服务
	switch *serviceType {
	case "battle":
		startBattleServer()
	case "feed":
		startFeedServer()
	case "gateway":
		startGatewayServer()
	case "all":
		startAllServices()
	default:
		log.Fatalf("未知的服务类型: %s", *serviceType)
	}

	// 等待中断信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("接收到关闭信号，正在关闭服务器...")

	log.Println("服务器已安全关闭")
}

// startBattleServer 启动战斗结算服务
func startBattleServer() {
	battleService := battle.NewBattleService(&config.GlobalConfig)

	if err := battleService.Start(); err != nil {
		log.Fatalf("启动战斗结算服务失败: %v", err)
	}

	log.Println("战斗结算服务已启动")
}

// startFeedServer 启动实况推送服务
func startFeedServer() {
	feedService := feed.NewFeedService(&config.GlobalConfig)

	if err := feedService.Start(); err != nil {
		log.Fatalf("启动实况推送服务失败: %v", err)
	}

	log.Println("实况推送服务已启动")
}

// startGatewayServer 启动网关服务器
func startGatewayServer() {
	gatewayServer := gateway.NewGateway(&config.GlobalConfig)

	if err := gatewayServer.Start(); err != nil {
		log.Fatalf("启动网关服务失败: %v", err)
	}

	log.Println("网关服务已启动")
}

// startAllServices 启动所有服务
func startAllServices() {
	// 创建战斗结算服务
	battleService := battle.NewBattleService(&config.GlobalConfig)

	if err := battleService.Start(); err != nil {
		log.Fatalf("启动战斗结算服务失败: %v", err)
	}

	// 创建实况推送服务
	feedService := feed.NewFeedService(&config.GlobalConfig)

	if err := feedService.Start(); err != nil {
		log.Fatalf("启动实况推送服务失败: %v", err)
	}

	// 创建网关服务
	gatewayServer := gateway.NewGateway(&config.GlobalConfig)

	if err := gatewayServer.Start(); err != nil {
		log.Fatalf("启动网关服务失败: %v", err)
	}

	log.Println("所有服务已启动")
}
