package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/bezmoradi/gestured/internal/app"
	"github.com/bezmoradi/gestured/internal/config"
	"github.com/bezmoradi/gestured/internal/metrics"
	"github.com/bezmoradi/gestured/internal/touchkeys"
	"github.com/bezmoradi/gestured/internal/version"
)

func main() {
	var (
		configPath  = flag.String("config", "", "Path to config file (.json, .toml or .yaml)")
		showConfig  = flag.Bool("show-config", false, "Show current configuration location and contents")
		initConfig  = flag.Bool("init-config", false, "Write a default config file if none exists")
		showVersion = flag.Bool("version", false, "Show current version")
		showStats   = flag.Bool("stats", false, "Show gesture usage statistics")
		resetStats  = flag.Bool("reset-stats", false, "Clear all usage statistics")
		listDevices = flag.Bool("list-devices", false, "List input devices that report gesture keys or proximity")
	)
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if *showVersion {
		handleShowVersion()
		return
	}

	path := resolveConfigPath(*configPath)

	if *showConfig {
		handleShowConfig(path)
		return
	}

	if *initConfig {
		handleInitConfig(path)
		return
	}

	if *showStats {
		handleShowStats()
		return
	}

	if *resetStats {
		handleResetStats()
		return
	}

	if *listDevices {
		handleListDevices()
		return
	}

	if isLatest, newVersion := version.CheckVersion(); !isLatest {
		fmt.Printf("⚠️  gestured %v is available (installed: %v). %v\n", newVersion, version.VERSION, version.UPDATE_MESSAGE)
		fmt.Println("💡 go install github.com/bezmoradi/gestured/cmd/gestured@main")
		fmt.Println()
	}

	daemon := app.NewDaemon(path)
	if err := daemon.Initialize(); err != nil {
		log.Fatalf("Failed to initialize daemon: %v", err)
	}

	if err := daemon.Run(); err != nil {
		daemon.Cleanup()
		log.Fatalf("Daemon error: %v", err)
	}
}

func resolveConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	path, err := config.GetConfigPath()
	if err != nil {
		fmt.Printf("❌ Error getting config path: %v\n", err)
		os.Exit(1)
	}
	return path
}

func handleShowConfig(configPath string) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		fmt.Printf("📝 Config file does not exist yet (%s)\n", configPath)
		fmt.Println("💡 Run with --init-config to create one")
		return
	}

	fmt.Printf("📁 Config file location: %s\n", configPath)
	fmt.Println()
	fmt.Println("📋 Config file contents:")

	content, err := os.ReadFile(configPath)
	if err != nil {
		fmt.Printf("❌ Error reading config file: %v\n", err)
		return
	}
	fmt.Println(string(content))

	if _, err := config.LoadConfig(configPath); err != nil {
		fmt.Printf("⚠️  Warning: %v\n", err)
	}
}

func handleInitConfig(configPath string) {
	if _, err := os.Stat(configPath); err == nil {
		fmt.Printf("📁 Config already exists at %s\n", configPath)
		return
	}
	if err := config.SaveConfig(config.DefaultConfig(), configPath); err != nil {
		fmt.Printf("❌ Error writing config: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✅ Default config written to %s\n", configPath)
	fmt.Println("💡 Set setup_complete to true once the gesture device is configured")
}

func handleShowVersion() {
	fmt.Printf("gestured (screen-off gestures) %s\n", version.VERSION)
}

func openMetrics() *metrics.MetricsManager {
	metricsDir, err := config.GetMetricsDir()
	if err != nil {
		fmt.Printf("❌ Error getting metrics directory: %v\n", err)
		os.Exit(1)
	}

	metricsManager, err := metrics.NewMetricsManager(metricsDir)
	if err != nil {
		fmt.Printf("❌ Error initializing metrics: %v\n", err)
		os.Exit(1)
	}
	return metricsManager
}

func handleShowStats() {
	metricsManager := openMetrics()

	totalMetrics, err := metricsManager.GetTotalMetrics()
	if err != nil {
		fmt.Printf("❌ Error getting total metrics: %v\n", err)
		os.Exit(1)
	}

	recentDays, err := metricsManager.GetRecentDays(7)
	if err != nil {
		fmt.Printf("⚠️  Warning: Failed to get recent metrics: %v\n", err)
	}

	formatter := metrics.NewStatsFormatter()

	fmt.Println(formatter.FormatTotalStats(totalMetrics))
	fmt.Println()

	if breakdown := formatter.FormatActionBreakdown(totalMetrics); breakdown != "" {
		fmt.Println(breakdown)
		fmt.Println()
	}

	if len(recentDays) > 0 {
		fmt.Println(formatter.FormatWeeklyStats(recentDays))
		fmt.Println()
	}
}

func handleResetStats() {
	if err := openMetrics().ClearAllMetrics(); err != nil {
		fmt.Printf("❌ Error clearing metrics: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("🗑️  All usage statistics have been cleared")
}

func handleListDevices() {
	devices, err := touchkeys.ListDevices()
	if err != nil {
		fmt.Printf("❌ Error listing devices: %v\n", err)
		os.Exit(1)
	}
	if len(devices) == 0 {
		fmt.Println("🔍 No gesture or proximity devices found (are you in the input group?)")
		return
	}

	for _, dev := range devices {
		fmt.Printf("🖐️  %s  %s\n", dev.Path, dev.Name)
		if len(dev.GestureKeys) > 0 {
			fmt.Printf("   gesture scan codes: %v  → touch_device\n", dev.GestureKeys)
		}
		if dev.Proximity {
			fmt.Println("   distance axis  → proximity_device")
		}
	}
}
