package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bezmoradi/gestured/internal/api"
	"github.com/bezmoradi/gestured/internal/audio"
	"github.com/bezmoradi/gestured/internal/bridge"
	"github.com/bezmoradi/gestured/internal/config"
	"github.com/bezmoradi/gestured/internal/executor"
	"github.com/bezmoradi/gestured/internal/gesture"
	"github.com/bezmoradi/gestured/internal/handwave"
	"github.com/bezmoradi/gestured/internal/metrics"
	"github.com/bezmoradi/gestured/internal/power"
	"github.com/bezmoradi/gestured/internal/sensor"
	"github.com/bezmoradi/gestured/internal/terminal"
	"github.com/bezmoradi/gestured/internal/touchkeys"
)

const ledsRoot = "/sys/class/leds"

// Pulser shows the ambient display.
type Pulser interface {
	Pulse()
}

type Daemon struct {
	configPath      string
	loader          *config.Loader
	dispatcher      *gesture.Dispatcher
	detector        *handwave.Detector
	proximity       *sensor.Proximity
	unsubscribe     func()
	touchManager    *touchkeys.Manager
	keyboard        *executor.VirtualKeyboard
	sessionBus      *executor.SessionBus
	wakeLock        *power.WakeLock
	vibrator        *audio.Vibrator
	pulser          Pulser
	bridgeClient    *bridge.Client
	apiServer       *api.Server
	metricsManager  *metrics.MetricsManager
	terminalControl *terminal.Control
	statsFormatter  *metrics.StatsFormatter
	audioReady      bool
	startTime       time.Time
	cancel          context.CancelFunc
}

// NewDaemon loads its configuration from configPath.
func NewDaemon(configPath string) *Daemon {
	return &Daemon{
		configPath:     configPath,
		statsFormatter: metrics.NewStatsFormatter(),
	}
}

// feedback answers the dispatcher's haptics questions from the live config
// and plays a tone in place of the vibration motor.
type feedback struct {
	settings *config.Loader
	vibrator *audio.Vibrator
}

func (f feedback) HapticFeedbackEnabled() bool {
	return f.vibrator != nil && f.settings.HapticFeedbackEnabled()
}

func (f feedback) Vibrate(d time.Duration) {
	if f.vibrator != nil {
		f.vibrator.Vibrate(d)
	}
}

func (d *Daemon) Initialize() error {
	d.loader = config.NewLoader(d.configPath)
	cfg, err := d.loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load config %s: %w", d.configPath, err)
	}

	metricsDir, err := config.GetMetricsDir()
	if err != nil {
		return fmt.Errorf("failed to get metrics directory: %w", err)
	}
	d.metricsManager, err = metrics.NewMetricsManager(metricsDir)
	if err != nil {
		return fmt.Errorf("failed to initialize metrics manager: %w", err)
	}

	d.terminalControl = terminal.NewControl()

	// Initialize PortAudio; without it haptics fall back to the system beep
	var tone *audio.TonePlayer
	if err := audio.Initialize(); err != nil {
		log.Printf("[GESTURE] PortAudio unavailable: %v", err)
	} else {
		d.audioReady = true
		tone = audio.NewTonePlayer()
	}
	d.vibrator = audio.NewVibrator(tone)
	d.pulser = audio.NewPulser("gestured")

	var inhibitor power.Inhibitor
	if logind, err := power.NewLogindInhibitor(); err != nil {
		log.Printf("[GESTURE] logind unavailable, wake locks are no-ops: %v", err)
	} else {
		inhibitor = logind
	}
	d.wakeLock = power.NewWakeLock("gestured", inhibitor)

	d.proximity = d.openProximity(cfg)

	if cfg.BridgeURL != "" {
		d.bridgeClient = bridge.NewClient(cfg.BridgeURL, d, d.handleConnection)
	}

	exec, err := d.buildExecutor(cfg)
	if err != nil {
		return err
	}
	d.assemble(exec, d.proximity, d.wakeLock)

	if cfg.TouchDevice != "" {
		d.touchManager = touchkeys.NewManager(cfg.TouchDevice, gesture.SourceUnknown, d)
	}
	if cfg.ListenAddr != "" {
		d.apiServer = api.NewServer(cfg.ListenAddr, d.dispatcher)
	}

	d.loader.OnChange(d.restore)
	d.restore(cfg)
	return nil
}

func (d *Daemon) openProximity(cfg *config.Config) *sensor.Proximity {
	if cfg.ProximityDevice != "" {
		p, err := sensor.OpenDevice(cfg.ProximityDevice)
		if err == nil {
			return p
		}
		log.Printf("[PROX] %v", err)
	}
	if cfg.BridgeURL != "" {
		// The remote runtime supplies samples; max range arrives with them.
		return sensor.New(0)
	}
	log.Printf("[PROX] No proximity sensor, gestures deliver immediately")
	return sensor.Unavailable()
}

func (d *Daemon) buildExecutor(cfg *config.Config) (gesture.Executor, error) {
	launch, err := cfg.LaunchTargets()
	if err != nil {
		return nil, err
	}
	ec := executor.Config{
		Launcher: executor.NewCommandLauncher(""),
		WakeLock: d.wakeLock,
		Launch:   launch,
	}

	if kb, err := executor.NewVirtualKeyboard("gestured virtual keys"); err != nil {
		log.Printf("[EXEC] Virtual keyboard unavailable: %v", err)
	} else {
		d.keyboard = kb
		ec.Keyboard = kb
	}

	if bus, err := executor.NewSessionBus(); err != nil {
		log.Printf("[EXEC] Session bus unavailable: %v", err)
	} else {
		d.sessionBus = bus
		ec.Media = bus
		ec.Screen = bus
	}

	torchPath := cfg.TorchPath
	if torchPath == "" {
		torchPath, err = executor.FindTorch(ledsRoot)
		if err != nil {
			log.Printf("[EXEC] %v", err)
		}
	}
	if torchPath != "" {
		ec.Torch = executor.NewSysfsTorch(torchPath)
	}

	var exec gesture.Executor = executor.New(ec)
	if d.bridgeClient != nil {
		exec = executor.Multi{exec, d.bridgeClient}
	}
	return executor.Timed{Next: exec}, nil
}

// assemble builds the dispatcher and wave detector around exec.
func (d *Daemon) assemble(exec gesture.Executor, prox *sensor.Proximity, wake gesture.WakeLock) {
	d.proximity = prox
	d.dispatcher = gesture.NewDispatcher(exec, gesture.Options{
		Setup:     d.loader,
		Haptics:   feedback{settings: d.loader, vibrator: d.vibrator},
		Proximity: prox,
		WakeLock:  wake,
	})
	d.dispatcher.SetOutcomeCallback(d.recordOutcome)

	d.detector = handwave.NewDetector(d.loader.HandwaveEnabled, d.pulse)
	d.unsubscribe = prox.Subscribe(func(s sensor.Sample) {
		d.detector.OnSample(s.Distance, s.MaxRange, s.Timestamp)
	})
}

// restore applies the stored gesture settings, at startup and whenever the
// config file changes.
func (d *Daemon) restore(cfg *config.Config) {
	if err := d.dispatcher.UpdateMappingInts(cfg.ScanCodes, cfg.Actions); err != nil {
		log.Printf("[CONFIG] %v", err)
	} else {
		log.Printf("[CONFIG] Mapping restored (%d gestures)", len(d.dispatcher.Mapping()))
	}

	if cfg.HandwaveEnabled && d.proximity.HasSensor() {
		d.detector.Enable()
	} else {
		d.detector.Disable()
	}
}

func (d *Daemon) Run() error {
	if d.touchManager != nil {
		if err := d.touchManager.Start(); err != nil {
			return fmt.Errorf("failed to open touch device: %w", err)
		}
		go d.touchManager.Listen()
	}

	if err := d.loader.Watch(); err != nil {
		log.Printf("[CONFIG] Hot reload disabled: %v", err)
	} else {
		go d.watchConfigErrors()
	}

	var ctx context.Context
	ctx, d.cancel = context.WithCancel(context.Background())
	if d.bridgeClient != nil {
		go d.bridgeClient.Run(ctx)
	}

	if d.apiServer != nil {
		if err := d.apiServer.Start(); err != nil {
			return fmt.Errorf("failed to start control API: %w", err)
		}
	}

	// Setup graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	d.startTime = time.Now()
	d.printBanner()

	<-c
	fmt.Println("\n🛑 Shutting down...")
	d.Cleanup()
	return nil
}

func (d *Daemon) printBanner() {
	fmt.Println("✋ gestured - Screen-off Gesture Daemon Started")
	fmt.Printf("📋 Config: %s\n", d.loader.Path())
	if d.touchManager != nil {
		fmt.Printf("👆 Gestures from %s\n", d.touchManager.DevicePath())
	}
	if d.bridgeClient != nil {
		fmt.Printf("🔌 Bridge: %s\n", d.loader.Config().BridgeURL)
	}
	if d.apiServer != nil {
		fmt.Printf("🌐 Control API on http://%s\n", d.apiServer.Addr())
	}
	if !d.loader.SetupComplete() {
		fmt.Println("⚠️  setup_complete is false, gestures are ignored until it is set")
	}
	fmt.Println("🛑 Press Ctrl+C to exit")
	fmt.Println()
}

func (d *Daemon) watchConfigErrors() {
	for err := range d.loader.Errors() {
		log.Printf("[CONFIG] %v", err)
	}
}

func (d *Daemon) Cleanup() {
	if d.cancel != nil {
		d.cancel()
	}

	if d.touchManager != nil {
		d.touchManager.Stop()
	}

	if d.apiServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		d.apiServer.Shutdown(ctx)
		cancel()
	}

	if d.bridgeClient != nil {
		d.bridgeClient.Close()
	}

	if d.loader != nil {
		d.loader.Close()
	}

	if d.unsubscribe != nil {
		d.unsubscribe()
	}
	if d.proximity != nil {
		d.proximity.Close()
	}

	if d.keyboard != nil {
		d.keyboard.Close()
	}
	if d.sessionBus != nil {
		d.sessionBus.Close()
	}
	if d.wakeLock != nil {
		d.wakeLock.Release()
	}

	if d.audioReady {
		audio.Terminate()
	}
}

// OnKeyEvent implements touchkeys.EventHandler and bridge.Handler
func (d *Daemon) OnKeyEvent(ev gesture.Event) bool {
	return d.dispatcher.Handle(ev)
}

// OnProximity implements bridge.Handler
func (d *Daemon) OnProximity(distance, maxRange float64, timestamp int64) {
	if maxRange > 0 && maxRange != d.proximity.MaxRange() {
		d.proximity.SetMaxRange(maxRange)
	}
	d.proximity.Feed(sensor.Sample{Distance: distance, MaxRange: maxRange, Timestamp: timestamp})
}

// OnMapping implements bridge.Handler
func (d *Daemon) OnMapping(scanCodes, actions []int) {
	if err := d.dispatcher.UpdateMappingInts(scanCodes, actions); err != nil {
		log.Printf("[BRIDGE] %v", err)
	}
}

func (d *Daemon) handleConnection(connected bool) {
	log.Printf("[BRIDGE] connected=%v", connected)
}

func (d *Daemon) pulse() {
	log.Printf("[WAVE] Hand wave, pulsing display")
	if d.pulser != nil {
		d.pulser.Pulse()
	}
	if d.bridgeClient != nil {
		d.bridgeClient.SendPulse()
	}
	if err := d.metricsManager.RecordPulse(time.Now()); err != nil {
		log.Printf("[WAVE] Failed to record pulse: %v", err)
	}
}

func (d *Daemon) recordOutcome(o gesture.Outcome) {
	today, err := d.metricsManager.RecordOutcome(o)
	if err != nil {
		log.Printf("[GESTURE] Failed to record metrics: %v", err)
		today = nil
	}

	lines := d.statsFormatter.FormatOutcomeLines(o, today)
	if !d.startTime.IsZero() {
		lines = append(lines, "⏱️  "+d.statsFormatter.FormatUptime(d.startTime))
	}
	d.terminalControl.UpdateInPlace(lines)
}
