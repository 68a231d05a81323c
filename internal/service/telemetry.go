package service

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"rover_control/internal/clock"
	"rover_control/internal/logger"
	"rover_control/internal/models"

	"go.opentelemetry.io/otel/metric"
)

// ----------- Simulation constants -----------
const (
	TempMinC          = 45.0
	TempMaxC          = 50.0
	LatencyMinMs      = 12
	LatencyMaxMs      = 28
	initialTempC      = 65.0
	initialLatencyMs  = 14
	initialBatteryPct = 78
	hoursAtInitialPct = 2.4 // runtime estimate at initialBatteryPct

	DefaultSensorTick  = 2 * time.Second
	DefaultBatteryTick = 60 * time.Second
	DefaultLogTick     = 3 * time.Second
	DefaultLogCapacity = 1000

	timestampLayout = "15:04:05"
)

var errTelemetryRunning = errors.New("telemetry already running")

// Rand is the random source behind the simulated sensor noise.
// *math/rand.Rand satisfies it.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// TelemetryConfig tunes the timer cadences and log retention.
type TelemetryConfig struct {
	SensorTick   time.Duration
	BatteryTick  time.Duration
	LogTick      time.Duration
	LogCapacity  int  // 0 keeps every entry
	SeedBootLog  bool // prepend the boot sequence lines
	StartBattery int
	StartTempC   float64
	StartLatency int
}

// DefaultTelemetryConfig returns the production cadences.
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		SensorTick:   DefaultSensorTick,
		BatteryTick:  DefaultBatteryTick,
		LogTick:      DefaultLogTick,
		LogCapacity:  DefaultLogCapacity,
		SeedBootLog:  true,
		StartBattery: initialBatteryPct,
		StartTempC:   initialTempC,
		StartLatency: initialLatencyMs,
	}
}

type logTemplate struct {
	level   models.LogLevel
	message string
}

var bootLog = []logTemplate{
	{models.LevelOK, "System boot complete"},
	{models.LevelOK, "Motor 1 initialized"},
	{models.LevelOK, "Motor 2 initialized"},
	{models.LevelInfo, "IMU calibration started"},
	{models.LevelOK, "IMU calibration complete"},
	{models.LevelInfo, "RTK GPS fix acquired"},
	{models.LevelOK, "Camera module online"},
	{models.LevelInfo, "WiFi signal strength: -42 dBm"},
	{models.LevelOK, "Soil sensor array ready"},
	{models.LevelWarn, "Pi 5 temperature elevated: 65°C"},
	{models.LevelInfo, "Battery at 78% - est. 2.4h remaining"},
	{models.LevelOK, "ESP32 co-processor handshake complete"},
	{models.LevelInfo, "WebRTC signaling server connected"},
	{models.LevelOK, "All systems nominal - ready for operation"},
}

// logCatalog is cycled by index, one entry per log tick.
var logCatalog = []logTemplate{
	{models.LevelInfo, "Telemetry packet sent (seq: 4821)"},
	{models.LevelOK, "Heartbeat acknowledged by base station"},
	{models.LevelInfo, "Soil moisture reading: 34.2%"},
	{models.LevelWarn, "Motor 2 current spike: 1.2A"},
	{models.LevelOK, "Motor 2 current normalized"},
	{models.LevelInfo, "GPS accuracy: 0.02m (RTK fixed)"},
	{models.LevelOK, "Image captured and queued for upload"},
	{models.LevelInfo, "Battery discharge rate: 0.8%/min"},
}

// TelemetryService simulates rover health: a soft-reflected temperature walk,
// resampled latency, a draining battery and a cyclic diagnostics log.
type TelemetryService struct {
	mu         sync.RWMutex
	cfg        TelemetryConfig
	sched      clock.Scheduler
	rnd        Rand
	snapshot   models.TelemetrySnapshot
	logs       *LogBuffer
	catalogIdx int
	timers     *clock.Group
	log        *logger.Logger

	appended metric.Int64Counter
}

// NewTelemetryService builds an engine; timers start with Start or Run.
func NewTelemetryService(cfg TelemetryConfig, clk clock.Clock, sched clock.Scheduler, rnd Rand, log *logger.Logger) *TelemetryService {
	cfg = withDefaults(cfg)
	s := &TelemetryService{
		cfg:   cfg,
		sched: sched,
		rnd:   rnd,
		logs:  NewLogBuffer(cfg.LogCapacity),
		log:   log,
		snapshot: models.TelemetrySnapshot{
			TemperatureC:   cfg.StartTempC,
			LatencyMs:      cfg.StartLatency,
			BatteryPct:     cfg.StartBattery,
			EstimatedHours: estimateHours(cfg.StartBattery),
			UpdatedAt:      clk.Now(),
		},
		appended: counter("rover.log.appended", "Diagnostics log entries appended"),
	}
	if cfg.SeedBootLog {
		now := clk.Now()
		for _, tpl := range bootLog {
			s.appendLog(now, tpl)
		}
	}
	return s
}

func withDefaults(cfg TelemetryConfig) TelemetryConfig {
	def := DefaultTelemetryConfig()
	if cfg.SensorTick <= 0 {
		cfg.SensorTick = def.SensorTick
	}
	if cfg.BatteryTick <= 0 {
		cfg.BatteryTick = def.BatteryTick
	}
	if cfg.LogTick <= 0 {
		cfg.LogTick = def.LogTick
	}
	if cfg.StartBattery <= 0 || cfg.StartBattery > 100 {
		cfg.StartBattery = def.StartBattery
	}
	if cfg.StartTempC == 0 {
		cfg.StartTempC = def.StartTempC
	}
	if cfg.StartLatency <= 0 {
		cfg.StartLatency = def.StartLatency
	}
	return cfg
}

// Start registers the sensor, battery and log timers.
func (s *TelemetryService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timers != nil && !s.timers.Closed() {
		return errTelemetryRunning
	}
	g := &clock.Group{}
	g.Add(s.sched.Every(s.cfg.SensorTick, s.tickSensors))
	g.Add(s.sched.Every(s.cfg.BatteryTick, s.tickBattery))
	g.Add(s.sched.Every(s.cfg.LogTick, s.tickLog))
	s.timers = g
	if s.log != nil {
		s.log.Infow("telemetry_started", "sensor_tick", s.cfg.SensorTick, "battery_tick", s.cfg.BatteryTick, "log_tick", s.cfg.LogTick)
	}
	return nil
}

// Stop cancels all timers. No tick runs after Stop returns.
func (s *TelemetryService) Stop() {
	s.mu.RLock()
	g := s.timers
	s.mu.RUnlock()
	if g == nil {
		return
	}
	// timers take s.mu, so close without holding it
	g.Close()
	if s.log != nil {
		s.log.Infow("telemetry_stopped")
	}
}

// Run starts the timers and stops them when ctx is canceled.
func (s *TelemetryService) Run(ctx context.Context) {
	if err := s.Start(); err != nil {
		if s.log != nil {
			s.log.Errorw("telemetry_start_failed", "err", err)
		}
		return
	}
	<-ctx.Done()
	s.Stop()
}

// Snapshot returns the latest readings.
func (s *TelemetryService) Snapshot() models.TelemetrySnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Logs returns entries appended after seq; limit > 0 keeps only the newest.
func (s *TelemetryService) Logs(after uint64, limit int) []models.LogEntry {
	return s.logs.After(after, limit)
}

// LogStats returns the retained entry count and the newest sequence number.
func (s *TelemetryService) LogStats() (retained int, lastSeq uint64) {
	return s.logs.Len(), s.logs.LastSeq()
}

func (s *TelemetryService) tickSensors(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.TemperatureC = round1(nextTemperature(s.snapshot.TemperatureC, s.rnd))
	s.snapshot.LatencyMs = nextLatency(s.rnd)
	s.snapshot.UpdatedAt = now
}

func (s *TelemetryService) tickBattery(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.BatteryPct = nextBattery(s.snapshot.BatteryPct)
	s.snapshot.EstimatedHours = estimateHours(s.snapshot.BatteryPct)
	s.snapshot.UpdatedAt = now
}

func (s *TelemetryService) tickLog(now time.Time) {
	s.mu.Lock()
	tpl := logCatalog[s.catalogIdx%len(logCatalog)]
	s.catalogIdx++
	s.mu.Unlock()
	s.appendLog(now, tpl)
}

func (s *TelemetryService) appendLog(now time.Time, tpl logTemplate) {
	s.logs.Append(models.LogEntry{
		Timestamp: now.Format(timestampLayout),
		Time:      now,
		Level:     tpl.level,
		Message:   tpl.message,
	})
	inc(s.appended, "level", string(tpl.level))
}

// nextTemperature takes one step of the bounded walk: a uniform fluctuation in
// (-1, 1), then an out-of-band value is pulled back inside by a random amount
// so the walk never sticks to a bound. The result is not rounded.
func nextTemperature(prev float64, rnd Rand) float64 {
	sign := 1.0
	if rnd.Float64() < 0.5 {
		sign = -1.0
	}
	next := prev + sign*rnd.Float64()
	if next < TempMinC {
		next = TempMinC + rnd.Float64()
	}
	if next > TempMaxC {
		next = TempMaxC - rnd.Float64()
	}
	return next
}

// nextLatency draws a fresh latency in [LatencyMinMs, LatencyMaxMs].
func nextLatency(rnd Rand) int {
	return LatencyMinMs + rnd.Intn(LatencyMaxMs-LatencyMinMs+1)
}

// nextBattery drains one percentage point, floored at zero.
func nextBattery(pct int) int {
	if pct <= 0 {
		return 0
	}
	return pct - 1
}

func estimateHours(pct int) float64 {
	return round1(float64(pct) / initialBatteryPct * hoursAtInitialPct)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
