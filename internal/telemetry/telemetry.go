package telemetry

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/chandlerburket/security-camera/internal/models"
)

const (
	defaultThermalPath  = "/sys/class/thermal/thermal_zone0/temp"
	defaultUptimePath   = "/proc/uptime"
	defaultWirelessPath = "/proc/net/wireless"
)

// Config overrides the system file locations, mainly for tests.
type Config struct {
	ThermalZonePath string
	UptimePath      string
	WirelessPath    string
}

// Snapshot is a point-in-time system reading attached to each heartbeat.
// String fields degrade to "Unknown" when a source is missing, so a heartbeat
// never fails because telemetry did.
type Snapshot struct {
	CPUTemp     string
	Uptime      string
	WifiDBm     *int
	WifiQuality string
	CPUPercent  float64
	MemoryMB    float64
}

// Collector reads host and process health for heartbeat reports.
type Collector struct {
	thermalPath  string
	uptimePath   string
	wirelessPath string

	proc *process.Process
}

// NewCollector builds a collector with defaults for unset paths. The process
// handle is optional; metrics are zero when it cannot be opened.
func NewCollector(cfg Config) *Collector {
	c := &Collector{
		thermalPath:  cfg.ThermalZonePath,
		uptimePath:   cfg.UptimePath,
		wirelessPath: cfg.WirelessPath,
	}
	if c.thermalPath == "" {
		c.thermalPath = defaultThermalPath
	}
	if c.uptimePath == "" {
		c.uptimePath = defaultUptimePath
	}
	if c.wirelessPath == "" {
		c.wirelessPath = defaultWirelessPath
	}

	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		c.proc = p
	}

	return c
}

// Collect never fails; unreadable sources produce their zero/Unknown value.
func (c *Collector) Collect() Snapshot {
	snap := Snapshot{
		CPUTemp:     c.cpuTemp(),
		Uptime:      c.uptime(),
		WifiQuality: "Unknown",
	}

	if dbm, ok := c.wifiSignal(); ok {
		snap.WifiDBm = &dbm
		snap.WifiQuality = models.WifiQualityForDBm(dbm)
	}

	if c.proc != nil {
		if cpu, err := c.proc.CPUPercent(); err == nil {
			snap.CPUPercent = cpu
		}
		if mem, err := c.proc.MemoryInfo(); err == nil {
			snap.MemoryMB = float64(mem.RSS) / (1024 * 1024)
		}
	}

	return snap
}

// cpuTemp reads the thermal zone in millidegrees and formats one decimal.
func (c *Collector) cpuTemp() string {
	raw, err := os.ReadFile(c.thermalPath)
	if err != nil {
		return "Unknown"
	}
	milli, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return "Unknown"
	}
	return fmt.Sprintf("%.1f°C", float64(milli)/1000.0)
}

// uptime formats the first /proc/uptime field as "3h 24m".
func (c *Collector) uptime() string {
	raw, err := os.ReadFile(c.uptimePath)
	if err != nil {
		return "Unknown"
	}
	fields := strings.Fields(string(raw))
	if len(fields) == 0 {
		return "Unknown"
	}
	seconds, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return "Unknown"
	}
	hours := int(seconds) / 3600
	minutes := (int(seconds) % 3600) / 60
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

// wifiSignal parses the level column of /proc/net/wireless for the first
// wireless interface. Wired-only hosts simply report no signal.
func (c *Collector) wifiSignal() (int, bool) {
	raw, err := os.ReadFile(c.wirelessPath)
	if err != nil {
		return 0, false
	}

	lines := strings.Split(string(raw), "\n")
	for i, line := range lines {
		// First two lines are column headers.
		if i < 2 {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 4 || !strings.HasSuffix(fields[0], ":") {
			continue
		}
		level := strings.TrimSuffix(fields[3], ".")
		dbm, err := strconv.Atoi(level)
		if err != nil {
			continue
		}
		return dbm, true
	}

	return 0, false
}
