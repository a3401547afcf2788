// FilePath: internal/sensors/sensors.go
package sensors

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/host"
	nuts "github.com/vaudience/go-nuts"
)

// Sample holds one scheduler tick worth of temperatures in degrees Celsius.
// The zero value 0.0 means "not available".
type Sample struct {
	CPUTemp float32
	GPUTemp float32
}

// Paths caches the hwmon input files discovered at startup. Empty fields are
// permitted and make the corresponding reads return 0.0.
type Paths struct {
	CPU     string
	Coolant string
}

// Source is the capability set the pipeline samples each tick. The production
// implementation is Probe (hwmon + nvidia-smi); tests substitute a mock.
type Source interface {
	ReadCPU() float32
	ReadGPU(nowMS int64) float32
	ReadCoolant() float32
	GPUAvailable() bool
}

// Probe reads CPU and coolant temperatures from the kernel hwmon tree and GPU
// temperature via nvidia-smi, throttled by a process-local cache.
type Probe struct {
	hwmonRoot     string
	paths         Paths
	cacheInterval time.Duration

	useHostSensors bool // gopsutil fallback when no hwmon package sensor exists

	gpuAvailable int // -1 unknown, 0 no, 1 yes
	gpuCacheMS   int64
	gpuLastTemp  float32

	listGPUs     func() ([]byte, error)
	queryGPUTemp func() ([]byte, error)
}

// NewProbe creates a probe rooted at hwmonRoot. Call Discover and ProbeGPU
// before the first tick.
func NewProbe(hwmonRoot string, gpuCacheInterval time.Duration) *Probe {
	return &Probe{
		hwmonRoot:     hwmonRoot,
		cacheInterval: gpuCacheInterval,
		gpuAvailable:  -1,
		listGPUs:      runNvidiaSmiList,
		queryGPUTemp:  runNvidiaSmiTempQuery,
	}
}

// Discover enumerates the immediate subdirectories of the hwmon root and
// captures the first "Package id 0" and "Coolant" labelled inputs. It fails
// silently: absent roots or labels simply leave the paths empty.
func (p *Probe) Discover() Paths {
	entries, err := os.ReadDir(p.hwmonRoot)
	if err != nil {
		nuts.L.Warnf("[Sensors] hwmon root %s not readable, CPU/coolant reads disabled", p.hwmonRoot)
		p.enableHostFallback()
		return p.paths
	}

	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		dir := filepath.Join(p.hwmonRoot, entry.Name())
		for i := 1; i <= 9; i++ {
			label, err := os.ReadFile(filepath.Join(dir, "temp"+strconv.Itoa(i)+"_label"))
			if err != nil {
				continue
			}
			text := string(label)
			input := filepath.Join(dir, "temp"+strconv.Itoa(i)+"_input")
			if p.paths.CPU == "" && strings.Contains(text, "Package id 0") {
				p.paths.CPU = input
				nuts.L.Infof("[Sensors] CPU temperature input: %s", input)
			}
			if p.paths.Coolant == "" && (strings.Contains(text, "Coolant") || strings.Contains(text, "coolant")) {
				p.paths.Coolant = input
				nuts.L.Infof("[Sensors] Coolant temperature input: %s", input)
			}
		}
		if p.paths.CPU != "" && p.paths.Coolant != "" {
			break
		}
	}

	if p.paths.CPU == "" {
		nuts.L.Warnf("[Sensors] No 'Package id 0' sensor under %s, trying host sensor fallback", p.hwmonRoot)
		p.enableHostFallback()
	}
	return p.paths
}

// Paths returns the discovered sensor paths.
func (p *Probe) Paths() Paths {
	return p.paths
}

// ReadCPU reads the cached CPU input file. Returns 0.0 on any I/O or parse
// failure; no error is propagated.
func (p *Probe) ReadCPU() float32 {
	if p.paths.CPU == "" {
		if p.useHostSensors {
			return readHostPackageTemp()
		}
		return 0.0
	}
	return readTempInput(p.paths.CPU)
}

// ReadCoolant reads the cached coolant input file, 0.0 when absent.
func (p *Probe) ReadCoolant() float32 {
	if p.paths.Coolant == "" {
		return 0.0
	}
	return readTempInput(p.paths.Coolant)
}

func (p *Probe) enableHostFallback() {
	if _, err := host.SensorsTemperatures(); err == nil {
		p.useHostSensors = true
	}
}

// readTempInput parses a single integer from an hwmon input file. Values above
// 200 are milli-degrees Celsius.
func readTempInput(path string) float32 {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0.0
	}
	t, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return 0.0
	}
	if t > 200 {
		return float32(t) / 1000.0
	}
	return float32(t)
}

// readHostPackageTemp asks gopsutil for a CPU package temperature. Used only
// when hwmon label discovery found nothing.
func readHostPackageTemp() float32 {
	stats, err := host.SensorsTemperatures()
	if err != nil {
		return 0.0
	}
	for _, stat := range stats {
		key := strings.ToLower(stat.SensorKey)
		if strings.Contains(key, "package_id_0") || strings.Contains(key, "tctl") {
			return float32(stat.Temperature)
		}
	}
	return 0.0
}
