// FilePath: internal/sensors/gpu.go
package sensors

import (
	"os/exec"
	"strconv"
	"strings"

	nuts "github.com/vaudience/go-nuts"
)

func runNvidiaSmiList() ([]byte, error) {
	return exec.Command("nvidia-smi", "-L").Output()
}

func runNvidiaSmiTempQuery() ([]byte, error) {
	return exec.Command("nvidia-smi",
		"--query-gpu=temperature.gpu",
		"--format=csv,noheader,nounits",
	).Output()
}

// ProbeGPU checks GPU availability exactly once per process. A missing binary
// or empty `nvidia-smi -L` output disables GPU sampling for the lifetime of
// the agent.
func (p *Probe) ProbeGPU() bool {
	if p.gpuAvailable != -1 {
		return p.gpuAvailable == 1
	}
	out, err := p.listGPUs()
	if err == nil && strings.TrimSpace(string(out)) != "" {
		p.gpuAvailable = 1
		return true
	}
	p.gpuAvailable = 0
	return false
}

// GPUAvailable reports the result of the one-time availability probe.
func (p *Probe) GPUAvailable() bool {
	return p.ProbeGPU()
}

// ReadGPU returns the GPU temperature, re-sampling via nvidia-smi only when
// the cache is older than the configured interval. Subprocess failures leave
// the cache untouched so the last value (initially 0.0) is returned.
func (p *Probe) ReadGPU(nowMS int64) float32 {
	if !p.ProbeGPU() {
		return 0.0
	}
	if nowMS-p.gpuCacheMS < p.cacheInterval.Milliseconds() && p.gpuCacheMS != 0 {
		return p.gpuLastTemp
	}
	out, err := p.queryGPUTemp()
	if err != nil {
		nuts.L.Debugf("[Sensors] nvidia-smi query failed: %v", err)
		return p.gpuLastTemp
	}
	temp, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 32)
	if err != nil {
		nuts.L.Debugf("[Sensors] nvidia-smi output not a temperature: %q", string(out))
		return p.gpuLastTemp
	}
	p.gpuLastTemp = float32(temp)
	p.gpuCacheMS = nowMS
	return p.gpuLastTemp
}
