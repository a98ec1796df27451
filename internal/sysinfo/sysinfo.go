// Package sysinfo probes the host environment a watcher runs in.
package sysinfo

import (
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/net"
)

// DiskInfo describes the filesystem backing one probed path.
type DiskInfo struct {
	Total       uint64  `json:"total"`
	Used        uint64  `json:"used"`
	UsedPercent float64 `json:"used_percent"`
}

// SystemInfo describes the host at probe time.
type SystemInfo struct {
	Hostname          string              `json:"hostname,omitempty"`
	OS                string              `json:"os,omitempty"`
	BootTime          uint64              `json:"boot_time,omitempty"`
	CPUCount          int                 `json:"cpu_count,omitempty"`
	CPUCountLogical   int                 `json:"cpu_count_logical,omitempty"`
	MemoryTotal       uint64              `json:"memory_total,omitempty"`
	MemoryUsedPercent float64             `json:"memory_used_percent,omitempty"`
	Disk              map[string]DiskInfo `json:"disk,omitempty"`
	NetworkBytesSent  uint64              `json:"network_bytes_sent,omitempty"`
	NetworkBytesRecv  uint64              `json:"network_bytes_recv,omitempty"`
}

// Probe collects best-effort information about the host and the
// filesystems backing the given paths.
//
// Values that cannot be read are left zero; probing never fails as a
// whole.
func Probe(diskPaths []string) SystemInfo {
	info := SystemInfo{Disk: make(map[string]DiskInfo)}

	if hostInfo, err := host.Info(); err == nil {
		info.Hostname = hostInfo.Hostname
		info.OS = hostInfo.OS
		info.BootTime = hostInfo.BootTime
	}

	if cpuCount, err := cpu.Counts(false); err == nil {
		info.CPUCount = cpuCount
	}
	if cpuCountLogical, err := cpu.Counts(true); err == nil {
		info.CPUCountLogical = cpuCountLogical
	}

	if virtualMem, err := mem.VirtualMemory(); err == nil {
		info.MemoryTotal = virtualMem.Total
		info.MemoryUsedPercent = virtualMem.UsedPercent
	}

	for _, path := range diskPaths {
		if usage, err := disk.Usage(path); err == nil {
			info.Disk[path] = DiskInfo{
				Total:       usage.Total,
				Used:        usage.Used,
				UsedPercent: usage.UsedPercent,
			}
		}
	}

	// The first entry of the non-per-NIC form aggregates all interfaces.
	if counters, err := net.IOCounters(false); err == nil && len(counters) > 0 {
		info.NetworkBytesSent = counters[0].BytesSent
		info.NetworkBytesRecv = counters[0].BytesRecv
	}

	return info
}
