// Package platform identifies the host OS flavour (macOS, Linux, WSL) for
// clipboard tool selection and file watching caveats.
package platform

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

// Platform represents the detected platform
type Platform string

const (
	PlatformMacOS   Platform = "macos"
	PlatformLinux   Platform = "linux"
	PlatformWSL1    Platform = "wsl1"
	PlatformWSL2    Platform = "wsl2"
	PlatformWindows Platform = "windows"
	PlatformUnknown Platform = "unknown"
)

var (
	detectOnce sync.Once
	detected   Platform
)

// Detect returns the current platform. The result is computed once.
func Detect() Platform {
	detectOnce.Do(func() {
		procVersion, _ := os.ReadFile("/proc/version")
		detected = classify(runtime.GOOS, os.Getenv("WSL_DISTRO_NAME"), string(procVersion), wsl2Marker())
	})
	return detected
}

// classify maps the raw signals to a Platform.
func classify(goos, wslDistro, procVersion string, wsl2Marker bool) Platform {
	switch goos {
	case "darwin":
		return PlatformMacOS
	case "windows":
		return PlatformWindows
	case "linux":
	default:
		return PlatformUnknown
	}

	isWSL := wslDistro != "" || strings.Contains(strings.ToLower(procVersion), "microsoft")
	if !isWSL {
		return PlatformLinux
	}
	// WSL2 kernels report "microsoft-standard"; WSL1 reports "Microsoft".
	switch {
	case strings.Contains(procVersion, "microsoft-standard"):
		return PlatformWSL2
	case strings.Contains(procVersion, "Microsoft"):
		return PlatformWSL1
	case wsl2Marker:
		return PlatformWSL2
	}
	return PlatformWSL1
}

func wsl2Marker() bool {
	for _, p := range []string{"/run/WSL", "/dev/vsock"} {
		if _, err := os.Stat(p); err == nil {
			return true
		}
	}
	return false
}

// IsWSL returns true if running in any WSL environment
func IsWSL() bool {
	p := Detect()
	return p == PlatformWSL1 || p == PlatformWSL2
}

// String returns a human-readable platform name
func (p Platform) String() string {
	switch p {
	case PlatformMacOS:
		return "macOS"
	case PlatformLinux:
		return "Linux"
	case PlatformWSL1:
		return "WSL1"
	case PlatformWSL2:
		return "WSL2"
	case PlatformWindows:
		return "Windows"
	default:
		return "Unknown"
	}
}

// WatchWarning explains why change notifications for path may not arrive
// (9p, NFS, CIFS and SSHFS mounts). It returns "" when watching should work.
func WatchWarning(path string) string {
	if runtime.GOOS != "linux" {
		return ""
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return ""
	}
	mounts, err := os.ReadFile("/proc/mounts")
	if err != nil {
		return ""
	}
	return warningFor(fsTypeFor(abs, string(mounts)))
}

// fsTypeFor returns the filesystem of the longest mount point containing
// abs, given /proc/mounts content.
func fsTypeFor(abs, mounts string) string {
	var mountPoint, fsType string
	for _, line := range strings.Split(mounts, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		mp := fields[1]
		if !within(abs, mp) || len(mp) <= len(mountPoint) {
			continue
		}
		mountPoint, fsType = mp, fields[2]
	}
	return fsType
}

func within(path, dir string) bool {
	if dir == "/" || path == dir {
		return true
	}
	return strings.HasPrefix(path, strings.TrimSuffix(dir, "/")+"/")
}

func warningFor(fsType string) string {
	const tail = "; data file changes may not be picked up, restart folio after editing."
	switch {
	case fsType == "9p":
		return "data file is on a 9p mount (WSL2 Windows filesystem)" + tail
	case fsType == "nfs" || fsType == "nfs4":
		return "data file is on an NFS mount" + tail
	case fsType == "cifs" || fsType == "smbfs":
		return "data file is on a CIFS/SMB mount" + tail
	case strings.HasPrefix(fsType, "fuse.sshfs"):
		return "data file is on an SSHFS mount" + tail
	}
	return ""
}
