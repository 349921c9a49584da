package platform

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		goos        string
		distro      string
		procVersion string
		marker      bool
		want        Platform
	}{
		{"darwin", "darwin", "", "", false, PlatformMacOS},
		{"windows", "windows", "", "", false, PlatformWindows},
		{"freebsd", "freebsd", "", "", false, PlatformUnknown},
		{"linux", "linux", "", "Linux version 6.8.0-45-generic", false, PlatformLinux},
		{"wsl2 kernel", "linux", "", "Linux version 5.15.153.1-microsoft-standard-WSL2", false, PlatformWSL2},
		{"wsl1 kernel", "linux", "", "Linux version 4.4.0-19041-Microsoft", false, PlatformWSL1},
		{"distro env with marker", "linux", "Ubuntu", "", true, PlatformWSL2},
		{"distro env without marker", "linux", "Ubuntu", "", false, PlatformWSL1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(tt.goos, tt.distro, tt.procVersion, tt.marker))
		})
	}
}

func TestDetectIsStable(t *testing.T) {
	p := Detect()
	assert.NotEmpty(t, p)
	assert.Equal(t, p, Detect())
	if runtime.GOOS == "darwin" {
		assert.Equal(t, PlatformMacOS, p)
	}
}

func TestPlatformString(t *testing.T) {
	assert.Equal(t, "macOS", PlatformMacOS.String())
	assert.Equal(t, "WSL2", PlatformWSL2.String())
	assert.Equal(t, "Unknown", Platform("plan9").String())
}

const sampleMounts = `/dev/sda1 / ext4 rw,relatime 0 0
drvfs /mnt/c 9p rw,noatime 0 0
server:/export /srv/nfs nfs4 rw 0 0
user@host:/ /home/me/remote fuse.sshfs rw 0 0
`

func TestFsTypeFor(t *testing.T) {
	assert.Equal(t, "ext4", fsTypeFor("/home/me/portfolio.toml", sampleMounts))
	assert.Equal(t, "9p", fsTypeFor("/mnt/c/Users/me/portfolio.toml", sampleMounts))
	assert.Equal(t, "ext4", fsTypeFor("/mnt/cdrom/x", sampleMounts))
	assert.Equal(t, "nfs4", fsTypeFor("/srv/nfs/data.yaml", sampleMounts))
	assert.Equal(t, "fuse.sshfs", fsTypeFor("/home/me/remote/p.toml", sampleMounts))
}

func TestWarningFor(t *testing.T) {
	assert.Empty(t, warningFor("ext4"))
	assert.Contains(t, warningFor("9p"), "WSL2")
	assert.Contains(t, warningFor("nfs"), "NFS")
	assert.Contains(t, warningFor("fuse.sshfs"), "SSHFS")
}
