package hostfunc

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// MountMode defines the permission level for a mount point.
type MountMode int

const (
	// MountReadOnly allows opening existing environments read-only.
	MountReadOnly MountMode = iota
	// MountReadWrite allows writing to existing environments.
	MountReadWrite
	// MountReadWriteCreate also allows creating environments and copies.
	MountReadWriteCreate
)

func (m MountMode) String() string {
	switch m {
	case MountReadOnly:
		return "ro"
	case MountReadWrite:
		return "rw"
	case MountReadWriteCreate:
		return "rwc"
	}
	return "unknown"
}

// ParseMountMode accepts "ro", "rw" and "rwc".
func ParseMountMode(s string) (MountMode, error) {
	switch s {
	case "ro", "":
		return MountReadOnly, nil
	case "rw":
		return MountReadWrite, nil
	case "rwc":
		return MountReadWriteCreate, nil
	}
	return 0, errors.New("invalid mount mode: " + s)
}

// Mount maps a virtual path to a host path with specific permissions.
type Mount struct {
	VirtualPath string    // Path as seen by sandboxed code (e.g., "/data")
	HostPath    string    // Actual path on host filesystem
	Mode        MountMode // Permission level
}

// ParseMount parses "virtual:host[:mode]".
func ParseMount(spec string) (Mount, error) {
	parts := strings.Split(spec, ":")
	if len(parts) < 2 || len(parts) > 3 || parts[0] == "" || parts[1] == "" {
		return Mount{}, errors.New("invalid mount: " + spec + " (want virtual:host[:ro|rw|rwc])")
	}
	m := Mount{VirtualPath: parts[0], HostPath: parts[1]}
	if len(parts) == 3 {
		mode, err := ParseMountMode(parts[2])
		if err != nil {
			return Mount{}, err
		}
		m.Mode = mode
	}
	return m, nil
}

type access int

const (
	accessRead access = iota
	accessWrite
	accessCreate
)

// Paths confines the file paths a script hands to the engine to a set of
// mounts. A Paths with no mounts refuses every path.
type Paths struct {
	mounts []Mount
}

func NewPaths(mounts ...Mount) *Paths {
	normalized := make([]Mount, 0, len(mounts))
	for _, m := range mounts {
		vp := "/" + strings.Trim(m.VirtualPath, "/")
		hp, err := filepath.Abs(m.HostPath)
		if err != nil {
			continue
		}
		normalized = append(normalized, Mount{
			VirtualPath: vp,
			HostPath:    hp,
			Mode:        m.Mode,
		})
	}
	return &Paths{mounts: normalized}
}

func (p *Paths) Mounts() []Mount {
	out := make([]Mount, len(p.mounts))
	copy(out, p.mounts)
	return out
}

// resolve maps a virtual path to a host path, checking the mount mode
// against the access needed. accessWrite on a missing path is promoted to
// accessCreate.
func (p *Paths) resolve(virtualPath string, need access) (string, error) {
	vp := filepath.Clean("/" + strings.TrimPrefix(virtualPath, "/"))

	for _, m := range p.mounts {
		if vp != m.VirtualPath && !strings.HasPrefix(vp, m.VirtualPath+"/") {
			continue
		}
		rel := strings.TrimPrefix(vp, m.VirtualPath)
		hostPath, err := filepath.Abs(filepath.Join(m.HostPath, rel))
		if err != nil {
			return "", errors.New("invalid path")
		}
		if hostPath != m.HostPath && !strings.HasPrefix(hostPath, m.HostPath+string(filepath.Separator)) {
			return "", errors.New("permission denied: path escape attempt")
		}

		if need == accessWrite {
			if _, err := os.Stat(hostPath); errors.Is(err, os.ErrNotExist) {
				need = accessCreate
			}
		}
		switch {
		case need >= accessWrite && m.Mode == MountReadOnly:
			return "", errors.New("permission denied: read-only mount")
		case need == accessCreate && m.Mode != MountReadWriteCreate:
			return "", errors.New("permission denied: mount does not allow create")
		}
		return hostPath, nil
	}

	return "", errors.New("permission denied: path not in any mount")
}

// virtual maps a host path back to the path the script sees. Paths outside
// every mount are returned unchanged.
func (p *Paths) virtual(hostPath string) string {
	for _, m := range p.mounts {
		if hostPath == m.HostPath {
			return m.VirtualPath
		}
		if strings.HasPrefix(hostPath, m.HostPath+string(filepath.Separator)) {
			rel := strings.TrimPrefix(hostPath, m.HostPath)
			return filepath.ToSlash(filepath.Join(m.VirtualPath, rel))
		}
	}
	return hostPath
}
