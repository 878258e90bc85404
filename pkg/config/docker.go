package config

import (
	"os"
	"slices"
	"sync"
)

// dockerHostGateway is the name Docker Desktop resolves to the host machine.
const dockerHostGateway = "host.docker.internal"

var loopbackHosts = []string{"localhost", "127.0.0.1", "::1"}

var (
	dockerOnce   sync.Once
	inDocker     bool
	dockerMarker = "/.dockerenv"
)

// IsRunningInDocker reports whether the process runs inside a Docker
// container, detected by the /.dockerenv marker. The result is cached.
func IsRunningInDocker() bool {
	dockerOnce.Do(func() {
		_, err := os.Stat(dockerMarker)
		inDocker = err == nil
	})
	return inDocker
}

// ResolveHostForDocker maps loopback hosts to host.docker.internal when
// running in a container, so a Redis started on the host stays reachable.
// Any other host is returned unchanged.
func ResolveHostForDocker(host string) string {
	return resolveHost(host, IsRunningInDocker())
}

func resolveHost(host string, docker bool) string {
	if docker && slices.Contains(loopbackHosts, host) {
		return dockerHostGateway
	}
	return host
}
