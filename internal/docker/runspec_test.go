package docker

import (
	"testing"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/webui-deploy/internal/model"
)

// TestIsBundled verifies the case-insensitive substring check that selects
// the bundled variant.
func TestIsBundled(t *testing.T) {
	tests := []struct {
		tag  string
		want bool
	}{
		{"ollama", true},
		{"OLLAMA", true},
		{"Ollama", true},
		{"git-ollama-v1", true},
		{"main", false},
		{"cuda", false},
		{"latest", false},
		{"", false},
		{"olla", false},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			assert.Equal(t, tt.want, IsBundled(tt.tag))
		})
	}
}

// TestImageRef covers literal rendering and rejection of malformed input.
func TestImageRef(t *testing.T) {
	tests := []struct {
		name     string
		image    string
		tag      string
		expected string
		hasError bool
	}{
		{"registry image", "ghcr.io/open-webui/open-webui", "ollama", "ghcr.io/open-webui/open-webui:ollama", false},
		{"docker hub short name", "nginx", "latest", "nginx:latest", false},
		{"docker hub org", "ollama/ollama", "0.5.7", "ollama/ollama:0.5.7", false},
		{"fully qualified hub name", "docker.io/library/redis", "7", "docker.io/library/redis:7", false},
		{"fully qualified hub org", "docker.io/someuser/app", "main", "docker.io/someuser/app:main", false},
		{"registry with port", "localhost:5000/open-webui", "dev", "localhost:5000/open-webui:dev", false},
		{"uppercase name", "GHCR.io/Open/WebUI", "main", "", true},
		{"name with tag", "ghcr.io/open-webui/open-webui:main", "ollama", "", true},
		{"name with digest", "nginx@sha256:" + sixtyFourHex, "latest", "", true},
		{"bad tag", "nginx", "has space", "", true},
		{"empty name", "", "main", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ImageRef(tt.image, tt.tag)
			if tt.hasError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

const sixtyFourHex = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

// TestBuildRunSpec_Bundled is end-to-end scenario 1: the "ollama" tag mounts
// the model volume and requests all GPUs, and omits the host-gateway alias.
func TestBuildRunSpec_Bundled(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.ImageTag = "ollama"

	spec, err := BuildRunSpec(cfg)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"run", "-d",
		"-p", "3000:8080",
		"-v", "open-webui-data:/app/backend/data",
		"--name", "open-webui",
		"--restart", "always",
		"-v", "ollama-data:/root/.ollama",
		"--gpus", "all",
		"ghcr.io/open-webui/open-webui:ollama",
	}, spec.Args())

	assert.Empty(t, spec.Variant.ExtraHosts)
	require.Len(t, spec.Variant.DeviceRequests, 1)
	assert.Equal(t, -1, spec.Variant.DeviceRequests[0].Count)
	assert.Equal(t, [][]string{{"gpu"}}, spec.Variant.DeviceRequests[0].Capabilities)
	assert.NotContains(t, spec.Args(), "--add-host="+HostGatewayAlias)
}

// TestBuildRunSpec_ImageNameKeptAsConfigured verifies that a fully
// qualified Docker Hub name is passed to the runtime unchanged.
func TestBuildRunSpec_ImageNameKeptAsConfigured(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.ImageName = "docker.io/someuser/app"
	cfg.ImageTag = "main"

	spec, err := BuildRunSpec(cfg)
	require.NoError(t, err)

	assert.Equal(t, "docker.io/someuser/app:main", spec.Image)
	args := spec.Args()
	assert.Equal(t, "docker.io/someuser/app:main", args[len(args)-1])
}

// TestBuildRunSpec_Standalone is end-to-end scenario 2: the "main" tag adds
// the host-gateway alias and has neither the model volume nor GPUs.
func TestBuildRunSpec_Standalone(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.ImageTag = "main"

	spec, err := BuildRunSpec(cfg)
	require.NoError(t, err)

	args := spec.Args()
	assert.Equal(t, []string{
		"run", "-d",
		"-p", "3000:8080",
		"-v", "open-webui-data:/app/backend/data",
		"--name", "open-webui",
		"--restart", "always",
		"--add-host=host.docker.internal:host-gateway",
		"ghcr.io/open-webui/open-webui:main",
	}, args)

	assert.NotContains(t, args, "ollama-data:/root/.ollama")
	assert.NotContains(t, args, "--gpus")
	assert.NotContains(t, args, "all")
	assert.Empty(t, spec.Variant.Mounts)
	assert.Empty(t, spec.Variant.DeviceRequests)
}

// TestBuildRunSpec_VariantInverse checks the variant property over several
// tags: bundled tags have model volume + GPUs and no alias; the rest the inverse.
func TestBuildRunSpec_VariantInverse(t *testing.T) {
	for _, tag := range []string{"ollama", "OLLAMA", "dev-ollama", "main", "cuda", "v0.6.5"} {
		t.Run(tag, func(t *testing.T) {
			cfg := model.DefaultConfig()
			cfg.ImageTag = tag

			spec, err := BuildRunSpec(cfg)
			require.NoError(t, err)
			args := spec.Args()

			hasModel := containsPair(args, "-v", "ollama-data:/root/.ollama")
			hasGPU := containsPair(args, "--gpus", "all")
			hasAlias := containsToken(args, "--add-host=host.docker.internal:host-gateway")

			if IsBundled(tag) {
				assert.True(t, hasModel && hasGPU, "bundled tag must mount models and request GPUs")
				assert.False(t, hasAlias)
			} else {
				assert.False(t, hasModel || hasGPU, "standalone tag must not mount models or request GPUs")
				assert.True(t, hasAlias)
			}
			assert.Equal(t, "ghcr.io/open-webui/open-webui:"+tag, args[len(args)-1], "image reference comes last")
		})
	}
}

// TestBuildRunSpec_CustomConfig verifies that every config value flows into
// the rendered arguments.
func TestBuildRunSpec_CustomConfig(t *testing.T) {
	cfg := model.Config{
		Runtime:       "podman",
		ImageName:     "registry.example.com/team/webui",
		ImageTag:      "ollama-cuda",
		ContainerName: "webui-test",
		HostPort:      13000,
		ContainerPort: 9090,
		DataVolume:    "wd",
		ModelVolume:   "md",
	}

	spec, err := BuildRunSpec(cfg)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"run", "-d",
		"-p", "13000:9090",
		"-v", "wd:/app/backend/data",
		"--name", "webui-test",
		"--restart", "always",
		"-v", "md:/root/.ollama",
		"--gpus", "all",
		"registry.example.com/team/webui:ollama-cuda",
	}, spec.Args())
}

// TestBuildRunSpec_InvalidImage verifies that reference errors surface.
func TestBuildRunSpec_InvalidImage(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.ImageName = "Not A Valid Image"

	_, err := BuildRunSpec(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid image name")
}

// TestRunSpecArgs_Formatting covers the renderers for options the default
// deployment does not use.
func TestRunSpecArgs_Formatting(t *testing.T) {
	spec := &RunSpec{
		Image: "nginx:latest",
		Ports: []nat.PortMapping{
			{Port: nat.Port("53/udp"), Binding: nat.PortBinding{HostIP: "127.0.0.1", HostPort: "5353"}},
		},
		Mounts: []mount.Mount{
			{Type: mount.TypeVolume, Source: "cfg", Target: "/etc/nginx", ReadOnly: true},
		},
		RestartPolicy: container.RestartPolicy{Name: container.RestartPolicyOnFailure, MaximumRetryCount: 3},
		Variant: VariantOptions{
			DeviceRequests: []container.DeviceRequest{
				{Count: 2, Capabilities: [][]string{{"gpu"}}},
				{DeviceIDs: []string{"0", "1"}, Capabilities: [][]string{{"gpu"}}},
			},
		},
	}

	assert.Equal(t, []string{
		"run",
		"-p", "127.0.0.1:5353:53/udp",
		"-v", "cfg:/etc/nginx:ro",
		"--restart", "on-failure:3",
		"--gpus", "2",
		"--gpus", "device=0,1",
		"nginx:latest",
	}, spec.Args())
}

func containsToken(args []string, token string) bool {
	for _, a := range args {
		if a == token {
			return true
		}
	}
	return false
}

// containsPair reports whether flag is immediately followed by value.
func containsPair(args []string, flag, value string) bool {
	for i := 0; i+1 < len(args); i++ {
		if args[i] == flag && args[i+1] == value {
			return true
		}
	}
	return false
}
