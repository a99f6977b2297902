package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edaproxy/internal/config"
	"edaproxy/internal/invocation"
	"edaproxy/internal/logger"
	"edaproxy/internal/remote"
)

type recordingRunner struct {
	payloads []string
	opts     []remote.Options
	code     int
}

func (r *recordingRunner) Execute(payload string, opts remote.Options) int {
	r.payloads = append(r.payloads, payload)
	r.opts = append(r.opts, opts)
	return r.code
}

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := logger.Output
	logger.Output = &buf
	t.Cleanup(func() {
		logger.Output = prev
		logger.Init(false)
	})
	return &buf
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Tools.Commands = []string{"vcs", "verdi"}
	cfg.Tools.Modules = map[string]string{"vcs": "vcs"}
	cfg.Tools.X11Tools = []string{"verdi"}
	cfg.Environment = config.EnvironmentPolicy{
		"cva6": {Passthrough: []string{"RISCV", "NUM_JOBS"}},
	}
	return cfg
}

func TestRunProxyRejectsScriptName(t *testing.T) {
	logs := captureLog(t)

	code := runProxy([]string{"/usr/local/bin/eda_proxy.py", "-full64"}, nil, "/work")

	assert.Equal(t, 1, code)
	assert.Contains(t, logs.String(), "Do not run eda_proxy.py directly. Use a symlink.")
}

func TestProxyBuildsAndRunsPayload(t *testing.T) {
	id, err := invocation.Resolve(
		[]string{"/usr/local/bin/vcs", "-full64"},
		[]string{"CURRENT_PROJECT=cva6", "RISCV=/opt/riscv", "NUM_JOBS=32"},
		"/work/cva6",
	)
	require.NoError(t, err)
	runner := &recordingRunner{code: 7}

	code := proxy(id, testConfig(), runner)

	assert.Equal(t, 7, code)
	require.Len(t, runner.payloads, 1)
	assert.Equal(t, "setenv RISCV /opt/riscv; setenv NUM_JOBS 32; ml vcs; cd /work/cva6; vcs -full64", runner.payloads[0])
	assert.False(t, runner.opts[0].X11)
}

func TestProxyUsesPOSIXForBash(t *testing.T) {
	cfg := testConfig()
	cfg.Connection.RemoteShell = "bash"
	id, err := invocation.Resolve([]string{"verdi"}, nil, "/w")
	require.NoError(t, err)
	runner := &recordingRunner{}

	proxy(id, cfg, runner)

	assert.Equal(t, "cd /w && verdi", runner.payloads[0])
	assert.True(t, runner.opts[0].X11)
}

func TestProxyDelegate(t *testing.T) {
	id, err := invocation.Resolve([]string{"delegate", "make", "-j4"}, nil, "/w")
	require.NoError(t, err)
	runner := &recordingRunner{}

	proxy(id, testConfig(), runner)

	assert.Equal(t, "cd /w; make -j4", runner.payloads[0])
}

func TestStrategyForUnknownShellFallsBack(t *testing.T) {
	logs := captureLog(t)

	sh := strategyFor(config.Connection{RemoteShell: "fish"})

	assert.Equal(t, "csh", sh.Name())
	assert.Contains(t, logs.String(), "unsupported remote shell")
}

func TestRunProxyEndToEnd(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "argv.txt")
	ssh := filepath.Join(dir, "ssh")
	script := "#!/bin/sh\nfor a in \"$@\"; do printf '%s\\n' \"$a\"; done > " + out + "\nexit 4\n"
	require.NoError(t, os.WriteFile(ssh, []byte(script), 0755))

	cfgPath := filepath.Join(dir, "eda_config.toml")
	cfg := "[connection]\nssh_binary = \"" + ssh + "\"\nremote_shell = \"bash\"\nssh_options = []\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0644))

	code := runProxy(
		[]string{"/usr/local/bin/xrun", "-f", "run list.f"},
		[]string{config.EnvConfigPath + "=" + cfgPath},
		"/proj",
	)

	assert.Equal(t, 4, code)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	assert.Equal(t, []string{"aislab@eda", "cd /proj && xrun -f 'run list.f'"}, lines[len(lines)-2:])
}
