package cmd

import (
	"errors"

	"edaproxy/internal/config"
	"edaproxy/internal/invocation"
	"edaproxy/internal/logger"
	"edaproxy/internal/payload"
	"edaproxy/internal/remote"
	"edaproxy/internal/shell"
)

// sessionRunner is the part of remote.Executor the proxy depends on.
type sessionRunner interface {
	Execute(payload string, opts remote.Options) int
}

// runProxy handles a tool invocation end to end: identity, config, payload, session.
func runProxy(argv []string, environ []string, cwd string) int {
	env := invocation.Capture(environ)
	if v, _ := env.Lookup(config.EnvDebug); v == "1" {
		logger.Init(true)
	}

	id, err := invocation.Resolve(argv, environ, cwd)
	if err != nil {
		if errors.Is(err, invocation.ErrScriptInvocation) {
			logger.Error("[ERROR] Do not run %s directly. Use a symlink.\n", id.Tool)
			return 1
		}
		logger.Error("[ERROR] %v\n", err)
		return 1
	}

	cfg := config.Load(config.PathFromEnv(env.Lookup))
	return proxy(id, cfg, remote.New(cfg.Connection))
}

// proxy builds the payload for id and runs it through runner.
func proxy(id invocation.Identity, cfg config.Config, runner sessionRunner) int {
	if !id.IsDelegate() && !cfg.Tools.Has(id.Tool) {
		logger.Debug("[DEBUG] %s is not a registered tool, forwarding anyway\n", id.Tool)
	}

	p := buildPayload(id, cfg)
	logger.Debug("[DEBUG] Payload: %s\n", p)

	return runner.Execute(string(p), remote.Options{X11: cfg.Tools.WantsX11(id.Tool)})
}

// buildPayload runs the builder pipeline: passthrough, module load, then cd and exec.
func buildPayload(id invocation.Identity, cfg config.Config) payload.Payload {
	return payload.New(cfg, strategyFor(cfg.Connection), id.Env, id.Cwd).
		WithEnvironmentPassthrough().
		WithModuleEnable(id.Tool).
		Build(id.Tool, id.Args)
}

// strategyFor picks the shell syntax for the remote login shell, falling back to
// C shell syntax for unknown names.
func strategyFor(conn config.Connection) shell.Strategy {
	sh, err := shell.ForName(conn.RemoteShell)
	if err != nil {
		logger.Warn("[WARN] %v, using csh syntax\n", err)
		return shell.CShell{}
	}
	return sh
}
