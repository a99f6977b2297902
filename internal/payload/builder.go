// Package payload assembles the single command string executed on the remote host.
//
// A payload is built in a fixed order: passthrough exports, module loads, a change to
// the caller's working directory, then the tool itself. Each optional step is a no-op
// when its precondition does not hold, so the builder never emits dangling separators.
package payload

import (
	"edaproxy/internal/config"
	"edaproxy/internal/invocation"
	"edaproxy/internal/logger"
	"edaproxy/internal/shell"
)

// Payload is the final command string handed to the remote shell.
type Payload string

// Builder accumulates directives until Build chains them into a Payload.
type Builder struct {
	cfg        config.Config
	shell      shell.Strategy
	env        invocation.Environment
	cwd        string
	directives []string
}

// New returns a Builder over an explicit environment snapshot and working directory,
// so its output depends only on its inputs.
func New(cfg config.Config, sh shell.Strategy, env invocation.Environment, cwd string) *Builder {
	return &Builder{
		cfg:   cfg,
		shell: sh,
		env:   env,
		cwd:   cwd,
	}
}

// WithEnvironmentPassthrough exports every whitelisted variable of the current project
// that is set in the caller's environment. Unset variables are skipped.
func (b *Builder) WithEnvironmentPassthrough() *Builder {
	project, _ := b.env.Lookup(config.EnvCurrentProject)
	names := b.cfg.Environment.Passthrough(project)
	if len(names) == 0 {
		logger.Debug("[DEBUG] No passthrough variables for project %q\n", project)
		return b
	}

	for _, name := range names {
		value, ok := b.env.Lookup(name)
		if !ok {
			logger.Debug("[DEBUG] Passthrough variable %s is not set, skipping\n", name)
			continue
		}
		b.directives = append(b.directives, b.shell.SetEnv(name, value))
	}
	return b
}

// WithModuleEnable loads the module mapped to tool. Tools without a mapping are left alone.
func (b *Builder) WithModuleEnable(tool string) *Builder {
	module, ok := b.cfg.Tools.Module(tool)
	if !ok {
		return b
	}
	b.directives = append(b.directives, b.cfg.Tools.ModuleCommand+" "+b.shell.Quote(module))
	return b
}

// Build appends the directory change and the exec directive and chains the sequence.
// The accumulated directives are not consumed, so Build may be called again.
func (b *Builder) Build(tool string, args []string) Payload {
	sequence := make([]string, 0, len(b.directives)+2)
	sequence = append(sequence, b.directives...)
	sequence = append(sequence, "cd "+b.shell.Quote(b.cwd))
	sequence = append(sequence, ExecFragment(b.shell, tool, args))
	return Payload(b.shell.Chain(sequence))
}

// ExecFragment is the directive that runs the tool. In delegate mode the arguments
// are the whole command; otherwise the tool name leads.
func ExecFragment(sh shell.Strategy, tool string, args []string) string {
	joined := shell.Join(sh, args)
	if tool == invocation.DelegateTool {
		return joined
	}
	if joined == "" {
		return tool
	}
	return tool + " " + joined
}
