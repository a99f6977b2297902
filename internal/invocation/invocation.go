package invocation

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// DelegateTool is the link name under which the caller supplies the whole remote command.
const DelegateTool = "delegate"

var (
	// ErrScriptInvocation means the wrapper was started by its script/file name
	// instead of through a tool symlink.
	ErrScriptInvocation = errors.New("invoked directly instead of through a symlink")
	// ErrNoToolName means argv[0] was empty.
	ErrNoToolName = errors.New("cannot determine tool name from argv[0]")
)

// scriptExtensions are invocation suffixes that mean "run the wrapper file directly".
var scriptExtensions = []string{".py", ".sh"}

// Environment is a read-only snapshot of the calling process environment.
type Environment map[string]string

// Capture builds a snapshot from os.Environ-style KEY=value pairs.
// Later duplicates win, matching how getenv resolves them.
func Capture(environ []string) Environment {
	env := make(Environment, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		env[k] = v
	}
	return env
}

// Lookup returns the value of key and whether it is set.
func (e Environment) Lookup(key string) (string, bool) {
	v, ok := e[key]
	return v, ok
}

// Identity is who the binary was invoked as, with what, and from where.
// It is created once at startup and never mutated.
type Identity struct {
	Tool string
	Args []string
	Env  Environment
	Cwd  string
}

// IsDelegate reports whether the caller supplies the full remote command.
func (id Identity) IsDelegate() bool {
	return id.Tool == DelegateTool
}

// ToolName returns the basename of argv0, rejecting script-file invocations.
func ToolName(argv0 string) (string, error) {
	name := filepath.Base(argv0)
	if argv0 == "" || name == "." || name == string(filepath.Separator) {
		return "", ErrNoToolName
	}
	for _, ext := range scriptExtensions {
		if strings.HasSuffix(name, ext) {
			return name, fmt.Errorf("do not run %s directly, use a symlink: %w", name, ErrScriptInvocation)
		}
	}
	return name, nil
}

// Resolve derives the Identity from argv, the environment and the working directory.
func Resolve(argv []string, environ []string, cwd string) (Identity, error) {
	if len(argv) == 0 {
		return Identity{}, ErrNoToolName
	}
	tool, err := ToolName(argv[0])
	if err != nil {
		return Identity{Tool: tool}, err
	}
	args := make([]string, len(argv)-1)
	copy(args, argv[1:])
	return Identity{
		Tool: tool,
		Args: args,
		Env:  Capture(environ),
		Cwd:  cwd,
	}, nil
}
