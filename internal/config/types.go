package config

import "slices"

// Config is the immutable snapshot loaded once at process start.
// It carries the connection settings, the tool registry, the per-project
// environment policy and the paths used by the symlink installer.
type Config struct {
	Paths       Paths             `toml:"default" yaml:"default"`
	Connection  Connection        `toml:"connection" yaml:"connection"`
	Tools       ToolRegistry      `toml:"eda_tools" yaml:"eda_tools"`
	Environment EnvironmentPolicy `toml:"environment" yaml:"environment"`
}

// Paths locates the wrapper binary and the directory its symlinks live in.
// - WrapperPath: absolute path of the edaproxy binary every link points at.
// - BinDir: directory holding one symlink per registered tool.
// - StateFile: JSON file recording the links the installer manages.
type Paths struct {
	WrapperPath string `toml:"wrapper_path" yaml:"wrapper_path"`
	BinDir      string `toml:"bin_dir" yaml:"bin_dir"`
	StateFile   string `toml:"state_file" yaml:"state_file"`
}

// Connection holds the remote-shell settings.
// SSHOptions are passed verbatim and in order; the defaults disable host-key
// verification, which is an explicit trust decision for the EDA host.
type Connection struct {
	RemoteHost  string   `toml:"remote_host" yaml:"remote_host"`
	RemoteUser  string   `toml:"remote_user" yaml:"remote_user"`
	SSHOptions  []string `toml:"ssh_options" yaml:"ssh_options"`
	SSHBinary   string   `toml:"ssh_binary" yaml:"ssh_binary"`
	RemoteShell string   `toml:"remote_shell" yaml:"remote_shell"`
}

// Target returns the user@host destination for the remote shell.
func (c Connection) Target() string {
	return c.RemoteUser + "@" + c.RemoteHost
}

// ToolRegistry is the set of recognized tool names plus optional module mappings.
// - Commands: tool names that get a symlink.
// - Modules: tool name -> environment module loaded before the tool runs.
// - ModuleCommand: remote command used to load a module (e.g. "ml").
// - X11Tools: tools whose session requests graphical display forwarding.
type ToolRegistry struct {
	Commands      []string          `toml:"commands" yaml:"commands"`
	Modules       map[string]string `toml:"modules" yaml:"modules"`
	ModuleCommand string            `toml:"module_command" yaml:"module_command"`
	X11Tools      []string          `toml:"x11_tools" yaml:"x11_tools"`
}

// Has reports whether name is a recognized tool.
func (r ToolRegistry) Has(name string) bool {
	return slices.Contains(r.Commands, name)
}

// Module returns the module mapped to tool, if any.
func (r ToolRegistry) Module(tool string) (string, bool) {
	m, ok := r.Modules[tool]
	if !ok || m == "" {
		return "", false
	}
	return m, true
}

// WantsX11 reports whether tool should request display forwarding.
func (r ToolRegistry) WantsX11(tool string) bool {
	return slices.Contains(r.X11Tools, tool)
}

// Project is the passthrough whitelist for one project.
type Project struct {
	Passthrough []string `toml:"passthrough" yaml:"passthrough"`
}

// EnvironmentPolicy maps a project identifier to its passthrough whitelist.
type EnvironmentPolicy map[string]Project

// Passthrough returns the whitelisted variable names for project in configured order,
// with duplicates removed. An empty or unknown project yields nil.
func (p EnvironmentPolicy) Passthrough(project string) []string {
	if project == "" {
		return nil
	}
	proj, ok := p[project]
	if !ok {
		return nil
	}
	var names []string
	seen := make(map[string]bool, len(proj.Passthrough))
	for _, name := range proj.Passthrough {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}
