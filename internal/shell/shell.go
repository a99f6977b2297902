// Package shell renders environment assignments and command chains in the syntax of
// the remote login shell. Two variants exist, POSIX and C shell, chosen once from
// configuration.
package shell

import (
	"fmt"
	"strings"

	"github.com/alessio/shellescape"
)

// Strategy is the syntax capability set the payload builder relies on.
type Strategy interface {
	// SetEnv returns a fragment assigning value to key.
	SetEnv(key, value string) string
	// Chain joins fragments into one command string, dropping empty ones.
	Chain(fragments []string) string
	// Quote escapes s so this shell parses it back as exactly one word.
	Quote(s string) string
	// Name identifies the variant.
	Name() string
}

// Quote escapes s for a POSIX shell.
func Quote(s string) string {
	return shellescape.Quote(s)
}

// Join quotes each argument for sh and joins them with single spaces.
func Join(sh Strategy, args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = sh.Quote(a)
	}
	return strings.Join(quoted, " ")
}

// POSIX targets sh-compatible shells: export KEY=value, chained with &&.
type POSIX struct{}

func (POSIX) SetEnv(key, value string) string {
	return "export " + key + "=" + Quote(value)
}

func (POSIX) Chain(fragments []string) string {
	return chain(fragments, " && ")
}

func (POSIX) Quote(s string) string { return Quote(s) }

func (POSIX) Name() string { return "posix" }

// CShell targets csh/tcsh: setenv KEY value, chained with ;.
type CShell struct{}

func (CShell) SetEnv(key, value string) string {
	return "setenv " + key + " " + CShell{}.Quote(value)
}

func (CShell) Chain(fragments []string) string {
	return chain(fragments, "; ")
}

// Quote single-quotes s the csh way. Inside single quotes csh still expands history
// and rejects a bare newline, so ! and ' are escaped outside the quotes and a newline
// is kept by a preceding backslash.
func (CShell) Quote(s string) string {
	if s != "" && shellescape.Quote(s) == s {
		return s
	}

	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\'':
			b.WriteString(`'\''`)
		case '!':
			b.WriteString(`'\!'`)
		case '\n':
			b.WriteString("\\\n")
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

func (CShell) Name() string { return "csh" }

func chain(fragments []string, sep string) string {
	kept := make([]string, 0, len(fragments))
	for _, f := range fragments {
		if strings.TrimSpace(f) == "" {
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, sep)
}

// ForName selects the strategy for a remote shell name such as "tcsh" or "bash".
// A path like /bin/tcsh is accepted.
func ForName(name string) (Strategy, error) {
	base := name
	if i := strings.LastIndex(base, "/"); i >= 0 {
		base = base[i+1:]
	}
	switch strings.ToLower(strings.TrimSpace(base)) {
	case "tcsh", "csh":
		return CShell{}, nil
	case "sh", "bash", "zsh", "ksh", "dash", "posix":
		return POSIX{}, nil
	default:
		return nil, fmt.Errorf("unsupported remote shell %q", name)
	}
}
