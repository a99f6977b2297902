package shell

import (
	"fmt"
	"os/exec"
	"strings"
	"testing"

	"github.com/kballard/go-shellquote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var trickyValues = []string{
	"plain",
	"/opt/riscv",
	"veri-testharness,spike",
	"with space",
	"it's",
	`say "hi"`,
	"$HOME and `whoami`",
	"a;b && c || d | e > f < g",
	"glob*?[x]",
	`back\slash`,
	"tab\there",
	"",
	"'",
	`''"'"`,
	"a\nb",
	"wow!",
	"multi\nline 'x'!\n",
}

func TestQuoteRoundTripsAsOneWord(t *testing.T) {
	for _, v := range trickyValues {
		words, err := shellquote.Split(Quote(v))
		require.NoError(t, err, "value %q", v)
		require.Len(t, words, 1, "value %q quoted as %s", v, Quote(v))
		assert.Equal(t, v, words[0])
	}
}

func TestSetEnvRoundTrips(t *testing.T) {
	for _, v := range trickyValues {
		words, err := shellquote.Split(POSIX{}.SetEnv("KEY", v))
		require.NoError(t, err)
		assert.Equal(t, []string{"export", "KEY=" + v}, words)

		words, err = cshSplit(CShell{}.SetEnv("KEY", v))
		require.NoError(t, err, "value %q", v)
		assert.Equal(t, []string{"setenv", "KEY", v}, words)
	}
}

func TestCShellQuoteEscapesNewlineAndBang(t *testing.T) {
	assert.Equal(t, "setenv MSG 'a\\\nb'", CShell{}.SetEnv("MSG", "a\nb"))
	assert.Equal(t, `'wow'\!''`, CShell{}.Quote("wow!"))
	assert.Equal(t, `'it'\''s'`, CShell{}.Quote("it's"))
	assert.Equal(t, "''", CShell{}.Quote(""))

	for _, v := range trickyValues {
		q := CShell{}.Quote(v)
		for i := 0; i < len(q); i++ {
			if q[i] == '\n' {
				require.True(t, i > 0 && q[i-1] == '\\', "bare newline in %q", q)
			}
		}
	}
}

func TestCShellPayloadRunsInTcsh(t *testing.T) {
	tcsh, err := exec.LookPath("tcsh")
	if err != nil {
		t.Skip("tcsh not installed")
	}
	for _, v := range trickyValues {
		payload := CShell{}.Chain([]string{
			CShell{}.SetEnv("MSG", v),
			"printenv MSG",
		})
		out, err := exec.Command(tcsh, "-f", "-c", payload).Output()
		require.NoError(t, err, "payload %q", payload)
		assert.Equal(t, v+"\n", string(out))
	}
}

// cshSplit parses words the way csh does for the quoting CShell emits: outside quotes
// a backslash takes the next character literally; inside single quotes everything is
// literal except backslash-newline, which yields a newline.
func cshSplit(s string) ([]string, error) {
	var (
		words   []string
		word    strings.Builder
		inWord  bool
		inQuote bool
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case inQuote && c == '\'':
			inQuote = false
		case inQuote && c == '\\' && i+1 < len(s) && s[i+1] == '\n':
			word.WriteByte('\n')
			i++
		case inQuote && c == '\n':
			return nil, fmt.Errorf("unmatched ' at byte %d", i)
		case inQuote:
			word.WriteByte(c)
		case c == '\'':
			inQuote, inWord = true, true
		case c == '\\' && i+1 < len(s):
			word.WriteByte(s[i+1])
			inWord = true
			i++
		case c == ' ' || c == '\t' || c == '\n':
			if inWord {
				words = append(words, word.String())
				word.Reset()
				inWord = false
			}
		default:
			word.WriteByte(c)
			inWord = true
		}
	}
	if inQuote {
		return nil, fmt.Errorf("unmatched '")
	}
	if inWord {
		words = append(words, word.String())
	}
	return words, nil
}

func TestSetEnvLeavesSafeValuesBare(t *testing.T) {
	assert.Equal(t, "export RISCV=/opt/riscv", POSIX{}.SetEnv("RISCV", "/opt/riscv"))
	assert.Equal(t, "setenv NUM_JOBS 32", CShell{}.SetEnv("NUM_JOBS", "32"))
	assert.Equal(t, "setenv MSG 'a b'", CShell{}.SetEnv("MSG", "a b"))
}

func TestChainDropsEmptyFragments(t *testing.T) {
	fragments := []string{"", "export A=1", "", "  ", "cd /tmp", "", "vcs", ""}

	assert.Equal(t, "export A=1 && cd /tmp && vcs", POSIX{}.Chain(fragments))
	assert.Equal(t, "export A=1; cd /tmp; vcs", CShell{}.Chain(fragments))

	for _, s := range []Strategy{POSIX{}, CShell{}} {
		out := s.Chain(fragments)
		assert.NotContains(t, out, " &&  && ")
		assert.NotContains(t, out, "; ; ")
		assert.False(t, strings.HasPrefix(out, ";") || strings.HasPrefix(out, " &&"))
	}
}

func TestChainOfNothingIsEmpty(t *testing.T) {
	assert.Equal(t, "", POSIX{}.Chain(nil))
	assert.Equal(t, "", CShell{}.Chain([]string{"", ""}))
}

func TestJoin(t *testing.T) {
	assert.Equal(t, "", Join(POSIX{}, nil))
	assert.Equal(t, "make -j4", Join(POSIX{}, []string{"make", "-j4"}))

	args := []string{"-f", "my file.tcl", "it's", "", "a!\nb"}
	words, err := shellquote.Split(Join(POSIX{}, args))
	require.NoError(t, err)
	assert.Equal(t, args, words)

	words, err = cshSplit(Join(CShell{}, args))
	require.NoError(t, err)
	assert.Equal(t, args, words)
}

func TestForName(t *testing.T) {
	tests := []struct {
		name string
		want Strategy
	}{
		{"tcsh", CShell{}},
		{"csh", CShell{}},
		{"/bin/tcsh", CShell{}},
		{"bash", POSIX{}},
		{"SH", POSIX{}},
		{"/usr/bin/zsh", POSIX{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ForName(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ForName("fish")
	assert.Error(t, err)
}
