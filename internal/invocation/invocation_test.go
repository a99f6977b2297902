package invocation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToolName(t *testing.T) {
	name, err := ToolName("/usr/local/bin/vcs")
	require.NoError(t, err)
	assert.Equal(t, "vcs", name)

	name, err = ToolName("dc_shell")
	require.NoError(t, err)
	assert.Equal(t, "dc_shell", name)
}

func TestToolNameRejectsScripts(t *testing.T) {
	for _, argv0 := range []string{"/usr/local/bin/eda_proxy.py", "./eda_proxy.sh"} {
		name, err := ToolName(argv0)
		assert.ErrorIs(t, err, ErrScriptInvocation)
		assert.NotEmpty(t, name)
	}
}

func TestToolNameEmpty(t *testing.T) {
	_, err := ToolName("")
	assert.ErrorIs(t, err, ErrNoToolName)
}

func TestResolve(t *testing.T) {
	argv := []string{"/usr/local/bin/delegate", "make", "-j4"}
	id, err := Resolve(argv, []string{"CURRENT_PROJECT=cva6", "EMPTY=", "A=b=c"}, "/work")
	require.NoError(t, err)

	assert.Equal(t, "delegate", id.Tool)
	assert.True(t, id.IsDelegate())
	assert.Equal(t, []string{"make", "-j4"}, id.Args)
	assert.Equal(t, "/work", id.Cwd)

	v, ok := id.Env.Lookup("EMPTY")
	assert.True(t, ok)
	assert.Equal(t, "", v)
	v, _ = id.Env.Lookup("A")
	assert.Equal(t, "b=c", v)

	argv[1] = "changed"
	assert.Equal(t, "make", id.Args[0])
}

func TestResolveNoArgs(t *testing.T) {
	_, err := Resolve(nil, nil, "/")
	assert.ErrorIs(t, err, ErrNoToolName)

	id, err := Resolve([]string{"verdi"}, nil, "/")
	require.NoError(t, err)
	assert.Empty(t, id.Args)
	assert.False(t, id.IsDelegate())
}

func TestCapture(t *testing.T) {
	env := Capture([]string{"X=1", "garbage", "=nokey", "X=2"})
	assert.Equal(t, Environment{"X": "2"}, env)

	_, ok := env.Lookup("garbage")
	assert.False(t, ok)
}
