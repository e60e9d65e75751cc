package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootCommand(t *testing.T) {
	root := NewRootCommand()

	assert.Equal(t, "longpath", root.Use)
	assert.True(t, root.SilenceUsage)

	names := make([]string, 0)
	for _, sub := range root.Commands() {
		names = append(names, sub.Name())
	}
	assert.Contains(t, names, "run")
	assert.Contains(t, names, "history")
}

func TestRunCommandRequiresTarget(t *testing.T) {
	_, err := execute(t)
	require.NoError(t, err, "bare invocation shows help")

	_, err = execute(t, "run")
	assert.Error(t, err, "run requires a target directory argument")
}
