package root_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"groupnest/ledger/cmd/root"
)

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "groupnest-ledger", root.Cmd.Use)
	assert.Contains(t, root.Cmd.Short, "shared-expense ledger")
	assert.NotNil(t, root.Cmd.Run)
	assert.NotNil(t, root.Cmd.PersistentPreRun)
}

func TestRootCommand_Flags(t *testing.T) {
	root.Init()

	groupFlag := root.Cmd.PersistentFlags().Lookup("group")
	assert.NotNil(t, groupFlag)
	assert.Equal(t, "g", groupFlag.Shorthand)

	userFlag := root.Cmd.PersistentFlags().Lookup("user")
	assert.NotNil(t, userFlag)
	assert.Equal(t, "u", userFlag.Shorthand)
}
