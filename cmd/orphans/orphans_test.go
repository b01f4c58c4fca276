package orphans_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"groupnest/ledger/cmd/orphans"
)

func TestOrphansCommand_Metadata(t *testing.T) {
	assert.Equal(t, "orphans", orphans.Cmd.Use)
	assert.Contains(t, orphans.Cmd.Short, "unlinked expenses")
	assert.NotNil(t, orphans.Cmd.Run)
}

func TestOrphansCommand_Flags(t *testing.T) {
	accountFlag := orphans.Cmd.Flags().Lookup("account")
	assert.NotNil(t, accountFlag)
	assert.Equal(t, "a", accountFlag.Shorthand)

	assert.NotNil(t, orphans.Cmd.Flags().Lookup("before"))
	assert.NotNil(t, orphans.Cmd.Flags().Lookup("parent"))
}
