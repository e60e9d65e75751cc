package awake

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStartWithoutHelperIsNoOp(t *testing.T) {
	// An empty PATH guarantees LookPath fails on every platform.
	t.Setenv("PATH", "")

	k := Start(nil)
	assert.NotNil(t, k)
	assert.Nil(t, k.cmd)

	// Must not panic.
	k.Stop()
	k.Stop()
}

func TestStopNilKeeper(t *testing.T) {
	var k *Keeper
	k.Stop()
}

func TestInhibitorArgvKnownPlatforms(t *testing.T) {
	argv := inhibitorArgv()
	if argv != nil {
		assert.NotEmpty(t, argv[0])
	}
}
