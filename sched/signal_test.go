package sched

import (
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignalRaisesShutdownFlag(t *testing.T) {
	shutdownRequested.Store(false)

	SetupSignalHandlers()
	SetupSignalHandlers() // idempotent

	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGINT))
	require.Eventually(t, ShouldExit, 2*time.Second, 10*time.Millisecond,
		"SIGINT did not raise the shutdown flag")
}
