package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"rpg/internal/rpgerrors"
)

func TestExitCodeFor_VcsErrorIsTwo(t *testing.T) {
	err := rpgerrors.VcsError("git failed", nil)
	require.Equal(t, 2, exitCodeFor(err))
}

func TestExitCodeFor_OtherErrorsAreOne(t *testing.T) {
	require.Equal(t, 1, exitCodeFor(rpgerrors.StoreError("boom", nil)))
	require.Equal(t, 1, exitCodeFor(rpgerrors.ConfigError("boom", nil)))
}
