package main

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestListenSkipsBusyPort(t *testing.T) {
	busy, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer busy.Close()
	port := busy.Addr().(*net.TCPAddr).Port

	ln, err := listen(port, 10, zap.NewNop())
	require.NoError(t, err)
	defer ln.Close()

	got := ln.Addr().(*net.TCPAddr).Port
	assert.Greater(t, got, port)
	assert.LessOrEqual(t, got, port+9)
}

func TestListenGivesUp(t *testing.T) {
	busy, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer busy.Close()
	port := busy.Addr().(*net.TCPAddr).Port

	_, err = listen(port, 1, zap.NewNop())
	assert.Error(t, err)
}
