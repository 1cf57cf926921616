package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bher20/tagihanpln/pkg/providers/simulator"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, name := range []string{"serve", "inquire", "simulate", "providers", "migrate"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "tagihanpln", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag)
	assert.Equal(t, "0", flag.DefValue)
}

func TestInquireCommand_Flags(t *testing.T) {
	require.NotNil(t, inquireCmd.Flags().Lookup("simulate"))
	require.NotNil(t, inquireCmd.Flags().Lookup("out"))
}

func TestMigrateCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range migrateCmd.Commands() {
		names[c.Name()] = true
	}
	for _, name := range []string{"up", "down", "status"} {
		assert.True(t, names[name], "expected migrate subcommand %q not found", name)
	}
}

func TestPrintResponse(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printResponse(&buf, simulator.Simulate("532000000001"), ""))

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, false, out["status"])
	assert.Equal(t, "Tagihan sudah dibayar", out["message"])
}

func TestPrintResponse_ToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bill.json")
	require.NoError(t, printResponse(nil, simulator.Simulate("531000000001"), path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, "SUCCESS", out["status"])
	assert.Equal(t, simulator.Key, out["source"])
}
