package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "pathmine", cmd.Use)
	assert.Contains(t, cmd.Long, "path queries")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"parse", "validate", "tools", "catalog", "test", "serve"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)
}

func TestParseCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	parseCmd, _, err := cmd.Find([]string{"parse"})
	require.NoError(t, err)

	outputFlag := parseCmd.Flags().Lookup("output")
	require.NotNil(t, outputFlag)
	assert.Equal(t, "o", outputFlag.Shorthand)

	fpFlag := parseCmd.Flags().Lookup("fingerprint")
	require.NotNil(t, fpFlag)
	assert.Equal(t, "false", fpFlag.DefValue)
}

func TestToolsCommandStructure(t *testing.T) {
	cmd := NewRootCommand()

	listCmd, _, err := cmd.Find([]string{"tools", "list"})
	require.NoError(t, err)
	assert.Equal(t, "list", listCmd.Name())

	matchCmd, _, err := cmd.Find([]string{"tools", "match"})
	require.NoError(t, err)

	envFlag := matchCmd.Flags().Lookup("env")
	require.NotNil(t, envFlag)

	releaseFlag := matchCmd.Flags().Lookup("release")
	require.NotNil(t, releaseFlag)
}

func TestCatalogCommandStructure(t *testing.T) {
	cmd := NewRootCommand()

	for _, sub := range []string{"save", "list", "show", "rm"} {
		subCmd, _, err := cmd.Find([]string{"catalog", sub})
		require.NoError(t, err, "catalog %s should exist", sub)
		assert.Equal(t, sub, subCmd.Name())
	}

	catalogCmd, _, err := cmd.Find([]string{"catalog"})
	require.NoError(t, err)
	dbFlag := catalogCmd.PersistentFlags().Lookup("db")
	require.NotNil(t, dbFlag)
	assert.Equal(t, ".pathmine/catalog.db", dbFlag.DefValue)
}

func TestTestCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	testCmd, _, err := cmd.Find([]string{"test"})
	require.NoError(t, err)

	updateFlag := testCmd.Flags().Lookup("update")
	require.NotNil(t, updateFlag)
	assert.Equal(t, "false", updateFlag.DefValue)

	filterFlag := testCmd.Flags().Lookup("filter")
	require.NotNil(t, filterFlag)
}

func TestServeCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	serveCmd, _, err := cmd.Find([]string{"serve"})
	require.NoError(t, err)

	for _, name := range []string{"config", "tools", "db", "listen", "release", "watch", "log-level", "log-format"} {
		flag := serveCmd.Flags().Lookup(name)
		require.NotNil(t, flag, "serve should define --%s", name)
	}

	listenFlag := serveCmd.Flags().Lookup("listen")
	assert.Equal(t, ":8700", listenFlag.DefValue)
}

func TestFormatValidation(t *testing.T) {
	// Test valid formats
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))

	// Test invalid formats
	assert.False(t, isValidFormat("xml"))
	assert.False(t, isValidFormat(""))
	assert.False(t, isValidFormat("TEXT"))
}

func TestFormatValidationIntegration(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"--format", "invalid", "validate", "."})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}
