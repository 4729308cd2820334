package cmd

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	yaml "gopkg.in/yaml.v2"

	"github.com/refscope/refscope/pkg/model"
)

type exitMocksT struct {
	fatalCalls int
	exitCodes  []int
}

var exitMocks *exitMocksT

// patch over fatal handlers so a failing command does not kill the test binary
func setupTests(t *testing.T) {
	exitMocks = &exitMocksT{}
	logFatalf = func(format string, v ...interface{}) {
		exitMocks.fatalCalls++
	}
	logFatalln = func(v ...interface{}) {
		exitMocks.fatalCalls++
	}
	osExit = func(code int) {
		exitMocks.exitCodes = append(exitMocks.exitCodes, code)
	}
	refscopeFlags = flagsT{}
	t.Cleanup(func() {
		refscopeFlags = flagsT{}
	})
}

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	pth := filepath.Join(dir, name)
	require.NoError(t, ioutil.WriteFile(pth, []byte(content), 0600))
	return pth
}

const valueFixture = `
name: corpus
chapters:
  - title: introduction
    words: 1200
  - title: functions
    words: 5400
`

const scenarioFixture = `
envs:
  - name: global
  - name: mid
    parent: global
  - name: leaf
    parent: mid
ops:
  - op: define
    env: global
    name: x
    value: [1, 2, 3]
  - op: alias
    env: leaf
    name: y
    from: x
`

func runRefscope(t *testing.T, args ...string) {
	t.Helper()
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
}

func TestCliVersion(t *testing.T) {
	setupTests(t)
	runRefscope(t, "version")
	assert.Zero(t, exitMocks.fatalCalls)
}

func TestCliSize(t *testing.T) {
	setupTests(t)
	dir := t.TempDir()
	input := writeFixture(t, dir, "value.yaml", valueFixture)

	runRefscope(t, "size", "--input", input)
	assert.Zero(t, exitMocks.fatalCalls)
}

func TestCliSizeSave(t *testing.T) {
	setupTests(t)
	dir := t.TempDir()
	input := writeFixture(t, dir, "value.yaml", valueFixture)
	archive := filepath.Join(dir, "archive")

	runRefscope(t, "size", "--input", input, "--save", "--store", "localfs", "--path", archive)
	require.Zero(t, exitMocks.fatalCalls)

	// one report archived, keyed by fingerprint
	reports, err := ioutil.ReadDir(filepath.Join(archive, "reports"))
	require.NoError(t, err)
	require.Len(t, reports, 1)

	data, err := ioutil.ReadFile(filepath.Join(archive, "reports", reports[0].Name(), "report.yaml"))
	require.NoError(t, err)
	var report model.SizeReport
	require.NoError(t, yaml.Unmarshal(data, &report))
	assert.Equal(t, reports[0].Name(), report.Fingerprint)
	assert.True(t, report.TotalBytes > 0)
	require.NoError(t, model.ValidateSizeReport(report))
}

func TestCliSizeCompare(t *testing.T) {
	setupTests(t)
	dir := t.TempDir()
	a := writeFixture(t, dir, "a.yaml", valueFixture)
	b := writeFixture(t, dir, "b.yaml", valueFixture)

	runRefscope(t, "size", "--input", a, "--compare-with", b)
	assert.Zero(t, exitMocks.fatalCalls)
}

func TestCliSnapshotLifecycle(t *testing.T) {
	setupTests(t)
	archive := filepath.Join(t.TempDir(), "archive")

	runRefscope(t, "snapshot", "create", "--store", "localfs", "--path", archive, "--label", "before")
	runRefscope(t, "snapshot", "create", "--store", "localfs", "--path", archive, "--label", "after")
	require.Zero(t, exitMocks.fatalCalls)

	entries, err := ioutil.ReadDir(filepath.Join(archive, "snapshots"))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	first, second := entries[0].Name(), entries[1].Name()
	runRefscope(t, "snapshot", "list", "--store", "localfs", "--path", archive)
	runRefscope(t, "snapshot", "get", "--store", "localfs", "--path", archive, "--snapshot", first)
	runRefscope(t, "snapshot", "diff", "--store", "localfs", "--path", archive, "--from", first, "--to", second)
	assert.Zero(t, exitMocks.fatalCalls)
	assert.Empty(t, exitMocks.exitCodes)
}

func TestCliSnapshotGetMissing(t *testing.T) {
	setupTests(t)
	archive := filepath.Join(t.TempDir(), "archive")
	require.NoError(t, os.MkdirAll(archive, 0700))

	runRefscope(t, "snapshot", "get", "--store", "localfs", "--path", archive, "--snapshot", "nosuchsnapshot")
	require.Len(t, exitMocks.exitCodes, 1)
	assert.Equal(t, 2, exitMocks.exitCodes[0])
}

func TestCliScopeEval(t *testing.T) {
	setupTests(t)
	dir := t.TempDir()
	scenario := writeFixture(t, dir, "scenario.yaml", scenarioFixture)

	runRefscope(t, "scope", "eval", "--scenario", scenario, "--with-sizes")
	assert.Zero(t, exitMocks.fatalCalls)
}

func TestCliScopeWhere(t *testing.T) {
	setupTests(t)
	dir := t.TempDir()
	scenario := writeFixture(t, dir, "scenario.yaml", scenarioFixture)

	runRefscope(t, "scope", "where", "--scenario", scenario, "--env", "leaf", "--name", "x")
	assert.Zero(t, exitMocks.fatalCalls)
	assert.Empty(t, exitMocks.exitCodes)

	runRefscope(t, "scope", "where", "--scenario", scenario, "--env", "leaf", "--name", "nope")
	require.Len(t, exitMocks.exitCodes, 1)
	assert.Equal(t, 2, exitMocks.exitCodes[0])
}
