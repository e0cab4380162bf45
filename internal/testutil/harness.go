// Package testutil provides the harness used by the integration tests: it
// lays out a session's files in a temporary directory, builds the app from
// them through the real HCL loader and runs it.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/tracegraph/internal/app"
	"github.com/vk/tracegraph/internal/hcl"
	"github.com/vk/tracegraph/internal/registry"
)

// ConfigFile is the name the harness loads; tests place their HCL under it.
const ConfigFile = "session.hcl"

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	Output    string
	LogOutput string
	Err       error
	App       *app.App
	Dir       string
}

// Options tunes a harness run. The zero value runs the full app.
type Options struct {
	Env     map[string]string
	Check   bool
	Modules []registry.Module
}

// RunIntegrationTest provides a standardized harness for running integration
// tests using a default background context.
func RunIntegrationTest(t *testing.T, files map[string]string, opts Options) *HarnessResult {
	t.Helper()
	return RunIntegrationTestWithContext(context.Background(), t, files, opts)
}

// RunIntegrationTestWithContext writes files (relative paths) into a fresh
// directory, loads <dir>/session.hcl and runs the app with ctx.
func RunIntegrationTestWithContext(ctx context.Context, t *testing.T, files map[string]string, opts Options) *HarnessResult {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}

	appConfig := &app.Config{
		ConfigPath: filepath.Join(dir, ConfigFile),
		LogLevel:   "debug",
		LogFormat:  "text",
		NoColor:    true,
	}
	out := &app.SafeBuffer{}
	logs := &app.SafeBuffer{}
	res := &HarnessResult{Dir: dir}

	var testApp *app.App
	func() {
		defer func() {
			if r := recover(); r != nil {
				res.Err = fmt.Errorf("application startup panicked | %v", r)
			}
		}()
		testApp = app.NewApp(out, logs, appConfig, hcl.NewLoaderWithEnv(opts.Env), opts.Modules...)
	}()

	if testApp != nil {
		res.App = testApp
		if opts.Check {
			res.Err = testApp.Check(ctx)
		} else {
			res.Err = testApp.Run(ctx)
		}
	}

	res.Output = out.String()
	res.LogOutput = logs.String()
	if os.Getenv("TRACEGRAPH_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), res.LogOutput)
	}
	return res
}
