package app

import (
	"bytes"
	"context"
	"os"
	"sync"
	"testing"

	"github.com/vk/tracegraph/internal/config"
	"github.com/vk/tracegraph/internal/registry"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// StaticLoader is a config.Loader that returns a copy of a prepared model.
type StaticLoader struct {
	Model *config.Model
	Err   error
}

// Load implements config.Loader.
func (l StaticLoader) Load(context.Context, ...string) (*config.Model, error) {
	if l.Err != nil {
		return nil, l.Err
	}
	m := *l.Model
	if l.Model.Source != nil {
		src := *l.Model.Source
		m.Source = &src
	}
	return &m, nil
}

// SetupAppTest creates a new app instance for system testing. It returns the
// app, its console output and its log output.
func SetupAppTest(t *testing.T, appConfig *Config, loader config.Loader, modules ...registry.Module) (*App, *SafeBuffer, *SafeBuffer) {
	t.Helper()

	outBuffer := &SafeBuffer{}
	logBuffer := &SafeBuffer{}
	appConfig.LogLevel = "debug"
	appConfig.NoColor = true
	testApp := NewApp(outBuffer, logBuffer, appConfig, loader, modules...)

	t.Cleanup(func() {
		if os.Getenv("TRACEGRAPH_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, outBuffer, logBuffer
}
