package device

import (
	"context"
	"errors"
	"go/parser"
	"go/token"
	"os"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEnumerator struct {
	mu      sync.Mutex
	devices []Info
	err     error
	vendors []uint16
}

func (f *fakeEnumerator) Enumerate(vendorID uint16) ([]Info, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.vendors = append(f.vendors, vendorID)
	if f.err != nil {
		return nil, f.err
	}
	return append([]Info(nil), f.devices...), nil
}

func (f *fakeEnumerator) set(devices []Info, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.devices = devices
	f.err = err
}

func (f *fakeEnumerator) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.vendors)
}

var voyager = Info{VendorID: VendorZSA, ProductID: 0x1977, Bus: 1, Address: 4}

func TestNewMonitorDefaults(t *testing.T) {
	m := NewMonitor(&fakeEnumerator{}, Config{})
	assert.Equal(t, VendorZSA, m.vendor)
	assert.Equal(t, DefaultPollInterval, m.interval)
	assert.NotNil(t, m.log)
}

func TestCheck(t *testing.T) {
	enum := &fakeEnumerator{}
	m := NewMonitor(enum, Config{VendorID: 0x1234})

	ok, err := m.Check()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []uint16{0x1234}, enum.vendors)

	enum.set([]Info{voyager}, nil)
	ok, err = m.Check()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, m.Connected())
	assert.Equal(t, []Info{voyager}, m.Devices())

	enum.set(nil, errors.New("libusb busy"))
	_, err = m.Check()
	assert.Error(t, err)
	assert.True(t, m.Connected(), "errors leave state unchanged")
}

func TestPollFiresOnTransitionsOnly(t *testing.T) {
	enum := &fakeEnumerator{}
	m := NewMonitor(enum, Config{})

	var got []bool
	m.OnChange(func(connected bool, _ []Info) {
		got = append(got, connected)
	})

	m.poll()
	enum.set([]Info{voyager}, nil)
	m.poll()
	m.poll()
	enum.set(nil, errors.New("transient"))
	m.poll()
	enum.set(nil, nil)
	m.poll()
	m.poll()

	assert.Equal(t, []bool{true, false}, got)
}

func TestRunReportsTransitions(t *testing.T) {
	enum := &fakeEnumerator{}
	m := NewMonitor(enum, Config{PollInterval: 10 * time.Millisecond})

	changes := make(chan bool, 4)
	m.OnChange(func(connected bool, devices []Info) {
		changes <- connected
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return enum.calls() > 0 }, 2*time.Second, 5*time.Millisecond)

	enum.set([]Info{voyager}, nil)
	select {
	case c := <-changes:
		assert.True(t, c)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for connect")
	}

	enum.set(nil, nil)
	select {
	case c := <-changes:
		assert.False(t, c)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for disconnect")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRunInitialStateIsSilent(t *testing.T) {
	enum := &fakeEnumerator{devices: []Info{voyager}}
	m := NewMonitor(enum, Config{PollInterval: time.Hour})

	called := false
	m.OnChange(func(bool, []Info) { called = true })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m.Run(ctx)

	assert.True(t, m.Connected())
	assert.False(t, called)
}

func TestInfoString(t *testing.T) {
	assert.Equal(t, "3297:1977 (bus 1, address 4)", voyager.String())
}

// Packages such as config import device for its constants; libusb must stay
// behind the usb subpackage so they build without it.
func TestPackageDoesNotImportLibusb(t *testing.T) {
	entries, err := os.ReadDir(".")
	require.NoError(t, err)

	fset := token.NewFileSet()
	checked := 0
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		f, err := parser.ParseFile(fset, name, nil, parser.ImportsOnly)
		require.NoError(t, err)
		for _, imp := range f.Imports {
			path, err := strconv.Unquote(imp.Path.Value)
			require.NoError(t, err)
			assert.NotEqual(t, "github.com/google/gousb", path, "%s imports gousb", name)
		}
		checked++
	}
	assert.Positive(t, checked)
}
