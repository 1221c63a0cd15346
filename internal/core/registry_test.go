package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubDriver is an exporter and importer driver whose dependency check is
// controlled by the test.
type stubDriver struct {
	depErr error
	probes *int
}

func (d stubDriver) CheckDependencies() error {
	if d.probes != nil {
		*d.probes++
	}
	return d.depErr
}

func (stubDriver) Extension() string { return "stub" }

func (stubDriver) NewExporter(job *ExportJob) (Exporter, error) { return stubExporter{}, nil }

func (stubDriver) NewImporter(job *ImportJob) (Importer, error) { return stubImporter{}, nil }

type stubExporter struct{}

func (stubExporter) Perform(ctx context.Context) (string, error) { return "", nil }

type stubImporter struct{}

func (stubImporter) Perform(ctx context.Context) (int, error) { return 0, nil }

func TestBuildRegistry_ResolvesOnlyActive(t *testing.T) {
	probeErr := errors.New("module xlsxwriter not installed")
	r := BuildRegistry(
		map[string]ExporterDriver{"good": stubDriver{}, "broken": stubDriver{depErr: probeErr}},
		map[string]ImporterDriver{"good": stubDriver{}, "broken": stubDriver{depErr: probeErr}},
	)

	_, err := r.Exporter("good")
	require.NoError(t, err)
	_, err = r.Importer("good")
	require.NoError(t, err)

	_, err = r.Exporter("broken")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = r.Importer("broken")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = r.Exporter("pdf")
	require.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, []string{"good"}, r.ExporterNames())
	assert.Equal(t, []string{"good"}, r.ImporterNames())
}

func TestBuildRegistry_StrictLookup(t *testing.T) {
	probeErr := errors.New("module xlsxwriter not installed")
	r := BuildRegistry(
		map[string]ExporterDriver{"broken": stubDriver{depErr: probeErr}},
		map[string]ImporterDriver{"broken": stubDriver{depErr: probeErr}},
	)

	_, err := r.RequireExporter("broken")
	require.ErrorIs(t, err, ErrMissingDependency)
	require.ErrorIs(t, err, probeErr)

	_, err = r.RequireImporter("broken")
	require.ErrorIs(t, err, ErrMissingDependency)

	_, err = r.RequireExporter("never-registered")
	require.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrMissingDependency)
}

func TestBuildRegistry_ProbesOnce(t *testing.T) {
	probes := 0
	d := stubDriver{probes: &probes}
	r := BuildRegistry(map[string]ExporterDriver{"x": d}, nil)

	for range 3 {
		_, err := r.Exporter("x")
		require.NoError(t, err)
	}
	assert.Equal(t, 1, probes)
}

func TestIsActive(t *testing.T) {
	ok, err := IsActive(stubDriver{}, true)
	require.NoError(t, err)
	assert.True(t, ok)

	broken := stubDriver{depErr: errors.New("missing")}

	ok, err = IsActive(broken, false)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = IsActive(broken, true)
	require.ErrorIs(t, err, ErrMissingDependency)
	assert.False(t, ok)
}

func TestRegister_PanicsOnDuplicate(t *testing.T) {
	name := "registry-test-dup"
	RegisterExporter(name, stubDriver{})
	RegisterImporter(name, stubDriver{})
	t.Cleanup(func() {
		driversMu.Lock()
		delete(exporterDrivers, name)
		delete(importerDrivers, name)
		driversMu.Unlock()
	})

	assert.Panics(t, func() { RegisterExporter(name, stubDriver{}) })
	assert.Panics(t, func() { RegisterImporter(name, stubDriver{}) })
	assert.Panics(t, func() { RegisterExporter("registry-test-nil", nil) })
}

func TestNewRegistry_SnapshotsCandidates(t *testing.T) {
	name := "registry-test-snapshot"
	RegisterExporter(name, stubDriver{})
	t.Cleanup(func() {
		driversMu.Lock()
		delete(exporterDrivers, name)
		driversMu.Unlock()
	})

	r := NewRegistry()
	_, err := r.Exporter(name)
	require.NoError(t, err)
}
