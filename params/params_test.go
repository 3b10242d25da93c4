package params_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/radiokit/aperture/imaging"
	"github.com/radiokit/aperture/params"
)

func writeSettings(t *testing.T, body string) string {
	t.Helper()
	name := filepath.Join(t.TempDir(), "run.json5")
	require.NoError(t, os.WriteFile(name, []byte(body), 0o644))
	return name
}

func TestLoadFullSettings(t *testing.T) {
	name := writeSettings(t, `{
		// A faceted w-projection run.
		configuration: "RING5",
		context: "facets_wstack",
		npixel: 256,
		cellsize_rad: 2e-4,
		weighting: "uniform",
		imaging: {
			facets: 4,
			wstack_m: 30.0,
			kernel: "wprojection",
			wstep_lambda: 25.0,
			support: 15,
			oversampling: 8,
			padding: 2,
		},
	}`)

	s, err := params.Load(name)
	require.NoError(t, err)
	require.Equal(t, "RING5", s.Configuration)
	require.Equal(t, "facets_wstack", s.Context)
	require.Equal(t, 256, s.Npixel)
	require.InDelta(t, 2e-4, s.Cellsize, 1e-18)
	require.Equal(t, "uniform", s.Weighting)
	require.Equal(t, 4, s.Imaging.Facets)
	require.InDelta(t, 30.0, s.Imaging.WStack, 1e-12)
	require.Equal(t, imaging.KernelWProjection, s.Imaging.Kernel)
	require.InDelta(t, 25.0, s.Imaging.WStep, 1e-12)
	require.Equal(t, 15, s.Imaging.Support)
}

func TestLoadMinimalSettingsUsesDefaults(t *testing.T) {
	name := writeSettings(t, `{
		configuration: "GRID5x5",
		npixel: 64,
		cellsize_rad: 1e-4,
	}`)

	s, err := params.Load(name)
	require.NoError(t, err)
	require.Equal(t, "2d", s.Context)
	require.Equal(t, imaging.WeightNatural, s.Weighting)
	require.Equal(t, imaging.DefaultParams(), s.Imaging)
}

func TestLoadTimesliceAuto(t *testing.T) {
	name := writeSettings(t, `{
		configuration: "RING5",
		context: "timeslice",
		npixel: 64,
		cellsize_rad: 1e-4,
		imaging: { timeslice: "auto" },
	}`)

	s, err := params.Load(name)
	require.NoError(t, err)
	require.True(t, s.Imaging.TimesliceAuto)

	name = writeSettings(t, `{
		configuration: "RING5",
		context: "timeslice",
		npixel: 64,
		cellsize_rad: 1e-4,
		imaging: { timeslice: 0.05 },
	}`)
	s, err = params.Load(name)
	require.NoError(t, err)
	require.False(t, s.Imaging.TimesliceAuto)
	require.InDelta(t, 0.05, s.Imaging.Timeslice, 1e-12)
}

func TestLoadReportsMissingKey(t *testing.T) {
	name := writeSettings(t, `{ configuration: "RING5", cellsize_rad: 1e-4 }`)
	_, err := params.Load(name)
	require.ErrorContains(t, err, "npixel: not found")
}

func TestLoadReportsWrongType(t *testing.T) {
	name := writeSettings(t, `{
		configuration: "RING5",
		npixel: "big",
		cellsize_rad: 1e-4,
	}`)
	_, err := params.Load(name)
	require.ErrorContains(t, err, "npixel: is not a float64")

	name = writeSettings(t, `{
		configuration: "RING5",
		npixel: 64,
		cellsize_rad: 1e-4,
		imaging: { timeslice: true },
	}`)
	_, err = params.Load(name)
	require.ErrorContains(t, err, "imaging.timeslice")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := params.Load(filepath.Join(t.TempDir(), "absent.json5"))
	require.Error(t, err)
}
