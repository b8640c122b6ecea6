package augustus

import (
	"errors"
	"math"
	"os"
	"path"
	"testing"

	"github.com/phil-mansfield/augustus/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSim struct {
	z, omegaL, omegaM, h0 float64
}

func (sim *fakeSim) Redshift() float64       { return sim.z }
func (sim *fakeSim) OmegaLambda() float64    { return sim.omegaL }
func (sim *fakeSim) OmegaMatter() float64    { return sim.omegaM }
func (sim *fakeSim) HubbleConstant() float64 { return sim.h0 }

type fakeCat struct {
	galaxies, halos []Object
}

func (cat *fakeCat) Galaxies() []Object { return cat.galaxies }
func (cat *fakeCat) Halos() []Object    { return cat.halos }

func testCat() *fakeCat {
	return &fakeCat{
		galaxies: []Object{
			{GroupID: 0, Gas: []int64{1, 2}, Stars: []int64{3},
				DarkMatter: []int64{4, 5, 6}, BlackHoles: []int64{}},
			{GroupID: 4, Gas: []int64{}, Stars: []int64{7, 8},
				DarkMatter: []int64{9}, BlackHoles: []int64{10}},
		},
		halos: []Object{
			{GroupID: 2, Gas: []int64{1, 2, 11}, Stars: []int64{3, 7, 8},
				DarkMatter: []int64{4, 5, 6, 9}, BlackHoles: []int64{10}},
		},
	}
}

var errMissing = errors.New("No such file")

func simLoader(sims map[string]*fakeSim) func(string) (SimulationSource, error) {
	return func(file string) (SimulationSource, error) {
		sim, ok := sims[file]
		if !ok {
			return nil, errMissing
		}
		return sim, nil
	}
}

func catLoader(cats map[string]*fakeCat) catalog.Loader {
	return func(file string) (CatalogueSource, error) {
		cat, ok := cats[file]
		if !ok {
			return nil, errMissing
		}
		return cat, nil
	}
}

func TestSnapshotLoad(t *testing.T) {
	sim := &fakeSim{2.5, 0.7, 0.3, 0.68}
	snap := NewSnapshot(
		simLoader(map[string]*fakeSim{"sim.hdf5": sim}),
		catLoader(map[string]*fakeCat{"cat.hdf5": testCat()}),
	)

	assert.Equal(t, CosmoParams{}, snap.Cosmo())
	assert.Equal(t, 0, snap.Galaxies().Len())
	assert.Equal(t, 0, snap.Halos().Len())

	err := snap.LoadSimulation("missing.hdf5")
	assert.True(t, errors.Is(err, ErrLoad))
	assert.Nil(t, snap.Simulation())

	require.NoError(t, snap.LoadSimulation("sim.hdf5"))
	assert.Equal(t, CosmoParams{Z: 2.5, OmegaL: 0.7, OmegaM: 0.3, H0: 0.68},
		snap.Cosmo())
	assert.Equal(t, map[string]float64{
		"redshift": 2.5, "omega_lambda": 0.7, "omega_matter": 0.3,
		"hubble_constant": 0.68,
	}, snap.Cosmo().Map())
	assert.Equal(t, "sim.hdf5", snap.SimulationFile())

	err = snap.LoadCatalogue("missing.hdf5")
	assert.True(t, errors.Is(err, ErrLoad))
	require.NoError(t, snap.LoadCatalogue("cat.hdf5"))
	assert.Equal(t, "cat.hdf5", snap.CatalogueFile())
}

func TestSnapshotDamagedCatalogue(t *testing.T) {
	file := path.Join(t.TempDir(), "caesar_000.hdf5")
	data := []byte{0, 0, 0, 0, 24, 0, 0, 0, 1, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0x10, 0, 0, 0, 0, 0, 0, 0, 0}
	require.NoError(t, os.WriteFile(file, data, 0666))

	snap := NewSnapshot(nil, catalog.Load)
	err := snap.LoadCatalogue(file)
	assert.True(t, errors.Is(err, ErrLoad))
	assert.Nil(t, snap.Catalogue())
}

func TestSnapshotNonFiniteRedshift(t *testing.T) {
	for _, z := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		snap := NewSnapshot(
			simLoader(map[string]*fakeSim{"sim.hdf5": {z, 0.7, 0.3, 0.7}}),
			nil,
		)
		err := snap.LoadSimulation("sim.hdf5")
		assert.True(t, errors.Is(err, ErrLoad), "z = %g", z)
		assert.Nil(t, snap.Simulation())
		assert.Equal(t, CosmoParams{}, snap.Cosmo())
	}
}

func TestSnapshotNoLoader(t *testing.T) {
	snap := NewSnapshot(nil, nil)
	assert.True(t, errors.Is(snap.LoadSimulation("a"), ErrConfiguration))
	assert.True(t, errors.Is(snap.LoadCatalogue("b"), ErrConfiguration))
}

func TestIdentifyBeforeLoad(t *testing.T) {
	table := []struct {
		sim SimulationSource
		cat CatalogueSource
	}{
		{nil, nil},
		{&fakeSim{z: 1}, nil},
		{nil, testCat()},
	}

	for i, test := range table {
		snap := NewSnapshotFromSources(test.sim, test.cat)
		assert.True(t, errors.Is(snap.IdentifyGalaxies(), ErrState), "%d)", i)
		assert.True(t, errors.Is(snap.IdentifyHalos(), ErrState), "%d)", i)
		assert.Equal(t, 0, snap.Galaxies().Len(), "%d)", i)
	}
}

func TestIdentify(t *testing.T) {
	cat := testCat()
	snap := NewSnapshotFromSources(&fakeSim{z: 1}, cat)
	assert.Equal(t, 1.0, snap.Cosmo().Z)

	require.NoError(t, snap.IdentifyGalaxies())
	gal := snap.Galaxies()
	assert.Equal(t, []int{0, 4}, gal.IDs())
	assert.Equal(t, 2, gal.Len())

	for _, obj := range cat.galaxies {
		ps, ok := gal.Particles(obj.GroupID)
		require.True(t, ok)
		assert.Equal(t, obj.Members(), ps)

		stars, ok := gal.Members(obj.GroupID, Stars)
		require.True(t, ok)
		assert.Equal(t, obj.Stars, stars)
	}
	_, ok := gal.Members(1, Gas)
	assert.False(t, ok)
	_, ok = gal.Particles(1)
	assert.False(t, ok)
	_, ok = gal.Members(0, Species(7))
	assert.False(t, ok)

	// Halos are untouched until asked for.
	assert.Equal(t, 0, snap.Halos().Len())
	require.NoError(t, snap.Identify(Halo))
	assert.Equal(t, []int{2}, snap.Membership(Halo).IDs())
	assert.Equal(t, []int64{4, 5, 6, 9}, snap.Halos().Species(DarkMatter)[2])

	assert.True(t, errors.Is(snap.Identify(Kind(5)), ErrValidation))
	assert.Nil(t, snap.Membership(Kind(5)))
}

func TestIdentifyReplaces(t *testing.T) {
	cat := testCat()
	snap := NewSnapshotFromSources(&fakeSim{z: 1}, cat)

	require.NoError(t, snap.IdentifyGalaxies())
	first := snap.Galaxies().IDs()
	require.NoError(t, snap.IdentifyGalaxies())
	assert.Equal(t, first, snap.Galaxies().IDs())
	assert.Equal(t, 2, snap.Galaxies().Len())

	cat.galaxies = cat.galaxies[:1]
	require.NoError(t, snap.IdentifyGalaxies())
	assert.Equal(t, []int{0}, snap.Galaxies().IDs())
	_, ok := snap.Galaxies().Particles(4)
	assert.False(t, ok)
}

func TestSpeciesKindNames(t *testing.T) {
	assert.Equal(t, "gas", Gas.String())
	assert.Equal(t, "black holes", BlackHoles.String())
	assert.Equal(t, "unknown species", Species(-1).String())
	assert.Equal(t, "galaxy", Galaxy.String())
	assert.Equal(t, "halo", Halo.String())
}
