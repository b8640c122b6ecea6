package main

import (
	"testing"

	"github.com/phil-mansfield/augustus/io"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetModeName(t *testing.T) {
	a, b, c := "", "x.config", ""
	vars := map[string]*string{"A": &a, "B": &b, "C": &c}

	name, err := getModeName(vars)
	require.NoError(t, err)
	assert.Equal(t, "B", name)

	a = "y.config"
	_, err = getModeName(vars)
	assert.EqualError(t, err, "The following flags were set: A, B, but "+
		"augustus only accepts one flag at a time.")

	a, b = "", ""
	_, err = getModeName(vars)
	assert.Error(t, err)
}

func TestBuilderFromConfig(t *testing.T) {
	wrap := io.DefaultBuildCataloguesWrapper()
	con := &wrap.BuildCatalogues
	con.SnapDir, con.SnapNamebase = "/data", "snap_"
	con.FinderCommand = "member_search.sh"
	con.SnapStart, con.SnapEnd = 3, 5
	con.SSPTableFile = "ssp.hdf5"
	require.NoError(t, con.CheckInit())

	b, err := builderFromConfig(con)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 4, 5}, b.SnapRange)
	assert.Equal(t, "snap", b.Options.HaloID)
	assert.Equal(t, "ssp.hdf5", b.Options.SSPTableFile)
	assert.Equal(t, "", b.Options.FOF6DFile)

	_, catFile, _ := b.Paths(4)
	assert.Equal(t, "/data/caesar_files/caesar_snap__004.hdf5", catFile)

	con.SimulationFormat = "ART"
	_, err = builderFromConfig(con)
	assert.Error(t, err)
}
