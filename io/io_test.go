package io

import (
	"encoding/binary"
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawHeaderSizes(t *testing.T) {
	assert.Equal(t, gadget2HeaderSize, binary.Size(&rawGadget2Header{}))
	assert.Equal(t, gadget2HeaderSize, binary.Size(&rawLGadget2Header{}))
}

func TestGadget2HeaderRoundTrip(t *testing.T) {
	table := []struct {
		order binary.ByteOrder
		hd    GadgetHeader
	}{
		{binary.LittleEndian, GadgetHeader{
			Cosmo: CosmologyHeader{Z: 2.5, OmegaM: 0.27, OmegaL: 0.73, H100: 0.7},
			Mass:  1.5, Count: 128, TotalCount: 1 << 34,
			BoxSize: 62.5, ScaleFactor: 1 / 3.5,
		}},
		{binary.BigEndian, GadgetHeader{
			Cosmo: CosmologyHeader{Z: 0, OmegaM: 0.3, OmegaL: 0.7, H100: 0.68},
			Mass:  2, Count: 8, TotalCount: 8,
			BoxSize: 12, ScaleFactor: 1,
		}},
	}

	dir := t.TempDir()
	for i, test := range table {
		file := path.Join(dir, "snap.hdf5")
		require.NoError(t, WriteGadget2Header(file, test.order, &test.hd))

		hd, err := ReadGadget2(file, test.order)
		require.NoError(t, err, "%d)", i)
		assert.Equal(t, test.hd, *hd, "%d)", i)

		assert.Equal(t, test.hd.Cosmo.Z, hd.Redshift(), "%d)", i)
		assert.Equal(t, test.hd.Cosmo.OmegaL, hd.OmegaLambda(), "%d)", i)
		assert.Equal(t, test.hd.Cosmo.OmegaM, hd.OmegaMatter(), "%d)", i)
		assert.Equal(t, test.hd.Cosmo.H100, hd.HubbleConstant(), "%d)", i)
	}
}

func TestReadGadget2Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadGadget2(path.Join(dir, "missing.hdf5"), binary.LittleEndian)
	assert.Error(t, err)

	_, err = ReadGadget2(dir, binary.LittleEndian)
	assert.Error(t, err)

	garbage := path.Join(dir, "garbage.hdf5")
	require.NoError(t, os.WriteFile(garbage, []byte("not a snapshot"), 0666))
	_, err = ReadGadget2(garbage, binary.LittleEndian)
	assert.Error(t, err)

	truncated := path.Join(dir, "truncated.hdf5")
	buf := make([]byte, 4+gadget2HeaderSize)
	binary.LittleEndian.PutUint32(buf, gadget2HeaderSize)
	require.NoError(t, os.WriteFile(truncated, buf, 0666))
	_, err = ReadGadget2(truncated, binary.LittleEndian)
	assert.Error(t, err)
}

func TestLookupSimulationReader(t *testing.T) {
	for _, format := range []string{"HDF5", "Gadget-2", "LGadget-2"} {
		loader, err := LookupSimulationReader(format)
		assert.NoError(t, err)
		assert.NotNil(t, loader)
	}

	_, err := LookupSimulationReader("GIZMO")
	assert.Error(t, err)
}

func TestSimulationReadersLoad(t *testing.T) {
	file := path.Join(t.TempDir(), "snap_000.hdf5")
	hd := &GadgetHeader{Cosmo: CosmologyHeader{Z: 1, OmegaM: 0.3, OmegaL: 0.7, H100: 0.7}}
	require.NoError(t, WriteGadget2Header(file, GadgetEndianness, hd))

	sim, err := SimulationReaders["Gadget-2"](file)
	require.NoError(t, err)
	assert.Equal(t, 1.0, sim.Redshift())

	sim, err = SimulationReaders["Gadget-2"](file + ".missing")
	assert.Error(t, err)
	assert.Nil(t, sim)
}
