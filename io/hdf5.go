package io

import (
	"fmt"
	"os"

	"gonum.org/v1/hdf5"
)

// HDF5Header is the Header group of an HDF5 snapshot, as written by
// GIZMO, AREPO, and Gadget-3/4. It implements SimulationSource.
type HDF5Header struct {
	Cosmo CosmologyHeader

	ScaleFactor float64
	BoxSize     float64
}

func (hd *HDF5Header) Redshift() float64       { return hd.Cosmo.Z }
func (hd *HDF5Header) OmegaLambda() float64    { return hd.Cosmo.OmegaL }
func (hd *HDF5Header) OmegaMatter() float64    { return hd.Cosmo.OmegaM }
func (hd *HDF5Header) HubbleConstant() float64 { return hd.Cosmo.H100 }

// hdf5HeaderGroup is the group holding the snapshot's header attributes.
const hdf5HeaderGroup = "Header"

// ReadHDF5 reads the header attributes of an HDF5 snapshot. Redshift,
// Omega0, OmegaLambda, and HubbleParam are required. Time and BoxSize are
// optional: a missing Time is computed from Redshift.
func ReadHDF5(file string) (*HDF5Header, error) {
	info, err := os.Stat(file)
	if err != nil {
		return nil, fmt.Errorf("The file %s cannot be opened. The system "+
			"error is: \"%s\"", file, err.Error())
	} else if info.IsDir() {
		return nil, fmt.Errorf("The file %s is a directory, not an HDF5 "+
			"snapshot.", file)
	} else if !hdf5.IsHDF5(file) {
		return nil, fmt.Errorf("%s is not an HDF5 file.", file)
	}

	f, err := hdf5.OpenFile(file, hdf5.F_ACC_RDONLY)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	g, err := f.OpenGroup(hdf5HeaderGroup)
	if err != nil {
		return nil, fmt.Errorf("%s is not a valid HDF5 snapshot: it has no "+
			"'%s' group.", file, hdf5HeaderGroup)
	}
	defer g.Close()

	hd := &HDF5Header{}
	required := []struct {
		name string
		val  *float64
	}{
		{"Redshift", &hd.Cosmo.Z},
		{"Omega0", &hd.Cosmo.OmegaM},
		{"OmegaLambda", &hd.Cosmo.OmegaL},
		{"HubbleParam", &hd.Cosmo.H100},
	}
	for _, attr := range required {
		if err = readFloat64Attr(g, attr.name, attr.val); err != nil {
			return nil, fmt.Errorf("%s is not a valid HDF5 snapshot: %s",
				file, err.Error())
		}
	}

	if err = readFloat64Attr(g, "Time", &hd.ScaleFactor); err != nil {
		hd.ScaleFactor = 1 / (1 + hd.Cosmo.Z)
	}
	if err = readFloat64Attr(g, "BoxSize", &hd.BoxSize); err != nil {
		hd.BoxSize = 0
	}

	return hd, nil
}

func readFloat64Attr(g *hdf5.Group, name string, val *float64) error {
	attr, err := g.OpenAttribute(name)
	if err != nil {
		return fmt.Errorf("the header attribute '%s' is missing.", name)
	}
	defer attr.Close()

	if err = attr.Read(val, hdf5.T_NATIVE_DOUBLE); err != nil {
		return fmt.Errorf("the header attribute '%s' could not be read as "+
			"a float: %s", name, err.Error())
	}
	return nil
}

// WriteHDF5Header writes an HDF5 file containing only a Header group. It
// exists so that small fixture snapshots can be generated without a
// simulation code.
func WriteHDF5Header(file string, hd *HDF5Header) error {
	f, err := hdf5.CreateFile(file, hdf5.F_ACC_TRUNC)
	if err != nil {
		return err
	}
	defer f.Close()

	g, err := f.CreateGroup(hdf5HeaderGroup)
	if err != nil {
		return err
	}
	defer g.Close()

	space, err := hdf5.CreateSimpleDataspace([]uint{1}, nil)
	if err != nil {
		return err
	}
	defer space.Close()

	attrs := []struct {
		name string
		val  float64
	}{
		{"Redshift", hd.Cosmo.Z},
		{"Omega0", hd.Cosmo.OmegaM},
		{"OmegaLambda", hd.Cosmo.OmegaL},
		{"HubbleParam", hd.Cosmo.H100},
		{"Time", hd.ScaleFactor},
		{"BoxSize", hd.BoxSize},
	}
	for _, a := range attrs {
		attr, err := g.CreateAttribute(a.name, hdf5.T_NATIVE_DOUBLE, space)
		if err != nil {
			return err
		}
		val := a.val
		err = attr.Write(&val, hdf5.T_NATIVE_DOUBLE)
		attr.Close()
		if err != nil {
			return err
		}
	}

	return nil
}

// Type checking
var (
	_ SimulationSource = &HDF5Header{}
)
