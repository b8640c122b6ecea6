package io

import (
	"encoding/binary"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/phil-mansfield/augustus/errs"
)

const (
	gadget2HeaderSize = 256

	// DefaultSimulationFormat is the SimulationReaders entry used when no
	// format is configured.
	DefaultSimulationFormat = "HDF5"
)

// SimulationSource is a loaded simulation snapshot. Only the cosmological
// scalars are exposed: particle data is left to whatever reader produced
// the source.
type SimulationSource interface {
	Redshift() float64
	OmegaLambda() float64
	OmegaMatter() float64
	HubbleConstant() float64
}

// SimulationLoader opens the simulation snapshot at the given path.
type SimulationLoader func(file string) (SimulationSource, error)

var (
	// GadgetEndianness is the byte order assumed for Gadget-2 files read
	// through SimulationReaders.
	GadgetEndianness binary.ByteOrder = binary.LittleEndian

	// SimulationReaders maps the names accepted by the SimulationFormat
	// config variable to loaders.
	SimulationReaders = map[string]SimulationLoader{
		"HDF5": func(file string) (SimulationSource, error) {
			hd, err := ReadHDF5(file)
			if err != nil {
				return nil, err
			}
			return hd, nil
		},
		"Gadget-2": func(file string) (SimulationSource, error) {
			hd, err := ReadGadget2(file, GadgetEndianness)
			if err != nil {
				return nil, err
			}
			return hd, nil
		},
		"LGadget-2": func(file string) (SimulationSource, error) {
			hd, err := ReadLGadget2(file, GadgetEndianness)
			if err != nil {
				return nil, err
			}
			return hd, nil
		},
	}
)

// LookupSimulationReader returns the loader registered under format.
func LookupSimulationReader(format string) (SimulationLoader, error) {
	loader, ok := SimulationReaders[format]
	if !ok {
		names := []string{}
		for name := range SimulationReaders {
			names = append(names, name)
		}
		sort.Strings(names)
		return nil, fmt.Errorf("%w: Unrecognized SimulationFormat '%s'. "+
			"The only accepted formats are: %s.",
			errs.Configuration, format, strings.Join(names, ", "))
	}
	return loader, nil
}

// GadgetHeader is the standardized header of a Gadget-2 or LGadget-2 file.
// It implements SimulationSource.
type GadgetHeader struct {
	Cosmo CosmologyHeader

	Mass        float64 // Mass of one dark matter particle
	Count       int64   // Number of particles in this file
	TotalCount  int64   // Number of particles in all files
	BoxSize     float64
	ScaleFactor float64
}

// CosmologyHeader contains information describing the cosmological
// context in which the simulation was run.
type CosmologyHeader struct {
	Z      float64
	OmegaM float64
	OmegaL float64
	H100   float64
}

func (hd *GadgetHeader) Redshift() float64       { return hd.Cosmo.Z }
func (hd *GadgetHeader) OmegaLambda() float64    { return hd.Cosmo.OmegaL }
func (hd *GadgetHeader) OmegaMatter() float64    { return hd.Cosmo.OmegaM }
func (hd *GadgetHeader) HubbleConstant() float64 { return hd.Cosmo.H100 }

// rawLGadget2Header is a struct with the same fields as the raw header data
// of an LGadget-2 file.
type rawLGadget2Header struct {
	NPart                                     [6]uint32
	Mass                                      [6]float64
	Time, Redshift                            float64
	FlagSfr, FlagFeedback                     int32
	NPartTotal                                [6]uint32
	FlagCooling, NumFiles                     int32
	BoxSize, Omega0, OmegaLambda, HubbleParam float64
	FlagStellarAge, HashTabSize               int32

	Padding [88]byte
}

// rawGadget2Header is a struct with the same fields as the raw header data
// of a standard cosmological Gadget-2 file.
type rawGadget2Header struct {
	NPart                                     [6]uint32
	Mass                                      [6]float64
	Time, Redshift                            float64
	FlagSfr, FlagFeedback                     int32
	Nall                                      [6]uint32
	FlagCooling, NumFiles                     int32
	BoxSize, Omega0, OmegaLambda, HubbleParam float64
	FlagStellarAge, FlagMetals                int32
	NallHW                                    [6]uint32
	FlagEntropyICs                            int32

	Padding [60]byte
}

// Standardize returns a GadgetHeader that corresponds to the source
// LGadget-2 header.
func (gh *rawLGadget2Header) Standardize() *GadgetHeader {
	h := &GadgetHeader{}

	h.Count = int64(gh.NPart[1])
	h.TotalCount = int64(uint64(gh.NPartTotal[1]) +
		uint64(gh.NPartTotal[0])<<32)
	h.Mass = gh.Mass[1]
	h.BoxSize = gh.BoxSize
	h.ScaleFactor = gh.Time

	h.Cosmo.Z = gh.Redshift
	h.Cosmo.OmegaM = gh.Omega0
	h.Cosmo.OmegaL = gh.OmegaLambda
	h.Cosmo.H100 = gh.HubbleParam

	return h
}

// Standardize returns a GadgetHeader that corresponds to the source
// Gadget-2 header.
func (gh *rawGadget2Header) Standardize() *GadgetHeader {
	h := &GadgetHeader{}

	h.Count = int64(gh.NPart[1])
	h.TotalCount = int64(uint64(gh.Nall[1]) + uint64(gh.NallHW[1])<<32)
	h.Mass = gh.Mass[1]
	h.BoxSize = gh.BoxSize
	h.ScaleFactor = gh.Time

	h.Cosmo.Z = gh.Redshift
	h.Cosmo.OmegaM = gh.Omega0
	h.Cosmo.OmegaL = gh.OmegaLambda
	h.Cosmo.H100 = gh.HubbleParam

	return h
}

// ReadGadget2 reads the header of a cosmological Gadget-2 file written with
// the given endianness.
func ReadGadget2(file string, order binary.ByteOrder) (*GadgetHeader, error) {
	raw := &rawGadget2Header{}
	if err := readRawGadgetHeader(file, order, raw); err != nil {
		return nil, err
	}
	return raw.Standardize(), nil
}

// ReadLGadget2 reads the header of an LGadget-2 file written with the given
// endianness.
func ReadLGadget2(file string, order binary.ByteOrder) (*GadgetHeader, error) {
	raw := &rawLGadget2Header{}
	if err := readRawGadgetHeader(file, order, raw); err != nil {
		return nil, err
	}
	return raw.Standardize(), nil
}

// WriteGadget2Header writes a header-only Gadget-2 file. It exists so that
// small fixture snapshots can be generated without a simulation code.
func WriteGadget2Header(file string, order binary.ByteOrder, hd *GadgetHeader) error {
	raw := &rawGadget2Header{}
	raw.NPart[1] = uint32(hd.Count)
	raw.Nall[1] = uint32(hd.TotalCount)
	raw.NallHW[1] = uint32(uint64(hd.TotalCount) >> 32)
	raw.Mass[1] = hd.Mass
	raw.Time = hd.ScaleFactor
	raw.Redshift = hd.Cosmo.Z
	raw.BoxSize = hd.BoxSize
	raw.Omega0 = hd.Cosmo.OmegaM
	raw.OmegaLambda = hd.Cosmo.OmegaL
	raw.HubbleParam = hd.Cosmo.H100
	raw.NumFiles = 1

	f, err := os.Create(file)
	if err != nil {
		return err
	}
	defer f.Close()

	size := int32(gadget2HeaderSize)
	if err = binary.Write(f, order, size); err != nil {
		return err
	}
	if err = binary.Write(f, order, raw); err != nil {
		return err
	}
	if err = binary.Write(f, order, size); err != nil {
		return err
	}
	return f.Close()
}

// readRawGadgetHeader reads the Fortran-blocked header of a Gadget-2 file
// into rawHd and checks that the block markers are consistent.
func readRawGadgetHeader(
	file string, order binary.ByteOrder, rawHd interface{},
) error {
	info, err := os.Stat(file)
	if err != nil {
		return fmt.Errorf("The file %s cannot be opened. The system error "+
			"is: \"%s\"", file, err.Error())
	} else if info.IsDir() {
		return fmt.Errorf("The file %s is a directory, not a Gadget-2 file.",
			file)
	}

	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	nHeader, nFooter := int32(0), int32(0)

	if err = binary.Read(f, order, &nHeader); err != nil {
		return fmt.Errorf("%s is not a valid Gadget-2 file: %s", file, err)
	}
	if nHeader != gadget2HeaderSize {
		return fmt.Errorf("%s is not a valid Gadget-2 file: the first "+
			"integer would lead to a header with %d bytes instead of %d.",
			file, nHeader, gadget2HeaderSize)
	}

	if err = binary.Read(f, order, rawHd); err != nil {
		return fmt.Errorf("%s is not a valid Gadget-2 file: %s", file, err)
	}

	if err = binary.Read(f, order, &nFooter); err != nil {
		return fmt.Errorf("%s is not a valid Gadget-2 file: %s", file, err)
	}
	if nHeader != nFooter {
		return fmt.Errorf("%s is not a valid Gadget-2 file: the header, %d, "+
			"and footer, %d, of the first data block don't match.",
			file, nHeader, nFooter)
	}

	return nil
}

// Type checking
var (
	_ SimulationSource = &GadgetHeader{}
)
