package io

import (
	"fmt"

	"github.com/phil-mansfield/augustus/errs"
	"gopkg.in/gcfg.v1"
)

const (
	ExampleCollectionFile = `[Collection]

#######################
# Required Parameters #
#######################

# Simulation snapshots are read from SimDir/SimNamebase###.hdf5 and their
# catalogues from CatalogueDir/CatalogueNamebase###.hdf5, where ### is the
# zero-padded snapshot number.
SimDir = path/to/snapshots
SimNamebase = snap_
CatalogueDir = path/to/snapshots/caesar_files
CatalogueNamebase = caesar_snap_

# The snapshots to load. Repeat the variable once per snapshot.
Snaps = 0
Snaps = 1

#######################
# Optional Parameters #
#######################

# Instead of snapshot numbers, you can request redshifts. The closest snapshot
# to each redshift is loaded. This requires BoxspaceFile, a text file with
# one scale factor per line (line i is snapshot i). If TwoColumnBoxspace is
# set, the file instead has two columns: snapshot number and scale factor.
# SnapsAsRedshift = true
# Redshifts = 2.0
# Redshifts = 0.5
# BoxspaceFile = path/to/boxspace.txt
# TwoColumnBoxspace = false

# The format of the simulation files. HDF5 (GIZMO/Gadget-3 style files with
# a Header group), Gadget-2, and LGadget-2 are supported.
# SimulationFormat = HDF5

# The format of the catalogue files. Only augustus, the format written by
# the BuildCatalogues mode, is supported.
# CatalogueFormat = augustus

# Extract galaxy and halo particle membership once everything is loaded.
# FindGalaxies = true
# FindHalos = true

# LogFile = log.out`

	ExampleBuildCataloguesFile = `[BuildCatalogues]

#######################
# Required Parameters #
#######################

# Snapshots are read from SnapDir/SnapNamebase###.hdf5.
SnapDir = path/to/snapshots
SnapNamebase = snap_m12-5n128_

# (Inclusive) range of snapshots to run the group finder on. Alternatively,
# list them individually with repeated Snaps variables.
SnapStart = 0
SnapEnd = 66
# Snaps = 5

# The group finder is an external program. It is run once per snapshot as
#   FinderCommand FinderArgs... -snapshot <file> -output <file> -<opt>=<val>...
FinderCommand = path/to/member_search.sh

#######################
# Optional Parameters #
#######################

# FinderArgs = extra_argument

# Output files are named caesar_NewNamebase_###.hdf5 and
# fof6D_NewNamebase_###.hdf5. NewNamebase defaults to SnapNamebase.
# NewNamebase = m12-5n128_

# Output directories. CatalogueDir defaults to SnapDir/caesar_files and
# FOF6DDir defaults to CatalogueDir/fof6D. Both are created if needed.
# CatalogueDir = path/to/caesar_files
# FOF6DDir = path/to/caesar_files/fof6D

# Member search options passed to the group finder.
# HaloID = snap
# FSPSBands = uvoir
# SSPModel = FSPS
# SSPTableFile = path/to/SSP_Chab_EL.hdf5
# NProc = 16

# SimulationFormat = HDF5
# LogFile = log.out`
)

// CollectionConfig describes which snapshots a collection is built from.
type CollectionConfig struct {
	SimDir, SimNamebase             string
	CatalogueDir, CatalogueNamebase string

	Snaps []int

	SnapsAsRedshift   bool
	Redshifts         []float64
	BoxspaceFile      string
	TwoColumnBoxspace bool

	SimulationFormat, CatalogueFormat string

	FindGalaxies, FindHalos bool

	LogFile string
}

type CollectionWrapper struct {
	Collection CollectionConfig
}

func DefaultCollectionWrapper() *CollectionWrapper {
	con := CollectionConfig{}
	con.SimulationFormat = DefaultSimulationFormat
	con.CatalogueFormat = "augustus"
	return &CollectionWrapper{con}
}

// ReadCollectionConfig reads and checks the [Collection] section of the
// given config file.
func ReadCollectionConfig(file string) (*CollectionConfig, error) {
	wrap := DefaultCollectionWrapper()
	if err := gcfg.ReadFileInto(wrap, file); err != nil {
		return nil, fmt.Errorf("%w: %s", errs.Configuration, err.Error())
	}
	con := &wrap.Collection
	if err := con.CheckInit(); err != nil {
		return nil, err
	}
	return con, nil
}

func (con *CollectionConfig) ValidSimDir() bool       { return con.SimDir != "" }
func (con *CollectionConfig) ValidCatalogueDir() bool { return con.CatalogueDir != "" }
func (con *CollectionConfig) ValidBoxspaceFile() bool { return con.BoxspaceFile != "" }

// CheckInit returns an error if the config is missing a required variable or
// sets both snapshot numbers and redshifts.
func (con *CollectionConfig) CheckInit() error {
	if !con.ValidSimDir() {
		return fmt.Errorf("%w: Invalid/non-existent 'SimDir' value.",
			errs.Configuration)
	} else if !con.ValidCatalogueDir() {
		return fmt.Errorf("%w: Invalid/non-existent 'CatalogueDir' value.",
			errs.Configuration)
	}

	if con.SnapsAsRedshift {
		if len(con.Snaps) > 0 {
			return fmt.Errorf("%w: 'Snaps' cannot be set when "+
				"'SnapsAsRedshift' is true. Use 'Redshifts' instead.",
				errs.Configuration)
		} else if !con.ValidBoxspaceFile() {
			return fmt.Errorf("%w: A 'BoxspaceFile' must be supplied when "+
				"passing redshifts instead of snapshot numbers.",
				errs.Configuration)
		}
	} else if len(con.Redshifts) > 0 {
		return fmt.Errorf("%w: 'Redshifts' is set, but 'SnapsAsRedshift' "+
			"is not.", errs.Configuration)
	}

	if _, err := LookupSimulationReader(con.SimulationFormat); err != nil {
		return err
	}

	return nil
}

// BuildCataloguesConfig describes a batch of group finder runs.
type BuildCataloguesConfig struct {
	SnapDir, SnapNamebase, NewNamebase string
	CatalogueDir, FOF6DDir            string

	Snaps              []int
	SnapStart, SnapEnd int

	FinderCommand string
	FinderArgs    []string

	HaloID, FSPSBands, SSPModel, SSPTableFile string
	NProc                                     int

	SimulationFormat string

	LogFile string
}

type BuildCataloguesWrapper struct {
	BuildCatalogues BuildCataloguesConfig
}

func DefaultBuildCataloguesWrapper() *BuildCataloguesWrapper {
	con := BuildCataloguesConfig{}
	con.SnapStart, con.SnapEnd = 0, -1
	con.HaloID = "snap"
	con.FSPSBands = "uvoir"
	con.SSPModel = "FSPS"
	con.SimulationFormat = DefaultSimulationFormat
	return &BuildCataloguesWrapper{con}
}

// ReadBuildCataloguesConfig reads and checks the [BuildCatalogues] section
// of the given config file.
func ReadBuildCataloguesConfig(file string) (*BuildCataloguesConfig, error) {
	wrap := DefaultBuildCataloguesWrapper()
	if err := gcfg.ReadFileInto(wrap, file); err != nil {
		return nil, fmt.Errorf("%w: %s", errs.Configuration, err.Error())
	}
	con := &wrap.BuildCatalogues
	if err := con.CheckInit(); err != nil {
		return nil, err
	}
	return con, nil
}

func (con *BuildCataloguesConfig) ValidSnapDir() bool       { return con.SnapDir != "" }
func (con *BuildCataloguesConfig) ValidSnapNamebase() bool  { return con.SnapNamebase != "" }
func (con *BuildCataloguesConfig) ValidFinderCommand() bool { return con.FinderCommand != "" }
func (con *BuildCataloguesConfig) ValidIteratedRange() bool { return con.SnapEnd >= 0 }
func (con *BuildCataloguesConfig) ValidNProc() bool         { return con.NProc >= 0 }

func (con *BuildCataloguesConfig) CheckInit() error {
	if !con.ValidSnapDir() {
		return fmt.Errorf("%w: Invalid/non-existent 'SnapDir' value.",
			errs.Configuration)
	} else if !con.ValidSnapNamebase() {
		return fmt.Errorf("%w: Invalid/non-existent 'SnapNamebase' value.",
			errs.Configuration)
	} else if !con.ValidFinderCommand() {
		return fmt.Errorf("%w: Invalid/non-existent 'FinderCommand' value.",
			errs.Configuration)
	} else if !con.ValidNProc() {
		return fmt.Errorf("%w: 'NProc' must be non-negative, but is %d.",
			errs.Configuration, con.NProc)
	}

	if len(con.Snaps) > 0 && con.ValidIteratedRange() {
		return fmt.Errorf("%w: Only one of 'Snaps' and 'SnapStart'/"+
			"'SnapEnd' can be set.", errs.Configuration)
	} else if len(con.Snaps) == 0 && !con.ValidIteratedRange() {
		return fmt.Errorf("%w: Either 'Snaps' or 'SnapEnd' must be set.",
			errs.Configuration)
	} else if con.ValidIteratedRange() && con.SnapStart > con.SnapEnd {
		return fmt.Errorf("%w: 'SnapStart', %d, is larger than 'SnapEnd', %d.",
			errs.Configuration, con.SnapStart, con.SnapEnd)
	}

	if _, err := LookupSimulationReader(con.SimulationFormat); err != nil {
		return err
	}

	return nil
}

// SnapRange returns the snapshots the config asks for, in order.
func (con *BuildCataloguesConfig) SnapRange() []int {
	if len(con.Snaps) > 0 {
		out := make([]int, len(con.Snaps))
		copy(out, con.Snaps)
		return out
	}

	out := []int{}
	for snap := con.SnapStart; snap <= con.SnapEnd; snap++ {
		out = append(out, snap)
	}
	return out
}
