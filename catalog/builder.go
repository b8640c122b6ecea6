package catalog

import (
	"fmt"
	"log"
	"os"
	"path"
	"sort"
	"strconv"

	"github.com/phil-mansfield/augustus/errs"
	"github.com/phil-mansfield/augustus/io"
)

// Options are the member search options passed to a GroupFinder. Options is
// a value type: the With methods return modified copies.
type Options struct {
	HaloID, FSPSBands, SSPModel, SSPTableFile string
	NProc                                     int
	FOF6DFile                                 string
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{HaloID: "snap", FSPSBands: "uvoir", SSPModel: "FSPS"}
}

func (opt Options) WithHaloID(id string) Options {
	opt.HaloID = id
	return opt
}

func (opt Options) WithFSPSBands(bands string) Options {
	opt.FSPSBands = bands
	return opt
}

func (opt Options) WithSSPModel(model string) Options {
	opt.SSPModel = model
	return opt
}

func (opt Options) WithSSPTableFile(file string) Options {
	opt.SSPTableFile = file
	return opt
}

func (opt Options) WithNProc(n int) Options {
	opt.NProc = n
	return opt
}

func (opt Options) WithFOF6DFile(file string) Options {
	opt.FOF6DFile = file
	return opt
}

// Map returns the options under the names the group finder recognizes.
// Unset options are left out.
func (opt Options) Map() map[string]string {
	m := map[string]string{}
	set := func(key, val string) {
		if val != "" {
			m[key] = val
		}
	}

	set("haloid", opt.HaloID)
	set("fsps_bands", opt.FSPSBands)
	set("ssp_model", opt.SSPModel)
	set("ssp_table_file", opt.SSPTableFile)
	set("fof6d_file", opt.FOF6DFile)
	if opt.NProc > 0 {
		m["nproc"] = strconv.Itoa(opt.NProc)
	}
	return m
}

// Snapshot is a loaded simulation snapshot handed to a GroupFinder.
type Snapshot struct {
	Num  int
	File string
	Sim  io.SimulationSource
}

// Result is the output of a member search.
type Result interface {
	Save(file string) error
}

// GroupFinder identifies the galaxies and halos of a snapshot.
type GroupFinder interface {
	MemberSearch(snap Snapshot, opt Options) (Result, error)
}

// Builder runs a GroupFinder over a range of snapshots and saves a catalogue
// for each of them.
type Builder struct {
	SnapRange    []int
	SnapNamebase string
	SnapDir      string

	// NewNamebase defaults to SnapNamebase, CatalogueDir to
	// SnapDir/caesar_files, and FOF6DDir to CatalogueDir/fof6D.
	NewNamebase  string
	CatalogueDir string
	FOF6DDir     string

	Options Options
	Finder  GroupFinder
	Load    io.SimulationLoader

	// Log receives one line per snapshot. It may be nil.
	Log *log.Logger
}

func (b *Builder) newNamebase() string {
	if b.NewNamebase == "" {
		return b.SnapNamebase
	}
	return b.NewNamebase
}

func (b *Builder) catalogueDir() string {
	if b.CatalogueDir == "" {
		return path.Join(b.SnapDir, "caesar_files")
	}
	return b.CatalogueDir
}

func (b *Builder) fof6DDir() string {
	if b.FOF6DDir == "" {
		return path.Join(b.catalogueDir(), "fof6D")
	}
	return b.FOF6DDir
}

// Paths returns the snapshot, catalogue, and FOF6D file names used for the
// given snapshot.
func (b *Builder) Paths(snap int) (snapFile, catFile, fof6DFile string) {
	snapFile = path.Join(b.SnapDir,
		fmt.Sprintf("%s%03d.hdf5", b.SnapNamebase, snap))
	catFile = path.Join(b.catalogueDir(),
		fmt.Sprintf("caesar_%s_%03d.hdf5", b.newNamebase(), snap))
	fof6DFile = path.Join(b.fof6DDir(),
		fmt.Sprintf("fof6D_%s_%03d.hdf5", b.newNamebase(), snap))
	return snapFile, catFile, fof6DFile
}

// Build runs the member search on every snapshot in SnapRange, in order,
// and stops at the first failure. Errors returned by the GroupFinder and its
// Results are passed through as-is.
func (b *Builder) Build() error {
	if b.Finder == nil {
		return fmt.Errorf("%w: No group finder was given to the catalogue "+
			"builder.", errs.Configuration)
	} else if b.Load == nil {
		return fmt.Errorf("%w: No simulation loader was given to the "+
			"catalogue builder.", errs.Configuration)
	}

	for i, snap := range b.SnapRange {
		snapFile, catFile, fof6DFile := b.Paths(snap)

		for _, dir := range []string{b.catalogueDir(), b.fof6DDir()} {
			if err := os.MkdirAll(dir, 0777); err != nil {
				return err
			}
		}

		if b.Log != nil {
			b.Log.Printf("Member search on snapshot %d (%d/%d): %s",
				snap, i+1, len(b.SnapRange), snapFile)
		}

		sim, err := b.Load(snapFile)
		if err != nil {
			return fmt.Errorf("%w: Could not load snapshot %d: %s",
				errs.Load, snap, err.Error())
		}

		opt := b.Options.WithFOF6DFile(fof6DFile)
		res, err := b.Finder.MemberSearch(Snapshot{snap, snapFile, sim}, opt)
		if err != nil {
			return err
		}
		if err = res.Save(catFile); err != nil {
			return err
		}
	}

	return nil
}

// sortedKeys returns the keys of m in increasing order.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
