package augustus

import (
	"fmt"
	"log"
	"strings"

	"github.com/phil-mansfield/augustus/catalog"
	"github.com/phil-mansfield/augustus/io"
	"github.com/phil-mansfield/augustus/redshift"
)

// Config describes the snapshots a Collection is built from.
type Config struct {
	// Snaps lists snapshot numbers. If SnapsAsRedshift is set, Redshifts
	// is used instead and each redshift is resolved to the closest
	// snapshot listed in BoxspaceFile.
	Snaps             []int
	Redshifts         []float64
	SnapsAsRedshift   bool
	BoxspaceFile      string
	TwoColumnBoxspace bool

	SimNamebase, SimDir             string
	CatalogueNamebase, CatalogueDir string

	// LoadSimulation defaults to the HDF5 reader and LoadCatalogue to
	// catalog.Load.
	LoadSimulation io.SimulationLoader
	LoadCatalogue  catalog.Loader

	// Log receives one line per loaded snapshot. It may be nil.
	Log *log.Logger
}

// ConfigFromFile converts a config file's [Collection] section into a
// Config, looking up the loaders for its formats.
func ConfigFromFile(con *io.CollectionConfig) (Config, error) {
	loadSim, err := io.LookupSimulationReader(con.SimulationFormat)
	if err != nil {
		return Config{}, err
	}
	loadCat, err := catalog.LookupReader(con.CatalogueFormat)
	if err != nil {
		return Config{}, err
	}

	return Config{
		Snaps:             con.Snaps,
		Redshifts:         con.Redshifts,
		SnapsAsRedshift:   con.SnapsAsRedshift,
		BoxspaceFile:      con.BoxspaceFile,
		TwoColumnBoxspace: con.TwoColumnBoxspace,
		SimNamebase:       con.SimNamebase,
		SimDir:            con.SimDir,
		CatalogueNamebase: con.CatalogueNamebase,
		CatalogueDir:      con.CatalogueDir,
		LoadSimulation:    loadSim,
		LoadCatalogue:     loadCat,
	}, nil
}

// SnapshotFile returns the name of a snapshot's file: dir, a trailing slash
// if dir doesn't have one, namebase, and the zero-padded snapshot number.
func SnapshotFile(dir, namebase string, snap int) string {
	if !strings.HasSuffix(dir, "/") {
		dir += "/"
	}
	return fmt.Sprintf("%s%s%03d.hdf5", dir, namebase, snap)
}

// Collection is a set of Snapshots keyed by the redshift each snapshot
// reports.
type Collection struct {
	snaps     []int
	redshifts []float64
	snapshots map[float64]*Snapshot
}

// NewCollection loads every requested snapshot and its catalogue, in
// order. If any load fails, no Collection is returned.
//
// Snapshots which report the same redshift share a key: the later one
// replaces the earlier one.
func NewCollection(cfg Config) (*Collection, error) {
	if cfg.SimDir == "" {
		return nil, fmt.Errorf("%w: No simulation directory was given.",
			ErrConfiguration)
	} else if cfg.CatalogueDir == "" {
		return nil, fmt.Errorf("%w: No catalogue directory was given.",
			ErrConfiguration)
	}

	snaps, err := requestedSnaps(&cfg)
	if err != nil {
		return nil, err
	}

	loadSim, loadCat := cfg.LoadSimulation, cfg.LoadCatalogue
	if loadSim == nil {
		loadSim = io.SimulationReaders[io.DefaultSimulationFormat]
	}
	if loadCat == nil {
		loadCat = catalog.Load
	}

	c := &Collection{
		snaps:     snaps,
		redshifts: []float64{},
		snapshots: map[float64]*Snapshot{},
	}

	for i, num := range snaps {
		snap := NewSnapshot(loadSim, loadCat)
		simFile := SnapshotFile(cfg.SimDir, cfg.SimNamebase, num)
		catFile := SnapshotFile(cfg.CatalogueDir, cfg.CatalogueNamebase, num)

		if err := snap.LoadSimulation(simFile); err != nil {
			return nil, fmt.Errorf("Snapshot %d: %w", num, err)
		}
		if err := snap.LoadCatalogue(catFile); err != nil {
			return nil, fmt.Errorf("Snapshot %d: %w", num, err)
		}

		z := snap.Cosmo().Z
		if _, ok := c.snapshots[z]; !ok {
			c.redshifts = append(c.redshifts, z)
		}
		c.snapshots[z] = snap

		if cfg.Log != nil {
			cfg.Log.Printf("Loaded snapshot %d (%d/%d) at z = %.4g",
				num, i+1, len(snaps), z)
		}
	}

	return c, nil
}

// requestedSnaps returns the snapshot numbers cfg asks for.
func requestedSnaps(cfg *Config) ([]int, error) {
	if !cfg.SnapsAsRedshift {
		if len(cfg.Redshifts) > 0 {
			return nil, fmt.Errorf("%w: Redshifts were given, but "+
				"SnapsAsRedshift is not set.", ErrConfiguration)
		}
		out := make([]int, len(cfg.Snaps))
		copy(out, cfg.Snaps)
		return out, nil
	}

	if len(cfg.Snaps) > 0 {
		return nil, fmt.Errorf("%w: Snapshot numbers cannot be given when "+
			"SnapsAsRedshift is set.", ErrConfiguration)
	} else if cfg.BoxspaceFile == "" {
		return nil, fmt.Errorf("%w: A BoxspaceFile must be given when "+
			"passing redshifts instead of snapshot numbers.",
			ErrConfiguration)
	}

	if cfg.TwoColumnBoxspace {
		return redshift.FindBoxspaceSnapshots(cfg.Redshifts, cfg.BoxspaceFile)
	}
	return redshift.FindSnapshots(cfg.Redshifts, cfg.BoxspaceFile)
}

// FindGalaxies identifies the galaxies of every snapshot in the collection.
func (c *Collection) FindGalaxies() error { return c.findAll(Galaxy) }

// FindHalos identifies the halos of every snapshot in the collection.
func (c *Collection) FindHalos() error { return c.findAll(Halo) }

// FindGalaxiesAt identifies the galaxies of the snapshot at redshift z
// only.
func (c *Collection) FindGalaxiesAt(z float64) error { return c.findAt(Galaxy, z) }

// FindHalosAt identifies the halos of the snapshot at redshift z only.
func (c *Collection) FindHalosAt(z float64) error { return c.findAt(Halo, z) }

func (c *Collection) findAll(kind Kind) error {
	for _, z := range c.redshifts {
		if err := c.snapshots[z].Identify(kind); err != nil {
			return fmt.Errorf("z = %g: %w", z, err)
		}
	}
	return nil
}

func (c *Collection) findAt(kind Kind, z float64) error {
	snap, ok := c.snapshots[z]
	if !ok {
		return fmt.Errorf("%w: There is no snapshot at z = %g. Known "+
			"redshifts are %v.", ErrValidation, z, c.redshifts)
	}
	return snap.Identify(kind)
}

// Get returns the snapshot at redshift z.
func (c *Collection) Get(z float64) (*Snapshot, bool) {
	snap, ok := c.snapshots[z]
	return snap, ok
}

// Redshifts returns the collection's keys in load order.
func (c *Collection) Redshifts() []float64 {
	out := make([]float64, len(c.redshifts))
	copy(out, c.redshifts)
	return out
}

// Snaps returns the requested snapshot numbers in request order.
func (c *Collection) Snaps() []int {
	out := make([]int, len(c.snaps))
	copy(out, c.snaps)
	return out
}

// Len returns the number of distinct redshifts.
func (c *Collection) Len() int { return len(c.redshifts) }
