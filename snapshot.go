package augustus

import (
	"fmt"
	"math"

	"github.com/phil-mansfield/augustus/catalog"
	"github.com/phil-mansfield/augustus/io"
)

// Snapshot is a single simulation snapshot together with its object
// catalogue.
type Snapshot struct {
	loadSim io.SimulationLoader
	loadCat catalog.Loader

	sim              SimulationSource
	cat              CatalogueSource
	simFile, catFile string

	cosmo           CosmoParams
	galaxies, halos *Membership
}

// NewSnapshot returns an empty Snapshot which loads files with the given
// loaders.
func NewSnapshot(
	loadSim io.SimulationLoader, loadCat catalog.Loader,
) *Snapshot {
	return &Snapshot{
		loadSim:  loadSim,
		loadCat:  loadCat,
		galaxies: newMembership(),
		halos:    newMembership(),
	}
}

// NewSnapshotFromSources returns a Snapshot wrapping already-loaded
// handles. Either handle may be nil and loaded later, but then the
// corresponding Load method needs a loader and will fail without one.
func NewSnapshotFromSources(sim SimulationSource, cat CatalogueSource) *Snapshot {
	snap := NewSnapshot(nil, nil)
	if sim != nil {
		snap.sim, snap.cosmo = sim, cosmoParams(sim)
	}
	snap.cat = cat
	return snap
}

// LoadSimulation loads the simulation file and reads its cosmological
// parameters. A simulation whose redshift is not finite is rejected. On
// failure the Snapshot is left unchanged.
func (snap *Snapshot) LoadSimulation(file string) error {
	if snap.loadSim == nil {
		return fmt.Errorf("%w: No simulation loader for %s.",
			ErrConfiguration, file)
	}

	sim, err := snap.loadSim(file)
	if err != nil {
		return fmt.Errorf("%w: Could not load simulation file %s: %s",
			ErrLoad, file, err.Error())
	} else if sim == nil {
		return fmt.Errorf("%w: Loader returned no simulation for %s.",
			ErrLoad, file)
	} else if z := sim.Redshift(); math.IsNaN(z) || math.IsInf(z, 0) {
		return fmt.Errorf("%w: The simulation file %s reports a redshift "+
			"of %g.", ErrLoad, file, z)
	}

	snap.sim, snap.simFile = sim, file
	snap.cosmo = cosmoParams(sim)
	return nil
}

// LoadCatalogue loads the catalogue file. On failure the Snapshot is left
// unchanged.
func (snap *Snapshot) LoadCatalogue(file string) error {
	if snap.loadCat == nil {
		return fmt.Errorf("%w: No catalogue loader for %s.",
			ErrConfiguration, file)
	}

	cat, err := snap.loadCat(file)
	if err != nil {
		return fmt.Errorf("%w: Could not load catalogue file %s: %s",
			ErrLoad, file, err.Error())
	} else if cat == nil {
		return fmt.Errorf("%w: Loader returned no catalogue for %s.",
			ErrLoad, file)
	}

	snap.cat, snap.catFile = cat, file
	return nil
}

func (snap *Snapshot) checkLoaded(op string) error {
	if snap.sim == nil {
		return fmt.Errorf("%w: %s called before the simulation was loaded.",
			ErrState, op)
	} else if snap.cat == nil {
		return fmt.Errorf("%w: %s called before the catalogue was loaded.",
			ErrState, op)
	}
	return nil
}

// IdentifyGalaxies rebuilds the galaxy membership tables from the
// catalogue.
func (snap *Snapshot) IdentifyGalaxies() error {
	if err := snap.checkLoaded("IdentifyGalaxies"); err != nil {
		return err
	}
	snap.galaxies = extractMembership(snap.cat.Galaxies())
	return nil
}

// IdentifyHalos rebuilds the halo membership tables from the catalogue.
func (snap *Snapshot) IdentifyHalos() error {
	if err := snap.checkLoaded("IdentifyHalos"); err != nil {
		return err
	}
	snap.halos = extractMembership(snap.cat.Halos())
	return nil
}

// Identify calls IdentifyGalaxies or IdentifyHalos.
func (snap *Snapshot) Identify(kind Kind) error {
	switch kind {
	case Galaxy:
		return snap.IdentifyGalaxies()
	case Halo:
		return snap.IdentifyHalos()
	}
	return fmt.Errorf("%w: Unrecognized object kind %d.", ErrValidation, kind)
}

func (snap *Snapshot) Cosmo() CosmoParams           { return snap.cosmo }
func (snap *Snapshot) Simulation() SimulationSource { return snap.sim }
func (snap *Snapshot) Catalogue() CatalogueSource   { return snap.cat }
func (snap *Snapshot) SimulationFile() string       { return snap.simFile }
func (snap *Snapshot) CatalogueFile() string        { return snap.catFile }
func (snap *Snapshot) Galaxies() *Membership        { return snap.galaxies }
func (snap *Snapshot) Halos() *Membership           { return snap.halos }

// Membership returns the membership tables of the given kind, or nil for an
// unrecognized kind.
func (snap *Snapshot) Membership(kind Kind) *Membership {
	switch kind {
	case Galaxy:
		return snap.galaxies
	case Halo:
		return snap.halos
	}
	return nil
}
