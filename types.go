/*package augustus indexes the galaxies and halos of cosmological simulation
snapshots. A Snapshot pairs one simulation file with the object catalogue
built from it and records which gas, star, dark matter, and black hole
particles belong to each object. A Collection holds many Snapshots and
addresses them by redshift.
*/
package augustus

import (
	"github.com/phil-mansfield/augustus/catalog"
	"github.com/phil-mansfield/augustus/errs"
	"github.com/phil-mansfield/augustus/io"
)

// SimulationSource and CatalogueSource are the handles a Snapshot is built
// from.
type (
	SimulationSource = io.SimulationSource
	CatalogueSource  = catalog.Source
	Object           = catalog.Object
)

var (
	ErrConfiguration = errs.Configuration
	ErrLoad          = errs.Load
	ErrState         = errs.State
	ErrValidation    = errs.Validation
)

// CosmoParams are the cosmological parameters of a loaded snapshot.
type CosmoParams struct {
	Z, OmegaL, OmegaM, H0 float64
}

// Map returns the parameters keyed by name.
func (c CosmoParams) Map() map[string]float64 {
	return map[string]float64{
		"redshift":        c.Z,
		"omega_lambda":    c.OmegaL,
		"omega_matter":    c.OmegaM,
		"hubble_constant": c.H0,
	}
}

func cosmoParams(sim SimulationSource) CosmoParams {
	return CosmoParams{
		Z:      sim.Redshift(),
		OmegaL: sim.OmegaLambda(),
		OmegaM: sim.OmegaMatter(),
		H0:     sim.HubbleConstant(),
	}
}

// Species is a particle species.
type Species int

const (
	Gas Species = iota
	Stars
	DarkMatter
	BlackHoles

	SpeciesCount = catalog.SpeciesCount
)

var speciesNames = [SpeciesCount]string{
	"gas", "stars", "dark matter", "black holes",
}

func (sp Species) String() string {
	if sp < 0 || int(sp) >= SpeciesCount {
		return "unknown species"
	}
	return speciesNames[sp]
}

// Kind is the kind of object a catalogue entry describes.
type Kind int

const (
	Galaxy Kind = iota
	Halo
)

func (k Kind) String() string {
	switch k {
	case Galaxy:
		return "galaxy"
	case Halo:
		return "halo"
	}
	return "unknown kind"
}
