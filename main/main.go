package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/phil-mansfield/augustus"
	"github.com/phil-mansfield/augustus/catalog"
	"github.com/phil-mansfield/augustus/io"
	"github.com/phil-mansfield/augustus/redshift"
)

type FileGroup struct {
	log *os.File
}

func (fg *FileGroup) Close() {
	if fg.log != nil {
		err := fg.log.Close()
		if err != nil {
			log.Fatal(err.Error())
		}
	}
}

// openLog redirects the standard logger to file, if one is given.
func openLog(file string) *FileGroup {
	fg := &FileGroup{}
	if file == "" {
		return fg
	}

	var err error
	fg.log, err = os.Create(file)
	if err != nil {
		log.Fatal(err.Error())
	}
	log.SetOutput(fg.log)
	return fg
}

func main() {
	var (
		collection, buildCatalogues, redshifts string
		exampleConfig                          string
		twoColumn                              bool
	)
	vars := map[string]*string{
		"Collection":      &collection,
		"BuildCatalogues": &buildCatalogues,
		"Redshifts":       &redshifts,
		"ExampleConfig":   &exampleConfig,
	}

	flag.StringVar(
		&collection, "Collection", "",
		"Configuration file for [Collection] mode.",
	)
	flag.StringVar(
		&buildCatalogues, "BuildCatalogues", "",
		"Configuration file for [BuildCatalogues] mode.",
	)
	flag.StringVar(
		&redshifts, "Redshifts", "",
		"Prints the redshift of every snapshot listed in the given scale "+
			"factor file.",
	)
	flag.BoolVar(
		&twoColumn, "TwoColumnBoxspace", false,
		"The file given to -Redshifts has snapshot and scale factor columns.",
	)
	flag.StringVar(
		&exampleConfig,
		"ExampleConfig", "", "Prints an example configuration file of the "+
			"specified type to stdout. Accepted arguments are 'Collection' "+
			"and 'BuildCatalogues'.",
	)

	flag.Parse()

	modeName, err := getModeName(vars)
	if err != nil {
		log.Fatal(err.Error())
	}

	switch modeName {
	case "Collection":
		con, err := io.ReadCollectionConfig(collection)
		if err != nil {
			log.Fatal(err.Error())
		}
		fg := openLog(con.LogFile)
		defer fg.Close()

		collectionMain(con)

	case "BuildCatalogues":
		con, err := io.ReadBuildCataloguesConfig(buildCatalogues)
		if err != nil {
			log.Fatal(err.Error())
		}
		fg := openLog(con.LogFile)
		defer fg.Close()

		buildCataloguesMain(con)

	case "Redshifts":
		redshiftsMain(redshifts, twoColumn)

	case "ExampleConfig":
		switch exampleConfig {
		case "Collection":
			fmt.Println(io.ExampleCollectionFile)
		case "BuildCatalogues":
			fmt.Println(io.ExampleBuildCataloguesFile)
		default:
			log.Fatal(
				"Unrecognized 'ExampleConfig' argument. Only recognized " +
					"arguments are 'Collection' and 'BuildCatalogues'.",
			)
		}
	default:
		panic("Impossible")
	}
}

func getModeName(vars map[string]*string) (string, error) {
	setNames := []string{}

	for name, varPtr := range vars {
		if *varPtr != "" {
			setNames = append(setNames, name)
		}
	}
	sort.Strings(setNames)

	if len(setNames) == 0 {
		return "", fmt.Errorf("No flags have been set.")
	}

	if len(setNames) > 1 {
		return "", fmt.Errorf(
			"The following flags were set: %s, but augustus "+
				"only accepts one flag at a time.",
			strings.Join(setNames, ", "),
		)
	}

	return setNames[0], nil
}

func collectionMain(con *io.CollectionConfig) {
	cfg, err := augustus.ConfigFromFile(con)
	if err != nil {
		log.Fatal(err.Error())
	}
	cfg.Log = log.New(log.Writer(), "", log.LstdFlags)

	c, err := augustus.NewCollection(cfg)
	if err != nil {
		log.Fatal(err.Error())
	}

	if con.FindGalaxies {
		if err = c.FindGalaxies(); err != nil {
			log.Fatal(err.Error())
		}
	}
	if con.FindHalos {
		if err = c.FindHalos(); err != nil {
			log.Fatal(err.Error())
		}
	}

	fmt.Println("# z, simulation file, galaxies, halos")
	for _, z := range c.Redshifts() {
		snap, _ := c.Get(z)
		fmt.Printf("%.6g %s %d %d\n", z, snap.SimulationFile(),
			snap.Galaxies().Len(), snap.Halos().Len())
	}
}

func buildCataloguesMain(con *io.BuildCataloguesConfig) {
	b, err := builderFromConfig(con)
	if err != nil {
		log.Fatal(err.Error())
	}
	b.Finder = &catalog.CommandFinder{
		Command: con.FinderCommand, Args: con.FinderArgs,
		Stdout: os.Stdout, Stderr: os.Stderr,
	}

	if err = b.Build(); err != nil {
		log.Fatal(err.Error())
	}
}

// builderFromConfig returns a Builder for con with no GroupFinder set.
func builderFromConfig(con *io.BuildCataloguesConfig) (*catalog.Builder, error) {
	load, err := io.LookupSimulationReader(con.SimulationFormat)
	if err != nil {
		return nil, err
	}

	opt := catalog.DefaultOptions().
		WithHaloID(con.HaloID).
		WithFSPSBands(con.FSPSBands).
		WithSSPModel(con.SSPModel).
		WithSSPTableFile(con.SSPTableFile).
		WithNProc(con.NProc)

	return &catalog.Builder{
		SnapRange:    con.SnapRange(),
		SnapNamebase: con.SnapNamebase,
		SnapDir:      con.SnapDir,
		NewNamebase:  con.NewNamebase,
		CatalogueDir: con.CatalogueDir,
		FOF6DDir:     con.FOF6DDir,
		Options:      opt,
		Load:         load,
		Log:          log.New(log.Writer(), "", log.LstdFlags),
	}, nil
}

func redshiftsMain(file string, twoColumn bool) {
	var (
		tab *redshift.Table
		err error
	)
	if twoColumn {
		tab, err = redshift.ReadBoxspace(file)
	} else {
		tab, err = redshift.ReadScaleFactors(file)
	}
	if err != nil {
		log.Fatal(err.Error())
	}

	fmt.Println("# snapshot, z, a")
	for i := 0; i < tab.Len(); i++ {
		fmt.Printf("%3d %8.4f %8.5f\n",
			tab.Snap(i), tab.Redshift(i), tab.ScaleFactor(i))
	}
}
