package catalog

import (
	"fmt"
	"io"
	"os/exec"

	"github.com/phil-mansfield/augustus/errs"
)

// CommandFinder is a GroupFinder which runs an external program, typically
// a wrapper script around a Python group finder. The program is invoked when
// the Result is saved as
//
//     Command Args... -snapshot <snap> -output <catalogue> -<opt>=<val>...
//
// with the options in alphabetical order.
type CommandFinder struct {
	Command string
	Args    []string

	// Stdout and Stderr receive the program's output. Either may be nil.
	Stdout, Stderr io.Writer
}

type commandResult struct {
	finder *CommandFinder
	snap   Snapshot
	opt    Options
}

// MemberSearch defers the search until the Result is saved, since the
// program writes its output directly to the catalogue file.
func (f *CommandFinder) MemberSearch(snap Snapshot, opt Options) (Result, error) {
	if f.Command == "" {
		return nil, fmt.Errorf("%w: No group finder command was given.",
			errs.Configuration)
	}
	return &commandResult{f, snap, opt}, nil
}

func (res *commandResult) Save(file string) error {
	args := commandArgs(res.finder.Args, res.snap.File, file, res.opt)
	cmd := exec.Command(res.finder.Command, args...)
	cmd.Stdout, cmd.Stderr = res.finder.Stdout, res.finder.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("Member search on snapshot %d with '%s' failed: %s",
			res.snap.Num, res.finder.Command, err.Error())
	}
	return nil
}

func commandArgs(extra []string, snapFile, outFile string, opt Options) []string {
	args := append([]string{}, extra...)
	args = append(args, "-snapshot", snapFile, "-output", outFile)

	m := opt.Map()
	for _, key := range sortedKeys(m) {
		args = append(args, fmt.Sprintf("-%s=%s", key, m[key]))
	}
	return args
}

// Type checking
var (
	_ GroupFinder = &CommandFinder{}
)
