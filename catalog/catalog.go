/*package catalog reads and writes object catalogues: the galaxies and halos
found in a single simulation snapshot, along with the indices of the
particles that belong to each of them. It also drives the external group
finder which produces these catalogues (see Builder).

Catalogue files start with an int32 endianness flag, followed by a
fixed-size header and then, for galaxies and then halos, a list of group
IDs, a list of per-species member counts, and one zstd-compressed block of
particle indices per species.
*/
package catalog

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/DataDog/zstd"
	"github.com/phil-mansfield/augustus/errs"
)

const (
	// Endianness used by default when writing catalogues. Catalogues of any
	// endianness can be read.
	DefaultEndiannessFlag int32 = 0

	// Version is the catalogue format version written by Write.
	Version = 1

	// SpeciesCount is the number of particle species tracked per object.
	SpeciesCount = 4

	compressionLevel = 1

	// objectBytes is the size of an object's ID and member counts.
	objectBytes = 8 + 8*SpeciesCount
	// maxIndices is the largest member total whose byte size fits in an
	// int64.
	maxIndices = math.MaxInt64 / 8
)

var speciesNames = [SpeciesCount]string{
	"gas", "star", "dark matter", "black hole",
}

// Object is a single galaxy or halo. Each member list holds indices into the
// corresponding particle array of the snapshot.
type Object struct {
	GroupID int

	Gas, Stars, DarkMatter, BlackHoles []int64
}

// Members returns the object's member lists in the order gas, stars, dark
// matter, black holes.
func (obj *Object) Members() [SpeciesCount][]int64 {
	return [SpeciesCount][]int64{
		obj.Gas, obj.Stars, obj.DarkMatter, obj.BlackHoles,
	}
}

func (obj *Object) setMembers(ms [SpeciesCount][]int64) {
	obj.Gas, obj.Stars, obj.DarkMatter, obj.BlackHoles =
		ms[0], ms[1], ms[2], ms[3]
}

// Source is a loaded object catalogue.
type Source interface {
	Galaxies() []Object
	Halos() []Object
}

// Loader opens the catalogue at the given path.
type Loader func(file string) (Source, error)

var (
	// Readers maps the names accepted by the CatalogueFormat config variable
	// to loaders.
	Readers = map[string]Loader{
		"augustus": Load,
	}
)

// LookupReader returns the loader registered under format.
func LookupReader(format string) (Loader, error) {
	loader, ok := Readers[format]
	if !ok {
		names := []string{}
		for name := range Readers {
			names = append(names, name)
		}
		sort.Strings(names)
		return nil, fmt.Errorf("%w: Unrecognized CatalogueFormat '%s'. "+
			"The only accepted formats are: %s.",
			errs.Configuration, format, strings.Join(names, ", "))
	}
	return loader, nil
}

// Catalogue is an in-memory catalogue. It implements Source, and since it
// can Save itself, it is also a valid group finder Result.
type Catalogue struct {
	galaxies, halos []Object
}

// New creates a catalogue from galaxy and halo lists. The lists are not
// copied.
func New(galaxies, halos []Object) *Catalogue {
	return &Catalogue{galaxies, halos}
}

func (cat *Catalogue) Galaxies() []Object { return cat.galaxies }
func (cat *Catalogue) Halos() []Object    { return cat.halos }

// header is the fixed-size part of a catalogue file which follows the
// endianness flag.
type header struct {
	HeaderSize int32
	Version    int32

	Galaxies, Halos int64
}

// Save writes the catalogue to the given file using the default
// endianness.
func (cat *Catalogue) Save(file string) error {
	f, err := os.Create(file)
	if err != nil {
		return err
	}
	defer f.Close()

	wr := bufio.NewWriter(f)
	if err = Write(wr, endianness(DefaultEndiannessFlag), cat); err != nil {
		return fmt.Errorf("Could not write catalogue %s: %s", file, err)
	}
	if err = wr.Flush(); err != nil {
		return err
	}
	return f.Close()
}

// Read reads the catalogue file at the given location.
func Read(file string) (*Catalogue, error) {
	info, err := os.Stat(file)
	if err != nil {
		return nil, fmt.Errorf("The file %s cannot be opened. The system "+
			"error is: \"%s\"", file, err.Error())
	} else if info.IsDir() {
		return nil, fmt.Errorf("The file %s is a directory, not a "+
			"catalogue.", file)
	}

	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cat, err := Decode(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%s is not a valid catalogue file: %s",
			file, err)
	}
	return cat, nil
}

// Load is the Loader for catalogues written by Save.
func Load(file string) (Source, error) {
	cat, err := Read(file)
	if err != nil {
		return nil, err
	}
	return cat, nil
}

// Write encodes cat to wr with the given byte order.
func Write(wr io.Writer, order binary.ByteOrder, cat *Catalogue) error {
	hd := header{
		Version:  Version,
		Galaxies: int64(len(cat.galaxies)),
		Halos:    int64(len(cat.halos)),
	}
	hd.HeaderSize = int32(binary.Size(hd))

	if err := binary.Write(wr, order, endiannessFlag(order)); err != nil {
		return err
	}
	if err := binary.Write(wr, order, &hd); err != nil {
		return err
	}
	if err := writeObjects(wr, order, cat.galaxies); err != nil {
		return err
	}
	return writeObjects(wr, order, cat.halos)
}

// Decode reads a catalogue written by Write. The byte order is taken from
// the stream itself. Every length in the stream is checked against the
// number of bytes left, so a damaged catalogue gives an error.
func Decode(rd io.Reader) (*Catalogue, error) {
	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, err
	}
	r := bytes.NewReader(data)

	flag := int32(0)
	if err := binary.Read(r, binary.LittleEndian, &flag); err != nil {
		return nil, err
	}
	if flag != 0 && flag != -1 {
		return nil, fmt.Errorf("Unrecognized endianness flag, %d.", flag)
	}
	order := endianness(flag)

	hd := header{}
	if err := binary.Read(r, order, &hd); err != nil {
		return nil, err
	}
	if int(hd.HeaderSize) != binary.Size(hd) {
		return nil, fmt.Errorf("Header has size %d, but %d was expected.",
			hd.HeaderSize, binary.Size(hd))
	} else if hd.Version != Version {
		return nil, fmt.Errorf("Catalogue format version %d is not "+
			"supported. Only version %d is.", hd.Version, Version)
	} else if hd.Galaxies < 0 || hd.Halos < 0 {
		return nil, fmt.Errorf("Header reports %d galaxies and %d halos.",
			hd.Galaxies, hd.Halos)
	}

	galaxies, err := readObjects(r, order, hd.Galaxies)
	if err != nil {
		return nil, err
	}
	halos, err := readObjects(r, order, hd.Halos)
	if err != nil {
		return nil, err
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("%d unexpected bytes follow the halos.",
			r.Len())
	}
	return New(galaxies, halos), nil
}

func writeObjects(wr io.Writer, order binary.ByteOrder, objs []Object) error {
	ids := make([]int64, len(objs))
	counts := make([]int64, SpeciesCount*len(objs))
	for i := range objs {
		ids[i] = int64(objs[i].GroupID)
		for sp, ms := range objs[i].Members() {
			counts[SpeciesCount*i+sp] = int64(len(ms))
		}
	}

	if err := binary.Write(wr, order, ids); err != nil {
		return err
	}
	if err := binary.Write(wr, order, counts); err != nil {
		return err
	}

	for sp := 0; sp < SpeciesCount; sp++ {
		idx := []int64{}
		for i := range objs {
			idx = append(idx, objs[i].Members()[sp]...)
		}
		if err := writeBlock(wr, order, idx); err != nil {
			return err
		}
	}
	return nil
}

func readObjects(r *bytes.Reader, order binary.ByteOrder, n int64) ([]Object, error) {
	if n > int64(r.Len())/objectBytes {
		return nil, fmt.Errorf("The header reports %d objects, but only %d "+
			"bytes are left in the catalogue.", n, r.Len())
	}

	ids := make([]int64, n)
	counts := make([]int64, SpeciesCount*n)
	if err := binary.Read(r, order, ids); err != nil {
		return nil, err
	}
	if err := binary.Read(r, order, counts); err != nil {
		return nil, err
	}

	objs := make([]Object, n)
	members := make([][SpeciesCount][]int64, n)
	for sp := 0; sp < SpeciesCount; sp++ {
		total := int64(0)
		for i := int64(0); i < n; i++ {
			count := counts[SpeciesCount*i+int64(sp)]
			if count < 0 {
				return nil, fmt.Errorf("Object %d has a negative member "+
					"count.", ids[i])
			} else if count > maxIndices-total {
				return nil, fmt.Errorf("The %s member counts of object %d "+
					"overflow.", speciesNames[sp], ids[i])
			}
			total += count
		}

		idx, err := readBlock(r, order, total)
		if err != nil {
			return nil, err
		}

		start := int64(0)
		for i := int64(0); i < n; i++ {
			end := start + counts[SpeciesCount*i+int64(sp)]
			members[i][sp] = idx[start:end:end]
			start = end
		}
	}

	for i := range objs {
		objs[i].GroupID = int(ids[i])
		objs[i].setMembers(members[i])
	}
	return objs, nil
}

// writeBlock writes xs as a compressed block preceded by its compressed
// length. Empty blocks are written as a bare zero length.
func writeBlock(wr io.Writer, order binary.ByteOrder, xs []int64) error {
	if len(xs) == 0 {
		return binary.Write(wr, order, int64(0))
	}

	buf := &bytes.Buffer{}
	if err := binary.Write(buf, order, xs); err != nil {
		return err
	}
	block, err := zstd.CompressLevel(nil, buf.Bytes(), compressionLevel)
	if err != nil {
		return err
	}

	if err = binary.Write(wr, order, int64(len(block))); err != nil {
		return err
	}
	_, err = wr.Write(block)
	return err
}

// readBlock reads a block written by writeBlock which contains n values.
// Decompression stops once more than n values have been produced.
func readBlock(r *bytes.Reader, order binary.ByteOrder, n int64) ([]int64, error) {
	size := int64(0)
	if err := binary.Read(r, order, &size); err != nil {
		return nil, err
	}
	if size < 0 || size > int64(r.Len()) {
		return nil, fmt.Errorf("Block has size %d, but only %d bytes are "+
			"left in the catalogue.", size, r.Len())
	} else if size == 0 {
		if n != 0 {
			return nil, fmt.Errorf("Block is empty, but %d indices were "+
				"expected.", n)
		}
		return []int64{}, nil
	}

	block := make([]byte, size)
	if _, err := io.ReadFull(r, block); err != nil {
		return nil, err
	}

	zr := zstd.NewReader(bytes.NewReader(block))
	defer zr.Close()
	raw, err := io.ReadAll(io.LimitReader(zr, 8*n+1))
	if err != nil {
		return nil, err
	}
	if int64(len(raw)) != 8*n {
		return nil, fmt.Errorf("Block does not hold the %d indices which "+
			"were expected.", n)
	}

	xs := make([]int64, n)
	if err = binary.Read(bytes.NewReader(raw), order, xs); err != nil {
		return nil, err
	}
	return xs, nil
}

// endianness is a utility function converting an endianness flag to a
// byte order.
func endianness(flag int32) binary.ByteOrder {
	if flag == 0 {
		return binary.LittleEndian
	} else if flag == -1 {
		return binary.BigEndian
	} else {
		panic("Unrecognized endianness flag.")
	}
}

func endiannessFlag(order binary.ByteOrder) int32 {
	if order == binary.BigEndian {
		return -1
	}
	return 0
}

// Type checking
var (
	_ Source = &Catalogue{}
	_ Result = &Catalogue{}
)
