// Package signature implements the ordered forest of folders and generators
// that names and colours a diagram's atomic cells (§4.3), together with the
// edit algebra a UI issues against it (SPEC_FULL supplement 3). It is kept
// separate from package diagram because a Signature's entries carry
// diagram.Diagram values (a generator's defining shape), while package
// diagram only needs generator.Generator; folding Signature into either of
// those packages would create an import cycle.
package signature

import (
	"fmt"

	"github.com/homotopy-io/homotopy-go/internal/diagram"
	"github.com/homotopy-io/homotopy-go/internal/generator"
	"github.com/homotopy-io/homotopy-go/internal/herr"
	"github.com/homotopy-io/homotopy-go/internal/tree"
)

// GeneratorInfo is everything a signature records about one generator beyond
// its bare identity: display metadata, its defining diagram, and the two
// flags that control how rewrites through it behave (SPEC_FULL supplement 2).
type GeneratorInfo struct {
	Generator  generator.Generator
	Name       string
	Color      string
	Shape      string
	Diagram    diagram.Diagram
	Oriented   bool
	Invertible bool
}

// entryKind distinguishes a folder node from a generator leaf in the
// signature's underlying tree.
type entryKind int

const (
	folderEntry entryKind = iota
	generatorEntry
)

type entry struct {
	kind   entryKind
	name   string // folder name; unused for a generator entry (use info.Name)
	open   bool   // folder expanded/collapsed in a UI's tree view
	info   GeneratorInfo
	hasGen bool // true once a generator entry has been populated
}

// Signature is the ordered, foldered collection of generators a set of
// diagrams is built from (§4.3). The zero value is not usable; call New.
type Signature struct {
	tree     *tree.Tree[entry]
	byID     map[generator.ID]tree.Node
	nextID   generator.ID
	rootNode tree.Node
}

// New returns an empty signature with one root folder.
func New() *Signature {
	t := tree.New(entry{kind: folderEntry, name: "root", open: true})
	return &Signature{
		tree:     t,
		byID:     make(map[generator.ID]tree.Node),
		nextID:   1,
		rootNode: t.Root(),
	}
}

// CreateZero adds a fresh 0-dimensional generator named name at the top
// level, returning its identity (§4.3's create_zero).
func (s *Signature) CreateZero(name string) generator.Generator {
	g := generator.Generator{ID: s.allocID(), Dimension: 0, Orientation: generator.Zero}
	d := diagram.FromGeneratorZero(g)
	s.insert(g, GeneratorInfo{Generator: g, Name: name, Diagram: d})
	return g
}

// CreateN adds a fresh generator of dimension source.Dimension()+1 named name,
// whose defining diagram has the given source and target (§4.3's create_n).
// source and target must have equal dimension and agree on their own
// boundaries (diagram.FromGenerator's globularity check).
func (s *Signature) CreateN(name string, source, target diagram.Diagram) (generator.Generator, diagram.DiagramN, error) {
	id := s.allocID()
	g := generator.Generator{ID: id, Dimension: source.Dimension() + 1, Orientation: generator.Zero}
	d, err := diagram.FromGenerator(g, source, target)
	if err != nil {
		return generator.Generator{}, diagram.DiagramN{}, err
	}
	s.insert(g, GeneratorInfo{Generator: g, Name: name, Diagram: d})
	return g, d, nil
}

func (s *Signature) allocID() generator.ID {
	id := s.nextID
	s.nextID++
	return id
}

func (s *Signature) insert(g generator.Generator, info GeneratorInfo) {
	n := s.tree.PushUnder(s.rootNode, entry{kind: generatorEntry, info: info, hasGen: true})
	s.byID[g.ID] = n
}

// Info returns the recorded metadata for id, and whether id is known.
func (s *Signature) Info(id generator.ID) (GeneratorInfo, bool) {
	n, ok := s.byID[id]
	if !ok {
		return GeneratorInfo{}, false
	}
	e, ok := s.tree.Get(n)
	if !ok || !e.hasGen {
		return GeneratorInfo{}, false
	}
	return e.info, true
}

// IterGenerators yields every live generator's info in tree order (§4.3's
// iter_generators).
func (s *Signature) IterGenerators() func(yield func(GeneratorInfo) bool) {
	return func(yield func(GeneratorInfo) bool) {
		s.tree.All(func(_ tree.Node, e entry) bool {
			if !e.hasGen {
				return true
			}
			return yield(e.info)
		})
	}
}

// dependents returns the IDs of every generator whose recorded diagram
// mentions id anywhere (used to cascade Remove to a fixpoint).
func (s *Signature) dependents(id generator.ID) []generator.ID {
	var out []generator.ID
	for info := range s.IterGenerators() {
		if info.Generator.ID == id {
			continue
		}
		for g := range diagram.Generators(info.Diagram) {
			if g.ID == id {
				out = append(out, info.Generator.ID)
				break
			}
		}
	}
	return out
}

// Remove deletes id and cascades to every generator that depends on it
// (directly or transitively, via its defining diagram), continuing until no
// further removal is triggered (§4.3's remove, run "to fixpoint").
func (s *Signature) Remove(id generator.ID) {
	pending := []generator.ID{id}
	removed := make(map[generator.ID]bool)
	for len(pending) > 0 {
		cur := pending[0]
		pending = pending[1:]
		if removed[cur] {
			continue
		}
		n, ok := s.byID[cur]
		if !ok {
			continue
		}
		pending = append(pending, s.dependents(cur)...)
		s.tree.Remove(n)
		delete(s.byID, cur)
		removed[cur] = true
	}
}

// Edit is the sum type of signature edits a UI issues, mirroring §4.3's
// edit algebra. Exactly one of the payload fields is meaningful per Kind.
type Edit struct {
	Kind EditKind

	Target generator.ID // Rename, Recolor, Reshape, SetOriented, SetInvertible, MoveIntoFolder, RemoveSubtree
	Name   string        // Rename, CreateFolder
	Color  string        // Recolor
	Shape  string         // Reshape
	Flag   bool          // SetOriented, SetInvertible, ToggleFolder (new state)

	Node      tree.Node // MoveBeforeSibling, MoveIntoFolder, ToggleFolder, RemoveSubtree (folder case)
	Successor tree.Node // MoveBeforeSibling
	Folder    tree.Node // MoveIntoFolder, CreateFolder (parent)
}

// EditKind names one operation in the signature edit algebra (SPEC_FULL
// supplement 3).
type EditKind int

const (
	EditRename EditKind = iota
	EditRecolor
	EditReshape
	EditSetOriented
	EditSetInvertible
	EditMoveBeforeSibling
	EditMoveIntoFolder
	EditToggleFolder
	EditCreateFolder
	EditRemoveSubtree
)

// ApplyEdit performs one signature edit, per §4.3's edit algebra. Rename,
// Recolor, Reshape, SetOriented and SetInvertible fail with
// herr.ErrUnknownGenerator for an unknown generator; ToggleFolder fails with
// herr.ErrInvalid for a node that is not a folder, and RemoveSubtree for a
// node that does not exist. The move and create-folder edits do not validate
// their nodes.
func (s *Signature) ApplyEdit(e Edit) error {
	switch e.Kind {
	case EditRename:
		return s.mutateGenerator(e.Target, func(info *GeneratorInfo) { info.Name = e.Name })
	case EditRecolor:
		return s.mutateGenerator(e.Target, func(info *GeneratorInfo) { info.Color = e.Color })
	case EditReshape:
		return s.mutateGenerator(e.Target, func(info *GeneratorInfo) { info.Shape = e.Shape })
	case EditSetOriented:
		return s.setOriented(e.Target, e.Flag)
	case EditSetInvertible:
		return s.mutateGenerator(e.Target, func(info *GeneratorInfo) { info.Invertible = e.Flag })
	case EditMoveBeforeSibling:
		s.tree.ReparentBeforeSibling(e.Node, e.Successor)
		return nil
	case EditMoveIntoFolder:
		s.tree.ReparentUnder(e.Node, e.Folder)
		return nil
	case EditToggleFolder:
		fe, ok := s.tree.Get(e.Node)
		if !ok || fe.kind != folderEntry {
			return fmt.Errorf("signature: not a folder: %w", herr.ErrInvalid)
		}
		fe.open = e.Flag
		s.tree.Set(e.Node, fe)
		return nil
	case EditCreateFolder:
		s.tree.PushUnder(e.Folder, entry{kind: folderEntry, name: e.Name, open: true})
		return nil
	case EditRemoveSubtree:
		fe, ok := s.tree.Get(e.Node)
		if !ok {
			return fmt.Errorf("signature: node does not exist: %w", herr.ErrInvalid)
		}
		if fe.hasGen {
			s.Remove(fe.info.Generator.ID)
			return nil
		}
		for n := range s.tree.Descendants(e.Node) {
			de, ok := s.tree.Get(n)
			if ok && de.hasGen {
				s.Remove(de.info.Generator.ID)
			}
		}
		s.tree.Remove(e.Node)
		return nil
	default:
		return fmt.Errorf("signature: unknown edit kind %d: %w", e.Kind, herr.ErrInvalid)
	}
}

func (s *Signature) mutateGenerator(id generator.ID, f func(*GeneratorInfo)) error {
	n, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("signature: generator %d: %w", id, herr.ErrUnknownGenerator)
	}
	e, ok := s.tree.Get(n)
	if !ok || !e.hasGen {
		return fmt.Errorf("signature: generator %d: %w", id, herr.ErrUnknownGenerator)
	}
	f(&e.info)
	s.tree.Set(n, e)
	return nil
}

// setOriented records the Oriented flag in a generator's info. Only the flag
// changes: stored diagrams are not rewritten, and rewrites built from the
// generator by diagram.FromGenerator carry Framed false whatever the flag
// says.
func (s *Signature) setOriented(id generator.ID, oriented bool) error {
	return s.mutateGenerator(id, func(info *GeneratorInfo) { info.Oriented = oriented })
}
