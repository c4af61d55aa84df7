// Package persist implements §6's content-addressed blob format: a
// human-diffable yaml.v3 header (format version and root reference) plus a
// binary dump of an interned-value table, each entry addressed by the
// sha256 digest of its own encoding and referencing its children by their
// digests. Grounded on dungo's pkg/dungeon/config.go (yaml.v3 struct tags
// for the header) and its use of crypto/sha256 for content addressing.
package persist

import (
	"bufio"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/homotopy-io/homotopy-go/internal/diagram"
	"github.com/homotopy-io/homotopy-go/internal/generator"
	"github.com/homotopy-io/homotopy-go/internal/herr"
)

// FormatVersion is bumped whenever the entry encoding below changes in a way
// older readers can't parse; a migration step (not implemented here, since
// there is only one version so far) would dispatch on Header.Version.
const FormatVersion = 1

// Header is the yaml-encoded prefix of a persisted file: the format version
// and the root entry's content address.
type Header struct {
	Version int    `yaml:"version"`
	Root    string `yaml:"root"`
}

// Digest is a content address: the sha256 of one entry's encoded payload.
type Digest [sha256.Size]byte

func (d Digest) String() string { return fmt.Sprintf("%x", [sha256.Size]byte(d)) }

type entryKind byte

const (
	kindDiagram0 entryKind = iota
	kindDiagramN
	kindRewrite0
	kindRewriteN
)

// table accumulates entries in dependency order (every entry's children are
// written before it) during encoding, deduplicating by content address.
type table struct {
	order   []Digest
	entries map[Digest][]byte
}

func newTable() *table {
	return &table{entries: make(map[Digest][]byte)}
}

func (t *table) put(kind entryKind, payload []byte) Digest {
	framed := append([]byte{byte(kind)}, payload...)
	digest := Digest(sha256.Sum256(framed))
	if _, ok := t.entries[digest]; !ok {
		t.entries[digest] = framed
		t.order = append(t.order, digest)
	}
	return digest
}

// Write serializes d's full hash-consed dependency graph to w: a yaml
// header separated from the binary table dump by a "---" line, per
// §6's "header, interned-table dump, root reference" contract.
func Write(w io.Writer, d diagram.Diagram) error {
	t := newTable()
	root, err := encodeDiagram(t, d)
	if err != nil {
		return err
	}

	header := Header{Version: FormatVersion, Root: root.String()}
	headerBytes, err := yaml.Marshal(header)
	if err != nil {
		return fmt.Errorf("persist: encode header: %w", err)
	}

	bw := bufio.NewWriter(w)
	if _, err := bw.Write(headerBytes); err != nil {
		return fmt.Errorf("persist: write header: %w", err)
	}
	if _, err := bw.WriteString("---\n"); err != nil {
		return fmt.Errorf("persist: write header separator: %w", err)
	}
	for _, digest := range t.order {
		frame := t.entries[digest]
		if err := binary.Write(bw, binary.BigEndian, uint32(len(frame))); err != nil {
			return fmt.Errorf("persist: write frame length: %w", err)
		}
		if _, err := bw.Write(frame); err != nil {
			return fmt.Errorf("persist: write frame: %w", err)
		}
	}
	return bw.Flush()
}

func encodeDiagram(t *table, d diagram.Diagram) (Digest, error) {
	switch v := d.(type) {
	case diagram.Diagram0:
		return t.put(kindDiagram0, encodeGenerator(v.Generator())), nil
	case diagram.DiagramN:
		sourceDigest, err := encodeDiagram(t, v.Source())
		if err != nil {
			return Digest{}, err
		}
		var buf []byte
		buf = append(buf, sourceDigest[:]...)
		cospans := v.Cospans()
		buf = appendUint32(buf, uint32(len(cospans)))
		for _, cs := range cospans {
			fwd, err := encodeRewrite(t, cs.Forward)
			if err != nil {
				return Digest{}, err
			}
			bwd, err := encodeRewrite(t, cs.Backward)
			if err != nil {
				return Digest{}, err
			}
			buf = append(buf, fwd[:]...)
			buf = append(buf, bwd[:]...)
		}
		return t.put(kindDiagramN, buf), nil
	default:
		return Digest{}, fmt.Errorf("persist: unknown diagram implementation: %w", herr.ErrInvalid)
	}
}

func encodeRewrite(t *table, r diagram.Rewrite) (Digest, error) {
	switch v := r.(type) {
	case diagram.Rewrite0:
		source, target, hasMapping := v.Endpoints()
		var buf []byte
		if hasMapping {
			buf = append(buf, 1)
			buf = append(buf, encodeGenerator(source)...)
			buf = append(buf, encodeGenerator(target)...)
			if v.Framed() {
				buf = append(buf, 1)
			} else {
				buf = append(buf, 0)
			}
		} else {
			buf = append(buf, 0)
		}
		return t.put(kindRewrite0, buf), nil
	case diagram.RewriteN:
		var buf []byte
		buf = appendUint32(buf, uint32(v.Dimension()))
		cones := v.Cones()
		buf = appendUint32(buf, uint32(len(cones)))
		for _, cone := range cones {
			cbuf, err := encodeCone(t, cone)
			if err != nil {
				return Digest{}, err
			}
			buf = appendUint32(buf, uint32(len(cbuf)))
			buf = append(buf, cbuf...)
		}
		return t.put(kindRewriteN, buf), nil
	default:
		return Digest{}, fmt.Errorf("persist: unknown rewrite implementation: %w", herr.ErrInvalid)
	}
}

func encodeCone(t *table, c diagram.Cone) ([]byte, error) {
	var buf []byte
	buf = appendUint32(buf, uint32(c.Index))
	buf = appendUint32(buf, uint32(len(c.Source)))
	for _, cs := range c.Source {
		fwd, err := encodeRewrite(t, cs.Forward)
		if err != nil {
			return nil, err
		}
		bwd, err := encodeRewrite(t, cs.Backward)
		if err != nil {
			return nil, err
		}
		buf = append(buf, fwd[:]...)
		buf = append(buf, bwd[:]...)
	}
	tfwd, err := encodeRewrite(t, c.Target.Forward)
	if err != nil {
		return nil, err
	}
	tbwd, err := encodeRewrite(t, c.Target.Backward)
	if err != nil {
		return nil, err
	}
	buf = append(buf, tfwd[:]...)
	buf = append(buf, tbwd[:]...)
	buf = appendUint32(buf, uint32(len(c.Slices)))
	for _, s := range c.Slices {
		sd, err := encodeRewrite(t, s)
		if err != nil {
			return nil, err
		}
		buf = append(buf, sd[:]...)
	}
	return buf, nil
}

func encodeGenerator(g generator.Generator) []byte {
	buf := make([]byte, 0, 13)
	buf = appendUint64(buf, uint64(g.ID))
	buf = appendUint32(buf, uint32(g.Dimension))
	buf = append(buf, byte(g.Orientation))
	return buf
}

func appendUint32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

func appendUint64(buf []byte, v uint64) []byte {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	return append(buf, tmp[:]...)
}

// Read parses a file written by Write back into a diagram, verifying every
// entry's content address as it goes (a corrupted or truncated frame fails
// the digest check rather than silently producing a different diagram).
func Read(r io.Reader) (diagram.Diagram, error) {
	br := bufio.NewReader(r)
	headerBytes, err := readHeaderBytes(br)
	if err != nil {
		return nil, fmt.Errorf("persist: read header: %w", err)
	}
	var header Header
	if err := yaml.Unmarshal(headerBytes, &header); err != nil {
		return nil, fmt.Errorf("persist: decode header: %w", err)
	}
	if header.Version != FormatVersion {
		return nil, fmt.Errorf("persist: unsupported format version %d: %w", header.Version, herr.ErrInvalid)
	}

	diagrams := make(map[Digest]diagram.Diagram)
	rewrites := make(map[Digest]diagram.Rewrite)
	for {
		var length uint32
		if err := binary.Read(br, binary.BigEndian, &length); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("persist: read frame length: %w", err)
		}
		frame := make([]byte, length)
		if _, err := io.ReadFull(br, frame); err != nil {
			return nil, fmt.Errorf("persist: read frame: %w", err)
		}
		digest := Digest(sha256.Sum256(frame))
		if err := decodeEntry(digest, frame, diagrams, rewrites); err != nil {
			return nil, err
		}
	}

	rootBytes, err := hex.DecodeString(header.Root)
	if err != nil || len(rootBytes) != sha256.Size {
		return nil, fmt.Errorf("persist: parse root reference %q: %w", header.Root, herr.ErrInvalid)
	}
	var root Digest
	copy(root[:], rootBytes)
	d, ok := diagrams[root]
	if !ok {
		return nil, fmt.Errorf("persist: root reference %s not found in table: %w", header.Root, herr.ErrInvalid)
	}
	return d, nil
}

func readHeaderBytes(br *bufio.Reader) ([]byte, error) {
	var out []byte
	for {
		line, err := br.ReadString('\n')
		if line == "---\n" {
			return out, nil
		}
		out = append(out, line...)
		if err != nil {
			return nil, err
		}
	}
}

func decodeEntry(digest Digest, frame []byte, diagrams map[Digest]diagram.Diagram, rewrites map[Digest]diagram.Rewrite) error {
	if len(frame) == 0 {
		return fmt.Errorf("persist: empty frame: %w", herr.ErrInvalid)
	}
	kind := entryKind(frame[0])
	payload := frame[1:]
	switch kind {
	case kindDiagram0:
		g, _, err := decodeGenerator(payload)
		if err != nil {
			return err
		}
		diagrams[digest] = diagram.FromGeneratorZero(g)
		return nil
	case kindDiagramN:
		c := cursor{buf: payload}
		sourceDigest := c.digest()
		source, ok := diagrams[sourceDigest]
		if !ok {
			return fmt.Errorf("persist: diagram entry references unknown source %s: %w", sourceDigest, herr.ErrInvalid)
		}
		count := c.uint32()
		cospans := make([]diagram.Cospan, 0, count)
		for i := uint32(0); i < count; i++ {
			fwdDigest := c.digest()
			bwdDigest := c.digest()
			fwd, ok := rewrites[fwdDigest]
			if !ok {
				return fmt.Errorf("persist: cospan references unknown forward rewrite %s: %w", fwdDigest, herr.ErrInvalid)
			}
			bwd, ok := rewrites[bwdDigest]
			if !ok {
				return fmt.Errorf("persist: cospan references unknown backward rewrite %s: %w", bwdDigest, herr.ErrInvalid)
			}
			cospans = append(cospans, diagram.Cospan{Forward: fwd, Backward: bwd})
		}
		if c.err != nil {
			return c.err
		}
		diagrams[digest] = diagram.NewDiagramN(source, cospans)
		return nil
	case kindRewrite0:
		c := cursor{buf: payload}
		hasMapping := c.byte()
		if hasMapping == 0 {
			rewrites[digest] = diagram.IdentityRewrite0()
			return nil
		}
		source, n, err := decodeGenerator(c.buf[c.pos:])
		if err != nil {
			return err
		}
		c.pos += n
		target, n, err := decodeGenerator(c.buf[c.pos:])
		if err != nil {
			return err
		}
		c.pos += n
		framed := c.byte() == 1
		if c.err != nil {
			return c.err
		}
		r, err := diagram.NewRewrite0(source, target, framed)
		if err != nil {
			return fmt.Errorf("persist: decode rewrite0: %w", err)
		}
		rewrites[digest] = r
		return nil
	case kindRewriteN:
		c := cursor{buf: payload}
		dim := int(c.uint32())
		coneCount := c.uint32()
		cones := make([]diagram.Cone, 0, coneCount)
		for i := uint32(0); i < coneCount; i++ {
			coneLen := c.uint32()
			coneBuf := c.bytes(int(coneLen))
			if c.err != nil {
				return c.err
			}
			cone, err := decodeCone(coneBuf, rewrites)
			if err != nil {
				return err
			}
			cones = append(cones, cone)
		}
		if c.err != nil {
			return c.err
		}
		r, err := diagram.NewRewriteN(dim, cones)
		if err != nil {
			return fmt.Errorf("persist: decode rewriteN: %w", err)
		}
		rewrites[digest] = r
		return nil
	default:
		return fmt.Errorf("persist: unknown entry kind %d: %w", kind, herr.ErrInvalid)
	}
}

func decodeCone(buf []byte, rewrites map[Digest]diagram.Rewrite) (diagram.Cone, error) {
	c := cursor{buf: buf}
	index := int(c.uint32())
	sourceCount := c.uint32()
	source := make([]diagram.Cospan, 0, sourceCount)
	for i := uint32(0); i < sourceCount; i++ {
		fwdDigest := c.digest()
		bwdDigest := c.digest()
		fwd, ok := rewrites[fwdDigest]
		if !ok {
			return diagram.Cone{}, fmt.Errorf("persist: cone source references unknown forward rewrite %s: %w", fwdDigest, herr.ErrInvalid)
		}
		bwd, ok := rewrites[bwdDigest]
		if !ok {
			return diagram.Cone{}, fmt.Errorf("persist: cone source references unknown backward rewrite %s: %w", bwdDigest, herr.ErrInvalid)
		}
		source = append(source, diagram.Cospan{Forward: fwd, Backward: bwd})
	}
	tfwdDigest := c.digest()
	tbwdDigest := c.digest()
	tfwd, ok := rewrites[tfwdDigest]
	if !ok {
		return diagram.Cone{}, fmt.Errorf("persist: cone target references unknown forward rewrite %s: %w", tfwdDigest, herr.ErrInvalid)
	}
	tbwd, ok := rewrites[tbwdDigest]
	if !ok {
		return diagram.Cone{}, fmt.Errorf("persist: cone target references unknown backward rewrite %s: %w", tbwdDigest, herr.ErrInvalid)
	}
	sliceCount := c.uint32()
	slices := make([]diagram.Rewrite, 0, sliceCount)
	for i := uint32(0); i < sliceCount; i++ {
		sliceDigest := c.digest()
		s, ok := rewrites[sliceDigest]
		if !ok {
			return diagram.Cone{}, fmt.Errorf("persist: cone slice references unknown rewrite %s: %w", sliceDigest, herr.ErrInvalid)
		}
		slices = append(slices, s)
	}
	if c.err != nil {
		return diagram.Cone{}, c.err
	}
	return diagram.Cone{
		Index:  index,
		Source: source,
		Target: diagram.Cospan{Forward: tfwd, Backward: tbwd},
		Slices: slices,
	}, nil
}

func decodeGenerator(buf []byte) (generator.Generator, int, error) {
	if len(buf) < 13 {
		return generator.Generator{}, 0, fmt.Errorf("persist: truncated generator: %w", herr.ErrInvalid)
	}
	id := binary.BigEndian.Uint64(buf[0:8])
	dim := binary.BigEndian.Uint32(buf[8:12])
	orientation := buf[12]
	return generator.Generator{
		ID:          generator.ID(id),
		Dimension:   int(dim),
		Orientation: generator.Orientation(orientation),
	}, 13, nil
}

// cursor is a small forward-only byte-slice reader used while decoding a
// single entry's payload; it records the first error seen so callers can
// check once at the end of a multi-field decode instead of after every read.
type cursor struct {
	buf []byte
	pos int
	err error
}

func (c *cursor) need(n int) bool {
	if c.err != nil {
		return false
	}
	if c.pos+n > len(c.buf) {
		c.err = fmt.Errorf("persist: truncated entry: %w", herr.ErrInvalid)
		return false
	}
	return true
}

func (c *cursor) byte() byte {
	if !c.need(1) {
		return 0
	}
	b := c.buf[c.pos]
	c.pos++
	return b
}

func (c *cursor) uint32() uint32 {
	if !c.need(4) {
		return 0
	}
	v := binary.BigEndian.Uint32(c.buf[c.pos : c.pos+4])
	c.pos += 4
	return v
}

func (c *cursor) digest() Digest {
	if !c.need(sha256.Size) {
		return Digest{}
	}
	var d Digest
	copy(d[:], c.buf[c.pos:c.pos+sha256.Size])
	c.pos += sha256.Size
	return d
}

func (c *cursor) bytes(n int) []byte {
	if !c.need(n) {
		return nil
	}
	out := c.buf[c.pos : c.pos+n]
	c.pos += n
	return out
}
