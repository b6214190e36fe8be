// Package brush holds the painter's brush value and its binary file format.
//
// A brush file is one fixed-size record in native byte order with no magic,
// version or checksum:
//
//	offset  size  field
//	0       48    six float32 pairs: min/max inertia, min/max inertia add, min/max rand move
//	48      4     colour r, g, b, a
//	52      4     padding
//	56      40    float64 size, life decay, life alpha multiplier, start life, colour alpha add
//	96      4     int32 amount
//	100     4     int32 spread
//
// The species name is not stored.
package brush

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"os"

	"github.com/pthm-cable/hiasobi/particle"
)

// RecordSize is the exact size of a brush file in bytes.
const RecordSize = 104

// ErrInvalid is returned for a record whose species parameters cannot drive
// the simulation (see particle.Species.Validate).
var ErrInvalid = errors.New("invalid brush record")

// Brush is a species preset plus how much and how wide to paint.
type Brush struct {
	Species particle.Species
	Amount  int32
	Spread  int32
}

// Tuning is the part of a brush the editor panel exposes. Sliders work in
// float32, so Apply compares at that precision.
type Tuning struct {
	Amount    int32
	Spread    int32
	Size      float64
	LifeDecay float64
}

// Tuning returns b's editable fields.
func (b Brush) Tuning() Tuning {
	return Tuning{
		Amount:    b.Amount,
		Spread:    b.Spread,
		Size:      b.Species.Size,
		LifeDecay: b.Species.LifeDecay,
	}
}

// Apply copies the fields of t that differ from b into b and reports whether
// anything changed. An edited size snaps to whole pixels; an untouched size
// keeps its fractional value.
func (b *Brush) Apply(t Tuning) bool {
	changed := false
	if t.Amount != b.Amount {
		b.Amount = t.Amount
		changed = true
	}
	if t.Spread != b.Spread {
		b.Spread = t.Spread
		changed = true
	}
	if float32(t.Size) != float32(b.Species.Size) {
		if size := math.Round(t.Size); size != b.Species.Size {
			b.Species.Size = size
			changed = true
		}
	}
	if float32(t.LifeDecay) != float32(b.Species.LifeDecay) {
		b.Species.LifeDecay = t.LifeDecay
		changed = true
	}
	return changed
}

type speciesRecord struct {
	MinInertia    [2]float32
	MaxInertia    [2]float32
	MinInertiaAdd [2]float32
	MaxInertiaAdd [2]float32
	MinRandMove   [2]float32
	MaxRandMove   [2]float32
	Color         [4]uint8
	_             [4]byte
	Size          float64
	LifeDecay     float64
	LifeAlphaMul  float64
	StartLife     float64
	ColorAlphaAdd float64
}

type record struct {
	Species speciesRecord
	Amount  int32
	Spread  int32
}

func pair(v particle.Vec2) [2]float32 { return [2]float32{v.X, v.Y} }
func vec(p [2]float32) particle.Vec2  { return particle.Vec2{X: p[0], Y: p[1]} }

func toRecord(b Brush) record {
	s := b.Species
	return record{
		Species: speciesRecord{
			MinInertia:    pair(s.MinInertia),
			MaxInertia:    pair(s.MaxInertia),
			MinInertiaAdd: pair(s.MinInertiaAdd),
			MaxInertiaAdd: pair(s.MaxInertiaAdd),
			MinRandMove:   pair(s.MinRandMove),
			MaxRandMove:   pair(s.MaxRandMove),
			Color:         [4]uint8{s.Color.R, s.Color.G, s.Color.B, s.Color.A},
			Size:          s.Size,
			LifeDecay:     s.LifeDecay,
			LifeAlphaMul:  s.LifeAlphaMultiplier,
			StartLife:     s.StartLife,
			ColorAlphaAdd: s.ColorAlphaAdd,
		},
		Amount: b.Amount,
		Spread: b.Spread,
	}
}

func (r record) brush() Brush {
	s := r.Species
	return Brush{
		Species: particle.Species{
			MinInertia:          vec(s.MinInertia),
			MaxInertia:          vec(s.MaxInertia),
			MinInertiaAdd:       vec(s.MinInertiaAdd),
			MaxInertiaAdd:       vec(s.MaxInertiaAdd),
			MinRandMove:         vec(s.MinRandMove),
			MaxRandMove:         vec(s.MaxRandMove),
			Color:               color.RGBA{R: s.Color[0], G: s.Color[1], B: s.Color[2], A: s.Color[3]},
			Size:                s.Size,
			LifeDecay:           s.LifeDecay,
			LifeAlphaMultiplier: s.LifeAlphaMul,
			StartLife:           s.StartLife,
			ColorAlphaAdd:       s.ColorAlphaAdd,
		},
		Amount: r.Amount,
		Spread: r.Spread,
	}
}

// Write encodes b as one record.
func Write(w io.Writer, b Brush) error {
	if err := binary.Write(w, binary.NativeEndian, toRecord(b)); err != nil {
		return fmt.Errorf("writing brush record: %w", err)
	}
	return nil
}

// Read decodes one record. A short input is an error wrapping
// io.ErrUnexpectedEOF and a record that fails validation wraps ErrInvalid;
// nothing partial is returned.
func Read(r io.Reader) (Brush, error) {
	var rec record
	if err := binary.Read(r, binary.NativeEndian, &rec); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return Brush{}, fmt.Errorf("reading brush record: %w", err)
	}
	b := rec.brush()
	if err := b.Species.Validate(); err != nil {
		return Brush{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return b, nil
}

// SaveFile writes b to path, replacing any existing file.
func SaveFile(path string, b Brush) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating brush file: %w", err)
	}
	if err := Write(f, b); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing brush file: %w", err)
	}
	return nil
}

// LoadFile reads a brush from path.
func LoadFile(path string) (Brush, error) {
	f, err := os.Open(path)
	if err != nil {
		return Brush{}, fmt.Errorf("opening brush file: %w", err)
	}
	defer f.Close()
	return Read(f)
}
