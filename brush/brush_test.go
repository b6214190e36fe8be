package brush

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/hiasobi/particle"
)

func fireBrush() Brush {
	s := particle.NewSpecies("")
	s.MinInertia = particle.Vec2{X: -1, Y: -1}
	s.MaxInertia = particle.Vec2{X: 1, Y: 2.5}
	s.MinInertiaAdd = particle.Vec2{X: -0.2, Y: -0.1}
	s.MaxInertiaAdd = particle.Vec2{X: 0.2, Y: 0.15}
	s.MinRandMove = particle.Vec2{X: -2, Y: -0.8}
	s.MaxRandMove = particle.Vec2{X: 2, Y: 2}
	s.Color = color.RGBA{R: 230, G: 41, B: 55, A: 255}
	s.Size = 4
	s.LifeDecay = 1.5
	return Brush{Species: s, Amount: 16, Spread: -16}
}

func TestRecordSize(t *testing.T) {
	if got := binary.Size(record{}); got != RecordSize {
		t.Fatalf("binary.Size(record) = %d, want %d", got, RecordSize)
	}

	var buf bytes.Buffer
	if err := Write(&buf, fireBrush()); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != RecordSize {
		t.Errorf("encoded %d bytes, want %d", buf.Len(), RecordSize)
	}
}

func TestLayout(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, fireBrush()); err != nil {
		t.Fatal(err)
	}
	data := buf.Bytes()
	ne := binary.NativeEndian

	if got := math.Float32frombits(ne.Uint32(data[8:])); got != 1 {
		t.Errorf("max inertia x at offset 8 = %v, want 1", got)
	}
	if got := math.Float32frombits(ne.Uint32(data[12:])); got != 2.5 {
		t.Errorf("max inertia y at offset 12 = %v, want 2.5", got)
	}
	if !bytes.Equal(data[48:52], []byte{230, 41, 55, 255}) {
		t.Errorf("colour bytes = %v", data[48:52])
	}
	if !bytes.Equal(data[52:56], []byte{0, 0, 0, 0}) {
		t.Errorf("padding bytes = %v, want zeros", data[52:56])
	}
	if got := math.Float64frombits(ne.Uint64(data[56:])); got != 4 {
		t.Errorf("size at offset 56 = %v, want 4", got)
	}
	if got := math.Float64frombits(ne.Uint64(data[88:])); got != 100 {
		t.Errorf("start life at offset 88 = %v, want 100", got)
	}
	if got := int32(ne.Uint32(data[96:])); got != 16 {
		t.Errorf("amount at offset 96 = %d, want 16", got)
	}
	if got := int32(ne.Uint32(data[100:])); got != -16 {
		t.Errorf("spread at offset 100 = %d, want -16", got)
	}
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fire.brush")
	want := fireBrush()

	if err := SaveFile(path, want); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if got.Amount != want.Amount || got.Spread != want.Spread {
		t.Errorf("amount/spread = %d/%d, want %d/%d", got.Amount, got.Spread, want.Amount, want.Spread)
	}
	if got.Species != want.Species {
		t.Errorf("species = %+v, want %+v", got.Species, want.Species)
	}

	// Re-encoding the loaded brush must reproduce the file byte for byte
	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var again bytes.Buffer
	if err := Write(&again, got); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, again.Bytes()) {
		t.Error("re-encoded record differs from saved file")
	}
}

func TestReadShortInput(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, fireBrush()); err != nil {
		t.Fatal(err)
	}

	for _, n := range []int{0, 1, 52, RecordSize - 1} {
		_, err := Read(bytes.NewReader(buf.Bytes()[:n]))
		if !errors.Is(err, io.ErrUnexpectedEOF) {
			t.Errorf("Read(%d bytes) error = %v, want io.ErrUnexpectedEOF", n, err)
		}
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.brush"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want os.ErrNotExist", err)
	}
}

func TestSaveFileBadPath(t *testing.T) {
	err := SaveFile(filepath.Join(t.TempDir(), "no", "such", "dir", "b.brush"), fireBrush())
	if err == nil {
		t.Error("expected error saving into a missing directory")
	}
}

func TestReadRejectsInvalidSpecies(t *testing.T) {
	tests := []struct {
		name string
		edit func(*Brush)
	}{
		{"negative life decay", func(b *Brush) { b.Species.LifeDecay = -5 }},
		{"nan life decay", func(b *Brush) { b.Species.LifeDecay = math.NaN() }},
		{"infinite size", func(b *Brush) { b.Species.Size = math.Inf(1) }},
		{"reversed inertia", func(b *Brush) { b.Species.MinInertia.X = 4 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := fireBrush()
			tt.edit(&b)

			var buf bytes.Buffer
			if err := Write(&buf, b); err != nil {
				t.Fatal(err)
			}
			got, err := Read(&buf)
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("Read error = %v, want ErrInvalid", err)
			}
			if got != (Brush{}) {
				t.Errorf("Read returned a partial brush %+v", got)
			}
		})
	}
}

func TestApplyTuning(t *testing.T) {
	base := fireBrush()
	base.Species.Size = 4.5
	base.Species.LifeDecay = 1.3

	tests := []struct {
		name        string
		edit        func(*Tuning)
		wantChanged bool
		wantSize    float64
		wantDecay   float64
	}{
		{"untouched fractional values", func(*Tuning) {}, false, 4.5, 1.3},
		{"float32 round trip", func(tu *Tuning) {
			tu.Size = float64(float32(tu.Size))
			tu.LifeDecay = float64(float32(tu.LifeDecay))
		}, false, 4.5, 1.3},
		{"size dragged", func(tu *Tuning) { tu.Size = 7.4 }, true, 7, 1.3},
		{"decay dragged", func(tu *Tuning) { tu.LifeDecay = 2.25 }, true, 4.5, 2.25},
		{"amount changed", func(tu *Tuning) { tu.Amount = 40 }, true, 4.5, 1.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := base
			tu := b.Tuning()
			tt.edit(&tu)

			if got := b.Apply(tu); got != tt.wantChanged {
				t.Errorf("Apply changed = %v, want %v", got, tt.wantChanged)
			}
			if b.Species.Size != tt.wantSize || b.Species.LifeDecay != tt.wantDecay {
				t.Errorf("size/decay = %v/%v, want %v/%v", b.Species.Size, b.Species.LifeDecay, tt.wantSize, tt.wantDecay)
			}
			if b.Apply(b.Tuning()) {
				t.Error("second Apply with the same values reported a change")
			}
		})
	}
}
