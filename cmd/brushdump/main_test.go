package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/pthm-cable/hiasobi/brush"
	"github.com/pthm-cable/hiasobi/config"
	"github.com/pthm-cable/hiasobi/particle"
)

func defaultFire(t *testing.T) brush.Brush {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	sp := particle.SpeciesFromConfig(cfg.Species[cfg.Derived.SpeciesIndex["fire"]])
	sp.Name = ""
	return brush.Brush{Species: sp, Amount: 16, Spread: 16}
}

func TestDumpThenBuild(t *testing.T) {
	want := defaultFire(t)

	var bin bytes.Buffer
	if err := brush.Write(&bin, want); err != nil {
		t.Fatal(err)
	}
	original := append([]byte(nil), bin.Bytes()...)

	var doc bytes.Buffer
	if err := dump(&bin, &doc); err != nil {
		t.Fatalf("dump: %v", err)
	}
	if !strings.Contains(doc.String(), "life_decay: 1.5") {
		t.Errorf("yaml missing life_decay:\n%s", doc.String())
	}

	var rebuilt bytes.Buffer
	if err := build(&doc, &rebuilt); err != nil {
		t.Fatalf("build: %v", err)
	}
	if !bytes.Equal(rebuilt.Bytes(), original) {
		t.Error("yaml round trip changed the brush record")
	}
}

func TestBuildDefaults(t *testing.T) {
	src := `
species:
  color: [10, 20, 30, 255]
  size: 3
  life_decay: 2
amount: 8
spread: 4
`
	var out bytes.Buffer
	if err := build(strings.NewReader(src), &out); err != nil {
		t.Fatalf("build: %v", err)
	}
	b, err := brush.Read(&out)
	if err != nil {
		t.Fatal(err)
	}
	if b.Species.StartLife != particle.DefaultStartLife || b.Species.LifeAlphaMultiplier != particle.DefaultLifeAlphaMultiplier {
		t.Errorf("life mapping defaults not applied: %+v", b.Species)
	}
	if b.Amount != 8 || b.Spread != 4 || b.Species.Size != 3 {
		t.Errorf("brush = %+v", b)
	}
}

func TestDumpShortInput(t *testing.T) {
	var out bytes.Buffer
	if err := dump(bytes.NewReader(make([]byte, 10)), &out); err == nil {
		t.Error("expected error for truncated brush")
	}
}

func TestBuildRejectsNegativeDecay(t *testing.T) {
	src := "species:\n  life_decay: -2\namount: 8\n"
	var out bytes.Buffer
	if err := build(strings.NewReader(src), &out); !errors.Is(err, brush.ErrInvalid) {
		t.Errorf("build error = %v, want brush.ErrInvalid", err)
	}
	if out.Len() != 0 {
		t.Errorf("wrote %d bytes for a rejected brush", out.Len())
	}
}
