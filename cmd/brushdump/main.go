// Command brushdump converts brush files to and from YAML.
//
// Usage:
//
//	go run ./cmd/brushdump brush.bin                      # print as YAML
//	go run ./cmd/brushdump -from-yaml fire.yaml -o brush.bin
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/hiasobi/brush"
	"github.com/pthm-cable/hiasobi/config"
	"github.com/pthm-cable/hiasobi/particle"
)

// document is the YAML form of a brush file. The species block uses the
// same keys as the species list in config.yaml.
type document struct {
	Species config.SpeciesConfig `yaml:"species"`
	Amount  int32                `yaml:"amount"`
	Spread  int32                `yaml:"spread"`
}

func toDocument(b brush.Brush) document {
	return document{Species: b.Species.Config(), Amount: b.Amount, Spread: b.Spread}
}

func (d document) brush() brush.Brush {
	return brush.Brush{
		Species: particle.SpeciesFromConfig(d.Species),
		Amount:  d.Amount,
		Spread:  d.Spread,
	}
}

// dump writes the brush read from r to w as YAML.
func dump(r io.Reader, w io.Writer) error {
	b, err := brush.Read(r)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(toDocument(b)); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	return enc.Close()
}

// build parses a YAML document from r and writes the brush record to w.
// Missing life mapping fields take the engine defaults. Parameters that
// brush.Read would reject are refused here too.
func build(r io.Reader, w io.Writer) error {
	doc := document{Species: particle.NewSpecies("").Config()}
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return fmt.Errorf("parsing yaml: %w", err)
	}
	b := doc.brush()
	if err := b.Species.Validate(); err != nil {
		return fmt.Errorf("%w: %v", brush.ErrInvalid, err)
	}
	return brush.Write(w, b)
}

func main() {
	fromYAML := flag.String("from-yaml", "", "Build a brush file from this YAML document")
	outPath := flag.String("o", "", "Output file (default stdout)")
	flag.Parse()

	out := io.Writer(os.Stdout)
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			log.Fatalf("failed to create output: %v", err)
		}
		defer f.Close()
		out = f
	}

	if *fromYAML != "" {
		in, err := os.Open(*fromYAML)
		if err != nil {
			log.Fatalf("failed to open yaml: %v", err)
		}
		defer in.Close()
		if err := build(in, out); err != nil {
			log.Fatal(err)
		}
		return
	}

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	in, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Fatalf("failed to open brush file: %v", err)
	}
	defer in.Close()
	if err := dump(in, out); err != nil {
		log.Fatal(err)
	}
}
