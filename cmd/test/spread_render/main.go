// Test program for spread pairing and rendering
//
// Usage:
//
//	go run ./cmd/test/spread_render/main.go <cbz-file-path> <output-dir>
//
// This program tests the following functionality:
// - Reading and reversing archive pages
// - Pairing pages (blank partner for odd counts)
// - Rendering spreads to PNG files for visual inspection
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/yuito/spreadstitch/internal/cbz"
	"github.com/yuito/spreadstitch/internal/stitch"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: go run ./cmd/test/spread_render/main.go <cbz-file> <output-dir>")
		os.Exit(1)
	}

	cbzPath := os.Args[1]
	outDir := os.Args[2]

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		log.Fatalf("Failed to create output dir: %v", err)
	}

	a, err := cbz.Open(cbzPath)
	if err != nil {
		log.Fatalf("Failed to open archive: %v", err)
	}
	defer a.Close()

	pages, err := a.ReadPages()
	if err != nil {
		log.Fatalf("Failed to decode pages: %v", err)
	}
	fmt.Printf("✓ %d pages decoded\n", len(pages))

	spreads := stitch.Pair(pages)
	fmt.Printf("✓ %d spreads paired\n", len(spreads))

	for i, s := range spreads {
		img := stitch.Render(s)
		out := filepath.Join(outDir, fmt.Sprintf("%03d.png", i+1))
		if err := imaging.Save(img, out); err != nil {
			log.Fatalf("Failed to save %s: %v", out, err)
		}
		right := "(blank)"
		if s.Right != nil {
			right = s.Right.Name
		}
		fmt.Printf("  %3d. %s | %s -> %s\n", i+1, s.Left.Name, right, out)
	}

	fmt.Println("\n✓ All spreads rendered!")
}
