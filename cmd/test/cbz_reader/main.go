// Test program for cbz archive reader functionality
//
// Usage:
//
//	go run ./cmd/test/cbz_reader/main.go <cbz-file-path>
//
// This program tests the following functionality:
// - Opening cbz files (ZIP archive)
// - Listing page image entries in order
// - Decoding every page and reporting its dimensions
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/yuito/spreadstitch/internal/cbz"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run ./cmd/test/cbz_reader/main.go <cbz-file>")
		os.Exit(1)
	}

	cbzPath := os.Args[1]

	fmt.Printf("Opening archive: %s\n", cbzPath)
	a, err := cbz.Open(cbzPath)
	if err != nil {
		log.Fatalf("Failed to open archive: %v", err)
	}
	defer a.Close()

	fmt.Printf("✓ Archive opened successfully\n")
	fmt.Printf("Page entries: %d\n\n", a.PageCount())

	pages, err := a.ReadPages()
	if err != nil {
		log.Fatalf("Failed to decode pages: %v", err)
	}

	fmt.Println("Page list:")
	for i, p := range pages {
		fmt.Printf("  %3d. %s (%dx%d)\n", i+1, p.Name, p.Width(), p.Height())
	}

	fmt.Println("\n✓ All pages decoded!")
}
