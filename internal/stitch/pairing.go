// Package stitch turns an ordered page list into right-to-left spread
// canvases: pairing, composition, and the leading notice page.
package stitch

import (
	"github.com/yuito/spreadstitch/internal/cbz"
)

// Spread is two facing pages composed into one canvas. Right is nil when
// an odd page count left the final page without a partner; it renders as
// blank white space.
type Spread struct {
	Left  cbz.Page
	Right *cbz.Page
}

// Pair reverses the page list for right-to-left reading order and groups
// it into consecutive pairs. For an odd count the final spread's right
// slot is left blank so every page has exactly one partner.
func Pair(pages []cbz.Page) []Spread {
	reversed := make([]cbz.Page, len(pages))
	for i, p := range pages {
		reversed[len(pages)-1-i] = p
	}

	spreads := make([]Spread, 0, (len(reversed)+1)/2)
	for i := 0; i < len(reversed); i += 2 {
		s := Spread{Left: reversed[i]}
		if i+1 < len(reversed) {
			right := reversed[i+1]
			s.Right = &right
		}
		spreads = append(spreads, s)
	}
	return spreads
}
