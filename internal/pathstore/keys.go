package pathstore

import (
	"fmt"
	"path"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/dgallion1/scoregest/internal/sheet"
)

// Root is the key prefix of everything scoregest stores.
const Root = "skating"

// PDFKey is the parent key of every performance parsed from one PDF.
func PDFKey(pctx sheet.ParseContext, pdfName string) string {
	stem := strings.TrimSuffix(path.Base(pdfName), path.Ext(pdfName))
	return strings.Join([]string{Root, segment(pctx.Season), segment(pctx.Competition), segment(stem)}, "/")
}

// PerformanceKey addresses the n-th performance (1-based) of a PDF.
func PerformanceKey(pdfKey string, n int) string {
	return fmt.Sprintf("%s/%03d", pdfKey, n)
}

// HashKey addresses the index entry of an upload by its hex dedup key.
func HashKey(sum string) string {
	return Root + "/by_hash/" + sum
}

// segment turns a free-text name into one lower-case key segment without
// accents; runs of other characters collapse to a single dash.
func segment(s string) string {
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(fold, s)
	if err != nil {
		folded = s
	}
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
			continue
		}
		dash = true
	}
	if b.Len() == 0 {
		return "unknown"
	}
	return b.String()
}
