// Package pdftest writes small, well-formed PDF fixtures for tests.
package pdftest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
)

// PageWidth is the MediaBox width of page i (1-based) in a fixture written
// with the given base, so copied pages can be told apart.
func PageWidth(base, i int) float64 { return float64(base + i) }

// Build returns an n-page PDF whose page i is PageWidth(base, i) points wide.
func Build(n, base int) []byte {
	var buf bytes.Buffer
	offsets := make([]int, 0, n+2)
	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")
	obj("<< /Type /Catalog /Pages 2 0 R >>")
	kids := ""
	for i := 0; i < n; i++ {
		kids += fmt.Sprintf("%d 0 R ", i+3)
	}
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, n))
	for i := 1; i <= n; i++ {
		obj(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %d 200] /Resources << >> >>", base+i))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	return buf.Bytes()
}

// Write stores Build(n, base) as dir/name and returns the path.
func Write(dir, name string, n, base int) (string, error) {
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, Build(n, base), 0o644); err != nil {
		return "", err
	}
	return p, nil
}

// Corrupt is a file that starts like a PDF but cannot be parsed.
var Corrupt = []byte("%PDF-1.4\n%garbage, no objects and no cross-reference table\n")
