package merge

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/local/pdfsm/internal/pdfdoc"
)

// fakeBackend treats text files of the form "pages=N[\nlabel=X]" as
// documents. Page n of a document extracts to "X#n"; Merge writes one
// extracted page per line.
type fakeBackend struct {
	opened []string
}

type fakeDoc struct {
	path  string
	label string
	pages int
}

func (d *fakeDoc) Path() string   { return d.path }
func (d *fakeDoc) PageCount() int { return d.pages }
func (d *fakeDoc) ExtractPage(n int) ([]byte, error) {
	return []byte(fmt.Sprintf("%s#%d", d.label, n)), nil
}

func (b *fakeBackend) Open(path string) (pdfdoc.Document, error) {
	b.opened = append(b.opened, path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc := &fakeDoc{path: path, label: strings.TrimSuffix(filepath.Base(path), ".pdf")}
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		k, v, _ := strings.Cut(sc.Text(), "=")
		switch k {
		case "pages":
			doc.pages, _ = strconv.Atoi(v)
		case "label":
			doc.label = v
		}
	}
	if doc.pages < 1 {
		return nil, errors.New("malformed document")
	}
	return doc, nil
}

func (b *fakeBackend) Merge(pages [][]byte, w io.Writer) error {
	_, err := w.Write(bytes.Join(pages, []byte("\n")))
	return err
}

// fakeRepairer writes a fixed document with the given content, or fails.
type fakeRepairer struct {
	content string
	err     error
	calls   []string
	// sawStale records whether a repaired copy already existed when called.
	sawStale bool
}

func (f *fakeRepairer) Repair(ctx context.Context, corruptPath, outputDir string) (string, error) {
	f.calls = append(f.calls, corruptPath)
	fixed := filepath.Join(outputDir, "pdfsm_fixed.pdf")
	if _, err := os.Stat(fixed); err == nil {
		f.sawStale = true
	}
	if f.err != nil {
		return "", f.err
	}
	if err := os.WriteFile(fixed, []byte(f.content), 0o644); err != nil {
		return "", err
	}
	return fixed, nil
}

type env struct {
	t        *testing.T
	inputDir string
	outDir   string
	selector string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	return &env{
		t:        t,
		inputDir: t.TempDir(),
		outDir:   t.TempDir(),
		selector: filepath.Join(t.TempDir(), "select.ini"),
	}
}

func (e *env) doc(stem, content string) {
	e.t.Helper()
	if err := os.WriteFile(filepath.Join(e.inputDir, stem+".pdf"), []byte(content), 0o644); err != nil {
		e.t.Fatal(err)
	}
}

func (e *env) selectorFile(content string) {
	e.t.Helper()
	if err := os.WriteFile(e.selector, []byte(content), 0o644); err != nil {
		e.t.Fatal(err)
	}
}

func (e *env) run() Run {
	return Run{
		SelectorFile: e.selector,
		InputDir:     e.inputDir + string(os.PathSeparator),
		OutputFile:   filepath.Join(e.outDir, "merged.pdf"),
	}
}

func (e *env) outputPages() []string {
	e.t.Helper()
	data, err := os.ReadFile(filepath.Join(e.outDir, "merged.pdf"))
	if err != nil {
		e.t.Fatal(err)
	}
	return strings.Split(string(data), "\n")
}

func countContaining(lines []string, sub string) int {
	n := 0
	for _, l := range lines {
		if strings.Contains(l, sub) {
			n++
		}
	}
	return n
}
