package pdfdoc

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/rs/zerolog/log"
)

func init() {
	// Keep pdfcpu from creating a config directory under the user's home.
	api.DisableConfigDir()
}

// Pdfcpu is the pdfcpu-backed Backend.
type Pdfcpu struct {
	strict bool
}

// NewPdfcpu returns a backend. validation is "strict" or anything else for relaxed.
func NewPdfcpu(validation string) *Pdfcpu {
	return &Pdfcpu{strict: validation == "strict"}
}

func (p *Pdfcpu) conf() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	if p.strict {
		conf.ValidationMode = model.ValidationStrict
	} else {
		conf.ValidationMode = model.ValidationRelaxed
	}
	return conf
}

// Open reads, validates and optimizes the file at path. Any failure means
// the document is malformed. Pages are later extracted from the parsed
// context without reading the file again.
func (p *Pdfcpu) Open(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// The context may load stream content lazily from its reader, so the
	// reader is kept in memory rather than tied to an open file.
	conf := p.conf()
	conf.Cmd = model.EXTRACTPAGES
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	if ctx.PageCount < 1 {
		return nil, fmt.Errorf("read pdf: no pages")
	}
	log.Debug().Str("file", path).Int("pages", ctx.PageCount).Msg("opened pdf")
	return &pdfcpuDoc{path: path, ctx: ctx, pages: ctx.PageCount}, nil
}

// Merge concatenates one-page PDFs in order.
func (p *Pdfcpu) Merge(pages [][]byte, w io.Writer) error {
	if len(pages) == 1 {
		_, err := w.Write(pages[0])
		return err
	}
	rsc := make([]io.ReadSeeker, len(pages))
	for i, pg := range pages {
		rsc[i] = bytes.NewReader(pg)
	}
	return api.MergeRaw(rsc, w, false, p.conf())
}

type pdfcpuDoc struct {
	path  string
	ctx   *model.Context
	pages int
}

func (d *pdfcpuDoc) Path() string   { return d.path }
func (d *pdfcpuDoc) PageCount() int { return d.pages }

func (d *pdfcpuDoc) ExtractPage(n int) ([]byte, error) {
	if n < 1 || n > d.pages {
		return nil, fmt.Errorf("%w: page %d of %d", ErrPageOutOfRange, n, d.pages)
	}
	r, err := api.ExtractPage(d.ctx, n)
	if err != nil {
		return nil, err
	}
	return io.ReadAll(r)
}
