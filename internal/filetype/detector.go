package filetype

import (
	"fmt"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog/log"
)

// PDFMIME is the MIME type reported for PDF documents.
const PDFMIME = "application/pdf"

// Info contains detected file type information
type Info struct {
	MIMEType    string
	Extension   string
	IsPDF       bool
	Description string
}

// Detector handles file type detection using magic bytes
type Detector struct{}

// New creates a new file type detector
func New() *Detector {
	return &Detector{}
}

// Detect detects the actual file type using magic bytes, not filename
func (d *Detector) Detect(filePath string) (*Info, error) {
	mtype, err := mimetype.DetectFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to detect file type: %w", err)
	}

	info := &Info{
		MIMEType:  mtype.String(),
		Extension: mtype.Extension(),
		IsPDF:     mtype.Is(PDFMIME),
	}
	info.Description = describe(mtype)

	log.Debug().Str("mime", info.MIMEType).Str("ext", info.Extension).Str("file", filePath).Msg("detected file type")
	return info, nil
}

func describe(mtype *mimetype.MIME) string {
	switch {
	case mtype.Is(PDFMIME):
		return "PDF document"
	case mtype.Is("application/postscript"):
		return "PostScript document"
	case mtype.Is("application/octet-stream"):
		return "unrecognized binary data"
	case mtype.Is("text/plain"):
		return "plain text"
	}
	for p := mtype.Parent(); p != nil; p = p.Parent() {
		if p.Is("text/plain") {
			return "text document (" + mtype.String() + ")"
		}
	}
	return "unsupported file type: " + mtype.String()
}
