// Package inputs locates input PDFs by file stem. The input directory may be
// a local directory, an s3://bucket/prefix location or an http(s) base URL;
// remote inputs are downloaded to temporary files.
package inputs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog/log"
)

// ErrNotFound means the input does not exist at its source.
var ErrNotFound = errors.New("input not found")

// tempPrefix names downloaded inputs so CleanupTemps can find leftovers.
const tempPrefix = "pdfsm-in-"

// Kind is the type of input location.
type Kind int

const (
	Local Kind = iota
	S3
	HTTP
)

func (k Kind) String() string {
	switch k {
	case S3:
		return "s3"
	case HTTP:
		return "http"
	}
	return "local"
}

// ObjectGetter is the subset of the S3 client used for downloads.
type ObjectGetter interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Options configures remote access.
type Options struct {
	HTTPClient *http.Client
	// S3 overrides the client built from the default AWS config chain.
	S3 ObjectGetter
}

// Source is a resolved input available on the local filesystem.
type Source struct {
	Path    string
	cleanup func()
}

// Close removes the temporary copy of a remote input.
func (s Source) Close() {
	if s.cleanup != nil {
		s.cleanup()
	}
}

// Resolver maps file stems to input documents.
type Resolver struct {
	base   string
	kind   Kind
	bucket string
	prefix string
	http   *http.Client
	s3     ObjectGetter
}

// New returns a resolver for the input location base.
func New(base string, opts Options) (*Resolver, error) {
	r := &Resolver{base: base, http: opts.HTTPClient, s3: opts.S3}
	switch {
	case strings.HasPrefix(base, "s3://"):
		p := strings.TrimPrefix(base, "s3://")
		bucket, prefix, _ := strings.Cut(p, "/")
		if bucket == "" {
			return nil, fmt.Errorf("invalid s3 url: %s", base)
		}
		r.kind, r.bucket, r.prefix = S3, bucket, strings.Trim(prefix, "/")
	case strings.HasPrefix(base, "http://") || strings.HasPrefix(base, "https://"):
		if _, err := url.Parse(base); err != nil {
			return nil, fmt.Errorf("invalid url %s: %w", base, err)
		}
		r.kind = HTTP
		if r.http == nil {
			r.http = &http.Client{Timeout: 60 * time.Second}
		}
	default:
		r.base = strings.TrimPrefix(base, "file://")
	}
	return r, nil
}

// Kind reports the location type.
func (r *Resolver) Kind() Kind { return r.kind }

// Bucket returns the S3 bucket for S3 locations.
func (r *Resolver) Bucket() string { return r.bucket }

// Display returns the human-readable location of stem's document.
func (r *Resolver) Display(stem string) string {
	name := stem + ".pdf"
	switch r.kind {
	case S3:
		return "s3://" + r.bucket + "/" + r.key(stem)
	case HTTP:
		return strings.TrimSuffix(r.base, "/") + "/" + url.PathEscape(name)
	}
	return filepath.Join(r.base, name)
}

func (r *Resolver) key(stem string) string {
	return path.Join(r.prefix, stem+".pdf")
}

// Resolve makes stem's document available locally. It returns ErrNotFound
// when the document does not exist.
func (r *Resolver) Resolve(ctx context.Context, stem string) (Source, error) {
	switch r.kind {
	case S3:
		return r.resolveS3(ctx, stem)
	case HTTP:
		return r.resolveHTTP(ctx, stem)
	}
	p := r.Display(stem)
	st, err := os.Stat(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Source{}, fmt.Errorf("%w: %s", ErrNotFound, p)
		}
		return Source{}, err
	}
	if st.IsDir() {
		return Source{}, fmt.Errorf("%w: %s is a directory", ErrNotFound, p)
	}
	return Source{Path: p}, nil
}

func (r *Resolver) resolveHTTP(ctx context.Context, stem string) (Source, error) {
	u := r.Display(stem)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Source{}, err
	}
	resp, err := r.http.Do(req)
	if err != nil {
		return Source{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return Source{}, fmt.Errorf("%w: %s", ErrNotFound, u)
	}
	if resp.StatusCode != http.StatusOK {
		return Source{}, fmt.Errorf("http %d for %s", resp.StatusCode, u)
	}
	return writeTemp(resp.Body)
}

func (r *Resolver) resolveS3(ctx context.Context, stem string) (Source, error) {
	if r.s3 == nil {
		cfg, err := awscfg.LoadDefaultConfig(ctx)
		if err != nil {
			return Source{}, fmt.Errorf("load aws config: %w", err)
		}
		r.s3 = s3.NewFromConfig(cfg)
	}
	key := r.key(stem)
	out, err := r.s3.GetObject(ctx, &s3.GetObjectInput{Bucket: &r.bucket, Key: &key})
	if err != nil {
		if isS3NotFound(err) {
			return Source{}, fmt.Errorf("%w: s3://%s/%s", ErrNotFound, r.bucket, key)
		}
		return Source{}, fmt.Errorf("s3 get %s: %w", key, err)
	}
	defer out.Body.Close()
	src, err := writeTemp(out.Body)
	if err != nil {
		return Source{}, err
	}
	log.Info().Str("bucket", r.bucket).Str("key", key).Str("file", filepath.Base(src.Path)).Msg("downloaded s3 pdf to temp")
	return src, nil
}

func isS3NotFound(err error) bool {
	var nsk *s3types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var re *awshttp.ResponseError
	return errors.As(err, &re) && re.HTTPStatusCode() == http.StatusNotFound
}

func writeTemp(body io.Reader) (Source, error) {
	f, err := os.CreateTemp("", tempPrefix+"*.pdf")
	if err != nil {
		return Source{}, err
	}
	name := f.Name()
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(name)
		return Source{}, err
	}
	if err := f.Close(); err != nil {
		os.Remove(name)
		return Source{}, err
	}
	return Source{Path: name, cleanup: func() { _ = os.Remove(name) }}, nil
}

// CleanupTemps removes downloaded inputs older than maxAge that an
// interrupted run left in the temp directory.
func CleanupTemps(maxAge time.Duration) {
	dir := os.TempDir()
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	now := time.Now()
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), tempPrefix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) >= maxAge {
			_ = os.Remove(filepath.Join(dir, e.Name()))
		}
	}
}
