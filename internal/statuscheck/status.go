package statuscheck

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ToolChecker models the repair tool lookup.
type ToolChecker interface {
	Available() error
}

// BucketHeader is the subset of the S3 client used to probe a bucket.
type BucketHeader interface {
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// Checker aggregates readiness checks for the pieces a merge depends on.
type Checker struct {
	repair     ToolChecker
	configPath string
	s3Bucket   string
	s3         BucketHeader
}

// Options configures the Checker.
type Options struct {
	Repair     ToolChecker
	ConfigPath string
	// S3Bucket is probed only when set.
	S3Bucket string
	S3       BucketHeader
}

// Status represents the readiness of a subsystem.
type Status struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// Summary bundles all subsystem statuses.
type Summary struct {
	Ghostscript Status  `json:"ghostscript"`
	ConfigStore Status  `json:"config_store"`
	S3          *Status `json:"s3,omitempty"`
}

// New creates a new Checker with the provided options.
func New(opts Options) *Checker {
	return &Checker{
		repair:     opts.Repair,
		configPath: opts.ConfigPath,
		s3Bucket:   opts.S3Bucket,
		s3:         opts.S3,
	}
}

// Summary returns the current status snapshot.
func (c *Checker) Summary(ctx context.Context) Summary {
	sum := Summary{
		Ghostscript: c.checkRepair(),
		ConfigStore: c.checkConfigStore(),
	}
	if c.s3Bucket != "" {
		st := c.checkS3(ctx)
		sum.S3 = &st
	}
	return sum
}

func (c *Checker) checkRepair() Status {
	if c.repair == nil {
		return Status{OK: false, Message: "not configured"}
	}
	if err := c.repair.Available(); err != nil {
		return Status{OK: false, Message: "Binary not found"}
	}
	return Status{OK: true, Message: "Available"}
}

// checkConfigStore reports whether last-used paths can be remembered.
func (c *Checker) checkConfigStore() Status {
	if c.configPath == "" {
		return Status{OK: false, Message: "not configured"}
	}
	f, err := os.CreateTemp(filepath.Dir(c.configPath), ".pdfsm-probe-*")
	if err != nil {
		return Status{OK: false, Message: "Not writable"}
	}
	name := f.Name()
	f.Close()
	_ = os.Remove(name)
	return Status{OK: true, Message: "Writable"}
}

func (c *Checker) checkS3(ctx context.Context) Status {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	cli := c.s3
	if cli == nil {
		cfg, err := awscfg.LoadDefaultConfig(ctx)
		if err != nil {
			return Status{OK: false, Message: trimError(err)}
		}
		cli = s3.NewFromConfig(cfg)
	}
	if _, err := cli.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: &c.s3Bucket}); err != nil {
		return Status{OK: false, Message: trimError(err)}
	}
	return Status{OK: true, Message: "Connected"}
}

func trimError(err error) string {
	if err == nil {
		return ""
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timeout"
	}
	msg := err.Error()
	if len(msg) > 120 {
		return msg[:120]
	}
	return msg
}
