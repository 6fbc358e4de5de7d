// Package uploads validates and stores photo attachments for waste reports.
//
// Intake is a sequence of validation gates per file: declared metadata first
// (extension, media type, declared size), then the written bytes (actual size,
// image signature). A batch either stores every candidate or leaves nothing
// behind.
package uploads

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultMaxFileSize       = 5 << 20 // 5 MiB
	DefaultMaxFilesPerReport = 10

	// substituted when a candidate declares no filename
	defaultBaseName = "unnamed.jpg"

	signatureLen = 10
)

var (
	ErrTooManyFiles         = errors.New("too many files in batch")
	ErrUnsupportedExtension = errors.New("unsupported file extension")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrSizeExceeded         = errors.New("file exceeds maximum size")
	ErrEmptyFile            = errors.New("file is empty")
	ErrInvalidImageContent  = errors.New("invalid image content")
	ErrStorageWrite         = errors.New("storage write failed")
)

var (
	allowedExtensions = map[string]struct{}{".jpg": {}, ".jpeg": {}, ".png": {}}
	allowedMediaTypes = map[string]struct{}{"image/jpeg": {}, "image/png": {}}

	jpegSignature = []byte{0xFF, 0xD8, 0xFF}
	pngSignature  = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
)

// Candidate is one uploaded file before validation. Filename, ContentType and
// Size come from the client and are advisory only; Size may be zero when the
// transport did not declare one.
type Candidate struct {
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// FromFileHeader adapts a multipart file header to a Candidate.
func FromFileHeader(fh *multipart.FileHeader) Candidate {
	return Candidate{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// Config holds the process-wide upload policy, injected once at startup.
type Config struct {
	Root         string
	MaxFileSize  int64
	MaxBatchSize int
}

// Intake validates and stores attachment batches under a fixed root directory.
type Intake struct {
	root         string
	maxFileSize  int64
	maxBatchSize int
	log          *zap.Logger
}

func New(cfg Config, log *zap.Logger) *Intake {
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = DefaultMaxFileSize
	}
	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = DefaultMaxFilesPerReport
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Intake{
		root:         filepath.Clean(cfg.Root),
		maxFileSize:  cfg.MaxFileSize,
		maxBatchSize: cfg.MaxBatchSize,
		log:          log,
	}
}

// ValidateAndStore processes the batch strictly in order and returns one
// storage reference per candidate, of the form <root>/<reportID>/<uuid><ext>.
// On the first failing candidate the whole batch is rolled back: files already
// written by this call are removed and the candidate's error is returned.
func (i *Intake) ValidateAndStore(reportID string, candidates []Candidate) ([]string, error) {
	if len(candidates) > i.maxBatchSize {
		return nil, fmt.Errorf("%w: %d files, limit is %d", ErrTooManyFiles, len(candidates), i.maxBatchSize)
	}

	stored := make([]string, 0, len(candidates))
	for _, c := range candidates {
		ref, err := i.saveOne(reportID, c)
		if err != nil {
			for _, prev := range stored {
				i.discard("rollback", prev, os.Remove(prev))
			}
			return nil, fmt.Errorf("%q: %w", c.Filename, err)
		}
		stored = append(stored, ref)
	}
	return stored, nil
}

func (i *Intake) saveOne(reportID string, c Candidate) (string, error) {
	// Declared-metadata gates; nothing is written if these fail.
	if c.Size > i.maxFileSize {
		return "", fmt.Errorf("%w: declared %d bytes, limit is %d", ErrSizeExceeded, c.Size, i.maxFileSize)
	}
	name := c.Filename
	if name == "" {
		name = defaultBaseName
	}
	ext := strings.ToLower(filepath.Ext(name))
	if _, ok := allowedExtensions[ext]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedExtension, ext)
	}
	if _, ok := allowedMediaTypes[c.ContentType]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedMediaType, c.ContentType)
	}

	dir := filepath.Join(i.root, reportID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}

	dst := filepath.Join(dir, uuid.New().String()+ext)
	written, err := i.writeLimited(dst, c)
	if err != nil {
		i.discard("partial write", dst, os.Remove(dst))
		return "", err
	}
	if written == 0 {
		i.discard("empty file", dst, os.Remove(dst))
		return "", ErrEmptyFile
	}

	// Authoritative content check on what actually hit the disk.
	if err := checkImageSignature(dst); err != nil {
		i.discard("invalid content", dst, os.Remove(dst))
		return "", err
	}
	return filepath.ToSlash(dst), nil
}

// writeLimited copies the candidate body to dst, refusing to write past the
// size limit. The declared size can be absent or wrong, so the limit is
// enforced on the bytes actually read.
func (i *Intake) writeLimited(dst string, c Candidate) (int64, error) {
	src, err := c.Open()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}
	defer src.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}

	written, err := io.Copy(out, io.LimitReader(src, i.maxFileSize+1))
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return written, fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}
	if written > i.maxFileSize {
		return written, fmt.Errorf("%w: body larger than %d bytes", ErrSizeExceeded, i.maxFileSize)
	}
	return written, nil
}

func checkImageSignature(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}
	defer f.Close()

	header := make([]byte, signatureLen)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.ErrUnexpectedEOF {
		return fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}
	header = header[:n]

	if bytes.HasPrefix(header, jpegSignature) || bytes.HasPrefix(header, pngSignature) {
		return nil
	}
	return ErrInvalidImageContent
}

// DeleteReportAttachments removes a report's whole attachment directory.
// Best-effort: runs during report deletion and must never block it.
func (i *Intake) DeleteReportAttachments(reportID string) {
	dir := filepath.Join(i.root, reportID)
	i.discard("delete report dir", dir, os.RemoveAll(dir))
}

// DeleteAttachment removes a single stored file by its storage reference.
// References outside the upload root are refused.
func (i *Intake) DeleteAttachment(ref string) {
	clean := filepath.Clean(filepath.FromSlash(ref))
	if !strings.HasPrefix(clean, i.root+string(filepath.Separator)) {
		i.log.Warn("refusing to delete reference outside upload root", zap.String("ref", ref))
		return
	}
	i.discard("delete attachment", clean, os.Remove(clean))
}

// ReportDirs lists the report identifiers that currently have an attachment
// directory under the root. Used by the orphan sweep job.
func (i *Intake) ReportDirs() ([]string, error) {
	entries, err := os.ReadDir(i.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			ids = append(ids, e.Name())
		}
	}
	return ids, nil
}

// discard drops errors from cleanup paths. Cleanup is best-effort by
// contract; a failed removal must not mask or replace the primary error.
func (i *Intake) discard(op, path string, err error) {
	if err != nil && !os.IsNotExist(err) {
		i.log.Debug("cleanup failed",
			zap.String("op", op),
			zap.String("path", path),
			zap.Error(err))
	}
}
