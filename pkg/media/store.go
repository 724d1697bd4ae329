package media

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	pkgError "github.com/jivitsolutions/jivit-site/pkg/error"
	"github.com/jivitsolutions/jivit-site/pkg/utils"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"
	_ "golang.org/x/image/webp"
)

const (
	KindResumes   = "resumes"
	KindDocuments = "documents"
	KindImages    = "images"
)

var (
	documentExts = map[string]bool{".pdf": true, ".doc": true, ".docx": true}
	imageExts    = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}
)

type Options struct {
	StaticsDir     string
	BasePath       string
	MaxDocBytes    int64
	MaxImageBytes  int64
	ThumbnailWidth int
}

// Stored describes a file written under the statics directory.
type Stored struct {
	Name         string `json:"name"`
	Path         string `json:"-"`
	URL          string `json:"url"`
	Size         int64  `json:"size"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

type Store struct {
	opts Options
}

func NewStore(opts Options) *Store {
	if opts.StaticsDir == "" {
		opts.StaticsDir = "statics"
	}
	if opts.MaxDocBytes <= 0 {
		opts.MaxDocBytes = 10 << 20
	}
	if opts.MaxImageBytes <= 0 {
		opts.MaxImageBytes = 8 << 20
	}
	if opts.ThumbnailWidth <= 0 {
		opts.ThumbnailWidth = 480
	}
	return &Store{opts: opts}
}

// SaveDocument stores a resume or inquiry attachment. kind selects the
// upload sub directory.
func (s *Store) SaveDocument(file *multipart.FileHeader, kind string) (Stored, error) {
	return s.save(file, kind, documentExts, s.opts.MaxDocBytes)
}

// SaveImage stores an admin image upload and writes a JPEG thumbnail next to it.
func (s *Store) SaveImage(file *multipart.FileHeader) (Stored, error) {
	stored, err := s.save(file, KindImages, imageExts, s.opts.MaxImageBytes)
	if err != nil {
		return stored, err
	}

	src, err := imaging.Open(stored.Path, imaging.AutoOrientation(true))
	if err != nil {
		_ = os.Remove(stored.Path)
		return Stored{}, pkgError.ValidationError(fmt.Sprintf("file %s is not a valid image: %v", file.Filename, err))
	}

	thumb := src
	if src.Bounds().Dx() > s.opts.ThumbnailWidth {
		thumb = imaging.Resize(src, s.opts.ThumbnailWidth, 0, imaging.Lanczos)
	}
	thumbPath := strings.TrimSuffix(stored.Path, filepath.Ext(stored.Path)) + "-thumb.jpg"
	if err := imaging.Save(thumb, thumbPath, imaging.JPEGQuality(80)); err != nil {
		logrus.WithError(err).Warnf("[MEDIA] failed to write thumbnail for %s", stored.Path)
		return stored, nil
	}
	stored.ThumbnailURL = utils.PublicPath(s.opts.StaticsDir, s.opts.BasePath, thumbPath)
	return stored, nil
}

func (s *Store) save(file *multipart.FileHeader, kind string, allowed map[string]bool, maxBytes int64) (Stored, error) {
	if file == nil {
		return Stored{}, pkgError.ValidationError("file is required")
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowed[ext] {
		return Stored{}, pkgError.ValidationError(fmt.Sprintf("file type %q is not allowed", ext))
	}
	if file.Size > maxBytes {
		return Stored{}, pkgError.ValidationError(fmt.Sprintf("file %s exceeds %d bytes", file.Filename, maxBytes))
	}

	dir, err := utils.UploadDir(s.opts.StaticsDir, kind)
	if err != nil {
		return Stored{}, pkgError.InternalServerError(err.Error())
	}
	path := filepath.Join(dir, uuid.New().String()+ext)
	if err := fasthttp.SaveMultipartFile(file, path); err != nil {
		return Stored{}, pkgError.InternalServerError(fmt.Sprintf("failed to save %s: %v", file.Filename, err))
	}

	logrus.Debugf("[MEDIA] saved %s as %s", file.Filename, path)
	return Stored{
		Name: file.Filename,
		Path: path,
		URL:  utils.PublicPath(s.opts.StaticsDir, s.opts.BasePath, path),
		Size: file.Size,
	}, nil
}
