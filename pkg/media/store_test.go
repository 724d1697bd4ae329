package media

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	pkgError "github.com/jivitsolutions/jivit-site/pkg/error"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fileHeader builds a real multipart.FileHeader by parsing a form.
func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["file"][0]
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestSaveDocument(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(Options{StaticsDir: dir, BasePath: "/site"})

	stored, err := s.SaveDocument(fileHeader(t, "cv.PDF", []byte("%PDF-1.4")), KindResumes)
	require.NoError(t, err)
	assert.Equal(t, "cv.PDF", stored.Name)
	assert.True(t, strings.HasPrefix(stored.URL, "/site/statics/uploads/resumes/"))
	assert.True(t, strings.HasSuffix(stored.URL, ".pdf"))

	data, err := os.ReadFile(stored.Path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))
}

func TestSaveDocument_Rejects(t *testing.T) {
	s := NewStore(Options{StaticsDir: t.TempDir(), MaxDocBytes: 4})

	var vErr pkgError.ValidationError
	_, err := s.SaveDocument(fileHeader(t, "run.exe", []byte("x")), KindResumes)
	assert.ErrorAs(t, err, &vErr)

	_, err = s.SaveDocument(fileHeader(t, "big.pdf", []byte("too large")), KindResumes)
	assert.ErrorAs(t, err, &vErr)

	_, err = s.SaveDocument(nil, KindResumes)
	assert.ErrorAs(t, err, &vErr)
}

func TestSaveImage_WritesThumbnail(t *testing.T) {
	s := NewStore(Options{StaticsDir: t.TempDir(), ThumbnailWidth: 40})

	stored, err := s.SaveImage(fileHeader(t, "cover.png", pngBytes(t, 120, 60)))
	require.NoError(t, err)
	require.NotEmpty(t, stored.ThumbnailURL)
	assert.True(t, strings.HasSuffix(stored.ThumbnailURL, "-thumb.jpg"))

	thumbPath := strings.TrimSuffix(stored.Path, ".png") + "-thumb.jpg"
	f, err := os.Open(thumbPath)
	require.NoError(t, err)
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 40, cfg.Width)
	assert.Equal(t, 20, cfg.Height)
}

func TestSaveImage_InvalidImageRemoved(t *testing.T) {
	s := NewStore(Options{StaticsDir: t.TempDir()})

	_, err := s.SaveImage(fileHeader(t, "fake.png", []byte("not an image")))
	var vErr pkgError.ValidationError
	assert.ErrorAs(t, err, &vErr)
}
