package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// UploadDir returns statics/uploads/<kind>/<yyyy-mm>, creating it if needed.
func UploadDir(statics, kind string) (string, error) {
	path := filepath.Join(statics, "uploads", kind, time.Now().UTC().Format("2006-01"))
	if err := os.MkdirAll(path, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return path, nil
}

// PublicPath converts a file path under statics into the URL it is served at.
func PublicPath(statics, basePath, filePath string) string {
	rel, err := filepath.Rel(statics, filePath)
	if err != nil {
		return ""
	}
	return basePath + "/statics/" + filepath.ToSlash(rel)
}
