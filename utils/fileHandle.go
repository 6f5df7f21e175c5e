package utils

import (
	"os"
	"path/filepath"
	"strings"
)

// WriteFile stores data as destDir/name, replacing any previous file of that name.
// The content is written to a temporary file first so readers never see a partial file.
func WriteFile(destDir, name string, data []byte) (string, error) {
	// Create destination directory if it doesn't exist
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(destDir, "."+name+".*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	filePath := filepath.Join(destDir, name)
	if err := os.Rename(tmp.Name(), filePath); err != nil {
		return "", err
	}
	return filePath, nil
}

// GetFileURL joins a public base URL and a file name
func GetFileURL(baseURL, name string) string {
	if name == "" {
		return ""
	}
	return strings.TrimRight(baseURL, "/") + "/" + name
}
