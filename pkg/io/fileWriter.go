package io

import (
	"fmt"
	"os"
	"path/filepath"
)

// MakeDirForFile creates a directory specified in the absolute or relative file path
// if it's not existing. The file path is required; creator is used in the error
// message to describe what the file is.
func MakeDirForFile(filePath string, creator string) error {
	fileName := filePath
	dir := filepath.Dir(fileName)
	err := os.MkdirAll(dir, os.ModePerm)
	if err != nil {
		return fmt.Errorf("could not create dir for %s: %w", creator, err)
	}
	return nil
}
