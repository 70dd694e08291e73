package graph

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

var verboseFlag bool

// GenerateNodeID generates a stable SHA256-derived ID for a declaration or
// call-site node, scoped by file and byte range so identical snippets in
// different files never collide.
func GenerateNodeID(kind, name, file string, startByte, endByte uint32) string {
	hashInput := fmt.Sprintf("%s|%s|%s|%d|%d", kind, name, file, startByte, endByte)
	hash := sha256.Sum256([]byte(hashInput))
	return hex.EncodeToString(hash[:])
}

// EnableVerboseLogging enables verbose logging mode for the parsing phase.
func EnableVerboseLogging() {
	verboseFlag = true
}

// Log logs a message if verbose logging is enabled.
func Log(message string, args ...interface{}) {
	if verboseFlag {
		log.Println(message, args)
	}
}

// IsGitHubActions checks if running in GitHub Actions environment.
func IsGitHubActions() bool {
	return os.Getenv("GITHUB_ACTIONS") == "true"
}

// getFiles walks a directory and returns all C# source files, skipping
// generated/build output directories that would otherwise bloat parse time
// with no contribution to the call graph.
func getFiles(directory string) ([]string, error) {
	var files []string
	err := filepath.Walk(directory, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			switch info.Name() {
			case "bin", "obj", ".git", "node_modules":
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) == ".cs" && !strings.HasSuffix(path, ".g.cs") {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// readFile reads the contents of a file.
func readFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}
