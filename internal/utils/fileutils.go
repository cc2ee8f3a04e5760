package utils

import (
	"fmt"
	"io"
	"os"
)

// IsTextFile checks if a file is a text file and not binary
func IsTextFile(filePath string) bool {
	f, err := os.Open(filePath)
	if err != nil {
		LogError("Error opening file %s: %v", filePath, err)
		return false
	}
	defer func() {
		if err := f.Close(); err != nil {
			LogWarning("Failed to close file: %v", err)
		}
	}()

	// Read the first 512 bytes to determine content type
	buffer := make([]byte, 512)
	n, err := f.Read(buffer)
	if err != nil && err != io.EOF {
		return false
	}

	// Check for null bytes and other control characters (except common ones
	// like tab, newline and the ANSI escape)
	for i := 0; i < n; i++ {
		if (buffer[i] < 9 || (buffer[i] > 13 && buffer[i] < 32)) && buffer[i] != 0x1B {
			LogWarning("File %s appears to be binary (detected binary content)", filePath)
			return false
		}
	}

	return true
}

// ReadTextFile reads an entire text file and returns its content as a string
func ReadTextFile(filePath string) (string, error) {
	if !IsTextFile(filePath) {
		return "", fmt.Errorf("file %s appears to be binary, not a text file", filePath)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return string(data), nil
}
