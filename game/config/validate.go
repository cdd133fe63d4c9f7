package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/memory-match-game/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// Errors is empty when Valid is true; Info carries the checks that passed.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
	Info   []string
}

func (r *ValidationResult) fail(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) pass(format string, args ...any) {
	r.Info = append(r.Info, "✓ "+fmt.Sprintf(format, args...))
}

// ValidateFile loads and validates a single configuration JSON file. Unlike
// the Manager it rejects unknown fields so typos in hand-written files show up.
func ValidateFile(filePath string) ValidationResult {
	result := ValidationResult{
		File:  filepath.Base(filePath),
		Valid: true,
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	var config engine.GameConfig
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&config); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}

	// Required fields are reported individually before the engine check
	if config.Name == "" {
		result.fail("Missing required field: name")
	}
	if config.Rows == 0 || config.Columns == 0 {
		result.fail("Missing required field: rows/columns")
	}
	if len(config.Symbols) == 0 {
		result.fail("Missing required field: symbols")
	}
	if !result.Valid {
		return result
	}

	for key, msg := range map[string]string{
		"welcome":  config.Messages.Welcome,
		"match":    config.Messages.Match,
		"mismatch": config.Messages.Mismatch,
		"victory":  config.Messages.Victory,
	} {
		if msg == "" {
			result.Info = append(result.Info, fmt.Sprintf("messages.%s not set, built-in text is used", key))
		}
	}

	config.ApplyDefaults()
	if err := engine.ValidateGameConfig(&config); err != nil {
		result.fail("%v", err)
		return result
	}

	pairs := config.Rows * config.Columns / 2
	result.pass("Grid: %dx%d (%d pairs)", config.Rows, config.Columns, pairs)
	result.pass("Symbols: %d unique", len(config.Symbols))
	result.pass("Timing: match %.2fs, mismatch %.2fs, reward %d", config.MatchDelay, config.MismatchDelay, config.MatchReward)
	return result
}

// ValidateDir validates every *.json file in dir
func ValidateDir(dir string) ([]ValidationResult, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("error finding config files: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no config files found in %s", dir)
	}

	results := make([]ValidationResult, 0, len(files))
	for _, file := range files {
		results = append(results, ValidateFile(file))
	}
	return results, nil
}

// WriteReport prints a concise report and returns whether every file was valid
func WriteReport(w io.Writer, results []ValidationResult) bool {
	allValid := true
	for _, result := range results {
		fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Fprintln(w, "✅ VALID")
			for _, info := range result.Info {
				fmt.Fprintln(w, "  "+info)
			}
			continue
		}

		allValid = false
		fmt.Fprintln(w, "❌ INVALID")
		for _, err := range result.Errors {
			fmt.Fprintln(w, "  ❌ "+err)
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Fprintln(w, "✅ All configurations are valid!")
	} else {
		fmt.Fprintln(w, "❌ Some configurations have errors")
	}
	return allValid
}
