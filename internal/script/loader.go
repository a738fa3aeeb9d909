package script

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// LoadScript reads a strategy file. A missing file is reported as ErrorTypeNotFound.
func LoadScript(fs afero.Fs, path string) (*Script, error) {
	name := filepath.Base(path)
	info, err := fs.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, NewScriptError(ErrorTypeNotFound, name, "script file not found", err)
		}
		return nil, NewScriptError(ErrorTypeExecution, name, "failed to stat script file", err)
	}
	content, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, NewScriptError(ErrorTypeExecution, name, "failed to read script file", err)
	}
	return NewScript(name, string(content), info.ModTime()), nil
}

// LoadOrDefault loads path, or the built-in strategy when path is empty.
func LoadOrDefault(fs afero.Fs, path string) (*Script, error) {
	if path == "" {
		return DefaultScript(), nil
	}
	return LoadScript(fs, path)
}
