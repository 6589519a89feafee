package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"go.yaml.in/yaml/v3"
	"gopkg.in/ini.v1"
)

// readFile returns the file's settings keyed by environment variable name.
func readFile(path string) (map[string]string, error) {
	if err := VerifyPermissions(path); err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ini":
		return readINI(path)
	case ".yaml", ".yml":
		return readYAML(path)
	default:
		values, err := godotenv.Read(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		return values, nil
	}
}

func readINI(path string) (map[string]string, error) {
	cfgFile, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load INI file: %w", err)
	}
	values := map[string]string{}
	for _, k := range Keys {
		if cfgFile.Section(k.Section).HasKey(k.Name) {
			values[k.Env] = cfgFile.Section(k.Section).Key(k.Name).String()
		}
	}
	return values, nil
}

func readYAML(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	sections := map[string]map[string]any{}
	if err := yaml.Unmarshal(data, &sections); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	values := map[string]string{}
	for _, k := range Keys {
		if v, ok := sections[k.Section][k.Name]; ok && v != nil {
			values[k.Env] = fmt.Sprint(v)
		}
	}
	return values, nil
}

// VerifyPermissions rejects config files that other users can read or write.
func VerifyPermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("error checking config file permissions: %w", err)
	}

	perms := info.Mode().Perm()
	// Error messages will state that we want 0600,
	// but we'll also accept 0400 which is even more restricted.
	// The file might be provided by some secrets managing software as readonly.
	if perms != 0600 && perms != 0400 {
		return fmt.Errorf("invalid permissions for \"%s\": expected file permissions \"-rw-------\"; found \"%s\"", path, fs.FileMode(perms))
	}
	return nil
}

// WriteEnvFile creates a new dotenv config file readable only by the owner.
// It refuses to overwrite an existing file.
func WriteEnvFile(path string, values map[string]string) error {
	content, err := godotenv.Marshal(values)
	if err != nil {
		return fmt.Errorf("error encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("unable to create config directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("config file \"%s\" already exists", path)
		}
		return fmt.Errorf("unable to create \"%s\": %w", path, err)
	}
	if _, err := fmt.Fprintln(f, content); err != nil {
		f.Close()
		return fmt.Errorf("unable to write \"%s\": %w", path, err)
	}
	return f.Close()
}
