package app

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
)

// DotEnvFile is read from the repository root when present.
const DotEnvFile = ".env"

// loadEnv extends environ with the variables of the .env file at root.
// Variables already present in environ win.
func loadEnv(root string, environ []string) ([]string, error) {
	vars, err := godotenv.Read(filepath.Join(root, DotEnvFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return environ, nil
		}
		return nil, fmt.Errorf("read %s: %w", DotEnvFile, err)
	}

	keys := make([]string, 0, len(vars))
	for k := range vars {
		if _, ok := lookupEnv(environ, k); !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	out := make([]string, 0, len(environ)+len(keys))
	out = append(out, environ...)
	for _, k := range keys {
		out = append(out, k+"="+vars[k])
	}
	return out, nil
}

func lookupEnv(environ []string, key string) (string, bool) {
	for i := len(environ) - 1; i >= 0; i-- {
		k, v, ok := strings.Cut(environ[i], "=")
		if ok && k == key {
			return v, true
		}
	}
	return "", false
}
