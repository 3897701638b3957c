// SPDX-License-Identifier: GPL-3.0-only

package commons

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

var envOnce sync.Once

// LoadEnvFile loads variables from the file passed with --env-file, once per process.
// Values already present in the environment win.
func LoadEnvFile() {
	envOnce.Do(func() {
		envFile := envFileArg(os.Args[1:])
		if envFile == "" {
			return
		}
		fmt.Printf("Loading environment variables from file: %s\n", envFile)
		if err := godotenv.Load(envFile); err != nil {
			fmt.Printf("Failed to load env file: %s\n", err)
		}
	})
}

// envFileArg accepts --env-file and -env-file, with the path either as the next
// argument or after "=".
func envFileArg(args []string) string {
	for i, arg := range args {
		if arg == "--" {
			return ""
		}
		name, value, hasValue := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if name != "env-file" || !strings.HasPrefix(arg, "-") {
			continue
		}
		if hasValue {
			return value
		}
		if i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

// GetEnv returns the value of key, or the first default when it is unset or empty.
func GetEnv(key string, defaultValue ...string) string {
	LoadEnvFile()
	if v := os.Getenv(key); v != "" {
		return v
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

func GetEnvBool(key string, defaultValue bool) bool {
	v := GetEnv(key)
	if v == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		Logger.Warnf("Invalid boolean for %s: %q, using %v", key, v, defaultValue)
		return defaultValue
	}
	return b
}

func GetEnvInt(key string, defaultValue int) int {
	v := GetEnv(key)
	if v == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		Logger.Warnf("Invalid integer for %s: %q, using %d", key, v, defaultValue)
		return defaultValue
	}
	return i
}

// GetEnvList splits a comma separated variable, dropping empty items.
func GetEnvList(key string) []string {
	var out []string
	for _, p := range strings.Split(GetEnv(key), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
