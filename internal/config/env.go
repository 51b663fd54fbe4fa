package config

import (
	"os"
	"regexp"
)

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// substituteEnvVars expands ${VAR} references from the environment.
// References to unset variables are left as written.
func substituteEnvVars(content []byte) []byte {
	return envVarRegex.ReplaceAllFunc(content, func(ref []byte) []byte {
		name := string(ref[2 : len(ref)-1])
		if value, exists := os.LookupEnv(name); exists {
			return []byte(value)
		}
		return ref
	})
}
