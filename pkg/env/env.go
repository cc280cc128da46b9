// Package env reads the few process-environment knobs that sit outside the
// envconfig-managed sections, such as the logger's output format.
package env

import "os"

// Get returns the named variable, or fallback when it is unset or blank.
func Get(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}
