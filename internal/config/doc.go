// Package config loads promptsan configuration from local and global YAML files
// and PROMPTSAN_* environment variables. It is internal; CLI code applies the
// precedence flag > env > local > global > default.
package config
