package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// env reads variables through lookup and remembers which required or
// malformed keys it saw.
type env struct {
	lookup  func(string) (string, bool)
	missing []string
	invalid []string
}

func (e *env) get(key string) string {
	if e.lookup == nil {
		e.lookup = os.LookupEnv
	}
	v, _ := e.lookup(key)
	return strings.TrimSpace(v)
}

// must returns a required variable and records it when unset or empty.
func (e *env) must(key string) string {
	v := e.get(key)
	if v == "" {
		e.missing = append(e.missing, key)
	}
	return v
}

func (e *env) str(key, def string) string {
	if v := e.get(key); v != "" {
		return v
	}
	return def
}

func (e *env) intVal(key string, def int) int {
	v := e.get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.invalid = append(e.invalid, key)
		return def
	}
	return n
}

func (e *env) boolVal(key string, def bool) bool {
	switch e.get(key) {
	case "":
		return def
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return def
}

func (e *env) durVal(key string, def time.Duration) time.Duration {
	v := e.get(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.invalid = append(e.invalid, key)
		return def
	}
	return d
}
