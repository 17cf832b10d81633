package config

import (
	"os"
	"strconv"
	"time"
)

func envString(key string, dst *string) {
	if val, ok := os.LookupEnv(key); ok {
		*dst = val
	}
}

func envInt(key string, dst *int) {
	valStr, ok := os.LookupEnv(key)
	if !ok {
		return
	}

	val, err := strconv.Atoi(valStr)
	if err != nil {
		return
	}
	*dst = val
}

func envBool(key string, dst *bool) {
	valStr, ok := os.LookupEnv(key)
	if !ok {
		return
	}

	switch valStr {
	case "true", "1":
		*dst = true
	case "false", "0":
		*dst = false
	}
}

func envDuration(key string, dst *time.Duration) {
	valStr, ok := os.LookupEnv(key)
	if !ok {
		return
	}

	val, err := time.ParseDuration(valStr)
	if err != nil {
		return
	}
	*dst = val
}
