package config

import (
    "os"
    "strconv"
    "strings"
    "time"
)

// Helpers for optional variables.  A malformed value falls back to the
// default instead of aborting startup; required values go through must().

func envStr(k, d string) string {
    if v := strings.TrimSpace(os.Getenv(k)); v != "" {
        return v
    }
    return d
}

func envBool(k string, d bool) bool {
    v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(k)))
    if err != nil {
        switch strings.ToLower(strings.TrimSpace(os.Getenv(k))) {
        case "yes", "on":
            return true
        case "no", "off":
            return false
        }
        return d
    }
    return v
}

func envInt(k string, d int) int {
    if n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(k))); err == nil {
        return n
    }
    return d
}

func envDur(k string, d time.Duration) time.Duration {
    if dur, err := time.ParseDuration(strings.TrimSpace(os.Getenv(k))); err == nil {
        return dur
    }
    return d
}
