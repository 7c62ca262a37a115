package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DateLayout is the format ${DATE} expands to.
const DateLayout = "20060102-150405"

// ExpandPath expands a local path such as log_file:
//
//	~        home directory (leading only, no ~user)
//	${HOME}  home directory
//	${USER}  current username
//	${HOST}  short hostname
//	${DATE}  now as YYYYMMDD-HHMMSS
//
// so one config can keep a log per run, e.g. ~/dmon/${HOST}-${DATE}.csv.
// Unknown ${...} references are left as written.
func ExpandPath(s string, now time.Time) string {
	if !strings.Contains(s, "${") {
		return expandTilde(s)
	}

	pairs := make([]string, 0, 8)
	for name, value := range map[string]func() string{
		"HOME": homeDir,
		"USER": userName,
		"HOST": shortHostname,
		"DATE": func() string { return now.Format(DateLayout) },
	} {
		ref := "${" + name + "}"
		if strings.Contains(s, ref) {
			pairs = append(pairs, ref, value())
		}
	}
	return expandTilde(strings.NewReplacer(pairs...).Replace(s))
}

func expandTilde(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
}

func homeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "~"
}

// userName checks USER, then LOGNAME, then USERNAME (Windows).
func userName() string {
	for _, env := range []string{"USER", "LOGNAME", "USERNAME"} {
		if name := os.Getenv(env); name != "" {
			return name
		}
	}
	return "user"
}

// shortHostname is os.Hostname up to the first dot.
func shortHostname() string {
	name, err := os.Hostname()
	if err != nil || name == "" {
		return "localhost"
	}
	if i := strings.IndexByte(name, '.'); i > 0 {
		name = name[:i]
	}
	return name
}
