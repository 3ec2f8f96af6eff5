// Package chrome locates a Chrome binary and describes the devices a
// recording browser can emulate.
package chrome

import (
	"os"
	"os/exec"
	"runtime"
)

var lookPathNames = []string{"google-chrome", "google-chrome-stable", "chromium-browser", "chromium"}

// FindExecutable returns override when it exists, otherwise the first Chrome
// or Chromium binary found in the usual install locations or on PATH. It
// returns "" when nothing is found.
func FindExecutable(override string) string {
	if override != "" {
		if _, err := os.Stat(override); err == nil {
			return override
		}
	}

	var candidates []string
	switch runtime.GOOS {
	case "linux":
		candidates = []string{
			"/usr/bin/google-chrome-stable",
			"/usr/bin/google-chrome",
			"/usr/bin/chromium-browser",
			"/usr/bin/chromium",
			"/snap/bin/chromium",
			"/opt/google/chrome/google-chrome",
		}
	case "darwin":
		candidates = []string{
			"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
			"/Applications/Chromium.app/Contents/MacOS/Chromium",
		}
	case "windows":
		candidates = []string{
			`C:\Program Files\Google\Chrome\Application\chrome.exe`,
			`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
		}
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	for _, name := range lookPathNames {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}
