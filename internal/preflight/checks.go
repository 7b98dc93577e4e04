package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

// browserCandidates are looked up on PATH when no browser binary is configured.
var browserCandidates = []string{"chromium", "chromium-browser", "google-chrome", "google-chrome-stable", "chrome"}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckURL verifies that an HTTP endpoint answers with a 2xx or 3xx status.
func CheckURL(ctx context.Context, name, rawURL string, timeout time.Duration) Result {
	target := strings.TrimSpace(rawURL)
	if target == "" {
		return Result{Name: name, Detail: "missing url"}
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	checkCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client := &http.Client{Timeout: timeout}
	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, target, nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("request failed (%v)", err)}
	}
	resp, err := client.Do(req)
	if err != nil {
		return Result{Name: name, Detail: summarizeHTTPError(err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		return Result{Name: name, Passed: true, Detail: "Reachable"}
	}
	return Result{Name: name, Detail: fmt.Sprintf("unexpected status (%d)", resp.StatusCode)}
}

// CheckBrowser reports how the browser backend will obtain a Chrome instance.
func CheckBrowser(bin, debuggerURL string) Result {
	const name = "Browser"

	if debuggerURL = strings.TrimSpace(debuggerURL); debuggerURL != "" {
		parsed, err := url.Parse(debuggerURL)
		if err != nil || parsed.Host == "" {
			return Result{Name: name, Detail: fmt.Sprintf("invalid debugger url %q", debuggerURL)}
		}
		return Result{Name: name, Passed: true, Detail: "attach to " + parsed.Host}
	}
	if bin = strings.TrimSpace(bin); bin != "" {
		path, err := exec.LookPath(bin)
		if err != nil {
			return Result{Name: name, Detail: fmt.Sprintf("%s not found", bin)}
		}
		return Result{Name: name, Passed: true, Detail: path}
	}
	for _, candidate := range browserCandidates {
		if path, err := exec.LookPath(candidate); err == nil {
			return Result{Name: name, Passed: true, Detail: path}
		}
	}
	return Result{Name: name, Passed: true, Detail: "no local Chrome, a managed Chromium will be downloaded"}
}

// CheckScenario verifies that a sim scenario file is readable. An empty path
// selects the built-in playlist.
func CheckScenario(path string) Result {
	const name = "Scenario"

	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Passed: true, Detail: "built-in demo playlist"}
	}
	info, err := os.Stat(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	if info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not readable: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: path}
}

func summarizeHTTPError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "check timed out"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "check timed out (unreachable)"
	}
	return fmt.Sprintf("request failed (%v)", err)
}
