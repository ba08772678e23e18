package version

import (
	"io"
	"net/http"
	"regexp"
	"time"
)

const VERSION_URL = "https://raw.githubusercontent.com/bezmoradi/gestured/main/internal/version/version.go"

var versionPattern = regexp.MustCompile(`VERSION\s*=\s*"v(\d+\.\d+\.\d+)"`)

// CheckVersion reports whether this build is the latest release. Any
// network problem counts as up to date.
func CheckVersion() (bool, string) {
	return checkVersion(&http.Client{Timeout: 5 * time.Second}, VERSION_URL)
}

func checkVersion(client *http.Client, url string) (bool, string) {
	res, err := client.Get(url)
	if err != nil {
		return true, ""
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return true, ""
	}
	bytes, err := io.ReadAll(res.Body)
	if err != nil {
		return true, ""
	}

	newVersion := extractVersion(string(bytes))
	if newVersion != "" && VERSION != newVersion {
		return false, newVersion
	}

	return true, ""
}

func extractVersion(input string) string {
	matches := versionPattern.FindStringSubmatch(input)
	if len(matches) < 2 {
		return ""
	}
	return "v" + matches[1]
}
