package version

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func serve(t *testing.T, status int, body string) string {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestCheckVersion(t *testing.T) {
	latest, v := checkVersion(http.DefaultClient, serve(t, http.StatusOK, "package version\n\nconst VERSION = \"v9.9.9\"\n"))
	assert.False(t, latest)
	assert.Equal(t, "v9.9.9", v)

	latest, _ = checkVersion(http.DefaultClient, serve(t, http.StatusOK, fmt.Sprintf("const VERSION = %q", VERSION)))
	assert.True(t, latest)

	latest, _ = checkVersion(http.DefaultClient, serve(t, http.StatusNotFound, ""))
	assert.True(t, latest)

	latest, _ = checkVersion(http.DefaultClient, serve(t, http.StatusOK, "garbage"))
	assert.True(t, latest)
}

func TestExtractVersion(t *testing.T) {
	assert.Equal(t, "v1.2.3", extractVersion(`const VERSION = "v1.2.3"`))
	assert.Empty(t, extractVersion(`const VERSION = "1.2"`))
}
