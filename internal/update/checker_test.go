package update

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func releaseServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/adamancini/brewfile/releases/latest", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCheckNewerRelease(t *testing.T) {
	srv := releaseServer(t, http.StatusOK, `{"tag_name":"v10.2.0","html_url":"https://example.com/r/10.2.0"}`)
	checker := NewChecker(DefaultOwner, DefaultRepo).WithToken("secret").WithBaseURL(srv.URL + "/")

	info, err := checker.Check(context.Background(), "10.1.3")
	require.NoError(t, err)
	assert.True(t, info.Available)
	assert.Equal(t, "10.1.3", info.CurrentVersion)
	assert.Equal(t, "10.2.0", info.LatestVersion)
	assert.Contains(t, info.String(), UpgradeCommand)
}

func TestCheckUpToDate(t *testing.T) {
	srv := releaseServer(t, http.StatusOK, `{"tag_name":"10.1.3"}`)
	checker := NewChecker(DefaultOwner, DefaultRepo).WithToken("secret").WithBaseURL(srv.URL)

	info, err := checker.Check(context.Background(), "v10.1.3")
	require.NoError(t, err)
	assert.False(t, info.Available)
	assert.Equal(t, "brew-file 10.1.3 is the latest release.", info.String())
}

func TestCheckErrors(t *testing.T) {
	srv := releaseServer(t, http.StatusForbidden, `{}`)
	checker := NewChecker(DefaultOwner, DefaultRepo).WithToken("secret").WithBaseURL(srv.URL)
	_, err := checker.Check(context.Background(), "10.1.3")
	assert.ErrorContains(t, err, "status 403")

	srv = releaseServer(t, http.StatusOK, `{"tag_name":"10.2.0"}`)
	checker = NewChecker(DefaultOwner, DefaultRepo).WithToken("secret").WithBaseURL(srv.URL)
	_, err = checker.Check(context.Background(), "dev")
	assert.ErrorContains(t, err, "invalid current version")
}

func TestVersionCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"10.1.0", "10.1.0", 0},
		{"v10.1.0", "10.1.0", 0},
		{"10.2.0", "10.1.9", 1},
		{"9.9.9", "10.0.0", -1},
		{"1.0.0", "1.0.0-rc.1", 1},
		{"1.0.0-rc.1", "1.0.0", -1},
		{"1.0.0-rc.2", "1.0.0-rc.1", 1},
	}
	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			a, err := ParseVersion(tt.a)
			require.NoError(t, err)
			b, err := ParseVersion(tt.b)
			require.NoError(t, err)
			assert.Equal(t, tt.want, a.Compare(b))
		})
	}
}

func TestParseVersionInvalid(t *testing.T) {
	for _, s := range []string{"", "1.0", "invalid", "1.0.0.0"} {
		_, err := ParseVersion(s)
		assert.Error(t, err, s)
	}
	v, err := ParseVersion(" 2.3.4-beta.1\n")
	require.NoError(t, err)
	assert.Equal(t, "2.3.4-beta.1", v.String())
}
