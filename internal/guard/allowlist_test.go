package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaultGuestRoutes = []string{
	"/api/quality/dashboard/stats",
	"/api/quality/indicators",
	"/api/quality/indicators/*",
	"/api/quality/indicators/*/evidence",
	"/api/quality/reports/**",
	"/api/user",
}

func TestAllowlist_Match(t *testing.T) {
	a := MustCompileAllowlist(defaultGuestRoutes)

	tests := []struct {
		path string
		want bool
	}{
		{"/api/quality/dashboard/stats", true},
		{"/api/quality/dashboard/stats/", true},
		{"/api/quality/indicators", true},
		{"/api/quality/indicators/42", true},
		{"/api/quality/indicators/42/evidence", true},
		{"/api/quality/indicators/42/evidence/7", false},
		{"/api/quality/indicators/42/delete", false},
		{"/api/quality/reports", false},
		{"/api/quality/reports/2026", true},
		{"/api/quality/reports/2026/q1.pdf", true},
		{"/api/user", true},
		{"/api/users", false},
		{"/api/organization/profile", false},
		{"/", false},
		{"", false},
		{"/api/quality/indicators/.+", true},
		{"/api/quality/dashboardXstats", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, a.Match(tt.path))
		})
	}
}

func TestAllowlist_LiteralSegmentsAreNotRegex(t *testing.T) {
	a := MustCompileAllowlist([]string{"/api/v1.0/items"})
	assert.True(t, a.Match("/api/v1.0/items"))
	assert.False(t, a.Match("/api/v1x0/items"))
}

func TestCompileAllowlist_Errors(t *testing.T) {
	_, err := CompileAllowlist([]string{"api/user"})
	require.Error(t, err)

	_, err = CompileAllowlist([]string{"/api/**/evidence"})
	require.Error(t, err)

	assert.Panics(t, func() { MustCompileAllowlist([]string{"nope"}) })
}

func TestAllowlist_NilAndPatterns(t *testing.T) {
	var a *Allowlist
	assert.False(t, a.Match("/api/user"))

	b := MustCompileAllowlist(defaultGuestRoutes)
	assert.Equal(t, defaultGuestRoutes, b.Patterns())
}
