package version

import (
	"runtime/debug"
	"testing"
	"time"
)

func withVars(t *testing.T, v, commit, built string) {
	t.Helper()
	oldV, oldC, oldB := Version, GitCommit, BuildTime
	Version, GitCommit, BuildTime = v, commit, built
	t.Cleanup(func() { Version, GitCommit, BuildTime = oldV, oldC, oldB })
}

func TestFromBuildInfo(t *testing.T) {
	bi := &debug.BuildInfo{
		GoVersion: "go1.25.0",
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef"},
			{Key: "vcs.modified", Value: "true"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
		},
	}

	tests := []struct {
		name       string
		commit     string
		built      string
		wantCommit string
		wantDate   time.Time
	}{
		{"vcs only", "", "", "0123456", time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)},
		{"ldflags win", "feedbeefcafe", "2025-05-05T00:00:00Z", "feedbee", time.Date(2025, 5, 5, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			withVars(t, "1.0.0", tc.commit, tc.built)
			info := fromBuildInfo(bi, true)
			if info.GitCommit != tc.wantCommit {
				t.Errorf("GitCommit = %q, want %q", info.GitCommit, tc.wantCommit)
			}
			if !info.BuildDate.Equal(tc.wantDate) {
				t.Errorf("BuildDate = %v, want %v", info.BuildDate, tc.wantDate)
			}
			if !info.Dirty || info.GoVersion != "go1.25.0" {
				t.Errorf("info = %+v", info)
			}
		})
	}
}

func TestFromBuildInfo_Unavailable(t *testing.T) {
	withVars(t, "dev", "", "")
	info := fromBuildInfo(nil, false)
	if info.Version != "dev" || info.GitCommit != "" || !info.BuildDate.IsZero() {
		t.Errorf("info = %+v", info)
	}
}

func TestInfoString(t *testing.T) {
	tests := []struct {
		info Info
		want string
	}{
		{Info{Version: "dev"}, "dev"},
		{Info{Version: "1.0.0", GitCommit: "abc1234"}, "1.0.0-abc1234"},
		{Info{Version: "1.0.0", GitCommit: "abc1234", Dirty: true}, "1.0.0-abc1234-dirty"},
		{Info{Version: "1.0.0", BuildDate: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}, "1.0.0 (built 2026-01-02T03:04:05Z)"},
	}
	for _, tc := range tests {
		if got := tc.info.String(); got != tc.want {
			t.Errorf("String() = %q, want %q", got, tc.want)
		}
	}
}
