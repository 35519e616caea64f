package version

import (
	"runtime"
	"strings"
	"testing"
)

func TestGetVersionInfo(t *testing.T) {
	info := GetVersionInfo()

	if !strings.Contains(info, "interview-agent version") {
		t.Error("version info should name the binary")
	}
	if !strings.Contains(info, "dev") {
		t.Error("version info should contain default version 'dev'")
	}
	if !strings.Contains(info, runtime.Version()) {
		t.Errorf("version info should contain Go version %s", runtime.Version())
	}
}

func TestGetVersionInfoWithCustomValues(t *testing.T) {
	originalVersion := Version
	originalCommit := GitCommit
	defer func() {
		Version = originalVersion
		GitCommit = originalCommit
	}()

	Version = "v1.2.0"
	GitCommit = "abc123"

	info := GetVersionInfo()
	if !strings.Contains(info, "v1.2.0") {
		t.Error("version info should contain custom version")
	}
	if !strings.Contains(info, "abc123") {
		t.Error("version info should contain custom commit")
	}
}
