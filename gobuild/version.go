package gobuild

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/coreos/go-semver/semver"

	"github.com/bytecodealliance/componentize-go/errors"
	"github.com/bytecodealliance/componentize-go/toolchain"
)

// Minimum Go release able to build componentizable wasip1 modules.
const (
	RequiredMajor = 1
	MinimumMinor  = 25
)

var versionPattern = regexp.MustCompile(`go(\d+)\.(\d+)\.(\d+)`)

// ParseGoVersion extracts the first goX.Y.Z token from `go version` output.
func ParseGoVersion(output string) (*semver.Version, error) {
	m := versionPattern.FindStringSubmatch(output)
	if m == nil {
		return nil, errors.New(errors.PhaseBuild, errors.KindParse).
			Detail("Failed to parse Go version from: %s", strings.TrimSpace(output)).
			Build()
	}
	v, err := semver.NewVersion(fmt.Sprintf("%s.%s.%s", m[1], m[2], m[3]))
	if err != nil {
		return nil, errors.Wrap(errors.PhaseBuild, errors.KindParse, err, "invalid Go version "+m[0])
	}
	return v, nil
}

// CheckGoVersion requires a 1.x release at or above 1.25.0.
func CheckGoVersion(v *semver.Version) error {
	if v.Major == RequiredMajor && v.Minor >= MinimumMinor {
		return nil
	}
	return errors.Precondition(errors.PhaseBuild, fmt.Sprintf(
		"Go version is not valid. Expected '^%d.%d.0', found '%s'", RequiredMajor, MinimumMinor, v))
}

// GoVersion runs `go version` and checks the reported release.
func GoVersion(ctx context.Context, runner toolchain.Runner, goPath string) (*semver.Version, error) {
	res, err := runner.Run(ctx, toolchain.Command{Path: goPath, Args: []string{"version"}})
	if err != nil {
		return nil, errors.New(errors.PhaseBuild, errors.KindProcess).
			Detail("failed to run %s", goPath).
			Cause(err).
			Build()
	}
	if !res.Success() {
		return nil, errors.Process(errors.PhaseBuild, "go version", res.ExitCode, res.Stderr)
	}
	v, err := ParseGoVersion(string(res.Stdout))
	if err != nil {
		return nil, err
	}
	if err := CheckGoVersion(v); err != nil {
		return nil, err
	}
	return v, nil
}
