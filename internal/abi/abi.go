// Package abi probes the host ABI triple and derives the repository URL.
package abi

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// ABI identifies which prebuilt package set applies to the current host,
// as the os:major:arch triple used in upstream repository URLs.
type ABI struct {
	OSType string
	Major  int
	Arch   string
}

// String renders the triple, e.g. "FreeBSD:14:amd64".
func (a ABI) String() string {
	return fmt.Sprintf("%s:%d:%s", a.OSType, a.Major, a.Arch)
}

// RepoBaseURL composes the package directory URL for this ABI,
// e.g. https://pkg.freebsd.org/FreeBSD:14:amd64/quarterly/All.
func (a ABI) RepoBaseURL(scheme, host, branch string) string {
	return fmt.Sprintf("%s://%s/%s/%s/All", scheme, host, a.String(), branch)
}

// MetadataURL composes the packagesite archive URL, which lives one level
// above the All directory.
func (a ABI) MetadataURL(scheme, host, branch string) string {
	return fmt.Sprintf("%s://%s/%s/%s/packagesite.tzst", scheme, host, a.String(), branch)
}

// Probe reads the host OS type, release, and machine architecture via
// uname. It fails if the release string carries no leading integer.
func Probe() (ABI, error) {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return ABI{}, fmt.Errorf("uname: %w", err)
	}

	osType := nulTerminated(uts.Sysname[:])
	release := nulTerminated(uts.Release[:])
	machine := nulTerminated(uts.Machine[:])

	major, err := majorVersion(release)
	if err != nil {
		return ABI{}, fmt.Errorf("parse release %q: %w", release, err)
	}

	return ABI{
		OSType: osType,
		Major:  major,
		Arch:   canonicalArch(machine),
	}, nil
}

// majorVersion extracts the leading integer of a release string such as
// "14.1-RELEASE-p5".
func majorVersion(release string) (int, error) {
	end := 0
	for end < len(release) && release[end] >= '0' && release[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, fmt.Errorf("no leading version number")
	}
	return strconv.Atoi(release[:end])
}

// canonicalArch maps uname machine names onto upstream repository arch
// names.
func canonicalArch(machine string) string {
	switch machine {
	case "x86_64":
		return "amd64"
	case "arm64":
		return "aarch64"
	default:
		return machine
	}
}

func nulTerminated(b []byte) string {
	if i := strings.IndexByte(string(b), 0); i >= 0 {
		return string(b[:i])
	}
	return string(b)
}
