package version

import (
	"fmt"
	"strings"
)

// validCharacters is the set of characters allowed in appBuild.
const validCharacters = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz-"

const (
	appMajor uint = 0
	appMinor uint = 3
	appPatch uint = 0
)

// appBuild may be set at link time with
// '-ldflags "-X github.com/kaspanet/ledgersim/version.appBuild=foo"'.
var appBuild string

// Version returns the semantic version of ledgersim, with the build
// metadata appended when appBuild is well formed.
func Version() string {
	return formatVersion(appMajor, appMinor, appPatch, appBuild)
}

func formatVersion(major, minor, patch uint, build string) string {
	version := fmt.Sprintf("%d.%d.%d", major, minor, patch)
	if build == "" {
		return version
	}
	for _, r := range build {
		if !strings.ContainsRune(validCharacters, r) {
			return version
		}
	}
	return version + "-" + build
}
