package go_ncmdump

import (
	"fmt"
	"runtime"
)

var version = "dev"

func VersionNumberString() string {
	return version
}

func VersionString() string {
	return fmt.Sprintf("go-ncmdump %s", VersionNumberString())
}

func SystemInfoString() string {
	return fmt.Sprintf("%s; Go %s (%s/%s)", VersionString(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// UserAgent is sent by network byte sources.
func UserAgent() string {
	return fmt.Sprintf("go-ncmdump/%s Go/%s", VersionNumberString(), runtime.Version())
}
