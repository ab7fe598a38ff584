// Package build implements the stages of the SKY UX library pipeline.
package build

import "github.com/initializ/skyci/runtime"

const (
	DefaultSDKPackage    = "@skyux-sdk/cli@next"
	DefaultSDKPlatform   = "travis"
	DefaultBuilderConfig = "blackbaud/skyux-sdk-builder-config"
)

// SDK builds invocations of the SKY UX command-line tool through npx.
type SDK struct {
	Package  string
	Platform string
}

// DefaultSDK returns the SDK settings used when no config overrides them.
func DefaultSDK() SDK {
	return SDK{Package: DefaultSDKPackage, Platform: DefaultSDKPlatform}
}

// Command returns the spec for `skyux <command> [args...]`.
func (s SDK) Command(command string, args ...string) runtime.CommandSpec {
	pkg := s.Package
	if pkg == "" {
		pkg = DefaultSDKPackage
	}
	platform := s.Platform
	if platform == "" {
		platform = DefaultSDKPlatform
	}

	argv := []string{"-p", pkg, "skyux", command, "--logFormat", "none", "--platform", platform}
	argv = append(argv, args...)
	return runtime.CommandSpec{Name: "npx", Args: argv}
}
