package compiler

import (
	"fmt"
	"strings"
)

// Platform is the operating system family a compiler binary is built for.
type Platform int

const (
	Windows Platform = iota + 1
	Linux
	MacOS
)

// String implements fmt.Stringer. The names match the HCL `platform`
// variable and the bundled compiler directories.
func (p Platform) String() string {
	switch p {
	case Windows:
		return "windows"
	case Linux:
		return "linux"
	case MacOS:
		return "macos"
	default:
		return fmt.Sprintf("Platform(%d)", int(p))
	}
}

// DetectPlatform maps a runtime.GOOS value to a Platform. It is the single
// place where OS identifiers are compared.
func DetectPlatform(goos string) (Platform, error) {
	switch goos {
	case "windows":
		return Windows, nil
	case "linux", "android":
		return Linux, nil
	case "darwin", "ios":
		return MacOS, nil
	default:
		return 0, &ResolutionError{Strategy: "platform", Err: fmt.Errorf("%w: %q", ErrUnsupportedPlatform, goos)}
	}
}

// ExecutableName appends the platform's executable extension to base.
func (p Platform) ExecutableName(base string) string {
	if p == Windows && !strings.HasSuffix(strings.ToLower(base), ".exe") {
		return base + ".exe"
	}
	return base
}

// bundledPath is where the repository keeps its prebuilt glslangValidator,
// relative to the repository root.
func (p Platform) bundledPath() (string, error) {
	switch p {
	case Windows:
		return "external/vulkan/windows/bin/x86/glslangValidator.exe", nil
	case Linux:
		return "external/vulkan/linux/bin/glslangValidator", nil
	case MacOS:
		return "external/vulkan/macos/bin/glslangValidator", nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedPlatform, p)
	}
}
