// Package buildinfo carries the firmware version stamped in with
//
//	-ldflags "-X pdmon/internal/buildinfo.Version=v1.2.0 -X pdmon/internal/buildinfo.Commit=abc1234"
package buildinfo

var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Short returns the version, or the commit for untagged builds. It is shown
// in the window title and the boot log line.
func Short() string {
	switch {
	case Version != "" && Version != "dev":
		return Version
	case Commit != "" && Commit != "unknown":
		return Commit
	}
	return "dev"
}

// String returns every stamped field, for -version output.
func String() string {
	s := Short()
	if Commit != "" && Commit != "unknown" && Commit != s {
		s += " " + Commit
	}
	if Date != "" && Date != "unknown" {
		s += " (" + Date + ")"
	}
	return s
}
