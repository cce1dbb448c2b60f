package version

// Current is overwritten at build time with -ldflags "-X .../version.Current=v1.2.3".
var Current = "dev"

const AppName = "avtan"

// String formats the name and version for display.
func String() string {
	return AppName + " " + Current
}
