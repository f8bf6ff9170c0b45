package version

// Version is overridden at build time via
// -ldflags "-X github.com/maxvaer/netsweep/pkg/version.Version=1.2.3".
var Version = "dev"
