package config

import "flag"

// FlagValues holds the destinations flag.Var binds into. RegisterFlags
// registers both the long and short form of each flag (-d|--device,
// -b|--baud, -p|--port, -c|--conform) against the same variable on a
// single *flag.FlagSet.
type FlagValues struct {
	Device        string
	Baud          int
	Port          int
	DiscoveryPort int
	Conform       bool
	LogLevel      string
	MQTTBrokerURL string
	DatabaseURL   string
	AuthEnabled   bool
	AuthUsername  string
	AuthPassword  string
	JWTSecret     string
	ConfigFile    string
}

// RegisterFlags registers every bridge flag on fs, returning the struct its
// values land in once fs.Parse has run.
func RegisterFlags(fs *flag.FlagSet) *FlagValues {
	defaults := Defaults()
	v := &FlagValues{}

	fs.StringVar(&v.Device, "device", defaults.Device, "serial device path to the NexStar hand controller")
	fs.StringVar(&v.Device, "d", defaults.Device, "shorthand for --device")

	fs.IntVar(&v.Baud, "baud", defaults.Baud, "serial baud rate")
	fs.IntVar(&v.Baud, "b", defaults.Baud, "shorthand for --baud")

	fs.IntVar(&v.Port, "port", defaults.Port, "Alpaca HTTP listen port")
	fs.IntVar(&v.Port, "p", defaults.Port, "shorthand for --port")

	fs.IntVar(&v.DiscoveryPort, "discovery-port", defaults.DiscoveryPort, "Alpaca UDP discovery port")

	fs.BoolVar(&v.Conform, "conform", false, "run against the in-memory simulator instead of a serial device")
	fs.BoolVar(&v.Conform, "c", false, "shorthand for --conform")

	fs.StringVar(&v.LogLevel, "log-level", defaults.LogLevel, "log level: debug, info, warn, error")
	fs.StringVar(&v.MQTTBrokerURL, "mqtt-broker", "", "MQTT broker URL for telemetry publishing (disabled when empty)")
	fs.StringVar(&v.DatabaseURL, "database-url", "", "Postgres URL for audit logging (disabled when empty)")
	fs.BoolVar(&v.AuthEnabled, "auth", false, "enable HTTP Basic/bearer authentication")
	fs.StringVar(&v.AuthUsername, "auth-username", "", "HTTP Basic Auth username")
	fs.StringVar(&v.AuthPassword, "auth-password", "", "HTTP Basic Auth password (hashed at startup, never stored)")
	fs.StringVar(&v.JWTSecret, "jwt-secret", "", "enable bearer-token auth signed with this secret")
	fs.StringVar(&v.ConfigFile, "config", "", "optional YAML configuration file")

	return v
}
