package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/uniclip/internal/flagx"
)

// parseFlags overlays command-line flags.
//
//	-d string   PostgreSQL DSN
//	-b string   session backend (sqlite|redis)
//	-f string   session SQLite file
//	-r string   Redis address
//	-k string   client key file
//	-s string   session token signing secret
//	-n string   session namespace in a shared Redis
//	-R          remember the plaintext password in the session cache
//	-t int      request timeout, seconds
//	-l string   log level
//
// Only these flags are picked from args, so -c and unknown flags pass
// through untouched.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.Filter(args, "-d", "-b", "-f", "-r", "-k", "-s", "-n", "-R", "-t", "-l")

	fs := flag.NewFlagSet("uniclip", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database DSN")
	fs.StringVar(&cfg.SessionBackend, "b", cfg.SessionBackend, "session backend (sqlite|redis)")
	fs.StringVar(&cfg.SessionDBPath, "f", cfg.SessionDBPath, "session SQLite file")
	fs.StringVar(&cfg.RedisAddr, "r", cfg.RedisAddr, "redis address")
	fs.StringVar(&cfg.ClientKeyPath, "k", cfg.ClientKeyPath, "client key file")
	fs.StringVar(&cfg.SessionSecret, "s", cfg.SessionSecret, "session signing secret")
	fs.StringVar(&cfg.SessionNamespace, "n", cfg.SessionNamespace, "session namespace")
	fs.BoolVar(&cfg.RememberPassword, "R", cfg.RememberPassword, "remember plaintext password")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			cfg.RequestTimeout = time.Duration(*timeout) * time.Second
		}
	})
	return nil
}
