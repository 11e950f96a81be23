// Package config parses and validates the command line invocation this
// program accepts and derives the per-network values (prefix length,
// own address) the orchestrator needs before it opens any TUN device.
package config

import (
	"net"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"github.com/ftsell/viptraceroute/internal/netaddr"
)

const defaultIfaceBaseName = "tunTraceRtExt"

// Network is one configured virtual network: the base address the
// operator named on the command line, plus everything derived from it
// once NHosts is known.
type Network struct {
	// Base is the network address as given on the command line.
	Base net.IP
	// Family is IPv4 or IPv6, inferred from Base's syntax.
	Family netaddr.Family
	// Prefix is the prefix length derived from NHosts for this family.
	Prefix int
	// OwnAddress is nth_address(1, Prefix, Base), the address the TUN
	// interface claims.
	OwnAddress net.IP
}

// Config is the immutable, process-wide configuration built once at
// startup.
type Config struct {
	IfaceBaseName string
	NHosts        int
	Networks      []Network
	Log           *logrus.Logger
}

// Load defines the program's flags, parses args (normally os.Args[1:]),
// validates them, and returns a fully derived Config. Every fatal
// condition is reported here, wrapped with pkg/errors so the caller can
// log the full chain and still inspect the root cause with
// errors.Cause.
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("viptraceroute", flag.ContinueOnError)

	iface := fs.String("iface", defaultIfaceBaseName, "base name for created TUN interfaces; interface i is named <base><i>")
	nets := fs.StringArray("net", nil, "virtual network base address (repeatable, at least one required)")
	nHosts := fs.IntP("nhosts", "n", 0, "required usable host count inside each virtual network")
	verbosity := fs.CountP("verbose", "v", "raise verbosity (repeatable): Info -> Debug -> Trace")

	if err := fs.Parse(args); err != nil {
		return nil, errors.Wrap(err, "config: parsing command line")
	}

	if len(*nets) == 0 {
		return nil, errors.New("config: at least one --net is required")
	}
	if *nHosts <= 0 {
		return nil, errors.New("config: --nhosts/-n must be >= 1")
	}

	networks := make([]Network, 0, len(*nets))
	for _, raw := range *nets {
		ip := net.ParseIP(raw)
		if ip == nil {
			return nil, errors.Errorf("config: %q is not a valid IP address", raw)
		}
		family := netaddr.FamilyOf(ip)

		prefix, err := netaddr.PrefixFor(*nHosts, family)
		if err != nil {
			return nil, errors.Wrapf(err, "config: network %s", raw)
		}

		networks = append(networks, Network{
			Base:       ip,
			Family:     family,
			Prefix:     prefix,
			OwnAddress: netaddr.NthAddress(1, prefix, ip),
		})
	}

	log := logrus.New()
	log.SetLevel(levelFor(*verbosity))

	return &Config{
		IfaceBaseName: *iface,
		NHosts:        *nHosts,
		Networks:      networks,
		Log:           log,
	}, nil
}

// levelFor maps the -v count to the Info -> Debug -> Trace ladder.
func levelFor(count int) logrus.Level {
	switch {
	case count <= 0:
		return logrus.InfoLevel
	case count == 1:
		return logrus.DebugLevel
	default:
		return logrus.TraceLevel
	}
}
