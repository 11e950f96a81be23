package config

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestLoadDerivesNetworks(t *testing.T) {
	cfg, err := Load([]string{"--net", "10.0.0.0", "--nhosts", "8"})
	require.NoError(t, err)
	require.Equal(t, defaultIfaceBaseName, cfg.IfaceBaseName)
	require.Len(t, cfg.Networks, 1)
	require.Equal(t, 28, cfg.Networks[0].Prefix)
	require.Equal(t, "10.0.0.1", cfg.Networks[0].OwnAddress.String())
	require.Equal(t, logrus.InfoLevel, cfg.Log.GetLevel())
}

func TestLoadMultipleNetworksAndVerbosity(t *testing.T) {
	cfg, err := Load([]string{
		"--iface", "tun",
		"--net", "10.0.0.0",
		"--net", "2001:db8::",
		"-n", "16",
		"-v", "-v",
	})
	require.NoError(t, err)
	require.Equal(t, "tun", cfg.IfaceBaseName)
	require.Len(t, cfg.Networks, 2)
	require.Equal(t, 123, cfg.Networks[1].Prefix)
	require.Equal(t, "2001:db8::1", cfg.Networks[1].OwnAddress.String())
	require.Equal(t, logrus.TraceLevel, cfg.Log.GetLevel())
}

func TestLoadRejectsMissingNet(t *testing.T) {
	_, err := Load([]string{"--nhosts", "8"})
	require.Error(t, err)
}

func TestLoadRejectsZeroHosts(t *testing.T) {
	_, err := Load([]string{"--net", "10.0.0.0", "--nhosts", "0"})
	require.Error(t, err)
}

func TestLoadRejectsBadAddress(t *testing.T) {
	_, err := Load([]string{"--net", "not-an-ip", "--nhosts", "8"})
	require.Error(t, err)
}
