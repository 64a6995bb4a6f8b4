package katalogus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalog() []Plugin {
	return []Plugin{
		{ID: "nmap", Name: "Nmap", Type: PluginBoefje, Enabled: false, ScanLevel: 2, Consumes: []string{"IPAddressV4"}},
		{ID: "dns-records", Name: "DNS records", Type: PluginBoefje, Enabled: true, ScanLevel: 1, Consumes: []string{"Hostname"}},
		{ID: "kat_dns_normalize", Name: "", Type: PluginNormalizer, Enabled: true},
		{ID: "shodan", Name: "Shodan", Type: PluginBoefje, Enabled: false, ScanLevel: 1, Consumes: []string{"IPAddressV4"}},
	}
}

func ids(plugins []Plugin) []string {
	out := make([]string, len(plugins))
	for i, p := range plugins {
		out[i] = p.ID
	}
	return out
}

func TestApply(t *testing.T) {
	for _, tt := range []struct {
		opt  FilterOption
		want []string
	}{
		{FilterNone, []string{"nmap", "dns-records", "kat_dns_normalize", "shodan"}},
		{FilterEnabled, []string{"dns-records", "kat_dns_normalize"}},
		{FilterDisabled, []string{"nmap", "shodan"}},
		{FilterAZ, []string{"dns-records", "kat_dns_normalize", "nmap", "shodan"}},
		{FilterZA, []string{"shodan", "nmap", "kat_dns_normalize", "dns-records"}},
		{FilterEnabledDisabled, []string{"dns-records", "kat_dns_normalize", "nmap", "shodan"}},
		{FilterDisabledEnabled, []string{"nmap", "shodan", "dns-records", "kat_dns_normalize"}},
	} {
		t.Run(string(tt.opt), func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Apply(catalog(), tt.opt)))
		})
	}
}

func TestApply_DoesNotModifyInput(t *testing.T) {
	in := catalog()
	_ = Apply(in, FilterZA)
	assert.Equal(t, catalog(), in)
}

func TestParseFilterOption(t *testing.T) {
	opt, err := ParseFilterOption(" A-Z ")
	require.NoError(t, err)
	assert.Equal(t, FilterAZ, opt)

	opt, err = ParseFilterOption("")
	require.NoError(t, err)
	assert.Equal(t, FilterNone, opt)

	_, err = ParseFilterOption("newest")
	assert.ErrorIs(t, err, ErrUnknownFilter)
}

func TestPredicate(t *testing.T) {
	p, err := CompilePredicate(`plugin.type == "boefje" && plugin.scan_level <= 1 && "Hostname" in plugin.consumes`)
	require.NoError(t, err)

	got, err := p.Select(catalog())
	require.NoError(t, err)
	assert.Equal(t, []string{"dns-records"}, ids(got))
}

func TestPredicate_Enabled(t *testing.T) {
	p, err := CompilePredicate(`plugin.enabled`)
	require.NoError(t, err)

	got, err := p.Select(catalog())
	require.NoError(t, err)
	assert.Equal(t, ids(Apply(catalog(), FilterEnabled)), ids(got))
}

func TestCompilePredicate_Invalid(t *testing.T) {
	for _, expr := range []string{`plugin.enabled &&`, `1 + 2`, `"boefje"`} {
		_, err := CompilePredicate(expr)
		assert.ErrorIs(t, err, ErrInvalidPredicate, expr)
	}
}
