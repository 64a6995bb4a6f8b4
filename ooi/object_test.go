package ooi

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const hostnameJSON = `{
	"object_type": "Hostname",
	"primary_key": "Hostname|internet|example.com",
	"scan_profile": {"scan_profile_type": "declared", "reference": "Hostname|internet|example.com", "level": 2},
	"network": "Network|internet",
	"name": "example.com",
	"dns_zone": "DNSZone|internet|example.com",
	"registered_domain": null
}`

func decodeObject(t *testing.T, data string) *Object {
	t.Helper()
	var o Object
	require.NoError(t, json.Unmarshal([]byte(data), &o))
	return &o
}

func TestObject_UnmarshalJSON(t *testing.T) {
	o := decodeObject(t, hostnameJSON)

	assert.Equal(t, MustParse("Hostname|internet|example.com"), o.Reference())
	assert.Equal(t, "Hostname|internet|example.com", o.PrimaryKey())
	assert.Equal(t, TypeHostname, o.Type())
	assert.Equal(t, "example.com", o.HumanReadable())
	assert.Equal(t, TypeHostname, o.InformationID())
	assert.Equal(t, []string{"network", "dns_zone"}, o.RelationFields())

	relations := o.Relations()
	assert.Equal(t, MustParse("Network|internet"), relations["network"])
	assert.Equal(t, MustParse("DNSZone|internet|example.com"), relations["dns_zone"])

	fields := o.Fields()
	assert.Contains(t, fields, "registered_domain")
	assert.Contains(t, fields, FieldPrimaryKey)
	assert.Contains(t, fields, FieldScanProfile)
}

func TestObject_UnmarshalJSON_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "not an object", data: `[1,2]`},
		{name: "missing primary key", data: `{"object_type":"Network","name":"internet"}`},
		{name: "malformed primary key", data: `{"primary_key":"internet"}`},
		{name: "type mismatch", data: `{"object_type":"Hostname","primary_key":"Network|internet"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var o Object
			err := json.Unmarshal([]byte(tt.data), &o)
			assert.ErrorIs(t, err, ErrInvalidObject)
		})
	}
}

func TestObject_MarshalRoundTrip(t *testing.T) {
	o := decodeObject(t, hostnameJSON)
	data, err := json.Marshal(o)
	require.NoError(t, err)
	assert.JSONEq(t, hostnameJSON, string(data))
}

func TestObject_FieldsIsACopy(t *testing.T) {
	o := decodeObject(t, hostnameJSON)
	fields := o.Fields()
	fields["name"] = "mutated"
	assert.Equal(t, "example.com", o.StringField("name"))
}

func TestObject_ScanProfile(t *testing.T) {
	o := decodeObject(t, hostnameJSON)
	sp, ok := o.ScanProfile()
	require.True(t, ok)
	assert.Equal(t, ScanProfileDeclared, sp.Type)
	assert.Equal(t, L2, sp.Level)
	assert.Equal(t, o.Reference(), sp.Reference)

	bare := NewObject(MustParse("Network|internet"), map[string]any{"name": "internet"})
	_, ok = bare.ScanProfile()
	assert.False(t, ok)
}

func TestObject_Labels(t *testing.T) {
	tests := []struct {
		name   string
		ref    string
		fields map[string]any
		want   string
		infoID string
	}{
		{
			name:   "port",
			ref:    "IPPort|internet|192.0.2.1|tcp|443",
			fields: map[string]any{"address": "IPAddressV4|internet|192.0.2.1", "protocol": "tcp", "port": 443},
			want:   "192.0.2.1:443/tcp",
			infoID: TypeIPPort,
		},
		{
			name:   "finding",
			ref:    "Finding|Hostname|internet|example.com|KAT-NO-SPF",
			fields: map[string]any{"ooi": "Hostname|internet|example.com", "finding_type": "KATFindingType|KAT-NO-SPF"},
			want:   "KAT-NO-SPF @ example.com",
			infoID: TypeFinding,
		},
		{
			name:   "finding type",
			ref:    "CVEFindingType|CVE-2021-44228",
			fields: map[string]any{"id": "CVE-2021-44228"},
			want:   "CVE-2021-44228",
			infoID: "CVE-2021-44228",
		},
		{
			name:   "software with version",
			ref:    "Software|nginx|1.25|",
			fields: map[string]any{"name": "nginx", "version": "1.25"},
			want:   "nginx 1.25",
			infoID: TypeSoftware,
		},
		{
			name:   "unknown type falls back to natural key",
			ref:    "Mystery|a|b",
			fields: map[string]any{},
			want:   "a|b",
			infoID: "Mystery",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := NewObject(MustParse(tt.ref), tt.fields)
			assert.Equal(t, tt.want, o.HumanReadable())
			assert.Equal(t, tt.infoID, o.InformationID())
		})
	}
}

func TestNewDeclaredScanProfile(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))
	sp := NewDeclaredScanProfile(MustParse("Network|internet"), L3, at)

	assert.Equal(t, ScanProfileDeclared, sp.Type)
	assert.Equal(t, L3, sp.Level)
	require.NotNil(t, sp.DeclaredAt)
	assert.Equal(t, time.UTC, sp.DeclaredAt.Location())
	assert.True(t, at.Equal(*sp.DeclaredAt))
	assert.Equal(t, "L3", sp.Level.String())
}
