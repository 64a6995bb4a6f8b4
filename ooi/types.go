package ooi

import (
	"fmt"
	"strings"
)

// Built-in object type names.
const (
	TypeNetwork        = "Network"
	TypeHostname       = "Hostname"
	TypeIPAddressV4    = "IPAddressV4"
	TypeIPAddressV6    = "IPAddressV6"
	TypeIPPort         = "IPPort"
	TypeService        = "Service"
	TypeIPService      = "IPService"
	TypeSoftware       = "Software"
	TypeWebsite        = "Website"
	TypeURL            = "URL"
	TypeDNSZone        = "DNSZone"
	TypeDNSARecord     = "DNSARecord"
	TypeFinding        = "Finding"
	TypeKATFindingType = "KATFindingType"
	TypeCVEFindingType = "CVEFindingType"
	TypeCWEFindingType = "CWEFindingType"
)

// Well-known field names shared by every object.
const (
	FieldObjectType  = "object_type"
	FieldPrimaryKey  = "primary_key"
	FieldScanProfile = "scan_profile"
)

// BuiltinTypes returns the descriptors of the built-in object types.
//
// Asset types:
//   - Network: [name]
//   - Hostname: [network, name], relations network, dns_zone
//   - IPAddressV4 / IPAddressV6: [network, address], relations network
//   - IPPort: [address, protocol, port], relations address
//   - Service: [name]
//   - IPService: [ip_port, service], relations ip_port, service
//   - Software: [name, version, cpe]
//   - Website: [ip_service, hostname], relations ip_service, hostname
//   - URL: [network, raw], relations network, web_url
//   - DNSZone: [hostname], relations hostname, parent
//   - DNSARecord: [hostname, address], relations hostname, address
//
// Finding types:
//   - Finding: [ooi, finding_type], relations ooi, finding_type
//   - KATFindingType / CVEFindingType / CWEFindingType: [id], information id is the id
func BuiltinTypes() []TypeDescriptor {
	return []TypeDescriptor{
		{
			Name:       TypeNetwork,
			Category:   CategoryNetwork,
			NaturalKey: []string{"name"},
			Label:      stringField("name"),
		},
		{
			Name:       TypeHostname,
			Category:   CategoryDNS,
			NaturalKey: []string{"network", "name"},
			Relations:  []string{"network", "dns_zone"},
			Label:      stringField("name"),
		},
		{
			Name:       TypeIPAddressV4,
			Category:   CategoryNetwork,
			NaturalKey: []string{"network", "address"},
			Relations:  []string{"network", "netblock"},
			Label:      stringField("address"),
		},
		{
			Name:       TypeIPAddressV6,
			Category:   CategoryNetwork,
			NaturalKey: []string{"network", "address"},
			Relations:  []string{"network", "netblock"},
			Label:      stringField("address"),
		},
		{
			Name:       TypeIPPort,
			Category:   CategoryNetwork,
			NaturalKey: []string{"address", "protocol", "port"},
			Relations:  []string{"address"},
			Label: func(o *Object) string {
				return fmt.Sprintf("%s:%v/%s", o.referenceTail("address"), o.Field("port"), o.StringField("protocol"))
			},
		},
		{
			Name:       TypeService,
			Category:   CategorySoftware,
			NaturalKey: []string{"name"},
			Label:      stringField("name"),
		},
		{
			Name:       TypeIPService,
			Category:   CategorySoftware,
			NaturalKey: []string{"ip_port", "service"},
			Relations:  []string{"ip_port", "service"},
			Label: func(o *Object) string {
				return joinTokens(o, "ip_port") + " " + o.referenceTail("service")
			},
		},
		{
			Name:       TypeSoftware,
			Category:   CategorySoftware,
			NaturalKey: []string{"name", "version", "cpe"},
			Label: func(o *Object) string {
				if v := o.StringField("version"); v != "" {
					return o.StringField("name") + " " + v
				}
				return o.StringField("name")
			},
		},
		{
			Name:       TypeWebsite,
			Category:   CategoryWeb,
			NaturalKey: []string{"ip_service", "hostname"},
			Relations:  []string{"ip_service", "hostname"},
			Label: func(o *Object) string {
				return o.referenceTail("hostname") + " @ " + joinTokens(o, "ip_service")
			},
		},
		{
			Name:       TypeURL,
			Category:   CategoryWeb,
			NaturalKey: []string{"network", "raw"},
			Relations:  []string{"network", "web_url"},
			Label:      stringField("raw"),
		},
		{
			Name:       TypeDNSZone,
			Category:   CategoryDNS,
			NaturalKey: []string{"hostname"},
			Relations:  []string{"hostname", "parent"},
			Label: func(o *Object) string {
				return o.referenceTail("hostname")
			},
		},
		{
			Name:       TypeDNSARecord,
			Category:   CategoryDNS,
			NaturalKey: []string{"hostname", "address"},
			Relations:  []string{"hostname", "address"},
			Label: func(o *Object) string {
				return o.referenceTail("hostname") + " A " + o.referenceTail("address")
			},
		},
		{
			Name:       TypeFinding,
			Category:   CategoryFinding,
			NaturalKey: []string{"ooi", "finding_type"},
			Relations:  []string{"ooi", "finding_type"},
			Label: func(o *Object) string {
				return o.referenceTail("finding_type") + " @ " + joinTokens(o, "ooi")
			},
		},
		findingType(TypeKATFindingType),
		findingType(TypeCVEFindingType),
		findingType(TypeCWEFindingType),
	}
}

// findingType builds the descriptor shared by all finding type variants.
func findingType(name string) TypeDescriptor {
	return TypeDescriptor{
		Name:          name,
		Category:      CategoryFinding,
		NaturalKey:    []string{"id"},
		Label:         stringField("id"),
		InformationID: stringField("id"),
	}
}

func stringField(field string) func(*Object) string {
	return func(o *Object) string {
		return o.StringField(field)
	}
}

// joinTokens renders a reference-valued field as its natural key tokens
// without the network prefix, e.g. "IPPort|internet|1.1.1.1|tcp|80" -> "1.1.1.1/tcp/80".
func joinTokens(o *Object, field string) string {
	ref, ok := o.ReferenceField(field)
	if !ok {
		return ""
	}
	tokens := ref.Tokens()
	if len(tokens) > 1 {
		tokens = tokens[1:]
	}
	return strings.Join(tokens, "/")
}
