package metadata

import (
	"encoding/json"
	"sort"

	"github.com/yamaton/condax/pkg/errors"
)

// FileName is the metadata file kept at the root of each environment.
const FileName = "condax_metadata.json"

// Kind tags the two package variants.
type Kind int

const (
	KindMain Kind = iota
	KindInjected
)

func (k Kind) String() string {
	if k == KindMain {
		return "main"
	}
	return "injected"
}

// Package is a main or injected package record. Prefix is only set on the
// main package.
type Package struct {
	Kind        Kind
	Name        string
	Apps        []string
	IncludeApps bool
	Prefix      string
}

// NewMain builds the main package record of the environment at prefix.
func NewMain(name, prefix string, apps []string) Package {
	return Package{Kind: KindMain, Name: name, Apps: normalizeApps(apps), IncludeApps: true, Prefix: prefix}
}

// NewInjected builds an injected package record.
func NewInjected(name string, apps []string, includeApps bool) Package {
	return Package{Kind: KindInjected, Name: name, Apps: normalizeApps(apps), IncludeApps: includeApps}
}

func normalizeApps(apps []string) []string {
	seen := make(map[string]bool, len(apps))
	out := make([]string, 0, len(apps))
	for _, a := range apps {
		if !seen[a] {
			seen[a] = true
			out = append(out, a)
		}
	}
	sort.Strings(out)
	return out
}

// Metadata is one environment's record.
type Metadata struct {
	Main     Package
	Injected map[string]Package
}

// New returns metadata holding only main.
func New(main Package) *Metadata {
	return &Metadata{Main: main, Injected: make(map[string]Package)}
}

// Prefix is the environment prefix recorded on the main package.
func (m *Metadata) Prefix() string { return m.Main.Prefix }

// Inject adds or replaces an injected package record.
func (m *Metadata) Inject(p Package) {
	p.Kind = KindInjected
	p.Prefix = ""
	m.Injected[p.Name] = p
}

// Uninject drops the record for name and reports whether one existed.
func (m *Metadata) Uninject(name string) bool {
	_, ok := m.Injected[name]
	delete(m.Injected, name)
	return ok
}

// InjectedNames returns the injected package names, sorted.
func (m *Metadata) InjectedNames() []string {
	names := make([]string, 0, len(m.Injected))
	for name := range m.Injected {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// InjectedPackages returns the injected records sorted by name.
func (m *Metadata) InjectedPackages() []Package {
	out := make([]Package, 0, len(m.Injected))
	for _, name := range m.InjectedNames() {
		out = append(out, m.Injected[name])
	}
	return out
}

// Apps is the set of app names exposed for this environment: the main
// package's apps plus those of every injected package with IncludeApps.
func (m *Metadata) Apps() []string {
	all := append([]string(nil), m.Main.Apps...)
	for _, p := range m.Injected {
		if p.IncludeApps {
			all = append(all, p.Apps...)
		}
	}
	return normalizeApps(all)
}

// Owns reports whether app is one of the exposed apps.
func (m *Metadata) Owns(app string) bool {
	for _, a := range m.Apps() {
		if a == app {
			return true
		}
	}
	return false
}

// EncodePackage turns a record into its serializable map.
func EncodePackage(p Package) map[string]interface{} {
	apps := make([]interface{}, 0, len(p.Apps))
	for _, a := range normalizeApps(p.Apps) {
		apps = append(apps, a)
	}
	out := map[string]interface{}{
		"name":         p.Name,
		"apps":         apps,
		"include_apps": p.IncludeApps,
	}
	if p.Kind == KindMain {
		out["prefix"] = p.Prefix
	}
	return out
}

// DecodePackage validates v as a package record of the given kind.
func DecodePackage(kind Kind, v interface{}) (Package, error) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return Package{}, badMetadata("%s package is not an object", kind)
	}

	name, err := requireString(m, "name", kind)
	if err != nil {
		return Package{}, err
	}

	rawApps, ok := m["apps"]
	if !ok {
		return Package{}, badMetadata("key %q is missing from %s package %s", "apps", kind, name)
	}
	list, ok := rawApps.([]interface{})
	if !ok {
		return Package{}, badMetadata("%s package %s: apps is not a list", kind, name)
	}
	apps := make([]string, 0, len(list))
	for _, a := range list {
		s, ok := a.(string)
		if !ok {
			return Package{}, badMetadata("%s package %s: app %v is not a string", kind, name, a)
		}
		apps = append(apps, s)
	}

	rawInclude, ok := m["include_apps"]
	if !ok {
		return Package{}, badMetadata("key %q is missing from %s package %s", "include_apps", kind, name)
	}
	include, ok := rawInclude.(bool)
	if !ok {
		return Package{}, badMetadata("%s package %s: include_apps is not a bool", kind, name)
	}

	if kind == KindInjected {
		return NewInjected(name, apps, include), nil
	}

	prefix, err := requireString(m, "prefix", kind)
	if err != nil {
		return Package{}, err
	}
	p := NewMain(name, prefix, apps)
	p.IncludeApps = include
	return p, nil
}

func requireString(m map[string]interface{}, key string, kind Kind) (string, error) {
	raw, ok := m[key]
	if !ok {
		return "", badMetadata("key %q is missing from %s package", key, kind)
	}
	s, ok := raw.(string)
	if !ok {
		return "", badMetadata("%s package: %s is not a string", kind, key)
	}
	return s, nil
}

// Encode turns metadata into its serializable map. Injected packages are
// ordered by name.
func Encode(m *Metadata) map[string]interface{} {
	injected := make([]interface{}, 0, len(m.Injected))
	for _, p := range m.InjectedPackages() {
		injected = append(injected, EncodePackage(p))
	}
	return map[string]interface{}{
		"main_package":      EncodePackage(m.Main),
		"injected_packages": injected,
	}
}

// Decode validates v as a metadata record.
func Decode(v interface{}) (*Metadata, error) {
	root, ok := v.(map[string]interface{})
	if !ok {
		return nil, badMetadata("metadata is not an object")
	}

	rawMain, ok := root["main_package"]
	if !ok {
		return nil, badMetadata("key %q is missing", "main_package")
	}
	main, err := DecodePackage(KindMain, rawMain)
	if err != nil {
		return nil, err
	}

	rawInjected, ok := root["injected_packages"]
	if !ok {
		return nil, badMetadata("key %q is missing", "injected_packages")
	}
	list, ok := rawInjected.([]interface{})
	if !ok {
		return nil, badMetadata("injected_packages is not a list")
	}

	m := New(main)
	for _, item := range list {
		p, err := DecodePackage(KindInjected, item)
		if err != nil {
			return nil, err
		}
		m.Inject(p)
	}
	return m, nil
}

// ToJSON serializes m with sorted keys and four-space indentation.
func (m *Metadata) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(Encode(m), "", "    ")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to encode metadata")
	}
	return data, nil
}

// FromJSON parses and validates serialized metadata.
func FromJSON(data []byte) (*Metadata, error) {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, errors.Wrap(err, errors.ErrBadMetadata, "metadata is not valid JSON")
	}
	return Decode(v)
}

func badMetadata(format string, args ...interface{}) error {
	return errors.Newf(errors.ErrBadMetadata, format, args...)
}
