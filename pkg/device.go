package gain

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/exp/maps"
)

// RunInfo is decoded from an input filename such as
// rlog_0cd913fb_20220207_020111_aaa.data.root.
type RunInfo struct {
	Tag    string
	Serial string
	Date   string
	RunID  string
}

var dateRegexp = regexp.MustCompile(`^[0-9]{8}$`)

func ParseRunName(filename string) (RunInfo, error) {
	base := filepath.Base(filename)
	if i := strings.Index(base, "."); i >= 0 {
		base = base[:i]
	}
	fields := strings.Split(base, "_")
	if len(fields) < 4 {
		return RunInfo{}, &ErrInvalidRunName{Filename: filename}
	}
	for _, f := range fields[:4] {
		if f == "" {
			return RunInfo{}, &ErrInvalidRunName{Filename: filename}
		}
	}
	if !dateRegexp.MatchString(fields[2]) {
		return RunInfo{}, &ErrInvalidRunName{Filename: filename}
	}
	return RunInfo{
		Tag:    fields[0],
		Serial: fields[1],
		Date:   fields[2],
		RunID:  fields[3],
	}, nil
}

func (r RunInfo) ResultsFilename() string {
	return fmt.Sprintf("results_%s_%s.csv", r.Serial, r.Date)
}

// Variant names a hardware flavour of the front-end board together with the
// histogram domain that suits its charge scale.
type Variant struct {
	Name   string
	Bounds HistogramBounds
}

func DefaultVariants() map[string]HistogramBounds {
	return map[string]HistogramBounds{
		"ACL": {NBins: 500, XMin: 10000, XMax: 45000},
		"LCM": {NBins: 500, XMin: 5000, XMax: 40000},
	}
}

// DefaultDevices maps the serial numbers of known boards to their variant.
func DefaultDevices() map[string]string {
	return map[string]string{
		"0cd913fb": "ACL",
	}
}

type VariantTable struct {
	variants map[string]HistogramBounds
	devices  map[string]string
}

func NewVariantTable(variants map[string]HistogramBounds, devices map[string]string) *VariantTable {
	t := &VariantTable{
		variants: make(map[string]HistogramBounds, len(variants)),
		devices:  make(map[string]string, len(devices)),
	}
	for name, b := range variants {
		t.variants[name] = b
	}
	for serial, name := range devices {
		t.devices[serial] = name
	}
	return t
}

func (t *VariantTable) AddVariant(name string, b HistogramBounds) {
	t.variants[name] = b
}

// AddDevice registers or overrides the variant of a serial number.
func (t *VariantTable) AddDevice(serial, variant string) {
	t.devices[serial] = variant
}

// Resolve returns the variant of a device. Both an unregistered serial and
// a serial pointing to an undefined variant are errors.
func (t *VariantTable) Resolve(serial string) (Variant, error) {
	name, ok := t.devices[serial]
	if !ok {
		return Variant{}, &ErrUnknownVariant{Serial: serial}
	}
	b, ok := t.variants[name]
	if !ok {
		return Variant{}, &ErrUnknownVariant{Serial: serial, Variant: name}
	}
	if err := b.Validate(); err != nil {
		return Variant{}, fmt.Errorf("variant %s: %w", name, err)
	}
	return Variant{Name: name, Bounds: b}, nil
}

// Variants lists the variant names in alphabetical order.
func (t *VariantTable) Variants() []string {
	names := maps.Keys(t.variants)
	sort.Strings(names)
	return names
}
