package model

import (
	"database/sql/driver"
	"encoding/json"
	"strings"

	"github.com/spf13/cast"
	"github.com/tiendc/go-deepcopy"
)

// =====================================================
// DOCUMENT TREE
// =====================================================

// DocumentTarget selects which of the two linked documents an edit set is
// submitted against.
type DocumentTarget string

const (
	TargetInformational DocumentTarget = "informational"
	TargetSpecsheet     DocumentTarget = "specsheet"
)

func (t DocumentTarget) IsValid() bool {
	return t == TargetInformational || t == TargetSpecsheet
}

// Informational document keys.
const (
	DocKeyHeaderInfo     = "header_info"
	DocKeyRangeOverview  = "range_overview"
	DocKeySalesArguments = "sales_arguments"
	DocKeyTechnicalSpecs = "technical_specifications"
	DocKeyWarranty       = "warranty_service"
	DocKeySEOData        = "seo_data"
)

// Specsheet document keys.
const (
	DocKeyCustomerDescription = "customer_friendly_description"
	DocKeyKeyFeatures         = "key_features"
	DocKeySEO                 = "seo"
	DocKeyCategories          = "categories"
	DocKeyInternalKeywords    = "internal_web_keywords"
)

// Identity keys inside the header block.
const (
	HeaderKeyProductName   = "product_name"
	HeaderKeyModelNumber   = "model_number"
	HeaderKeyBrand         = "brand"
	HeaderKeyPriceEstimate = "price_estimate"
)

// DocumentTree is the schema-loose key/value tree backing one document.
// Values survive a JSON round trip, so nested maps are
// map[string]interface{} and lists are []interface{}.
type DocumentTree map[string]interface{}

// Value implements driver.Valuer for JSONB
func (d DocumentTree) Value() (driver.Value, error) {
	if d == nil {
		return nil, nil
	}
	return json.Marshal(d)
}

// Scan implements sql.Scanner for JSONB
func (d *DocumentTree) Scan(value interface{}) error {
	if value == nil {
		*d = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return ErrMalformedField
	}

	return json.Unmarshal(bytes, d)
}

// Clone returns a deep copy, so snapshots and speculative edits never alias
// the stored tree.
func (d DocumentTree) Clone() DocumentTree {
	if d == nil {
		return nil
	}
	var out DocumentTree
	if err := deepcopy.Copy(&out, d); err != nil {
		// DocumentTree only ever holds JSON-compatible values; a copy
		// failure means the tree was corrupted upstream.
		panic(err)
	}
	return out
}

// GetString reads a top-level value as a string ("" when absent).
func (d DocumentTree) GetString(key string) string {
	if d == nil {
		return ""
	}
	return cast.ToString(d[key])
}

// GetStringSlice reads a top-level value as a list of strings.
func (d DocumentTree) GetStringSlice(key string) []string {
	if d == nil {
		return nil
	}
	return cast.ToStringSlice(d[key])
}

// GetMap reads a top-level value as a string-keyed map (nil when absent).
func (d DocumentTree) GetMap(key string) map[string]interface{} {
	if d == nil {
		return nil
	}
	v, ok := d[key]
	if !ok || v == nil {
		return nil
	}
	return cast.ToStringMap(v)
}

// HeaderString reads one identity value out of the header block.
func (d DocumentTree) HeaderString(key string) string {
	header := d.GetMap(DocKeyHeaderInfo)
	if header == nil {
		return ""
	}
	return cast.ToString(header[key])
}

// =====================================================
// PRODUCT IDENTITY
// =====================================================

// ProductIdentity is the identity block handed to the image resolver.
type ProductIdentity struct {
	Name        string
	ModelNumber string
	Brand       string
}

// Identity extracts the identity block from a document.
func (d DocumentTree) Identity() ProductIdentity {
	return ProductIdentity{
		Name:        d.HeaderString(HeaderKeyProductName),
		ModelNumber: d.HeaderString(HeaderKeyModelNumber),
		Brand:       d.HeaderString(HeaderKeyBrand),
	}
}

// SearchQuery builds the deduplicated image-search query for the identity.
func (id ProductIdentity) SearchQuery() string {
	parts := []string{}
	if id.Brand != "" {
		parts = append(parts, id.Brand)
	}
	if id.Name != "" {
		parts = append(parts, id.Name)
	}
	if id.ModelNumber != "" && !strings.Contains(id.Name, id.ModelNumber) {
		parts = append(parts, id.ModelNumber)
	}

	seen := map[string]bool{}
	words := []string{}
	for _, w := range strings.Fields(strings.Join(parts, " ")) {
		lower := strings.ToLower(w)
		if !seen[lower] {
			seen[lower] = true
			words = append(words, w)
		}
	}
	return strings.Join(words, " ")
}

// =====================================================
// TECHNICAL SPECIFICATION TABLE
// =====================================================

// SpecRow is one named row of the technical specification table.
type SpecRow struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// SpecTable is an ordered specification table. Keys are case-sensitive and
// repeated edits reconcile last-write-wins per key, keeping first-seen
// order.
type SpecTable []SpecRow

// SpecTableFromAny decodes a stored or submitted value into a SpecTable.
// Accepts the canonical []{name,value} row form and the legacy flat map
// form (order lost for legacy input).
func SpecTableFromAny(v interface{}) (SpecTable, bool) {
	switch raw := v.(type) {
	case nil:
		return nil, true
	case SpecTable:
		return raw, true
	case []SpecRow:
		return SpecTable(raw), true
	case []interface{}:
		table := make(SpecTable, 0, len(raw))
		for _, item := range raw {
			row, ok := item.(map[string]interface{})
			if !ok {
				return nil, false
			}
			name := cast.ToString(row["name"])
			if name == "" {
				return nil, false
			}
			table = append(table, SpecRow{Name: name, Value: cast.ToString(row["value"])})
		}
		return table, true
	case map[string]interface{}:
		table := make(SpecTable, 0, len(raw))
		for name, value := range raw {
			table = append(table, SpecRow{Name: name, Value: cast.ToString(value)})
		}
		return table, true
	}
	return nil, false
}

// Merge applies updates last-write-wins per key. Existing rows keep their
// position; new keys append in update order.
func (t SpecTable) Merge(updates SpecTable) SpecTable {
	out := make(SpecTable, len(t))
	copy(out, t)

	index := make(map[string]int, len(out))
	for i, row := range out {
		index[row.Name] = i
	}

	for _, row := range updates {
		if i, ok := index[row.Name]; ok {
			out[i].Value = row.Value
		} else {
			index[row.Name] = len(out)
			out = append(out, row)
		}
	}
	return out
}

// ToAny converts the table to the JSON-compatible row form stored inside a
// DocumentTree.
func (t SpecTable) ToAny() []interface{} {
	out := make([]interface{}, 0, len(t))
	for _, row := range t {
		out = append(out, map[string]interface{}{"name": row.Name, "value": row.Value})
	}
	return out
}
