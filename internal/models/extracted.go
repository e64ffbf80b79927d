package models

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// ExtractedData is the model's structured reading of one receipt image.
// It is never stored as-is; commit maps it onto Document, DocumentItem and Material.
type ExtractedData struct {
	Reasoning      string             `json:"reasoning,omitempty" jsonschema:"description=Short explanation of why this document type was chosen"`
	DocumentType   string             `json:"document_type,omitempty" jsonschema:"enum=PN,enum=PX,enum=PDC,enum=PTH"`
	DocumentNumber string             `json:"document_number,omitempty"`
	DocumentDate   string             `json:"document_date,omitempty" jsonschema:"description=Date as YYYY-MM-DD"`
	Warehouse      *ExtractedLocation `json:"warehouse,omitempty"`
	Supplier       *ExtractedParty    `json:"supplier,omitempty"`
	Recipient      *ExtractedParty    `json:"recipient,omitempty"`
	Items          []ExtractedItem    `json:"items"`
	Notes          string             `json:"notes,omitempty"`
	Confidence     Score              `json:"confidence" jsonschema:"minimum=0,maximum=100"`
	RawAIResponse  string             `json:"raw_ai_response,omitempty"`
}

// ExtractedLocation names a warehouse as printed on the receipt
type ExtractedLocation struct {
	Name string `json:"name,omitempty"`
	Code string `json:"code,omitempty"`
}

// ExtractedParty is a supplier or recipient block
type ExtractedParty struct {
	Name    string `json:"name,omitempty"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

// ExtractedItem is one line item read from the receipt
type ExtractedItem struct {
	Name     string          `json:"name"`
	Quantity decimal.Decimal `json:"quantity"`
	Unit     string          `json:"unit"`
	Notes    string          `json:"notes,omitempty"`
}

// WarehouseName returns the extracted warehouse name or ""
func (d *ExtractedData) WarehouseName() string {
	if d.Warehouse == nil {
		return ""
	}
	return d.Warehouse.Name
}

// UnmarshalJSON accepts quantities as numbers or numeric strings.
// Empty, null or unreadable quantities become zero.
func (it *ExtractedItem) UnmarshalJSON(b []byte) error {
	type plain ExtractedItem
	aux := struct {
		*plain
		Quantity json.RawMessage `json:"quantity"`
	}{plain: (*plain)(it)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	it.Quantity = lenientDecimal(aux.Quantity)
	return nil
}

// Score is a 0-100 confidence that models sometimes send as "90" or "90%"
type Score float64

func (s *Score) UnmarshalJSON(b []byte) error {
	f, _ := lenientDecimal(b).Float64()
	*s = Score(f)
	return nil
}

func lenientDecimal(raw json.RawMessage) decimal.Decimal {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] == 'n' || raw[0] == 't' || raw[0] == 'f' {
		return decimal.Zero
	}
	if raw[0] != '"' {
		d, err := decimal.NewFromString(string(raw))
		if err != nil {
			return decimal.Zero
		}
		return d
	}

	var str string
	if err := json.Unmarshal(raw, &str); err != nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(normalizeNumber(str))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// normalizeNumber rewrites "1.234,5" and "1,5" to "1234.5" and "1.5".
// The last separator is taken as the decimal point.
func normalizeNumber(s string) string {
	s = strings.NewReplacer(" ", "", "\u00a0", "", "%", "").Replace(strings.TrimSpace(s))
	comma, dot := strings.LastIndex(s, ","), strings.LastIndex(s, ".")
	switch {
	case comma > dot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case dot > comma && comma >= 0:
		s = strings.ReplaceAll(s, ",", "")
	}
	return s
}
