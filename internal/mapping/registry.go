package mapping

import (
	"sort"
)

// Canonical field names shared across import kinds
const (
	FieldSKU         = "sku"
	FieldName        = "name"
	FieldDescription = "description"
	FieldPrice       = "price"
	FieldStock       = "stock"
	FieldCategory    = "category"
	FieldFamily      = "family"
	FieldImageURL    = "image_url"
	FieldColor       = "color"
	FieldSize        = "size"
	FieldEmail       = "email"
	FieldPhone       = "phone"
	FieldCompany     = "company"
)

// registry holds the static per-kind mappings. Populated at init, read-only
// afterwards.
var registry = map[string]*FieldMapping{
	"products": {
		Kind: "products",
		Columns: []Column{
			{Header: "SKU", Field: FieldSKU},
			{Header: "Stok Kodu", Field: FieldSKU},
			{Header: "Ürün Kodu", Field: FieldSKU},
			{Header: "Product Code", Field: FieldSKU},
			{Header: "Name", Field: FieldName},
			{Header: "Ürün Adı", Field: FieldName},
			{Header: "Product Name", Field: FieldName},
			{Header: "Description", Field: FieldDescription},
			{Header: "Açıklama", Field: FieldDescription},
			{Header: "Price", Field: FieldPrice},
			{Header: "Fiyat", Field: FieldPrice},
			{Header: "Birim Fiyat", Field: FieldPrice},
			{Header: "Stock", Field: FieldStock},
			{Header: "Stok", Field: FieldStock},
			{Header: "Quantity", Field: FieldStock},
			{Header: "Miktar", Field: FieldStock},
			{Header: "Category", Field: FieldCategory},
			{Header: "Kategori", Field: FieldCategory},
			{Header: "Family", Field: FieldFamily},
			{Header: "Ürün Ailesi", Field: FieldFamily},
			{Header: "Image", Field: FieldImageURL},
			{Header: "Image URL", Field: FieldImageURL},
			{Header: "Görsel", Field: FieldImageURL},
			{Header: "Color", Field: FieldColor},
			{Header: "Renk", Field: FieldColor},
			{Header: "Size", Field: FieldSize},
			{Header: "Beden", Field: FieldSize},
		},
		RequiredFields: []string{FieldSKU, FieldName, FieldPrice},
		UniqueField:    FieldSKU,
	},
	"customers": {
		Kind: "customers",
		Columns: []Column{
			{Header: "Email", Field: FieldEmail},
			{Header: "E-posta", Field: FieldEmail},
			{Header: "Name", Field: FieldName},
			{Header: "Ad Soyad", Field: FieldName},
			{Header: "Full Name", Field: FieldName},
			{Header: "Phone", Field: FieldPhone},
			{Header: "Telefon", Field: FieldPhone},
			{Header: "Company", Field: FieldCompany},
			{Header: "Firma", Field: FieldCompany},
		},
		RequiredFields: []string{FieldEmail, FieldName},
		UniqueField:    FieldEmail,
	},
}

// ForKind returns the static mapping for an import kind
func ForKind(kind string) (*FieldMapping, bool) {
	m, ok := registry[kind]
	return m, ok
}

// Kinds lists the registered import kinds, sorted
func Kinds() []string {
	kinds := make([]string, 0, len(registry))
	for k := range registry {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
