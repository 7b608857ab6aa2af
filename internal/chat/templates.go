package chat

// Template is a predefined key set for a common document class.
type Template struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Keys        []string `json:"keys"`
	Description string   `json:"description"`
}

var templates = []Template{
	{
		ID:          "invoice",
		Name:        "Invoice",
		Keys:        []string{"invoice_number", "date", "vendor", "total_amount", "tax", "line_items"},
		Description: "Extract key information from invoices",
	},
	{
		ID:          "receipt",
		Name:        "Receipt",
		Keys:        []string{"store_name", "date", "items", "subtotal", "tax", "total"},
		Description: "Extract information from receipts",
	},
	{
		ID:          "id_card",
		Name:        "ID Card",
		Keys:        []string{"name", "id_number", "date_of_birth", "address", "issue_date", "expiry_date"},
		Description: "Extract information from ID cards",
	},
	{
		ID:          "business_card",
		Name:        "Business Card",
		Keys:        []string{"name", "title", "company", "phone", "email", "address", "website"},
		Description: "Extract contact information from business cards",
	},
	{
		ID:          "contract",
		Name:        "Contract",
		Keys:        []string{"parties", "effective_date", "terms", "payment_terms", "signatures"},
		Description: "Extract key terms from contracts",
	},
}

// Templates lists the predefined extraction templates in display order.
func Templates() []Template {
	out := make([]Template, len(templates))
	copy(out, templates)
	return out
}

func templateByID(id string) (Template, bool) {
	for _, t := range templates {
		if t.ID == id {
			return t, true
		}
	}
	return Template{}, false
}
