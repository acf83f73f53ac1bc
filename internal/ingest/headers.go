package ingest

// Canonical field names every supported export is mapped onto.
const (
	FieldID           = "id"
	FieldDate         = "date"
	FieldAmount       = "amount"
	FieldDescription  = "description"
	FieldCounterparty = "counterparty"
	FieldAccount      = "account"
	FieldCategory     = "category"
	FieldSubcategory  = "subcategory"
	FieldTag          = "tag"
)

// headerTranslation maps lowercased source headers onto canonical field
// names. Unmapped headers pass through lowercased, so extra columns from
// unknown exports stay reachable in the raw row.
var headerTranslation = map[string]string{
	"id":             FieldID,
	"transaction id": FieldID,

	"date":           FieldDate,
	"booking date":   FieldDate,
	"execution date": FieldDate,
	"executiondate":  FieldDate,

	"amount":       FieldAmount,
	"amount (eur)": FieldAmount,

	"description":       FieldDescription,
	"payment reference": FieldDescription,
	"reference":         FieldDescription,
	"concept":           FieldDescription,

	"counterparty": FieldCounterparty,
	"payee":        FieldCounterparty,
	"partner name": FieldCounterparty,
	"beneficiary":  FieldCounterparty,

	"account":        FieldAccount,
	"account number": FieldAccount,
	"iban":           FieldAccount,
	"partner iban":   FieldAccount,

	"category": FieldCategory,

	"subcategory":      FieldSubcategory,
	"transaction type": FieldSubcategory,

	"tag": FieldTag,
}
