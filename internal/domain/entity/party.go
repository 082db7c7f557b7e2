package entity

// Party is the seller or buyer of an invoice.
type Party struct {
	Name    string
	TRN     string // Tax Registration Number, 15 digits
	Address Address
	Contact *ContactDetails
}

// Address is a party's postal address. PostalCode is optional.
type Address struct {
	Street     string
	City       string
	Emirate    string
	Country    string // ISO 3166-1 alpha-2, usually "AE"
	PostalCode string
}

// ContactDetails optional contact information for a party.
type ContactDetails struct {
	Phone string
	Email string
}
