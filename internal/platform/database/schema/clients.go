// Copyright (c) 2026 Keygate. All rights reserved.

package schema

// ClientsTable represents the 'clients' table
type ClientsTable struct {
	Table        string
	ID           string
	ClientID     string
	ClientSecret string
	RedirectURI  string
	CreatedAt    string
	UpdatedAt    string
}

// Clients is the schema definition for the clients table.
//
// Rows are provisioned out-of-band by adminctl; the authentication path
// only ever reads them.
var Clients = ClientsTable{
	Table:        "clients",
	ID:           "id",
	ClientID:     "client_id",
	ClientSecret: "client_secret",
	RedirectURI:  "redirect_uri",
	CreatedAt:    "created_at",
	UpdatedAt:    "updated_at",
}

// Columns returns all standard column names
func (t ClientsTable) Columns() []string {
	return []string{
		t.ID, t.ClientID, t.ClientSecret, t.RedirectURI,
		t.CreatedAt, t.UpdatedAt,
	}
}
