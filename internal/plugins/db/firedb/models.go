package firedb

import "github.com/buddyapp/buddy/internal/domain"

// Firestore's REST representation wraps every field in a typed value
// object. Only string fields exist in the profile document, so the
// wrapper stays minimal.

type value struct {
	StringValue string `json:"stringValue"`
}

type document struct {
	Name   string           `json:"name,omitempty"`
	Fields map[string]value `json:"fields,omitempty"`
}

func encodeProfile(p *domain.Profile, includeEmail bool) document {
	fields := map[string]value{
		"uid":      {StringValue: p.UID},
		"nombre":   {StringValue: p.Nombre},
		"apellido": {StringValue: p.Apellido},
		"tipo":     {StringValue: string(p.Tipo)},
		"bio":      {StringValue: p.Bio},
	}
	if includeEmail {
		fields["email"] = value{StringValue: p.Email}
	}
	return document{Fields: fields}
}

func decodeProfile(doc document) *domain.Profile {
	get := func(name string) string { return doc.Fields[name].StringValue }
	return &domain.Profile{
		UID:      get("uid"),
		Nombre:   get("nombre"),
		Apellido: get("apellido"),
		Email:    get("email"),
		Tipo:     domain.AccountType(get("tipo")),
		Bio:      get("bio"),
	}
}
