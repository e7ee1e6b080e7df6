package lexisnexis

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"idproof/internal/proofing"
)

type conversationRequest struct {
	Type     string          `json:"Type"`
	Settings requestSettings `json:"Settings"`
	Person   requestPerson   `json:"Person"`
}

type requestSettings struct {
	AccountNumber string `json:"AccountNumber"`
	Mode          string `json:"Mode"`
	Reference     string `json:"Reference"`
	Locale        string `json:"Locale"`
	Venue         string `json:"Venue"`
}

type requestPerson struct {
	SSN         *ssn         `json:"SSN,omitempty"`
	Name        name         `json:"Name"`
	DateOfBirth *dateOfBirth `json:"DateOfBirth,omitempty"`
	Addresses   []address    `json:"Addresses,omitempty"`
	Phones      []phone      `json:"Phones,omitempty"`
}

type ssn struct {
	Number string `json:"Number"`
	Type   string `json:"Type"`
}

type name struct {
	FirstName string `json:"FirstName"`
	LastName  string `json:"LastName"`
}

type dateOfBirth struct {
	Year  int `json:"Year"`
	Month int `json:"Month"`
	Day   int `json:"Day"`
}

type address struct {
	StreetAddress1 string `json:"StreetAddress1"`
	StreetAddress2 string `json:"StreetAddress2,omitempty"`
	City           string `json:"City"`
	State          string `json:"State"`
	Zip5           string `json:"Zip5"`
	Country        string `json:"Country"`
	Context        string `json:"Context"`
}

type phone struct {
	Number  string `json:"Number"`
	Context string `json:"Context"`
}

var dobLayouts = []string{"2006-01-02", "01/02/2006", "20060102"}

func (p *Proofer) buildRequest(pii proofing.PII) conversationRequest {
	person := requestPerson{
		Name: name{FirstName: pii.Get("first_name"), LastName: pii.Get("last_name")},
	}
	if v := digits(pii.Get("ssn")); v != "" {
		person.SSN = &ssn{Number: v, Type: "ssn9"}
	}
	if dob, ok := parseDOB(pii.Get("dob")); ok {
		person.DateOfBirth = &dob
	}
	if street := pii.Get("address1"); street != "" {
		zip := pii.Get("zipcode")
		if len(zip) > 5 {
			zip = zip[:5]
		}
		person.Addresses = []address{{
			StreetAddress1: street,
			StreetAddress2: pii.Get("address2"),
			City:           pii.Get("city"),
			State:          pii.Get("state"),
			Zip5:           zip,
			Country:        "US",
			Context:        "primary",
		}}
	}
	if v := digits(pii.Get("phone")); v != "" {
		person.Phones = []phone{{Number: v, Context: "mobile"}}
	}

	return conversationRequest{
		Type: "Initiate",
		Settings: requestSettings{
			AccountNumber: p.account,
			Mode:          p.mode,
			Reference:     uuid.NewString(),
			Locale:        "en_US",
			Venue:         "online",
		},
		Person: person,
	}
}

func parseDOB(s string) (dateOfBirth, bool) {
	for _, layout := range dobLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return dateOfBirth{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}, true
		}
	}
	return dateOfBirth{}, false
}

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
