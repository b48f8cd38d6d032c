package models

import "strings"

// Address is a postal address. It is a value type: copies never alias.
type Address struct {
	BuildingNumber string `json:"building_number"`
	Street         string `json:"street"`
	City           string `json:"city"`
	State          string `json:"state"`
	ZipCode        string `json:"zip_code"`
}

// Format renders the address on a single line.
func (a Address) Format() string {
	return strings.Join([]string{a.BuildingNumber, a.Street, a.City, a.State, a.ZipCode}, " ")
}
