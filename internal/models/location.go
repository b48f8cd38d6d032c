package models

// Location identifies a room inside a building.
type Location struct {
	RoomNumber   string  `json:"room_number"`
	BuildingName string  `json:"building_name"`
	Address      Address `json:"address"`
}

// Format renders the location as "<building> <room> <address>".
func (l Location) Format() string {
	return l.BuildingName + " " + l.RoomNumber + " " + l.Address.Format()
}
