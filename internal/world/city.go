package world

// City is a named settlement owning a set of tiles. City IDs start at 1;
// tiles reference their owner by ID.
type City struct {
	ID     int     `json:"id"`
	Name   string  `json:"name"`
	CivID  int     `json:"civId"`
	Center Coord   `json:"center"`
	Owned  []Coord `json:"owned"`
}

// ownsCoord reports whether the coord is already in the city's set.
func (c *City) ownsCoord(co Coord) bool {
	for _, o := range c.Owned {
		if o == co {
			return true
		}
	}
	return false
}
