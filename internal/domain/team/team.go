package team

import "fmt"

// Team is one of the cup's 32 national squads. The catalog is static
// tournament data, not user state.
type Team struct {
	ID    string
	Name  string
	Flag  string
	Group string
}

func (t Team) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("team id is required")
	}
	if t.Name == "" {
		return fmt.Errorf("team name is required")
	}
	if t.Group < "A" || t.Group > "H" || len(t.Group) != 1 {
		return fmt.Errorf("invalid team group: %s", t.Group)
	}

	return nil
}
