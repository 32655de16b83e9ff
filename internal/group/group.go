// Package group holds the participant and family data the matcher runs on.
// Families are exclusion groups: members of the same family are never
// paired with each other.
package group

import (
	"encoding/json"
	"fmt"
	"os"
)

// Family is an ordered list of participant names. Order is preserved from
// the input file because it determines the order members are assigned in.
type Family []string

// Group is the full participant set, partitioned into families, plus the
// phone number lookup used when sending notifications.
type Group struct {
	Families []Family          `json:"families"`
	Contacts map[string]string `json:"phonenumbers"`
}

// Load reads a group file. The format is JSON with two fields:
// "families" (list of lists of names) and "phonenumbers" (name -> phone).
func Load(path string) (*Group, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read group file: %w", err)
	}

	var g Group
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("failed to parse group file: %w", err)
	}

	if err := g.Validate(); err != nil {
		return nil, err
	}
	return &g, nil
}

// Validate checks that the families form a proper partition: at least one
// family, no empty family, and no name appearing twice anywhere.
func (g *Group) Validate() error {
	if len(g.Families) == 0 {
		return fmt.Errorf("group has no families")
	}
	seen := make(map[string]bool)
	for i, fam := range g.Families {
		if len(fam) == 0 {
			return fmt.Errorf("family %d is empty", i)
		}
		for _, name := range fam {
			if name == "" {
				return fmt.Errorf("family %d contains an empty name", i)
			}
			if seen[name] {
				return fmt.Errorf("participant %q appears in more than one family", name)
			}
			seen[name] = true
		}
	}
	return nil
}

// Participants returns every name across all families, in input order.
func (g *Group) Participants() []string {
	var all []string
	for _, fam := range g.Families {
		all = append(all, fam...)
	}
	return all
}

// FamilyOf returns the index of the family containing name, or -1.
func (g *Group) FamilyOf(name string) int {
	for i, fam := range g.Families {
		for _, member := range fam {
			if member == name {
				return i
			}
		}
	}
	return -1
}

// Contact returns the phone number for name.
func (g *Group) Contact(name string) (string, bool) {
	phone, ok := g.Contacts[name]
	return phone, ok
}
