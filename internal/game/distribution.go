package game

import "fmt"

// RoleDistribution maps a role id to how many participants receive it
type RoleDistribution map[string]int

// Total returns the number of roles the distribution hands out
func (d RoleDistribution) Total() int {
	total := 0
	for _, n := range d {
		total += n
	}
	return total
}

// Clone returns an independent copy
func (d RoleDistribution) Clone() RoleDistribution {
	if d == nil {
		return nil
	}
	out := make(RoleDistribution, len(d))
	for id, n := range d {
		out[id] = n
	}
	return out
}

// ValidateDistribution checks every role id exists and no count is negative
func (c *Catalog) ValidateDistribution(d RoleDistribution) error {
	for id, n := range d {
		if _, err := c.Lookup(id); err != nil {
			return err
		}
		if n < 0 {
			return fmt.Errorf("%w: %s=%d", ErrInvalidDistribution, id, n)
		}
	}
	return nil
}

// pool expands a distribution into one role id per seat, in catalog order
func (c *Catalog) pool(d RoleDistribution) []string {
	out := make([]string, 0, d.Total())
	for _, role := range c.roles {
		for i := 0; i < d[role.ID]; i++ {
			out = append(out, role.ID)
		}
	}
	return out
}
