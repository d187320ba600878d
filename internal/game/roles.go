package game

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Team is the faction a role plays for
type Team string

const (
	TeamVillager Team = "VILLAGER"
	TeamWerewolf Team = "WEREWOLF"
	TeamFox      Team = "FOX"
	TeamOther    Team = "OTHER"
)

// NightAction is the targeted action a role submits during the night
type NightAction string

const (
	ActionNone   NightAction = ""
	ActionKill   NightAction = "kill"
	ActionGuard  NightAction = "guard"
	ActionDivine NightAction = "divine"
)

// Role is an immutable role definition from the catalog
type Role struct {
	ID          string      `yaml:"id"`
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Team        Team        `yaml:"team"`
	Side        string      `yaml:"side"`
	Action      NightAction `yaml:"action"`

	// Decoy roles play for the werewolves but read as villagers when divined.
	Decoy bool `yaml:"decoy"`
	// AttackImmune roles survive the night attack and die when divined.
	AttackImmune bool `yaml:"attackImmune"`
	FollowsFox   bool `yaml:"followsFox"`
	KnowsPeers   bool `yaml:"knowsPeers"`
	Medium       bool `yaml:"medium"`
	BakesBread   bool `yaml:"bakesBread"`
}

// ReadsAsWerewolf reports what divination and the medium see
func (r *Role) ReadsAsWerewolf() bool {
	return r.Team == TeamWerewolf && !r.Decoy
}

// WolfChat reports whether holders may use the wolf channel
func (r *Role) WolfChat() bool {
	return r.ReadsAsWerewolf()
}

type catalogFile struct {
	Roles     []Role                 `yaml:"roles"`
	Templates map[int]map[string]int `yaml:"templates"`
}

// Catalog is the static registry of roles and default distributions.
// It is built once at startup and never mutated afterwards.
type Catalog struct {
	roles     []Role
	byID      map[string]*Role
	templates map[int]RoleDistribution
}

// LoadCatalog parses the YAML role catalog
func LoadCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse role catalog: %w", err)
	}
	if len(file.Roles) == 0 {
		return nil, fmt.Errorf("role catalog defines no roles")
	}

	c := &Catalog{
		roles:     file.Roles,
		byID:      make(map[string]*Role, len(file.Roles)),
		templates: make(map[int]RoleDistribution, len(file.Templates)),
	}
	for i := range c.roles {
		role := &c.roles[i]
		if role.ID == "" {
			return nil, fmt.Errorf("role %d has no id", i)
		}
		if _, dup := c.byID[role.ID]; dup {
			return nil, fmt.Errorf("role %q defined twice", role.ID)
		}
		switch role.Team {
		case TeamVillager, TeamWerewolf, TeamFox, TeamOther:
		default:
			return nil, fmt.Errorf("role %q has unknown team %q", role.ID, role.Team)
		}
		c.byID[role.ID] = role
	}

	for count, dist := range file.Templates {
		d := RoleDistribution(dist)
		if err := c.ValidateDistribution(d); err != nil {
			return nil, fmt.Errorf("template for %d participants: %w", count, err)
		}
		if d.Total() != count {
			return nil, fmt.Errorf("template for %d participants assigns %d roles: %w", count, d.Total(), ErrDistributionMismatch)
		}
		c.templates[count] = d
	}

	return c, nil
}

// MustLoadCatalog is LoadCatalog for embedded data that is known to be valid
func MustLoadCatalog(data []byte) *Catalog {
	c, err := LoadCatalog(data)
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup returns the role with the given id
func (c *Catalog) Lookup(roleID string) (*Role, error) {
	role, ok := c.byID[roleID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, roleID)
	}
	return role, nil
}

// Roles returns the roles in catalog order
func (c *Catalog) Roles() []Role {
	out := make([]Role, len(c.roles))
	copy(out, c.roles)
	return out
}

// DefaultDistribution returns the curated distribution for a participant count.
// Counts without a template report false.
func (c *Catalog) DefaultDistribution(participantCount int) (RoleDistribution, bool) {
	d, ok := c.templates[participantCount]
	if !ok {
		return nil, false
	}
	return d.Clone(), true
}

// TemplateSizes returns the participant counts that have a default distribution
func (c *Catalog) TemplateSizes() []int {
	sizes := make([]int, 0, len(c.templates))
	for n := range c.templates {
		sizes = append(sizes, n)
	}
	sort.Ints(sizes)
	return sizes
}
