package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"nightfall"
	"nightfall/internal/game"
)

func main() {
	fmt.Println("Nightfall Role Catalog")
	fmt.Println("======================")
	fmt.Println()

	// An optional argument checks a catalog file before it replaces static/roles.yaml
	data := nightfall.RoleCatalogYAML
	source := "embedded static/roles.yaml"
	if len(os.Args) > 1 {
		var err error
		data, err = os.ReadFile(os.Args[1])
		if err != nil {
			fmt.Printf("Error reading %s: %v\n", os.Args[1], err)
			os.Exit(1)
		}
		source = os.Args[1]
	}

	catalog, err := game.LoadCatalog(data)
	if err != nil {
		fmt.Printf("Invalid catalog %s: %v\n", source, err)
		os.Exit(1)
	}
	fmt.Printf("Loaded %d roles from %s\n\n", len(catalog.Roles()), source)
	printCatalog(os.Stdout, catalog)
}

// printCatalog writes the role table followed by one line per template
func printCatalog(w io.Writer, catalog *game.Catalog) {
	fmt.Fprintf(w, "%-10s %-10s %-9s %-7s %s\n", "ID", "NAME", "TEAM", "ACTION", "TRAITS")
	for _, role := range catalog.Roles() {
		action := string(role.Action)
		if action == "" {
			action = "-"
		}
		fmt.Fprintf(w, "%-10s %-10s %-9s %-7s %s\n", role.ID, role.Name, role.Team, action, strings.Join(traits(role), ","))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Templates:")
	for _, size := range catalog.TemplateSizes() {
		d, _ := catalog.DefaultDistribution(size)
		ids := make([]string, 0, len(d))
		for id, n := range d {
			if n > 0 {
				ids = append(ids, fmt.Sprintf("%s=%d", id, n))
			}
		}
		sort.Strings(ids)
		fmt.Fprintf(w, "  %2d: %s\n", size, strings.Join(ids, " "))
	}
}

func traits(role game.Role) []string {
	var out []string
	if role.Decoy {
		out = append(out, "decoy")
	}
	if role.AttackImmune {
		out = append(out, "attack-immune")
	}
	if role.FollowsFox {
		out = append(out, "follows-fox")
	}
	if role.KnowsPeers {
		out = append(out, "knows-peers")
	}
	if role.Medium {
		out = append(out, "medium")
	}
	if role.BakesBread {
		out = append(out, "bakes-bread")
	}
	return out
}
