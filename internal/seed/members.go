// Package seed loads member directory data for member_lookup search.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/mattlowe/formhall/internal/field"
	"github.com/mattlowe/formhall/internal/lookup"
	"github.com/mattlowe/formhall/internal/store"
)

// Members loads a roster into the member directory. With an empty path a
// small demo roster is used. If members already exist the call is a no-op,
// so it is safe to run on every startup.
func Members(ctx context.Context, st *store.Store, path string) error {
	count, err := st.CountMembers(ctx)
	if err != nil {
		return fmt.Errorf("checking members: %w", err)
	}
	if count > 0 {
		log.Printf("member directory already seeded (%d found), skipping", count)
		return nil
	}

	roster := demoRoster()
	if path != "" {
		roster, err = loadRoster(path)
		if err != nil {
			return err
		}
	}

	for _, m := range roster {
		if m.ID == "" {
			m.ID = field.NewID()
		}
		if err := st.UpsertMember(ctx, m); err != nil {
			return fmt.Errorf("seeding member %q: %w", m.FullName, err)
		}
	}
	log.Printf("seeded %d members", len(roster))
	return nil
}

// loadRoster reads a JSON array of members from disk.
func loadRoster(path string) ([]lookup.Member, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading roster %s: %w", path, err)
	}
	var roster []lookup.Member
	if err := json.Unmarshal(data, &roster); err != nil {
		return nil, fmt.Errorf("parsing roster %s: %w", path, err)
	}
	return roster, nil
}

func demoRoster() []lookup.Member {
	return []lookup.Member{
		{FullName: "Jane Doe", Rank: "Captain"},
		{FullName: "Robert Ellis", Rank: "Lieutenant"},
		{FullName: "Maria Santos", Rank: "Firefighter"},
		{FullName: "Dan Whitfield", Rank: "Firefighter"},
		{FullName: "Priya Raman", Rank: "EMT"},
	}
}
