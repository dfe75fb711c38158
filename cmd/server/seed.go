package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/forgetmenot/internal/domain"
	"github.com/phrazzld/forgetmenot/internal/domain/srs"
	"github.com/phrazzld/forgetmenot/internal/platform/postgres"
	"github.com/phrazzld/forgetmenot/internal/store"
	"github.com/spf13/cobra"
)

// DemoEmail identifies the seeded account.
const DemoEmail = "demo@forgetmenot.app"

type demoCategory struct {
	name        string
	color       string
	description string
}

type demoNote struct {
	title    string
	content  string
	tags     []string
	category int // index into demoCategories
}

var demoCategories = []demoCategory{
	{name: "General", color: "#FFE9D0", description: "General notes"},
	{name: "Study", color: "#D9D9D9", description: "Notes for studying"},
	{name: "Work", color: "#FFE9D0", description: "Work notes"},
}

var demoNotes = []demoNote{
	{
		title: "Dijkstra's algorithm",
		content: `Dijkstra's algorithm finds the shortest path between two nodes of a graph.
It explores the cheapest paths first using a priority queue.

- Complexity: O((V + E) log V)
- Requires non-negative weights`,
		tags:     []string{"algorithms", "graphs", "cs"},
		category: 1,
	},
	{
		title: "Seven wonders of the ancient world",
		content: `1. Great Pyramid of Giza
2. Hanging Gardens of Babylon
3. Statue of Zeus at Olympia
4. Temple of Artemis at Ephesus
5. Mausoleum at Halicarnassus
6. Colossus of Rhodes
7. Lighthouse of Alexandria

Only the pyramid still stands.`,
		tags:     []string{"history", "culture"},
		category: 0,
	},
	{
		title: "Pythagorean theorem",
		content: `a² + b² = c²

a and b are the legs of the right angle, c is the hypotenuse.
Example: a = 3 and b = 4 give c = 5.`,
		tags:     []string{"math", "geometry"},
		category: 1,
	},
	{
		title: "Krebs cycle",
		content: `The citric acid cycle is a series of reactions in the mitochondria and a
key step of cellular respiration. It turns acetyl-CoA into CO2 and yields
ATP, NADH and FADH2.`,
		tags:     []string{"biology", "biochemistry"},
		category: 1,
	},
	{
		title: "Essential git commands",
		content: `git init
git add .
git commit -m "message"
git push origin main
git pull
git checkout -b new-branch`,
		tags:     []string{"git", "tools"},
		category: 2,
	},
	{
		content:  "A cup of coffee holds about 95 mg of caffeine, a central nervous system stimulant.",
		tags:     []string{"health", "food"},
		category: 0,
	},
}

func newSeedCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert a demo user with categories and notes",
		Long: `Create the ` + DemoEmail + ` account with a few categories and notes
that are due immediately. Running it again changes nothing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDatabase(cmd.Context(), rt.cfg.Database, rt.logger)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			loc, err := rt.cfg.Scheduling.Location()
			if err != nil {
				return err
			}

			userID, created, err := seedDemoData(cmd.Context(), db, time.Now().In(loc), rt.logger)
			if err != nil {
				return err
			}
			if !created {
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "demo user already exists: %s\n", userID)
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "seeded demo user %s (%s)\n", DemoEmail, userID)
			return err
		},
	}
}

// seedDemoData inserts the demo account in one transaction. It reports
// created=false with the existing id when the account is already there.
func seedDemoData(ctx context.Context, db *sql.DB, now time.Time, logger *slog.Logger) (uuid.UUID, bool, error) {
	var userID uuid.UUID
	created := false

	err := store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
		users := postgres.NewPostgresUserStore(tx, logger)

		existing, err := users.GetByEmail(ctx, DemoEmail)
		switch {
		case err == nil:
			userID = existing.ID
			return nil
		case !errors.Is(err, store.ErrUserNotFound):
			return fmt.Errorf("failed to look up demo user: %w", err)
		}

		user, categories, notes, err := buildDemoData(now)
		if err != nil {
			return err
		}
		if err := users.Create(ctx, user); err != nil {
			return fmt.Errorf("failed to create demo user: %w", err)
		}

		categoryStore := postgres.NewPostgresCategoryStore(tx, logger)
		for _, c := range categories {
			if err := categoryStore.Create(ctx, c); err != nil {
				return fmt.Errorf("failed to create category %q: %w", c.Name, err)
			}
		}

		noteStore := postgres.NewPostgresNoteStore(tx, logger)
		for _, n := range notes {
			if err := noteStore.Create(ctx, n); err != nil {
				return fmt.Errorf("failed to create demo note: %w", err)
			}
		}

		userID = user.ID
		created = true
		return nil
	})
	if err != nil {
		return uuid.Nil, false, err
	}

	if created {
		logger.Info("demo data seeded", slog.String("user_id", userID.String()))
	}
	return userID, created, nil
}

// buildDemoData creates the demo entities. Notes are due on now's day.
func buildDemoData(now time.Time) (*domain.User, []*domain.Category, []*domain.Note, error) {
	firstName := "Demo"
	user, err := domain.NewUser(DemoEmail, &firstName)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("invalid demo user: %w", err)
	}

	categories := make([]*domain.Category, len(demoCategories))
	for i, dc := range demoCategories {
		color, description := dc.color, dc.description
		c, err := domain.NewCategory(user.ID, dc.name, &color, &description)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("invalid demo category %q: %w", dc.name, err)
		}
		categories[i] = c
	}

	dueNow := srs.StartOfDay(now)
	notes := make([]*domain.Note, len(demoNotes))
	for i, dn := range demoNotes {
		fields := domain.NoteFields{
			Content:    dn.content,
			Tags:       dn.tags,
			CategoryID: &categories[dn.category].ID,
		}
		if dn.title != "" {
			title := dn.title
			fields.Title = &title
		}
		n, err := domain.NewNote(user.ID, fields, dueNow, now)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("invalid demo note %d: %w", i, err)
		}
		notes[i] = n
	}

	return user, categories, notes, nil
}
