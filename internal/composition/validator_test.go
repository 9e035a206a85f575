package composition

import (
	"errors"
	"strconv"
	"strings"
	"testing"

	"marmitaria/internal/catalog"
	"marmitaria/internal/models"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	data := catalog.Defaults()
	data.Ingredients = append(data.Ingredients, models.Ingredient{
		ID: "rice-2", Name: "Arroz Integral", Category: models.CategoryRice, Active: true,
	}, models.Ingredient{
		ID: "meat-off", Name: "Cupim", Category: models.CategoryMeat, Active: false,
	})
	c, err := catalog.New(data)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return c
}

func categoryOf(id string) string {
	return id[:strings.Index(id, "-")]
}

// TestCompletenessAndLimitsOverAllSubsets walks every subset of a pool that
// covers each constrained category past its limit.
func TestCompletenessAndLimitsOverAllSubsets(t *testing.T) {
	cat := testCatalog(t)
	pool := []string{"rice-1", "rice-2", "beans-1", "beans-2", "meat-1", "meat-2", "meat-3", "sides-1", "salad-1"}

	for mask := 0; mask < 1<<len(pool); mask++ {
		var selection []string
		counts := map[string]int{}
		for i, id := range pool {
			if mask&(1<<i) != 0 {
				selection = append(selection, id)
				counts[categoryOf(id)]++
			}
		}

		want := counts["rice"] == 1 && counts["meat"] >= 1 && counts["meat"] <= 2
		if got := IsComplete(selection, cat); got != want {
			t.Fatalf("IsComplete(%v) = %v, want %v", selection, got, want)
		}

		for _, id := range pool {
			selected := mask&(1<<indexOf(pool, id)) != 0
			got := CanAdd(id, selection, cat)
			if selected {
				if !got {
					t.Fatalf("CanAdd(%s, %v) refused a deselection", id, selection)
				}
				continue
			}
			limit := map[string]int{"rice": 1, "beans": 1, "meat": 2}
			max, bounded := limit[categoryOf(id)]
			want := !bounded || counts[categoryOf(id)] < max
			if got != want {
				t.Fatalf("CanAdd(%s, %v) = %v, want %v", id, selection, got, want)
			}
		}
	}
}

func indexOf(pool []string, id string) int {
	for i, p := range pool {
		if p == id {
			return i
		}
	}
	return -1
}

func TestThirdMeatIsNotSelectable(t *testing.T) {
	cat := testCatalog(t)
	selection := []string{"rice-1", "meat-1", "meat-2"}

	if CanAdd("meat-3", selection, cat) {
		t.Fatal("expected third meat to be refused")
	}
	if _, err := Toggle("meat-3", selection, cat); !errors.Is(err, ErrNotSelectable) {
		t.Fatalf("expected ErrNotSelectable, got %v", err)
	}

	next, err := Toggle("meat-2", selection, cat)
	if err != nil {
		t.Fatalf("deselecting meat-2: %v", err)
	}
	if !CanAdd("meat-3", next, cat) {
		t.Fatal("expected meat-3 to be selectable after dropping to one meat")
	}
	if len(selection) != 3 {
		t.Fatalf("Toggle modified its input: %v", selection)
	}
}

func TestInactiveIngredientsAreUnselectableAndUncounted(t *testing.T) {
	cat := testCatalog(t)

	if CanAdd("meat-off", nil, cat) {
		t.Fatal("expected inactive meat to be unselectable")
	}
	if CanAdd("nope-1", nil, cat) {
		t.Fatal("expected unknown id to be unselectable")
	}
	// An inactive id that slipped into a selection never satisfies the meat minimum.
	if IsComplete([]string{"rice-1", "meat-off"}, cat) {
		t.Fatal("expected inactive meat not to count")
	}
	// Deselecting it is still allowed.
	next, err := Toggle("meat-off", []string{"rice-1", "meat-off"}, cat)
	if err != nil || len(next) != 1 {
		t.Fatalf("expected inactive id to be removable, got %v, %v", next, err)
	}
}

func TestValidateReason(t *testing.T) {
	cat := testCatalog(t)

	err := Validate([]string{"meat-1", "sides-1"}, cat)
	if !errors.Is(err, ErrIncomplete) || err.Error() != "select rice and meat" {
		t.Fatalf("expected ErrIncomplete with reason, got %v", err)
	}
	if err := Validate([]string{"rice-1", "meat-1"}, cat); err != nil {
		t.Fatalf("expected rice and one meat to be complete, got %v", err)
	}
}

func TestSaladsAndSidesAreUnbounded(t *testing.T) {
	cat := testCatalog(t)
	selection := []string{"rice-1", "meat-1", "salad-1", "salad-2"}
	for i := 1; i <= 27; i++ {
		selection = append(selection, "sides-"+strconv.Itoa(i))
	}
	if !IsComplete(selection, cat) {
		t.Fatal("expected any number of sides and salads to be complete")
	}
}

func TestGroupsMarksFullCategories(t *testing.T) {
	cat := testCatalog(t)
	groups := Groups(cat.ListActiveIngredients(), []string{"rice-1"}, cat)

	if groups[0].Category != models.CategoryRice {
		t.Fatalf("expected rice first, got %s", groups[0].Category)
	}
	for _, opt := range groups[0].Options {
		switch opt.ID {
		case "rice-1":
			if !opt.Selected || !opt.Selectable {
				t.Fatalf("selected rice must stay toggleable: %+v", opt)
			}
		case "rice-2":
			if opt.Selectable {
				t.Fatal("second rice must be disabled")
			}
		}
	}
	for _, g := range groups {
		for _, opt := range g.Options {
			if opt.ID == "meat-off" {
				t.Fatal("inactive ingredient listed in builder")
			}
		}
	}
}
