package chain

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/wellally/healthaudit/internal/models"
)

func TestCanonicalDetailsSortsKeys(t *testing.T) {
	got, err := canonicalDetails(map[string]any{
		"zeta":  1,
		"alpha": "x",
		"mid":   map[string]any{"b": true, "a": nil},
	})
	if err != nil {
		t.Fatalf("canonicalDetails: %v", err)
	}

	want := `{"alpha":"x","mid":{"a":null,"b":true},"zeta":1}`
	if string(got) != want {
		t.Errorf("canonical = %s, want %s", got, want)
	}
}

func TestCanonicalDetailsDeterministic(t *testing.T) {
	details := map[string]any{
		"nested": map[string]any{"k2": []any{1, "two", 3.5}, "k1": false},
		"plain":  "value",
		"num":    json.Number("12.340"),
	}

	first, err := canonicalDetails(details)
	if err != nil {
		t.Fatalf("canonicalDetails: %v", err)
	}
	for i := 0; i < 20; i++ {
		again, err := canonicalDetails(details)
		if err != nil {
			t.Fatalf("canonicalDetails: %v", err)
		}
		if string(again) != string(first) {
			t.Fatalf("canonical bytes differ across runs: %s vs %s", first, again)
		}
	}
}

func TestCanonicalDetailsSurvivesJSONRoundTrip(t *testing.T) {
	details := map[string]any{"b": 2.5, "a": []any{"x", map[string]any{"k": "v"}}}

	first, err := canonicalDetails(details)
	if err != nil {
		t.Fatalf("canonicalDetails: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(first, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	second, err := canonicalDetails(decoded)
	if err != nil {
		t.Fatalf("canonicalDetails after round trip: %v", err)
	}

	if string(first) != string(second) {
		t.Errorf("round trip changed canonical form: %s vs %s", first, second)
	}
}

func TestCanonicalDetailsRejectsNonFinite(t *testing.T) {
	for name, v := range map[string]float64{
		"nan":     math.NaN(),
		"pos_inf": math.Inf(1),
		"neg_inf": math.Inf(-1),
	} {
		if _, err := canonicalDetails(map[string]any{"v": v}); !errors.Is(err, models.ErrSerialization) {
			t.Errorf("%s: err = %v, want ErrSerialization", name, err)
		}
	}
}

func TestCanonicalDetailsRejectsUnsupportedType(t *testing.T) {
	_, err := canonicalDetails(map[string]any{"f": func() {}})
	if !errors.Is(err, models.ErrSerialization) {
		t.Errorf("err = %v, want ErrSerialization", err)
	}
}

func TestCanonicalDetailsEmptyAndNil(t *testing.T) {
	for name, m := range map[string]map[string]any{"nil": nil, "empty": {}} {
		got, err := canonicalDetails(m)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if string(got) != "{}" {
			t.Errorf("%s: canonical = %s, want {}", name, got)
		}
	}
}

func TestDigestChangesWithAnyField(t *testing.T) {
	base := models.Entry{
		Sequence:       3,
		Actor:          "dr_smith",
		Action:         "view",
		ResourceType:   "Patient",
		ResourceID:     "p1",
		PreviousDigest: models.GenesisDigest,
	}

	orig, err := digestEntry(base)
	if err != nil {
		t.Fatalf("digestEntry: %v", err)
	}

	mutations := map[string]func(e *models.Entry){
		"sequence":        func(e *models.Entry) { e.Sequence = 4 },
		"actor":           func(e *models.Entry) { e.Actor = "nurse_jones" },
		"action":          func(e *models.Entry) { e.Action = "update" },
		"resource_type":   func(e *models.Entry) { e.ResourceType = "Observation" },
		"resource_id":     func(e *models.Entry) { e.ResourceID = "p2" },
		"previous_digest": func(e *models.Entry) { e.PreviousDigest = "deadbeef" },
		"details":         func(e *models.Entry) { e.Details = map[string]any{"k": "v"} },
	}
	for name, mutate := range mutations {
		e := base
		mutate(&e)
		d, err := digestEntry(e)
		if err != nil {
			t.Fatalf("%s: digestEntry: %v", name, err)
		}
		if d == orig {
			t.Errorf("mutating %s did not change digest", name)
		}
	}
}
