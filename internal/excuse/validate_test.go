package excuse

import (
	"errors"
	"strings"
	"testing"
)

func validRaw() map[string]any {
	return map[string]any{
		"scenario":           "late_to_work",
		"relationship":       "boss",
		"timing":             "right_now",
		"transport":          "drive",
		"personalContext":    "my car is in the shop",
		"believabilityLevel": "believable",
		"tone":               "formal",
	}
}

func TestValidate_AllLegalCombinations(t *testing.T) {
	for _, s := range Scenarios {
		for _, r := range Relationships {
			for _, tm := range Timings {
				for _, b := range BelievabilityLevels {
					raw := map[string]any{
						"scenario":           string(s),
						"relationship":       string(r),
						"timing":             string(tm),
						"believabilityLevel": string(b),
						"tone":               "formal",
					}
					req, err := Validate(raw)
					if err != nil {
						t.Fatalf("unexpected error for %v: %v", raw, err)
					}
					want := Request{Scenario: s, Relationship: r, Timing: tm, BelievabilityLevel: b, Tone: ToneFormal}
					if req != want {
						t.Fatalf("expected %+v, got %+v", want, req)
					}
				}
			}
		}
	}
}

func TestValidate_FullRequest(t *testing.T) {
	req, err := Validate(validRaw())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Transport != TransportDrive {
		t.Errorf("expected transport drive, got %q", req.Transport)
	}
	if req.PersonalContext != "my car is in the shop" {
		t.Errorf("unexpected personal context %q", req.PersonalContext)
	}
	if req.Tone != ToneFormal {
		t.Errorf("expected formal tone, got %q", req.Tone)
	}
}

func TestValidate_ToneDefaultsToCasual(t *testing.T) {
	raw := validRaw()
	delete(raw, "tone")

	req, err := Validate(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Tone != ToneCasual {
		t.Errorf("expected casual default, got %q", req.Tone)
	}
}

func TestValidate_TransportAllowedForAnyScenario(t *testing.T) {
	raw := validRaw()
	raw["scenario"] = "forgot_special_date"

	if _, err := Validate(raw); err != nil {
		t.Fatalf("transport on a non-commute scenario should be accepted: %v", err)
	}
}

func TestValidate_ReportsEveryMissingField(t *testing.T) {
	raw := validRaw()
	delete(raw, "scenario")
	delete(raw, "timing")

	_, err := Validate(raw)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if len(verr.Fields) != 2 {
		t.Fatalf("expected 2 field errors, got %d: %v", len(verr.Fields), verr)
	}
	if !verr.Has("scenario") || !verr.Has("timing") {
		t.Errorf("expected scenario and timing violations, got %v", verr.Fields)
	}
	if !strings.Contains(verr.Error(), ", ") {
		t.Errorf("expected messages joined with comma, got %q", verr.Error())
	}
}

func TestValidate_Violations(t *testing.T) {
	tests := []struct {
		name  string
		patch map[string]any
		field string
	}{
		{"unknown scenario", map[string]any{"scenario": "abducted_by_aliens"}, "scenario"},
		{"unknown relationship", map[string]any{"relationship": "landlord"}, "relationship"},
		{"unknown timing", map[string]any{"timing": "next_year"}, "timing"},
		{"unknown transport", map[string]any{"transport": "jetpack"}, "transport"},
		{"unknown believability", map[string]any{"believabilityLevel": "plausible"}, "believabilityLevel"},
		{"unknown tone", map[string]any{"tone": "sarcastic"}, "tone"},
		{"non-string scenario", map[string]any{"scenario": 3.0}, "scenario"},
		{"null believability", map[string]any{"believabilityLevel": nil}, "believabilityLevel"},
		{"empty relationship", map[string]any{"relationship": ""}, "relationship"},
		{"context too long", map[string]any{"personalContext": strings.Repeat("a", 201)}, "personalContext"},
		{"non-string context", map[string]any{"personalContext": true}, "personalContext"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validRaw()
			for k, v := range tt.patch {
				raw[k] = v
			}
			_, err := Validate(raw)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if len(verr.Fields) != 1 || verr.Fields[0].Field != tt.field {
				t.Errorf("expected single %s violation, got %v", tt.field, verr.Fields)
			}
		})
	}
}

func TestValidate_PersonalContextCountsCharacters(t *testing.T) {
	raw := validRaw()
	raw["personalContext"] = strings.Repeat("é", MaxPersonalContext)

	req, err := Validate(raw)
	if err != nil {
		t.Fatalf("200 multi-byte characters should be accepted: %v", err)
	}
	if req.PersonalContext != raw["personalContext"] {
		t.Error("personal context should not be altered")
	}
}

func TestValidate_Deterministic(t *testing.T) {
	raw := validRaw()
	raw["scenario"] = "nope"
	raw["tone"] = "loud"

	_, err1 := Validate(raw)
	_, err2 := Validate(raw)
	if err1.Error() != err2.Error() {
		t.Errorf("expected identical errors, got %q and %q", err1, err2)
	}
}

func TestDecodeRequest(t *testing.T) {
	body := []byte(`{"scenario":"missed_class","relationship":"teacher","timing":"yesterday","believabilityLevel":"creative","extra":"ignored"}`)

	req, err := DecodeRequest(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Scenario != ScenarioMissedClass || req.Tone != ToneCasual {
		t.Errorf("unexpected request %+v", req)
	}
}

func TestDecodeRequest_InvalidJSON(t *testing.T) {
	_, err := DecodeRequest([]byte(`{"scenario":`))
	var verr *ValidationError
	if !errors.As(err, &verr) || !verr.Has("body") {
		t.Fatalf("expected body violation, got %v", err)
	}
}

func TestValidateInteraction(t *testing.T) {
	in, err := ValidateInteraction(map[string]any{
		"generationId": "gen_1_abc",
		"actionType":   "copy",
		"formatType":   "email",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.ActionType != ActionCopy || in.FormatType != FormatEmail {
		t.Errorf("unexpected interaction %+v", in)
	}

	_, err = ValidateInteraction(map[string]any{"generationId": "gen_1_abc"})
	var verr *ValidationError
	if !errors.As(err, &verr) || !verr.Has("actionType") {
		t.Fatalf("expected actionType violation, got %v", err)
	}
}
