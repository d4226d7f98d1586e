// Package excuse holds the fixed vocabulary of the generator, the request
// schema and its validator, and the shape of generated variants.
package excuse

type Scenario string

const (
	ScenarioLateToWork        Scenario = "late_to_work"
	ScenarioMissedClass       Scenario = "missed_class"
	ScenarioForgotAssignment  Scenario = "forgot_assignment"
	ScenarioSocialEventBail   Scenario = "social_event_bail"
	ScenarioMissedDeadline    Scenario = "missed_deadline"
	ScenarioFamilySkip        Scenario = "family_skip"
	ScenarioForgotSpecialDate Scenario = "forgot_special_date"
	ScenarioGeneralPurpose    Scenario = "general_purpose"
)

type Relationship string

const (
	RelationshipBoss    Relationship = "boss"
	RelationshipTeacher Relationship = "teacher"
	RelationshipFriend  Relationship = "friend"
	RelationshipPartner Relationship = "partner"
	RelationshipParent  Relationship = "parent"
	RelationshipOther   Relationship = "other"
)

type Timing string

const (
	TimingRightNow    Timing = "right_now"
	TimingFewHoursAgo Timing = "few_hours_ago"
	TimingYesterday   Timing = "yesterday"
	TimingLastWeek    Timing = "last_week"
)

type Transport string

const (
	TransportDrive         Transport = "drive"
	TransportPublicTransit Transport = "public_transit"
	TransportWalkBike      Transport = "walk_bike"
	TransportWorkFromHome  Transport = "work_from_home"
)

type BelievabilityLevel string

const (
	Believable BelievabilityLevel = "believable"
	Creative   BelievabilityLevel = "creative"
	Ridiculous BelievabilityLevel = "ridiculous"
)

type Tone string

const (
	ToneCasual Tone = "casual"
	ToneFormal Tone = "formal"
)

type FormatType string

const (
	FormatText   FormatType = "text"
	FormatEmail  FormatType = "email"
	FormatVerbal FormatType = "verbal"
)

type ActionType string

const (
	ActionCopy       ActionType = "copy"
	ActionTweak      ActionType = "tweak"
	ActionRegenerate ActionType = "regenerate"
)

// Ordered value sets. The order is the order the wizard presents them in.
var (
	Scenarios = []Scenario{
		ScenarioLateToWork, ScenarioMissedClass, ScenarioForgotAssignment, ScenarioSocialEventBail,
		ScenarioMissedDeadline, ScenarioFamilySkip, ScenarioForgotSpecialDate, ScenarioGeneralPurpose,
	}
	Relationships = []Relationship{
		RelationshipBoss, RelationshipTeacher, RelationshipFriend,
		RelationshipPartner, RelationshipParent, RelationshipOther,
	}
	Timings             = []Timing{TimingRightNow, TimingFewHoursAgo, TimingYesterday, TimingLastWeek}
	Transports          = []Transport{TransportDrive, TransportPublicTransit, TransportWalkBike, TransportWorkFromHome}
	BelievabilityLevels = []BelievabilityLevel{Believable, Creative, Ridiculous}
	Tones               = []Tone{ToneCasual, ToneFormal}
	FormatTypes         = []FormatType{FormatText, FormatEmail, FormatVerbal}
	ActionTypes         = []ActionType{ActionCopy, ActionTweak, ActionRegenerate}
)

// ScenarioDefinition describes a scenario card shown in the first wizard step.
type ScenarioDefinition struct {
	ID                Scenario `json:"id"`
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	Emoji             string   `json:"emoji"`
	RequiresTransport bool     `json:"requiresTransport,omitempty"`
}

var ScenarioDefinitions = []ScenarioDefinition{
	{ID: ScenarioLateToWork, Title: "Late to Work", Description: "Traffic, alarms, and other morning mysteries", Emoji: "🏢", RequiresTransport: true},
	{ID: ScenarioMissedClass, Title: "Missed Class", Description: "Why you weren't in that important lecture", Emoji: "📚"},
	{ID: ScenarioForgotAssignment, Title: "Forgot Assignment", Description: "Homework? What homework?", Emoji: "✍️"},
	{ID: ScenarioSocialEventBail, Title: "Bailing on Plans", Description: "Can't make it to that party or hangout", Emoji: "🎉"},
	{ID: ScenarioMissedDeadline, Title: "Missed Deadline", Description: "Project delays and missed timelines", Emoji: "⏰"},
	{ID: ScenarioFamilySkip, Title: "Skip Family Event", Description: "Can't make family dinner or gathering", Emoji: "👨‍👩‍👧"},
	{ID: ScenarioForgotSpecialDate, Title: "Forgot Anniversary/Birthday", Description: "Special dates that somehow slipped by", Emoji: "🎂"},
	{ID: ScenarioGeneralPurpose, Title: "General Purpose", Description: "Custom situation - anything goes", Emoji: "🎭"},
}

// Definition returns the scenario card for s.
func (s Scenario) Definition() (ScenarioDefinition, bool) {
	for _, d := range ScenarioDefinitions {
		if d.ID == s {
			return d, true
		}
	}
	return ScenarioDefinition{}, false
}

// RequiresTransport reports whether the wizard should ask how the user travels.
func (s Scenario) RequiresTransport() bool {
	d, ok := s.Definition()
	return ok && d.RequiresTransport
}

func (s Scenario) Valid() bool           { return contains(Scenarios, s) }
func (r Relationship) Valid() bool       { return contains(Relationships, r) }
func (t Timing) Valid() bool             { return contains(Timings, t) }
func (t Transport) Valid() bool          { return contains(Transports, t) }
func (b BelievabilityLevel) Valid() bool { return contains(BelievabilityLevels, b) }
func (t Tone) Valid() bool               { return contains(Tones, t) }
func (f FormatType) Valid() bool         { return contains(FormatTypes, f) }
func (a ActionType) Valid() bool         { return contains(ActionTypes, a) }

func contains[T comparable](set []T, v T) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
