package excuse

// MaxPersonalContext is the longest personal context accepted, in characters.
const MaxPersonalContext = 200

// Request is a validated generation request. Build one with Validate or
// DecodeRequest; a zero Request is not valid.
type Request struct {
	Scenario           Scenario           `json:"scenario"`
	Relationship       Relationship       `json:"relationship"`
	Timing             Timing             `json:"timing"`
	Transport          Transport          `json:"transport,omitempty"`
	PersonalContext    string             `json:"personalContext,omitempty"`
	BelievabilityLevel BelievabilityLevel `json:"believabilityLevel"`
	Tone               Tone               `json:"tone"`
}

// HasTransport reports whether a transport mode was supplied.
func (r Request) HasTransport() bool { return r.Transport != "" }

// ClientMeta carries best-effort details about the caller, recorded with
// each generation for analytics.
type ClientMeta struct {
	SessionID string `json:"sessionId,omitempty"`
	UserAgent string `json:"userAgent,omitempty"`
	Referrer  string `json:"referrer,omitempty"`
}

// Interaction is a validated post-hoc user action against a generation.
type Interaction struct {
	GenerationID string     `json:"generationId"`
	ActionType   ActionType `json:"actionType"`
	FormatType   FormatType `json:"formatType,omitempty"`
}

// EmailFormat is the email rendering of a variant.
type EmailFormat struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Formats holds the three renderings of one variant.
type Formats struct {
	Text   string      `json:"text"`
	Email  EmailFormat `json:"email"`
	Verbal string      `json:"verbal"`
}

// Variant is one generated excuse.
type Variant struct {
	ID                 string  `json:"id"`
	MainExcuse         string  `json:"mainExcuse"`
	BelievabilityScore int     `json:"believabilityScore"`
	BelievabilityLabel string  `json:"believabilityLabel"`
	Formats            Formats `json:"formats"`
}

// Render returns the variant in the requested format. Email renders as a
// subject line followed by the body.
func (v Variant) Render(f FormatType) string {
	switch f {
	case FormatEmail:
		return "Subject: " + v.Formats.Email.Subject + "\n\n" + v.Formats.Email.Body
	case FormatVerbal:
		return v.Formats.Verbal
	case FormatText:
		return v.Formats.Text
	default:
		return v.MainExcuse
	}
}
