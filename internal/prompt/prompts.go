package prompt

import "github.com/MikeSquared-Agency/alibi/internal/excuse"

const systemPrompt = `You are a creative excuse generator that crafts natural, human-sounding excuses.

CRITICAL RULES:
- Sound conversational, not robotic or AI-generated
- Use natural filler words when appropriate: "um", "like", "basically", "honestly"
- Include specific, believable details
- Vary sentence structure (not all perfect grammar)
- Add emotional context naturally
- Never use corporate AI phrases like "I hope this finds you well", "I wanted to reach out", "as per"
- Make it sound like a real person wrote it

Output format: Generate 3 different excuse variations in JSON format.`

var scenarioContexts = map[excuse.Scenario]string{
	excuse.ScenarioLateToWork:        "being late to work or a professional obligation",
	excuse.ScenarioMissedClass:       "missing a class or lecture",
	excuse.ScenarioForgotAssignment:  "not completing or forgetting an assignment",
	excuse.ScenarioSocialEventBail:   "canceling on social plans or events",
	excuse.ScenarioMissedDeadline:    "missing a work or project deadline",
	excuse.ScenarioFamilySkip:        "not attending a family event or gathering",
	excuse.ScenarioForgotSpecialDate: "forgetting an anniversary, birthday, or special date",
	excuse.ScenarioGeneralPurpose:    "a general situation that needs explanation",
}

var relationshipContexts = map[excuse.Relationship]string{
	excuse.RelationshipBoss:    "your boss or supervisor (professional tone appropriate)",
	excuse.RelationshipTeacher: "your teacher or professor (respectful but can be casual)",
	excuse.RelationshipFriend:  "your friend (casual and friendly)",
	excuse.RelationshipPartner: "your romantic partner (personal and sincere)",
	excuse.RelationshipParent:  "your parent (respectful but familiar)",
	excuse.RelationshipOther:   "someone you know",
}

var timingContexts = map[excuse.Timing]string{
	excuse.TimingRightNow:    "happening right now (urgent, immediate)",
	excuse.TimingFewHoursAgo: "happened a few hours ago (recent)",
	excuse.TimingYesterday:   "happened yesterday (past tense)",
	excuse.TimingLastWeek:    "happened last week (further in the past)",
}

var believabilityInstructions = map[excuse.BelievabilityLevel]string{
	excuse.Believable: `- Use common, everyday occurrences
- Keep it simple and straightforward
- Include 1-2 specific details
- Sound genuinely apologetic if appropriate
- 90% believability - this should be very plausible
- Avoid anything too unusual or coincidental`,
	excuse.Creative: `- Create an unusual but possible chain of events
- Include 2-3 specific details
- Has a mini story arc
- Mix mundane with unexpected
- 70% believability - interesting but technically possible
- Make it memorable without being unbelievable`,
	excuse.Ridiculous: `- Go wild with absurdist humor
- Pop culture references welcome
- Over-the-top scenarios
- Self-aware comedy
- 10% believability - pure entertainment
- Make people laugh, not believe`,
}

const (
	formalTone = "Use professional and respectful language throughout"
	casualTone = "Use casual and friendly language"
)

const outputContract = `For each excuse, provide:
1. Main excuse text (2-4 sentences that explain the situation)
2. A believability score (1-10)
3. A humorous believability label
4. Three different formats:
   - Text message version (casual, 2-3 sentences, like texting a friend)
   - Email version (include subject line and structured body)
   - Verbal version (conversational with natural pauses like "um", "like", "...", shows how you'd say it out loud)

Return as a JSON array with this EXACT structure:
[
  {
    "id": "variation-1",
    "mainExcuse": "The main excuse explanation here...",
    "believabilityScore": 8,
    "believabilityLabel": "Pretty convincing stuff",
    "formats": {
      "text": "Hey, I'm so sorry but...",
      "email": {
        "subject": "Subject line here",
        "body": "Email body here with greeting and proper structure..."
      },
      "verbal": "So, um, I wanted to tell you that... like... yeah."
    }
  }
]`

const (
	reminderHeader   = "IMPORTANT REMINDERS:"
	remindersBody    = "- Each variation should use a DIFFERENT approach/angle to the same situation\n- Make them sound like a REAL PERSON wrote them, not an AI\n- Include natural language imperfections where appropriate\n- Be SPECIFIC to the context provided"
	goWildReminder   = "- Go WILD with humor and absurdity"
	remindersClosing = "- Return ONLY valid JSON, no markdown formatting or code blocks\n- Use double quotes for JSON strings\n- Escape any quotes inside strings properly"
)
