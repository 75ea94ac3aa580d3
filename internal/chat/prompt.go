package chat

const systemPrompt = `You are FitBot, a friendly personal trainer. ` +
	`Keep answers short, encouraging and practical. Suggest concrete exercises ` +
	`with sets and reps where it helps, and remind users to warm up before ` +
	`intense sessions. Never give medical advice, refer users to a doctor for ` +
	`pain or injuries.`

// categoryOpeners are scripted opening questions prepended to the system
// prompt when a new session starts with a chosen focus.
var categoryOpeners = map[string]string{
	"weight-loss": `Open the conversation by asking about the user's current ` +
		`activity level and how many days per week they can train.`,
	"muscle-gain": `Open the conversation by asking what equipment the user has ` +
		`access to and which muscle groups they want to prioritize.`,
	"endurance": `Open the conversation by asking about the user's current ` +
		`cardio routine and their target distance or duration.`,
	"flexibility": `Open the conversation by asking which areas feel tight and ` +
		`whether the user has done any mobility work before.`,
}

func buildMessages(userMessage, category string, isNewSession bool) []CompletionMessage {
	prompt := systemPrompt
	if isNewSession {
		if opener, ok := categoryOpeners[category]; ok {
			prompt = opener + "\n\n" + prompt
		}
	}
	return []CompletionMessage{
		{Role: "system", Content: prompt},
		{Role: "user", Content: userMessage},
	}
}
