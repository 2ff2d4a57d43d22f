package chat

import (
	"fmt"
	"strings"

	"travelbro-server/internal/domain/conversation"
	"travelbro-server/internal/domain/intake"
	"travelbro-server/internal/domain/llm"
	"travelbro-server/internal/domain/slots"
	"travelbro-server/internal/domain/trip"
)

// PromptAssembler builds the single grounding prompt from trip metadata,
// itinerary, current slots, tool outputs, and vision output.
type PromptAssembler struct{}

// PromptInputs collects everything the system prompt is assembled from.
type PromptInputs struct {
	Trip              *trip.Trip
	Slots             slots.Slots
	Intake            *intake.Intake
	VisionDescription string
	ToolText          string
}

// BuildSystemPrompt renders the system instruction block.
func (PromptAssembler) BuildSystemPrompt(in PromptInputs) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Je bent TravelBro, een vriendelijke Nederlandse reisassistent voor de reis %q.\n\n", in.Trip.Name)
	b.WriteString("Houd antwoorden kort en to the point tenzij meer detail gevraagd wordt. Gebruik emoji's waar passend.\n")
	b.WriteString("Als je in een eerder antwoord al om verduidelijking vroeg, stel dezelfde vraag NIET opnieuw; kies dan het meest waarschijnlijke antwoord.\n\n")

	if context := in.Slots.PromptContext(); context != "" {
		b.WriteString(context)
		b.WriteString("\n\n")
	}

	if in.Trip.CustomContext != "" {
		fmt.Fprintf(&b, "🎯 SPECIFIEKE REIS CONTEXT:\n%s\n\n", in.Trip.CustomContext)
	}

	b.WriteString(renderIntake(in.Intake))
	b.WriteString(renderItinerary(in.Trip))

	if len(in.Trip.SourceURLs) > 0 {
		fmt.Fprintf(&b, "Extra informatie bronnen:\n%s\n\n", strings.Join(in.Trip.SourceURLs, "\n"))
	}

	if in.VisionDescription != "" {
		fmt.Fprintf(&b, "FOTO ANALYSE (zojuist door jou bekeken):\n%s\n\n", in.VisionDescription)
	}

	if in.ToolText != "" {
		fmt.Fprintf(&b, "ACTUELE DATA:\n%s\n", in.ToolText)
	}

	return strings.TrimRight(b.String(), "\n")
}

// BuildMessages produces the full conversation: system prompt, trimmed
// history in chronological order, then the new user message.
func (PromptAssembler) BuildMessages(systemPrompt string, history []conversation.Turn, userMessage string) []llm.ChatMessage {
	messages := make([]llm.ChatMessage, 0, len(history)+2)
	messages = append(messages, llm.ChatMessage{Role: "system", Content: systemPrompt})
	for _, turn := range history {
		messages = append(messages, llm.ChatMessage{Role: string(turn.Role), Content: turn.Message})
	}
	messages = append(messages, llm.ChatMessage{Role: "user", Content: userMessage})
	return messages
}

func renderIntake(traveler *intake.Intake) string {
	data := traveler.PromptData()
	if data == "" {
		return "Reiziger informatie:\nGeen intake data beschikbaar\n\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Reiziger informatie:\n%s\n\n", data)
	b.WriteString(`GEBRUIK VAN REIZIGER INFORMATIE:
1. Favoriet eten: suggereer restaurants die dit serveren in de buurt van de accommodatie.
2. Allergieën en dieetwensen: wees hier ALTIJD alert op; waarschuw en geef alternatieven.
3. Verwachtingen: speel actief in op waar reizigers naar uitkijken.
4. Interesses van kinderen en tieners: gebruik hun hobby's voor relevante tips.
5. Bijzonderheden (bijv. wagenziek): geef proactief praktische tips.
Noem reizigers bij naam in persoonlijke adviezen.

`)
	return b.String()
}

func renderItinerary(t *trip.Trip) string {
	if len(t.Itinerary) == 0 {
		return fmt.Sprintf("ℹ️ Beperkte reis informatie beschikbaar voor %q. Geef algemene tips over de bestemming.\n\n", t.Name)
	}

	var b strings.Builder
	b.WriteString("📅 DAGPROGRAMMA:\n")
	b.WriteString("Dit is het exacte reisschema; gebruik deze hotel- en plaatsnamen letterlijk.\n\n")
	for _, day := range t.Itinerary {
		fmt.Fprintf(&b, "**Dag %d", day.Day)
		if day.Date != "" {
			fmt.Fprintf(&b, " (%s)", day.Date)
		}
		fmt.Fprintf(&b, "**: %s\n", day.Location)
		if day.Hotel != "" {
			fmt.Fprintf(&b, "🏨 Hotel: %s\n", day.Hotel)
		}
		for _, activity := range day.Activities {
			fmt.Fprintf(&b, "  • %s\n", activity)
		}
		b.WriteString("\n")
	}
	return b.String()
}
