package prompts

import (
	"fmt"
	"strings"

	"github.com/JaimeStill/caduceus/internal/queries"
)

const classifyInstructions = `You are a clinical triage assistant. Read the patient's health question and decide which medical specialty is best placed to answer it, and how urgently a clinician should look at it.

Use high urgency for symptoms that may need prompt medical attention, such as chest pain, difficulty breathing, sudden weakness, or heavy bleeding. Use low urgency for general wellness or informational questions. Use normal urgency for everything else. When no specialty clearly fits, choose General Medicine.`

const answerInstructions = `You are a medical AI assistant drafting a response to a patient's health question. A licensed clinician will review and countersign your draft before the patient sees the final answer.

Write clearly and professionally for a lay reader. Base the answer on current medical knowledge and make it appropriate for the urgency level given.`

const answerSpec = `Respond in markdown using exactly these sections, in order:

# Category
<the category name given in the prompt>

# Overview
A brief summary of the main points.

# Detailed Analysis
Key symptoms and their significance, potential causes and risk factors, and relevant medical conditions, each as a dash list.

# Clinical Considerations
When to seek immediate medical attention, warning signs to watch for, and risk factors to be aware of, each as a dash list.

# Important Notes
Key points to remember, lifestyle considerations, and preventive measures, each as a dash list.

# Next Steps
Immediate actions, follow-up recommendations, and self-care measures, each as a dash list.

Formatting constraints:
- Leave a blank line between sections
- Use dashes for every list item
- Do not include disclaimers`

var classifySpec = buildClassifySpec()

func buildClassifySpec() string {
	labels := make([]string, 0, len(queries.Categories()))
	for _, c := range queries.Categories() {
		labels = append(labels, c.Label())
	}

	return fmt.Sprintf(`Respond with a JSON object matching this exact structure:

{
  "category": "<category>",
  "urgency_level": "<low|normal|high>"
}

Field constraints:
- category: exactly one of: %s.
- urgency_level: one of low, normal, or high.

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing
- Do not include explanations or additional fields`, strings.Join(labels, ", "))
}

var instructions = map[Stage]string{
	StageClassify: classifyInstructions,
	StageAnswer:   answerInstructions,
}

var specs = map[Stage]string{
	StageClassify: classifySpec,
	StageAnswer:   answerSpec,
}

// DefaultInstructions returns the built-in instructions for a stage.
func DefaultInstructions(stage Stage) (string, error) {
	text, ok := instructions[stage]
	if !ok {
		return "", ErrInvalidStage
	}
	return text, nil
}

// Spec returns the output specification for a stage. Specifications cannot
// be overridden.
func Spec(stage Stage) (string, error) {
	text, ok := specs[stage]
	if !ok {
		return "", ErrInvalidStage
	}
	return text, nil
}

// Compose joins instructions and the stage specification into a system prompt.
func Compose(instructions string, stage Stage) (string, error) {
	spec, err := Spec(stage)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(instructions) + "\n\n" + spec, nil
}
