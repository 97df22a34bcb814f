package notebook

import (
	"fmt"
	"strings"

	"ragify-be/pkg/conversation"
)

// maxEditContentRunes bounds the notebook text sent along with an edit instruction
const maxEditContentRunes = 3000

const editSystemPrompt = `You are an expert editor assistant. Your task is to edit a Markdown notebook based on user instructions.
- Follow the user's editing instructions precisely
- Maintain the existing Markdown structure and formatting
- Preserve important content unless explicitly asked to remove it
- Apply the requested changes while keeping the document well-organized
- Return the complete edited notebook content in Markdown format
- Do not include any prefix or explanation, just return the edited Markdown content directly`

const generationSystemPrompt = `You are an expert note-taking assistant. Your task is to generate a well-structured Markdown notebook from a conversation history.
- Create a clear, organized summary of the conversation
- Use appropriate Markdown formatting (headings, lists, code blocks, etc.)
- Extract key points, decisions, and important information
- Organize content logically with sections and subsections
- Do not include any prefix or explanation, just return the Markdown content directly`

const editPromptTemplate = "You are editing a Markdown notebook. The user wants you to modify the content based on their instruction.\n\n" +
	"**Current Notebook Content:**\n```\n%s\n```\n\n" +
	"**User's Editing Instruction:**\n%s\n\n" +
	"**CRITICAL REQUIREMENTS:**\n" +
	"1. Apply the user's instruction to modify the notebook content\n" +
	"2. Return the COMPLETE edited notebook content in Markdown format\n" +
	"3. Do NOT include any explanation, prefix, or wrapper text\n" +
	"4. Do NOT wrap the content in code blocks (no ```markdown or ```)\n" +
	"5. Start directly with the Markdown content\n" +
	"6. Preserve the overall structure unless the user explicitly asks to change it\n" +
	"7. If the content was truncated, still return a complete edited version based on what you see\n\n" +
	"Edited Markdown content:"

const selectionEditTemplate = "[Selection-based edit] The user has selected the following text:\n\"%s\"\n\n" +
	"User instruction: %s\n\n" +
	"Please apply the instruction ONLY to the selected text while keeping the rest of the note unchanged."

const (
	placeholderNote = "# 筆記\n\n尚無對話內容。\n"
	defaultHeading  = "# 筆記\n\n"
)

// Known lead-ins models put in front of the edited document
var editOutputPrefixes = []string{
	"edited content:",
	"edited notebook:",
	"here is the edited content:",
	"以下是編輯後的內容：",
	"編輯後的筆記：",
}

func formatEditPrompt(content, instruction string) string {
	runes := []rune(content)
	if len(runes) > maxEditContentRunes {
		content = string(runes[:maxEditContentRunes]) + "\n\n[... content truncated ...]"
	}
	return fmt.Sprintf(editPromptTemplate, content, instruction)
}

func formatSelectionInstruction(selected, instruction string) string {
	return fmt.Sprintf(selectionEditTemplate, selected, instruction)
}

func formatGenerationPrompt(history []conversation.Message) string {
	var sb strings.Builder
	sb.WriteString("**Conversation History:**\n")
	for _, m := range history {
		fmt.Fprintf(&sb, "**%s**: %s\n", strings.ToUpper(string(m.Role)), m.Text)
	}
	sb.WriteString("\nBased on the conversation history above, generate a well-structured Markdown notebook that summarizes the key points, decisions, and important information discussed.")
	return sb.String()
}

// cleanEditOutput unwraps code fences and strips lead-in phrases.
// ok is false when what is left is too short to be a real document.
func cleanEditOutput(raw string) (string, bool) {
	out := strings.TrimSpace(raw)

	if strings.HasPrefix(out, "```") {
		lines := strings.Split(out, "\n")
		if len(lines) > 1 {
			end := len(lines)
			if strings.HasPrefix(strings.TrimSpace(lines[end-1]), "```") {
				end--
			}
			out = strings.TrimSpace(strings.Join(lines[1:end], "\n"))
		}
	}

	for _, prefix := range editOutputPrefixes {
		if strings.HasPrefix(strings.ToLower(out), strings.ToLower(prefix)) {
			out = strings.TrimSpace(out[len(prefix):])
		}
	}

	if len([]rune(out)) < 10 {
		return "", false
	}
	return out, true
}
