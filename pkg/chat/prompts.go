package chat

import "fmt"

const newPTKBSystemPrompt = `You are an expert assistant specialized in identifying personal facts (PTKB) from a user's conversation.
Your task is to analyze the 'Current User Utterance' in the context of the 'Conversation History' and the 'Current PTKB'.
- If the utterance reveals a new personal fact, preference, or condition not already present in the 'Current PTKB', state that fact concisely.
- The fact should be a complete, self-contained statement from the user's perspective (e.g., "I like spicy food.").
- If no new personal information is revealed, you MUST respond with "nope" (i.e., 'ptkb: nope').
- Your entire response must follow the format: 'ptkb: <your answer>'`

const relevanceSystemPrompt = `You are a highly discerning assistant. Your task is to select personal facts (PTKB) that are critically relevant to the user's current utterance.
From the provided list of facts ('Current PTKB'), identify ALL statements that are directly relevant to the 'Current User Utterance' or would be helpful for generating a personalized response to it.
- A fact is only relevant if it provides essential context for answering the user's question.
- Do not select general preferences that are only tangentially related.

Your response MUST strictly follow this format:
ptkb:
<relevant fact 1>
<relevant fact 2>

If no facts are relevant, the format is:
ptkb:
nope`

const responseSystemPrompt = `You are a helpful and knowledgeable assistant.
Your task is to provide an accurate, complete, and personalized response to the user's utterance.
- Cover all key aspects of the user's question to ensure completeness.
- Avoid irrelevant content or generic filler language.
- Consider the 'Conversation History' to understand the context and maintain a natural, conversational flow.
- Use the 'User's Personal Facts (PTKB)' to tailor your response to their needs.

Your entire response must follow the format: 'response: <your answer>'`

func formatNewPTKBPrompt(context, utterance, ptkbList string) string {
	return fmt.Sprintf("**Conversation History:**\n%s\n\n**Current User Utterance:**\n%s\n\n**Current PTKB:**\n%s\n\n"+
		"Based on the instructions, does the 'Current User Utterance' contain any new personal information that is not already in the 'Current PTKB'?",
		context, utterance, ptkbList)
}

func formatRelevancePrompt(context, utterance, ptkbList string) string {
	return fmt.Sprintf("**Conversation History:**\n%s\n\n**Current User Utterance:**\n%s\n\n**Current PTKB:**\n%s\n\n"+
		"Based on the instructions, which statements from the 'Current PTKB' list are relevant to the 'Current User Utterance'?",
		context, utterance, ptkbList)
}

func formatResponsePrompt(context, utterance, ptkbList string) string {
	return fmt.Sprintf("**Conversation History:**\n%s\n\n**Current User Utterance:**\n%s\n\n**User's Personal Facts (PTKB):**\n%s\n\n"+
		"Based on the conversation history and personal facts, generate a clear and helpful response that directly answers the user's utterance without any filler.",
		context, utterance, ptkbList)
}
