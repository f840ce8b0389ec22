package chat

import (
	"context"
	"fmt"
	"strings"

	"writeflow/internal/llmclient"
)

// modificationKeywords mark a message as a content edit request rather than a
// question. Matching is case-insensitive substring search.
var modificationKeywords = []string{
	"make it", "change", "rewrite", "modify", "adjust", "improve", "enhance",
	"more professional", "more casual", "shorter", "longer", "simplify",
	"add more", "remove", "tone", "style", "formal", "informal",
}

// Intent classifies what the user wants from a chat turn.
type Intent int

const (
	IntentQuestion Intent = iota
	IntentModification
)

// Classify returns IntentModification when the message contains any edit
// keyword. Modification wins over question when both readings are possible.
func Classify(userMessage string) Intent {
	lower := strings.ToLower(userMessage)
	for _, kw := range modificationKeywords {
		if strings.Contains(lower, kw) {
			return IntentModification
		}
	}
	return IntentQuestion
}

// Turn is one prior exchange in the conversation.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request carries one chat turn against a finished document.
type Request struct {
	Content      string `json:"content"`
	UserMessage  string `json:"userMessage"`
	ProjectTitle string `json:"projectTitle"`
	ContentType  string `json:"contentType"`
	History      []Turn `json:"conversationHistory"`
}

// Reply is the assistant's answer. UpdatedContent is set only for
// modification turns, in which case Response is a fixed acknowledgement.
type Reply struct {
	Response       string
	UpdatedContent string
	HasUpdate      bool
}

const modificationAck = "I've updated your content based on your feedback. The changes have been applied to maintain the quality while addressing your specific requests."

const editorSystemPrompt = `You are an expert content editor. Your task is to modify the provided content based on user feedback while maintaining the core message and structure.

Guidelines:
1. Carefully analyze the user's feedback to understand what changes they want
2. Make targeted modifications while preserving the essential information
3. Maintain consistent quality and professional standards
4. If asked to change tone, adjust the language style appropriately
5. If asked to change length, add or remove content strategically
6. Ensure the modified content remains coherent and well-structured
7. Return the complete revised content, not just the changes

Always provide the full updated content after making the requested modifications.`

// Assistant answers questions about generated content and applies requested
// edits to it.
type Assistant struct {
	LLM llmclient.Client
}

func (a *Assistant) messages(req Request) []llmclient.Message {
	if Classify(req.UserMessage) == IntentModification {
		user := fmt.Sprintf(`Please modify this %s titled "%s" based on the user's feedback.

Current Content:
%s

User Feedback: %s

Please provide the complete updated content incorporating the requested changes.`,
			req.ContentType, req.ProjectTitle, req.Content, req.UserMessage)
		return []llmclient.Message{
			{Role: llmclient.RoleSystem, Content: editorSystemPrompt},
			{Role: llmclient.RoleUser, Content: user},
		}
	}

	var history strings.Builder
	for _, turn := range req.History {
		fmt.Fprintf(&history, "%s: %s\n", turn.Role, turn.Content)
	}

	system := fmt.Sprintf(`You are a professional content writing assistant helping users refine their %s. You provide helpful advice, answer questions about the content, and suggest improvements.

Guidelines:
1. Be helpful and constructive in your responses
2. Provide specific actionable advice when possible
3. Ask clarifying questions if the user's request is unclear
4. Suggest concrete improvements for content quality
5. Be encouraging and supportive
6. Reference the content when relevant to your response

You are currently helping with a %s titled "%s".`,
		req.ContentType, req.ContentType, req.ProjectTitle)

	user := fmt.Sprintf(`Here's the current content:

%s

Conversation so far:
%s
User's latest message: %s

Please provide a helpful response.`,
		req.Content, history.String(), req.UserMessage)

	return []llmclient.Message{
		{Role: llmclient.RoleSystem, Content: system},
		{Role: llmclient.RoleUser, Content: user},
	}
}

// Respond handles one buffered chat turn.
func (a *Assistant) Respond(ctx context.Context, req Request) (Reply, error) {
	out, err := a.LLM.Complete(ctx, a.messages(req), nil)
	if err != nil {
		return Reply{}, err
	}
	if Classify(req.UserMessage) == IntentModification {
		return Reply{Response: modificationAck, UpdatedContent: out, HasUpdate: true}, nil
	}
	return Reply{Response: out}, nil
}

// RespondStream handles one chat turn as a delta stream. The caller owns the
// stream and must Close it.
func (a *Assistant) RespondStream(ctx context.Context, req Request) (*llmclient.Stream, error) {
	return a.LLM.CompleteStream(ctx, a.messages(req))
}
