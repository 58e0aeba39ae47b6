package ai

import (
	"fmt"
	"strings"

	"github.com/BinLe1988/cofounder-match/models"
)

// ContextSnippet 检索到的上下文片段
type ContextSnippet struct {
	Content        string
	Source         string
	SourceType     string
	RelevanceScore float64
}

// Persona 组装系统提示词所需的信息
type Persona struct {
	Profile     *models.Profile
	Connections []models.SocialConnection
	Snippets    []ContextSnippet
}

// BuildSystemPrompt 生成以资料主人身份回答的系统提示词
func BuildSystemPrompt(p Persona) string {
	profile := p.Profile
	location := profile.Location
	if location == "" {
		location = "Not specified"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are an AI assistant representing %s. You should respond as if you are them, based on the following information:\n\n", profile.Name)

	b.WriteString("Profile Information:\n")
	fmt.Fprintf(&b, "- Name: %s\n", profile.Name)
	fmt.Fprintf(&b, "- Bio: %s\n", profile.Bio)
	fmt.Fprintf(&b, "- Skills: %s\n", strings.Join(profile.Skills, ", "))
	fmt.Fprintf(&b, "- Interests: %s\n", strings.Join(profile.Interests, ", "))
	fmt.Fprintf(&b, "- Looking for: %s\n", profile.LookingFor)
	fmt.Fprintf(&b, "- Experience: %s\n", profile.Experience)
	fmt.Fprintf(&b, "- Location: %s\n", location)

	if links := socialLinks(profile); len(links) > 0 {
		b.WriteString("\nLinks:\n")
		for _, l := range links {
			fmt.Fprintf(&b, "- %s\n", l)
		}
	}

	b.WriteString("\nSocial Media Presence:\n")
	for _, conn := range p.Connections {
		fmt.Fprintf(&b, "- %s: %s\n", conn.Platform, conn.ProfileURL)
	}

	b.WriteString("\nRelevant Context from Personal Documents and Social Media:\n")
	for i, s := range p.Snippets {
		fmt.Fprintf(&b, "\n[Source %d: %s (%s) - Relevance: %.2f]\n%s\n", i+1, s.Source, s.SourceType, s.RelevanceScore, s.Content)
	}

	fmt.Fprintf(&b, `
Instructions:
- Respond as %s in first person
- Be helpful, engaging, and authentic
- Use the context from documents and social media to provide detailed, personalized answers
- Reference specific projects, experiences, or achievements when relevant
- If asked about something not in your context, politely say you don't have that information
- Keep responses conversational and friendly (aim for 1-3 paragraphs)
- Don't reveal that you're an AI - respond as if you're the actual person
- When discussing technical topics, use the person's actual experience level and expertise
- Feel free to mention specific companies, projects, or technologies from the context`, profile.Name)

	return b.String()
}

func socialLinks(p *models.Profile) []string {
	var links []string
	for _, l := range []struct{ name, value string }{
		{"Twitter", p.Twitter},
		{"Discord", p.Discord},
		{"LinkedIn", p.LinkedIn},
		{"Portfolio", p.Portfolio},
	} {
		if l.value != "" {
			links = append(links, l.name+": "+l.value)
		}
	}
	return links
}

// BuildMessages 系统提示词加上最近 window 条对话
func BuildMessages(systemPrompt string, history []models.AiChatMessage, window int) []Message {
	history = Tail(history, window)

	messages := make([]Message, 0, len(history)+1)
	messages = append(messages, Message{Role: string(models.RoleSystem), Content: systemPrompt})
	for _, m := range history {
		messages = append(messages, Message{Role: string(m.Role), Content: m.Content})
	}
	return messages
}

// Tail 返回最后 n 条消息
func Tail(history []models.AiChatMessage, n int) []models.AiChatMessage {
	if n > 0 && len(history) > n {
		return history[len(history)-n:]
	}
	return history
}
