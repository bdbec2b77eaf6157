package ui

// ChatMessage is one line of the side panel: a chat line or an arena notice
type ChatMessage struct {
	Sender  string // empty for notices
	Content string
	IsOwn   bool
}

const chatHistory = 50

// ChatPanel keeps the most recent lines
type ChatPanel struct {
	messages []ChatMessage
}

// NewChatPanel creates a new chat panel
func NewChatPanel() *ChatPanel {
	return &ChatPanel{}
}

// AddMessage adds a chat line
func (c *ChatPanel) AddMessage(sender, content string, isOwn bool) {
	c.add(ChatMessage{Sender: sender, Content: content, IsOwn: isOwn})
}

// AddNotice adds an arena notice
func (c *ChatPanel) AddNotice(content string) {
	c.add(ChatMessage{Content: content})
}

func (c *ChatPanel) add(msg ChatMessage) {
	c.messages = append(c.messages, msg)
	if len(c.messages) > chatHistory {
		c.messages = c.messages[len(c.messages)-chatHistory:]
	}
}

// Last returns up to n of the newest lines, oldest first
func (c *ChatPanel) Last(n int) []ChatMessage {
	if n <= 0 {
		return nil
	}
	if len(c.messages) <= n {
		return c.messages
	}
	return c.messages[len(c.messages)-n:]
}
