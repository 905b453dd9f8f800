package botModel

import "time"

type ActivityType string

const (
	ActivityTypeMessage            ActivityType = "message"
	ActivityTypeConversationUpdate ActivityType = "conversationUpdate"
	ActivityTypeTrace              ActivityType = "trace"
	ActivityTypeTyping             ActivityType = "typing"

	TextFormatPlain = "plain"
)

// Activity is the subset of the Bot Framework activity schema the bot reads and writes.
type Activity struct {
	Type         ActivityType        `json:"type"`
	Id           string              `json:"id,omitempty"`
	Timestamp    *time.Time          `json:"timestamp,omitempty"`
	ServiceUrl   string              `json:"serviceUrl,omitempty"`
	ChannelId    string              `json:"channelId,omitempty"`
	From         ChannelAccount      `json:"from"`
	Conversation ConversationAccount `json:"conversation"`
	Recipient    ChannelAccount      `json:"recipient"`
	Text         string              `json:"text,omitempty"`
	Speak        string              `json:"speak,omitempty"`
	TextFormat   string              `json:"textFormat,omitempty"`
	Locale       string              `json:"locale,omitempty"`
	Attachments  []Attachment        `json:"attachments,omitempty"`
	MembersAdded []ChannelAccount    `json:"membersAdded,omitempty"`
	ReplyToId    string              `json:"replyToId,omitempty"`
	Name         string              `json:"name,omitempty"`
	Label        string              `json:"label,omitempty"`
	ValueType    string              `json:"valueType,omitempty"`
	Value        any                 `json:"value,omitempty"`
	ChannelData  map[string]any      `json:"channelData,omitempty"`
}

type ChannelAccount struct {
	Id   string `json:"id"`
	Name string `json:"name,omitempty"`
	Role string `json:"role,omitempty"`
}

type ConversationAccount struct {
	Id       string `json:"id"`
	Name     string `json:"name,omitempty"`
	IsGroup  bool   `json:"isGroup,omitempty"`
	TenantId string `json:"tenantId,omitempty"`
}

type Attachment struct {
	ContentType string `json:"contentType"`
	ContentUrl  string `json:"contentUrl,omitempty"`
	Name        string `json:"name,omitempty"`
}

func (a Activity) HasAttachments() bool {
	return len(a.Attachments) > 0
}

// Reply builds an outbound message addressed back to the sender of a.
func (a Activity) Reply(text string) Activity {
	return Activity{
		Type:         ActivityTypeMessage,
		ServiceUrl:   a.ServiceUrl,
		ChannelId:    a.ChannelId,
		From:         a.Recipient,
		Recipient:    a.From,
		Conversation: a.Conversation,
		ReplyToId:    a.Id,
		Text:         text,
		TextFormat:   TextFormatPlain,
		Locale:       a.Locale,
	}
}
