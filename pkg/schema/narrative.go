package schema

const (
	FormatDialogue = "dialogue"
	FormatChat     = "chat"
)

// DialogueNarrative is the skill-system shape: internal voices rated 1..6
// trading lines about the regimen, closed by the user's own summary.
type DialogueNarrative struct {
	Skills   []Skill        `json:"skills" jsonschema_description:"Internal voices present in the dialogue, 4-6 entries"`
	Dialogue []DialogueLine `json:"dialogue" jsonschema_description:"Exchanges between the declared skills, 5-8 entries"`
	Summary  string         `json:"summary" jsonschema_description:"Final 2-3 sentence assessment in the user's own voice"`
}

type Skill struct {
	Name  string `json:"name" jsonschema_description:"Display name of the internal voice"`
	Level int    `json:"level" jsonschema:"minimum=1,maximum=6" jsonschema_description:"Strength of this voice from 1 to 6"`
	Color string `json:"color" jsonschema_description:"Hex color used to render this voice"`
}

type DialogueLine struct {
	Speaker string `json:"speaker" jsonschema_description:"Name of a declared skill speaking this line"`
	Text    string `json:"text" jsonschema_description:"One complete spoken thought"`
	Color   string `json:"color" jsonschema_description:"Hex color matching the speaker's skill"`
}

// ChatNarrative is the group-chat shape: characters as chat participants
// exchanging timestamped messages.
type ChatNarrative struct {
	Participants []Participant `json:"participants" jsonschema_description:"Chat members, one per character"`
	Messages     []ChatMessage `json:"messages" jsonschema_description:"Chronological chat messages"`
}

type Participant struct {
	ID    string `json:"id" jsonschema_description:"Stable lowercase identifier referenced by messages"`
	Name  string `json:"name" jsonschema_description:"Display name of the participant"`
	Color string `json:"color" jsonschema_description:"Hex color used to render this participant"`
	Emoji string `json:"emoji" jsonschema_description:"Single emoji avatar"`
}

type ChatMessage struct {
	Time      string   `json:"time" jsonschema_description:"Clock time of the message, e.g. 08:15"`
	SenderID  string   `json:"senderId" jsonschema_description:"ID of a declared participant"`
	Text      string   `json:"text" jsonschema_description:"Message body"`
	Reactions []string `json:"reactions,omitempty" jsonschema_description:"Optional emoji reactions"`
}
