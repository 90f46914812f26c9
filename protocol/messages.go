package protocol

// Message type tags.
const (
	TypeTurnStart = "turn.start"
	TypeAnswer    = "answer"

	// v1
	TypeSearchStart = "search.start"
	TypeSearchEnd   = "search.end"
	TypeRankStart   = "rank.start"
	TypeRankEnd     = "rank.end"
	TypeFetchStart  = "fetch.start"
	TypeFetchEnd    = "fetch.end"
	TypeAnswerDelta = "answer-delta"

	// v2
	TypeStepStart       = "step.start"
	TypeStepStatus      = "step.status"
	TypeStepEnd         = "step.end"
	TypeStepFetchStart  = "step.fetch.start"
	TypeStepFetchEnd    = "step.fetch.end"
	TypeStepAnswerStart = "step.answer.start"
	TypeStepAnswerDelta = "step.answer.delta"
	TypeStepAnswerEnd   = "step.answer.end"
)

// TurnStart opens a turn and carries the server-issued conversation id.
type TurnStart struct {
	ConversationID string `json:"conversation_id"`
}

// Answer is the final consolidated answer of a turn.
type Answer struct {
	Answer    string `json:"answer"`
	Citations []Page `json:"citations,omitempty"`
}

type SearchStart struct {
	Query string `json:"query"`
}

type SearchEnd struct {
	Query   string `json:"query"`
	Results int    `json:"results"`
}

type RankStart struct{}

type RankEnd struct {
	Pages []Page `json:"pages"`
}

type FetchStart struct {
	Pages []Page `json:"pages"`
}

type FetchEnd struct {
	Pages []Page `json:"pages,omitempty"`
}

// AnswerDelta is a partial answer fragment.
type AnswerDelta struct {
	Delta string `json:"delta"`
}

type StepStart struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type StepStatus struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type StepEnd struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type StepFetchStart struct {
	Title string `json:"title"`
	Pages []Page `json:"pages"`
}

type StepFetchEnd struct {
	Title string `json:"title"`
	Pages []Page `json:"pages"`
}

type StepAnswerStart struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type StepAnswerDelta struct {
	Title string `json:"title"`
	Delta string `json:"delta"`
}

type StepAnswerEnd struct {
	Title string `json:"title"`
}

func (TurnStart) Type() string       { return TypeTurnStart }
func (Answer) Type() string          { return TypeAnswer }
func (SearchStart) Type() string     { return TypeSearchStart }
func (SearchEnd) Type() string       { return TypeSearchEnd }
func (RankStart) Type() string       { return TypeRankStart }
func (RankEnd) Type() string         { return TypeRankEnd }
func (FetchStart) Type() string      { return TypeFetchStart }
func (FetchEnd) Type() string        { return TypeFetchEnd }
func (AnswerDelta) Type() string     { return TypeAnswerDelta }
func (StepStart) Type() string       { return TypeStepStart }
func (StepStatus) Type() string      { return TypeStepStatus }
func (StepEnd) Type() string         { return TypeStepEnd }
func (StepFetchStart) Type() string  { return TypeStepFetchStart }
func (StepFetchEnd) Type() string    { return TypeStepFetchEnd }
func (StepAnswerStart) Type() string { return TypeStepAnswerStart }
func (StepAnswerDelta) Type() string { return TypeStepAnswerDelta }
func (StepAnswerEnd) Type() string   { return TypeStepAnswerEnd }

func (TurnStart) isMessage()       {}
func (Answer) isMessage()          {}
func (SearchStart) isMessage()     {}
func (SearchEnd) isMessage()       {}
func (RankStart) isMessage()       {}
func (RankEnd) isMessage()         {}
func (FetchStart) isMessage()      {}
func (FetchEnd) isMessage()        {}
func (AnswerDelta) isMessage()     {}
func (StepStart) isMessage()       {}
func (StepStatus) isMessage()      {}
func (StepEnd) isMessage()         {}
func (StepFetchStart) isMessage()  {}
func (StepFetchEnd) isMessage()    {}
func (StepAnswerStart) isMessage() {}
func (StepAnswerDelta) isMessage() {}
func (StepAnswerEnd) isMessage()   {}
