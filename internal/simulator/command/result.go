package command

// Kind is the semantic category of a classified command.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindWarning Kind = "warning"
	KindHelp    Kind = "help"
)

// Label returns the display label for the kind.
func (k Kind) Label() string {
	switch k {
	case KindSuccess:
		return "Success"
	case KindError:
		return "Error"
	case KindWarning:
		return "Warning"
	case KindHelp:
		return "Help"
	default:
		return ""
	}
}

// Link is an outbound reference rendered with a result.
type Link struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

// Result is one classified command. Results are values: callers must not
// mutate them after Classify returns.
type Result struct {
	Kind     Kind   `json:"kind"`
	Headline string `json:"headline"`
	Detail   string `json:"detail"`
	Link     *Link  `json:"link,omitempty"`
}

// Message returns the headline and detail as shown in the output area.
func (r Result) Message() string {
	if r.Detail == "" {
		return r.Headline
	}
	if r.Headline == "" {
		return r.Detail
	}
	return r.Headline + " " + r.Detail
}
