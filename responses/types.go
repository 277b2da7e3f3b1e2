package responses

// DefaultModel is the computer-use model the driver targets.
const DefaultModel = "computer-use-preview"

// Action types proposed by the model inside a computer_call item.
const (
	ActionClick      = "click"
	ActionScroll     = "scroll"
	ActionKeypress   = "keypress"
	ActionType       = "type"
	ActionWait       = "wait"
	ActionScreenshot = "screenshot"
)

// Output item types that can appear in a response.
const (
	ItemMessage      = "message"
	ItemComputerCall = "computer_call"
	ItemFunctionCall = "function_call"
	ItemReasoning    = "reasoning"
)

// Action is the model-proposed environment action carried by a computer_call.
// It is a tagged union over Type; only the fields relevant to the tag are set.
// Unrecognized tags are preserved as-is so callers can log them.
type Action struct {
	Type    string
	X       int
	Y       int
	Button  string
	ScrollX int
	ScrollY int
	Keys    []string
	Text    string
}

// SafetyCheck is a model-attached flag that must be acknowledged by a human
// before the associated call may execute. All three fields are echoed back
// verbatim on acknowledgment.
type SafetyCheck struct {
	ID      string
	Code    string
	Message string
}

// ContentPart is one piece of a message item's content.
type ContentPart struct {
	Type string
	Text string
}

// OutputItem is one item in a response's output list. Like Action it is a
// tagged union over Type: message items carry Role/Content, computer_call
// items carry CallID/Action/PendingSafetyChecks, function_call items carry
// CallID/Name/Arguments.
type OutputItem struct {
	Type    string
	ID      string
	Role    string
	Content []ContentPart

	CallID              string
	Action              Action
	PendingSafetyChecks []SafetyCheck
	Status              string

	Name      string
	Arguments string
}

// Text joins the output_text parts of a message item.
func (it OutputItem) Text() string {
	var out string
	for _, p := range it.Content {
		if p.Text == "" {
			continue
		}
		if out != "" {
			out += "\n"
		}
		out += p.Text
	}
	return out
}

// Response is one turn from the model service. Its ID chains continuations.
type Response struct {
	ID     string
	Model  string
	Status string
	Output []OutputItem
}

// Messages returns the message items, in original order.
func (r *Response) Messages() []OutputItem {
	var out []OutputItem
	for _, it := range r.Output {
		if it.Type == ItemMessage {
			out = append(out, it)
		}
	}
	return out
}

// ComputerCalls returns the computer_call items, in original order.
func (r *Response) ComputerCalls() []OutputItem {
	var out []OutputItem
	for _, it := range r.Output {
		if it.Type == ItemComputerCall {
			out = append(out, it)
		}
	}
	return out
}

// FunctionCalls returns the function_call items, in original order.
func (r *Response) FunctionCalls() []OutputItem {
	var out []OutputItem
	for _, it := range r.Output {
		if it.Type == ItemFunctionCall {
			out = append(out, it)
		}
	}
	return out
}

// SafetyChecks returns every pending safety check across all items, in
// original order.
func (r *Response) SafetyChecks() []SafetyCheck {
	var out []SafetyCheck
	for _, it := range r.Output {
		out = append(out, it.PendingSafetyChecks...)
	}
	return out
}

// Text joins the assistant-visible text of all message items.
func (r *Response) Text() string {
	var out string
	for _, m := range r.Messages() {
		t := m.Text()
		if t == "" {
			continue
		}
		if out != "" {
			out += "\n"
		}
		out += t
	}
	return out
}

// Tool declares a tool surface in a request: the computer_use_preview tool or
// a function tool.
type Tool struct {
	Type string

	// computer_use_preview
	DisplayWidth  int
	DisplayHeight int
	Environment   string

	// function
	Name        string
	Description string
	Parameters  any
}

// ImageOutput is the screenshot payload of a computer_call_output.
type ImageOutput struct {
	ImageURL string
}

// InputItem is one item of a request's input list: a user message, a
// computer_call_output, or a function_call_output.
type InputItem struct {
	// message
	Role    string
	Content string

	// call outputs
	Type                     string
	CallID                   string
	Output                   any
	AcknowledgedSafetyChecks []SafetyCheck
}

// Reasoning requests a reasoning summary on the first turn of a conversation.
type Reasoning struct {
	GenerateSummary string
}

// Request is one create-or-continue call to the model service. On the first
// turn PreviousResponseID is empty; on every later turn it carries the prior
// response's identity.
type Request struct {
	Model              string
	PreviousResponseID string
	Tools              []Tool
	Input              []InputItem
	Truncation         string
	Reasoning          *Reasoning
}

// UserMessage builds a user message input item.
func UserMessage(text string) InputItem {
	return InputItem{Role: "user", Content: text}
}

// ComputerCallOutput builds the continuation item for an executed computer
// call: the post-action screenshot plus, when the call was gated, the
// acknowledged safety checks echoed verbatim.
func ComputerCallOutput(callID, screenshotB64 string, acked []SafetyCheck) InputItem {
	return InputItem{
		Type:                     "computer_call_output",
		CallID:                   callID,
		Output:                   ImageOutput{ImageURL: "data:image/png;base64," + screenshotB64},
		AcknowledgedSafetyChecks: acked,
	}
}

// FunctionCallOutput builds the continuation item for an executed function
// tool call.
func FunctionCallOutput(callID, output string) InputItem {
	return InputItem{
		Type:   "function_call_output",
		CallID: callID,
		Output: output,
	}
}

// ComputerUseTool builds the computer_use_preview tool declaration for the
// given display geometry and environment kind (e.g. "linux").
func ComputerUseTool(width, height int, environment string) Tool {
	return Tool{
		Type:          "computer_use_preview",
		DisplayWidth:  width,
		DisplayHeight: height,
		Environment:   environment,
	}
}
