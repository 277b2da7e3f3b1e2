package responses

import (
	"encoding/json"

	openai "github.com/openai/openai-go"
	oresponses "github.com/openai/openai-go/responses"
	oshared "github.com/openai/openai-go/shared"
)

// newParams translates the domain request into SDK call parameters.
func (r Request) newParams() oresponses.ResponseNewParams {
	params := oresponses.ResponseNewParams{
		Model: oshared.ResponsesModel(r.Model),
		Input: oresponses.ResponseNewParamsInputUnion{OfInputItemList: toInputItems(r.Input)},
		Tools: toToolParams(r.Tools),
	}
	if r.PreviousResponseID != "" {
		params.PreviousResponseID = openai.String(r.PreviousResponseID)
	}
	if r.Truncation == "auto" {
		params.Truncation = oresponses.ResponseNewParamsTruncationAuto
	}
	if r.Reasoning != nil {
		params.Reasoning = oshared.ReasoningParam{
			GenerateSummary: oshared.ReasoningGenerateSummary(r.Reasoning.GenerateSummary),
		}
	}
	return params
}

func toInputItems(items []InputItem) oresponses.ResponseInputParam {
	out := make(oresponses.ResponseInputParam, 0, len(items))
	for _, it := range items {
		switch it.Type {
		case "computer_call_output":
			img, _ := it.Output.(ImageOutput)
			out = append(out, oresponses.ResponseInputItemUnionParam{
				OfComputerCallOutput: &oresponses.ResponseInputItemComputerCallOutputParam{
					CallID: it.CallID,
					Output: oresponses.ResponseComputerToolCallOutputScreenshotParam{
						ImageURL: openai.String(img.ImageURL),
					},
					AcknowledgedSafetyChecks: toAckedChecks(it.AcknowledgedSafetyChecks),
				},
			})
		case "function_call_output":
			text, _ := it.Output.(string)
			out = append(out, oresponses.ResponseInputItemParamOfFunctionCallOutput(it.CallID, text))
		default: // user message
			out = append(out, oresponses.ResponseInputItemParamOfMessage(it.Content, oresponses.EasyInputMessageRoleUser))
		}
	}
	return out
}

func toAckedChecks(checks []SafetyCheck) []oresponses.ResponseInputItemComputerCallOutputAcknowledgedSafetyCheckParam {
	if len(checks) == 0 {
		return nil
	}
	out := make([]oresponses.ResponseInputItemComputerCallOutputAcknowledgedSafetyCheckParam, 0, len(checks))
	for _, c := range checks {
		out = append(out, oresponses.ResponseInputItemComputerCallOutputAcknowledgedSafetyCheckParam{
			ID:      c.ID,
			Code:    openai.String(c.Code),
			Message: openai.String(c.Message),
		})
	}
	return out
}

func toToolParams(tools []Tool) []oresponses.ToolUnionParam {
	if len(tools) == 0 {
		return nil
	}
	out := make([]oresponses.ToolUnionParam, 0, len(tools))
	for _, t := range tools {
		if t.Type == "computer_use_preview" {
			out = append(out, oresponses.ToolUnionParam{
				OfComputerUsePreview: &oresponses.ComputerToolParam{
					DisplayWidth:  int64(t.DisplayWidth),
					DisplayHeight: int64(t.DisplayHeight),
					Environment:   oresponses.ComputerToolEnvironment(t.Environment),
				},
			})
			continue
		}
		out = append(out, oresponses.ToolParamOfFunction(t.Name, schemaMap(t.Parameters), false))
	}
	return out
}

// schemaMap flattens a reflected JSON schema into the plain map the SDK's
// function-tool parameter expects.
func schemaMap(schema any) map[string]any {
	if schema == nil {
		return map[string]any{}
	}
	b, err := json.Marshal(schema)
	if err != nil {
		return map[string]any{}
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return map[string]any{}
	}
	return m
}

// fromSDK projects an SDK response onto the domain model the agent consumes.
func fromSDK(resp *oresponses.Response) *Response {
	out := &Response{
		ID:     resp.ID,
		Model:  string(resp.Model),
		Status: string(resp.Status),
	}
	for _, item := range resp.Output {
		switch item.Type {
		case ItemMessage:
			oi := OutputItem{Type: ItemMessage, ID: item.ID, Role: string(item.Role)}
			for _, part := range item.Content {
				if part.Type != "output_text" {
					continue
				}
				oi.Content = append(oi.Content, ContentPart{Type: part.Type, Text: part.Text})
			}
			out.Output = append(out.Output, oi)

		case ItemComputerCall:
			out.Output = append(out.Output, OutputItem{
				Type:                ItemComputerCall,
				ID:                  item.ID,
				CallID:              item.CallID,
				Action:              fromSDKAction(item.Action),
				PendingSafetyChecks: fromSDKChecks(item.PendingSafetyChecks),
				Status:              string(item.Status),
			})

		case ItemFunctionCall:
			out.Output = append(out.Output, OutputItem{
				Type:      ItemFunctionCall,
				ID:        item.ID,
				CallID:    item.CallID,
				Name:      item.Name,
				Arguments: item.Arguments,
			})

		default:
			// Reasoning and any newer item kinds carry through tagged so the
			// interpreter can ignore or log them.
			out.Output = append(out.Output, OutputItem{Type: item.Type, ID: item.ID})
		}
	}
	return out
}

func fromSDKAction(a oresponses.ResponseOutputItemUnionAction) Action {
	return Action{
		Type:    string(a.Type),
		X:       int(a.X),
		Y:       int(a.Y),
		Button:  string(a.Button),
		ScrollX: int(a.ScrollX),
		ScrollY: int(a.ScrollY),
		Keys:    a.Keys,
		Text:    a.Text,
	}
}

func fromSDKChecks(checks []oresponses.ResponseComputerToolCallPendingSafetyCheck) []SafetyCheck {
	if len(checks) == 0 {
		return nil
	}
	out := make([]SafetyCheck, 0, len(checks))
	for _, c := range checks {
		out = append(out, SafetyCheck{ID: c.ID, Code: c.Code, Message: c.Message})
	}
	return out
}
