package responses_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quarrylabs/deskdriver/responses"
)

func TestResponseText_JoinsMessageParts(t *testing.T) {
	resp := &responses.Response{Output: []responses.OutputItem{
		{Type: responses.ItemReasoning},
		{Type: responses.ItemMessage, Content: []responses.ContentPart{
			{Type: "output_text", Text: "first"},
			{Type: "output_text", Text: ""},
			{Type: "output_text", Text: "second"},
		}},
		{Type: responses.ItemMessage, Content: []responses.ContentPart{
			{Type: "output_text", Text: "third"},
		}},
	}}

	assert.Equal(t, "first\nsecond\nthird", resp.Text())
}

func TestResponseProjections_PreserveOrder(t *testing.T) {
	resp := &responses.Response{Output: []responses.OutputItem{
		{Type: responses.ItemComputerCall, CallID: "a"},
		{Type: responses.ItemMessage},
		{Type: responses.ItemComputerCall, CallID: "b"},
		{Type: responses.ItemFunctionCall, CallID: "f"},
	}}

	calls := resp.ComputerCalls()
	assert.Len(t, calls, 2)
	assert.Equal(t, "a", calls[0].CallID)
	assert.Equal(t, "b", calls[1].CallID)
	assert.Len(t, resp.Messages(), 1)
	assert.Len(t, resp.FunctionCalls(), 1)
}
