package models

import "time"

// DateLayout is the layout used for the date stated in the evaluation prompt.
const DateLayout = "2006-01-02"

// EvaluationContext bundles everything needed to build the evaluation prompt.
// It's created once per run and never modified afterwards, so all fields are
// only reachable through accessors.
type EvaluationContext struct {
	schema       string
	systemPrompt string
	userPrompt   string
	toolRequest  string
	modelName    string
	currentDate  time.Time
}

// EvaluationInputs are the four texts read from disk for a run.
type EvaluationInputs struct {
	Schema       string
	SystemPrompt string
	UserPrompt   string
	ToolRequest  string
}

// NewEvaluationContext captures the inputs, the model name, and the current
// date (truncated to UTC).
func NewEvaluationContext(in EvaluationInputs, modelName string, now time.Time) *EvaluationContext {
	return &EvaluationContext{
		schema:       in.Schema,
		systemPrompt: in.SystemPrompt,
		userPrompt:   in.UserPrompt,
		toolRequest:  in.ToolRequest,
		modelName:    modelName,
		currentDate:  now.UTC(),
	}
}

func (ec *EvaluationContext) Schema() string       { return ec.schema }
func (ec *EvaluationContext) SystemPrompt() string { return ec.systemPrompt }
func (ec *EvaluationContext) UserPrompt() string   { return ec.userPrompt }
func (ec *EvaluationContext) ToolRequest() string  { return ec.toolRequest }
func (ec *EvaluationContext) ModelName() string    { return ec.modelName }
func (ec *EvaluationContext) CurrentDate() time.Time {
	return ec.currentDate
}

// Date returns the current date formatted with [DateLayout].
func (ec *EvaluationContext) Date() string {
	return ec.currentDate.Format(DateLayout)
}
