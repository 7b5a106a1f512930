package protocol

const (
	// CompletionReferenceTypePrompt identifies a prompt.
	CompletionReferenceTypePrompt CompletionReferenceType = "ref/prompt"
	// CompletionReferenceTypeResource identifies a resource or resource template.
	CompletionReferenceTypeResource CompletionReferenceType = "ref/resource"
)

// CompleteRequestParams asks the server for completion options of an argument.
type CompleteRequestParams struct {
	Ref      Reference          `json:"ref"`
	Argument CompletionArgument `json:"argument"`
}

// Reference points at the prompt or resource template being completed.
type Reference struct {
	Type CompletionReferenceType `json:"type"`
	// Name is set for prompts.
	Name string `json:"name,omitzero"`
	// URI is set for resources and resource templates.
	URI string `json:"uri,omitzero"`
}

// CompletionReferenceType represents the type of a completion reference.
type CompletionReferenceType string

// CompletionArgument is the argument being completed.
type CompletionArgument struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}
