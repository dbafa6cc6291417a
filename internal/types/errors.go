package types

import "errors"

// Sentinel errors for weavereplace operations.
//
// The first six describe conditions the core recovers from locally; they are
// never returned by Extract, Resolve or Matches and only appear in logs.
var (
	// ErrMalformedJSON indicates a json-typed field holds a string that does not parse.
	// Recovered by substituting an empty structure.
	ErrMalformedJSON = errors.New("malformed json field")

	// ErrUnknownFunction indicates a function placeholder names no registered function.
	// Recovered by passing the argument value through unchanged.
	ErrUnknownFunction = errors.New("unknown function")

	// ErrMalformedCondition indicates a rule condition without a string column key or operator.
	// Recovered by skipping the condition.
	ErrMalformedCondition = errors.New("malformed rule condition")

	// ErrTemplateNonTermination indicates function rewriting hit the pass limit.
	// Recovered by returning the partially rewritten template.
	ErrTemplateNonTermination = errors.New("template rewriting did not terminate")

	// ErrCallLimit indicates nested function dispatch exceeded its depth or call budget.
	// Recovered by passing the value through unchanged.
	ErrCallLimit = errors.New("function dispatch limit reached")

	// ErrFunctionPanic indicates a registered function panicked.
	// Recovered by passing the value through unchanged.
	ErrFunctionPanic = errors.New("function panicked")

	// ErrInvalidDelimiters indicates placeholder markers that are empty or ambiguous.
	ErrInvalidDelimiters = errors.New("invalid placeholder delimiters")

	// ErrNotFound indicates a stored schema, rule set, template or record does not exist.
	ErrNotFound = errors.New("not found")
)
