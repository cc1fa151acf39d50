package dispatch

// Response is the provider-agnostic result of a successful dispatch.
// It is the only shape orchestration code is allowed to depend on.
type Response struct {
	ID      string
	Model   string
	Content string
	Usage   Usage
}

// Usage holds normalized token counters. Providers report these under
// different field names; each adapter maps its wire format here.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
