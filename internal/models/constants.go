package models

const (
	// InsufficientContextAnswer is returned when retrieval finds nothing to ground an answer on
	InsufficientContextAnswer = "I don't have enough information to answer that question. Please update the knowledge base."

	// MinDocumentTextLen is the minimum extracted length below which a scraped page or PDF is rejected
	MinDocumentTextLen = 100

	// MinSnippetLen filters boilerplate fragments out of scraped pages
	MinSnippetLen = 20
)

var (
	SystemPrompt = `You are CodeLens, an expert AI assistant for developers.
Your role is to answer questions about developer documentation and frameworks accurately.

Instructions:
- Use ONLY the provided context to answer questions
- If the context doesn't contain the answer, say so honestly
- Be concise but comprehensive
- Use code examples when relevant
- Cite sources when possible using [Source N] notation
- Format your answers with proper markdown when appropriate`

	UserPromptTemplate = `Context from documentation:
%s

Question: %s

Answer:`
)
