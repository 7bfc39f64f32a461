package models

// MCP protocol types
type MCPRequest struct {
	ID      interface{} `json:"id"`
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

type MCPResponse struct {
	ID      interface{} `json:"id"`
	JSONRPC string      `json:"jsonrpc"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Tool call parameters
type ToolCallParams struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
}

// Tool response content
type ToolContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type ToolResponse struct {
	Content []ToolContent `json:"content"`
}

// Input schemas for tools
type AnalyzeTextsInput struct {
	Texts []string `json:"texts"`
}

type ConflictsInYearInput struct {
	Year string `json:"year"`
}

type RelationEvolutionInput struct {
	Entity1 string `json:"entity1"`
	Entity2 string `json:"entity2"`
}
