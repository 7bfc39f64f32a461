package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"history-graph/internal/graph"
	"history-graph/internal/knowledge"
	"history-graph/internal/logger"
	"history-graph/internal/models"
	"history-graph/internal/source"
)

const (
	ProtocolVersion = "2025-03-26"
	ServerName      = "history-graph"
)

// JSON-RPC error codes
const (
	codeParseError     = -32700
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternalError  = -32603
)

type MCPHandler struct {
	manager *knowledge.Manager
	source  source.Source
	version string
}

// NewMCPHandler serves tools over manager. src backs the rebuild tool and
// may be nil.
func NewMCPHandler(manager *knowledge.Manager, src source.Source, version string) *MCPHandler {
	return &MCPHandler{manager: manager, source: src, version: version}
}

func (h *MCPHandler) HandleMCPRequest(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.sendError(w, nil, codeParseError, "Parse error")
		return
	}

	logger.Debug("Received MCP request", "body", string(body))

	var request models.MCPRequest
	if err := json.Unmarshal(body, &request); err != nil {
		h.sendError(w, nil, codeParseError, "Parse error")
		return
	}

	switch request.Method {
	case "initialize":
		h.handleInitialize(w, &request)
	case "tools/list":
		h.handleToolsList(w, &request)
	case "tools/call":
		h.handleToolsCall(r.Context(), w, &request)
	default:
		h.sendError(w, request.ID, codeMethodNotFound, "Method not found")
	}
}

func (h *MCPHandler) handleInitialize(w http.ResponseWriter, request *models.MCPRequest) {
	response := models.MCPResponse{
		ID:      request.ID,
		JSONRPC: "2.0",
		Result: map[string]interface{}{
			"protocolVersion": ProtocolVersion,
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    ServerName,
				"version": h.version,
			},
		},
	}
	h.sendResponse(w, &response)
}

func emptySchema() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}

func (h *MCPHandler) handleToolsList(w http.ResponseWriter, request *models.MCPRequest) {
	tools := []map[string]interface{}{
		{
			"name":        "analyze_texts",
			"description": "Build a new knowledge graph from historical passages, replacing the current one",
			"inputSchema": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"texts": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Historical passages, one text unit each",
					},
				},
				"required": []string{"texts"},
			},
		},
		{
			"name":        "rebuild",
			"description": "Rebuild the knowledge graph from the configured passage source",
			"inputSchema": emptySchema(),
		},
		{
			"name":        "conflicts_in_year",
			"description": "List every relationship edge dated to a year",
			"inputSchema": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"year": map[string]interface{}{"type": "string", "description": "A 4-digit year, e.g. 1965"},
				},
				"required": []string{"year"},
			},
		},
		{
			"name":        "relation_evolution",
			"description": "List the dated edges between two entities, in either direction",
			"inputSchema": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"entity1": map[string]interface{}{"type": "string", "description": "First entity name"},
					"entity2": map[string]interface{}{"type": "string", "description": "Second entity name"},
				},
				"required": []string{"entity1", "entity2"},
			},
		},
		{
			"name":        "timeline",
			"description": "Return all edges bucketed by year",
			"inputSchema": emptySchema(),
		},
		{
			"name":        "summary_report",
			"description": "Return conflict frequency, key participants per year and entity type frequency",
			"inputSchema": emptySchema(),
		},
		{
			"name":        "read_graph",
			"description": "Read the entire knowledge graph",
			"inputSchema": emptySchema(),
		},
	}

	response := models.MCPResponse{
		ID:      request.ID,
		JSONRPC: "2.0",
		Result:  map[string]interface{}{"tools": tools},
	}
	h.sendResponse(w, &response)
}

func (h *MCPHandler) handleToolsCall(ctx context.Context, w http.ResponseWriter, request *models.MCPRequest) {
	paramsBytes, _ := json.Marshal(request.Params)
	var params models.ToolCallParams
	if err := json.Unmarshal(paramsBytes, &params); err != nil {
		h.sendError(w, request.ID, codeInvalidParams, "Invalid params")
		return
	}

	var result interface{}
	var err error

	switch params.Name {
	case "analyze_texts":
		result, err = h.handleAnalyzeTexts(ctx, params.Arguments)
	case "rebuild":
		result, err = h.handleRebuild(ctx)
	case "conflicts_in_year":
		result, err = h.handleConflictsInYear(params.Arguments)
	case "relation_evolution":
		result, err = h.handleRelationEvolution(params.Arguments)
	case "timeline":
		result, err = h.handleTimeline()
	case "summary_report":
		result, err = h.handleSummaryReport()
	case "read_graph":
		result, err = h.handleReadGraph()
	default:
		h.sendError(w, request.ID, codeMethodNotFound, "Unknown tool: "+params.Name)
		return
	}

	if err != nil {
		logger.Error("Tool execution error", "tool", params.Name, "err", err)
		code := codeInternalError
		if errors.Is(err, errInvalidArguments) || errors.Is(err, graph.ErrMissingEntities) {
			code = codeInvalidParams
		}
		h.sendError(w, request.ID, code, err.Error())
		return
	}

	response := models.MCPResponse{
		ID:      request.ID,
		JSONRPC: "2.0",
		Result:  result,
	}
	h.sendResponse(w, &response)
}

var errInvalidArguments = errors.New("invalid arguments")

func decodeArgs(args map[string]interface{}, out interface{}) error {
	argsBytes, _ := json.Marshal(args)
	if err := json.Unmarshal(argsBytes, out); err != nil {
		return errors.Join(errInvalidArguments, err)
	}
	return nil
}

func textResult(v interface{}) (interface{}, error) {
	resultBytes, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return models.ToolResponse{
		Content: []models.ToolContent{{Type: "text", Text: string(resultBytes)}},
	}, nil
}

type buildSummary struct {
	ID       string   `json:"id"`
	Variant  string   `json:"variant"`
	Passages int      `json:"passages"`
	Skipped  []string `json:"skipped"`
	Nodes    int      `json:"nodes"`
	Edges    int      `json:"edges"`
}

func summarize(snap *knowledge.Snapshot) buildSummary {
	return buildSummary{
		ID:       snap.ID,
		Variant:  string(snap.Variant),
		Passages: snap.Passages,
		Skipped:  snap.Skipped,
		Nodes:    snap.Graph.NodeCount(),
		Edges:    snap.Graph.EdgeCount(),
	}
}

func (h *MCPHandler) handleAnalyzeTexts(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	var input models.AnalyzeTextsInput
	if err := decodeArgs(args, &input); err != nil {
		return nil, err
	}

	snap, err := h.manager.Rebuild(ctx, source.FromTexts(input.Texts))
	if err != nil {
		return nil, err
	}
	return textResult(summarize(snap))
}

func (h *MCPHandler) handleRebuild(ctx context.Context) (interface{}, error) {
	if h.source == nil {
		return nil, errors.New("no passage source configured")
	}
	snap, err := h.manager.Rebuild(ctx, h.source)
	if err != nil {
		return nil, err
	}
	return textResult(summarize(snap))
}

func (h *MCPHandler) handleConflictsInYear(args map[string]interface{}) (interface{}, error) {
	var input models.ConflictsInYearInput
	if err := decodeArgs(args, &input); err != nil {
		return nil, err
	}
	snap, err := h.manager.Current()
	if err != nil {
		return nil, err
	}
	edges, err := snap.Graph.Query(graph.QueryRequest{Kind: graph.QueryConflict, Year: input.Year})
	if err != nil {
		return nil, err
	}
	return textResult(nonNil(edges))
}

func (h *MCPHandler) handleRelationEvolution(args map[string]interface{}) (interface{}, error) {
	var input models.RelationEvolutionInput
	if err := decodeArgs(args, &input); err != nil {
		return nil, err
	}
	snap, err := h.manager.Current()
	if err != nil {
		return nil, err
	}
	edges, err := snap.Graph.Query(graph.QueryRequest{
		Kind:    graph.QueryEvolution,
		Entity1: input.Entity1,
		Entity2: input.Entity2,
	})
	if err != nil {
		return nil, err
	}
	return textResult(nonNil(edges))
}

func (h *MCPHandler) handleTimeline() (interface{}, error) {
	snap, err := h.manager.Current()
	if err != nil {
		return nil, err
	}
	return textResult(snap.Graph.Timeline())
}

func (h *MCPHandler) handleSummaryReport() (interface{}, error) {
	snap, err := h.manager.Current()
	if err != nil {
		return nil, err
	}
	return textResult(snap.Report())
}

func (h *MCPHandler) handleReadGraph() (interface{}, error) {
	snap, err := h.manager.Current()
	if err != nil {
		return nil, err
	}
	return textResult(map[string]interface{}{
		"id":      snap.ID,
		"builtAt": snap.BuiltAt,
		"nodes":   snap.Graph.Nodes(),
		"edges":   nonNil(snap.Graph.Edges()),
	})
}

func nonNil(edges []graph.Edge) []graph.Edge {
	if edges == nil {
		return []graph.Edge{}
	}
	return edges
}

func (h *MCPHandler) sendResponse(w http.ResponseWriter, response *models.MCPResponse) {
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

func (h *MCPHandler) sendError(w http.ResponseWriter, id interface{}, code int, message string) {
	response := models.MCPResponse{
		ID:      id,
		JSONRPC: "2.0",
		Error: &models.MCPError{
			Code:    code,
			Message: message,
		},
	}
	w.WriteHeader(http.StatusOK) // JSON-RPC errors use 200 status
	json.NewEncoder(w).Encode(response)
}
