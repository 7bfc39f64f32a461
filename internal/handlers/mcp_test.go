package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"history-graph/internal/extract"
	"history-graph/internal/graph"
	"history-graph/internal/knowledge"
	"history-graph/internal/models"
	"history-graph/internal/source"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	gaz := extract.NewGazetteer(map[string][]string{
		"GPE": {"India", "Pakistan", "China"},
	})
	manager := knowledge.NewManager(gaz, knowledge.Options{Variant: knowledge.VariantExtended})
	src := source.FromTexts([]string{"The 1962 war: India and China."})
	srv := httptest.NewServer(NewRouter(NewMCPHandler(manager, src, "test")))
	t.Cleanup(srv.Close)
	return srv
}

func call(t *testing.T, srv *httptest.Server, method string, params interface{}) models.MCPResponse {
	t.Helper()
	body, _ := json.Marshal(models.MCPRequest{ID: 1, JSONRPC: "2.0", Method: method, Params: params})
	resp, err := http.Post(srv.URL+"/", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	var out models.MCPResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return out
}

func callTool(t *testing.T, srv *httptest.Server, name string, args map[string]interface{}, out interface{}) *models.MCPError {
	t.Helper()
	resp := call(t, srv, "tools/call", models.ToolCallParams{Name: name, Arguments: args})
	if resp.Error != nil {
		return resp.Error
	}
	raw, _ := json.Marshal(resp.Result)
	var tr models.ToolResponse
	if err := json.Unmarshal(raw, &tr); err != nil || len(tr.Content) != 1 {
		t.Fatalf("bad tool response %s: %v", raw, err)
	}
	if out != nil {
		if err := json.Unmarshal([]byte(tr.Content[0].Text), out); err != nil {
			t.Fatalf("decode tool text %q: %v", tr.Content[0].Text, err)
		}
	}
	return nil
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != "OK" {
		t.Errorf("health = %d %q", resp.StatusCode, body)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS header")
	}
}

func TestInitializeAndToolsList(t *testing.T) {
	srv := newTestServer(t)

	resp := call(t, srv, "initialize", nil)
	if resp.Error != nil {
		t.Fatalf("initialize error: %+v", resp.Error)
	}
	if !strings.Contains(mustJSON(resp.Result), ProtocolVersion) {
		t.Errorf("initialize result = %v", resp.Result)
	}

	resp = call(t, srv, "tools/list", nil)
	listed := mustJSON(resp.Result)
	for _, name := range []string{"analyze_texts", "rebuild", "conflicts_in_year", "relation_evolution", "timeline", "summary_report", "read_graph"} {
		if !strings.Contains(listed, `"`+name+`"`) {
			t.Errorf("tools/list missing %s", name)
		}
	}

	if resp := call(t, srv, "bogus", nil); resp.Error == nil || resp.Error.Code != codeMethodNotFound {
		t.Errorf("bogus method = %+v", resp.Error)
	}
}

func TestQueryBeforeBuild(t *testing.T) {
	srv := newTestServer(t)
	mcpErr := callTool(t, srv, "timeline", nil, nil)
	if mcpErr == nil || mcpErr.Message != knowledge.ErrNoSnapshot.Error() {
		t.Errorf("error = %+v, want %q", mcpErr, knowledge.ErrNoSnapshot)
	}
}

func TestAnalyzeAndQuery(t *testing.T) {
	srv := newTestServer(t)

	var summary buildSummary
	if e := callTool(t, srv, "analyze_texts", map[string]interface{}{
		"texts": []string{
			"In 1965 war broke out between India and Pakistan.",
			"India and Pakistan signed an agreement in 1966.",
		},
	}, &summary); e != nil {
		t.Fatalf("analyze_texts: %+v", e)
	}
	if summary.Passages != 2 || summary.Edges != 2 || summary.ID == "" {
		t.Errorf("summary = %+v", summary)
	}

	var edges []graph.Edge
	if e := callTool(t, srv, "conflicts_in_year", map[string]interface{}{"year": "1965"}, &edges); e != nil {
		t.Fatal(e)
	}
	if len(edges) != 1 || edges[0].Type != models.RelationConflict {
		t.Errorf("conflicts_in_year = %+v", edges)
	}

	if e := callTool(t, srv, "relation_evolution", map[string]interface{}{"entity1": "Pakistan", "entity2": "India"}, &edges); e != nil {
		t.Fatal(e)
	}
	if len(edges) != 2 {
		t.Errorf("relation_evolution = %+v", edges)
	}

	var tl models.Timeline
	if e := callTool(t, srv, "timeline", nil, &tl); e != nil {
		t.Fatal(e)
	}
	if len(tl.Years) != 2 || tl.Events["1966"][0].Type != models.RelationAlliance {
		t.Errorf("timeline = %+v", tl)
	}

	var rep models.SummaryReport
	if e := callTool(t, srv, "summary_report", nil, &rep); e != nil {
		t.Fatal(e)
	}
	if rep.ConflictFrequency["1965"] != 1 || rep.EntityFrequency["GPE"] != 4 {
		t.Errorf("summary_report = %+v", rep)
	}

	var g struct {
		Nodes []graph.Node `json:"nodes"`
		Edges []graph.Edge `json:"edges"`
	}
	if e := callTool(t, srv, "read_graph", nil, &g); e != nil {
		t.Fatal(e)
	}
	if len(g.Nodes) != 2 || len(g.Edges) != 2 {
		t.Errorf("read_graph = %+v", g)
	}
}

func TestRebuildAndInvalidArguments(t *testing.T) {
	srv := newTestServer(t)

	var summary buildSummary
	if e := callTool(t, srv, "rebuild", nil, &summary); e != nil {
		t.Fatal(e)
	}
	if summary.Edges != 1 {
		t.Errorf("rebuild summary = %+v", summary)
	}

	if e := callTool(t, srv, "relation_evolution", map[string]interface{}{"entity1": "India"}, nil); e == nil || e.Code != codeInvalidParams {
		t.Errorf("missing entity error = %+v", e)
	}
	if e := callTool(t, srv, "conflicts_in_year", map[string]interface{}{"year": 1965}, nil); e == nil || e.Code != codeInvalidParams {
		t.Errorf("numeric year error = %+v", e)
	}
	if e := callTool(t, srv, "nope", nil, nil); e == nil || e.Code != codeMethodNotFound {
		t.Errorf("unknown tool error = %+v", e)
	}
}

func mustJSON(v interface{}) string {
	b, _ := json.Marshal(v)
	return string(b)
}
