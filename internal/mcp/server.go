package mcp

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/iammorganparry/journal/internal/models"
)

const protocolVersion = "2024-11-05"

// Server implements an MCP stdio server that delegates to the journal's
// HTTP JSON API.
type Server struct {
	serverURL string
	passcode  string
	client    *http.Client
}

// NewServer creates a new MCP server. passcode is sent as a bearer token
// when the journal server is gated.
func NewServer(serverURL, passcode string) *Server {
	return &Server{
		serverURL: strings.TrimRight(serverURL, "/"),
		passcode:  passcode,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Run starts the stdio event loop. Blocks until stdin is closed.
func (s *Server) Run() error {
	return s.Serve(os.Stdin, os.Stdout)
}

// Serve reads one JSON-RPC message per line from in and writes responses
// to out.
func (s *Server) Serve(in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	// Increase buffer for large messages
	buf := make([]byte, 0, 1024*1024)
	scanner.Buffer(buf, 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			writeResponse(out, errorResponse(nil, -32700, "parse error: "+err.Error()))
			continue
		}

		if resp := s.handleRequest(&req); resp != nil {
			writeResponse(out, resp)
		}
	}

	return scanner.Err()
}

func (s *Server) handleRequest(req *Request) *Response {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "initialized", "notifications/initialized":
		// Notification, no response
		return nil
	case "tools/list":
		return &Response{JSONRPC: "2.0", ID: req.ID, Result: ToolsListResult{Tools: ToolDefinitions()}}
	case "tools/call":
		return s.handleToolsCall(req)
	case "ping":
		return &Response{JSONRPC: "2.0", ID: req.ID, Result: map[string]string{}}
	default:
		return errorResponse(req.ID, -32601, "method not found: "+req.Method)
	}
}

func (s *Server) handleInitialize(req *Request) *Response {
	return &Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: InitializeResult{
			ProtocolVersion: protocolVersion,
			Capabilities: ServerCapabilities{
				Tools: &ToolCapabilities{},
			},
			ServerInfo: ServerInfo{
				Name:    "journal",
				Version: "1.0.0",
			},
		},
	}
}

func (s *Server) handleToolsCall(req *Request) *Response {
	paramsBytes, err := json.Marshal(req.Params)
	if err != nil {
		return errorResponse(req.ID, -32602, "invalid params")
	}

	var params CallToolParams
	if err := json.Unmarshal(paramsBytes, &params); err != nil {
		return errorResponse(req.ID, -32602, "invalid params: "+err.Error())
	}

	result, isError := s.dispatchTool(params.Name, params.Arguments)

	return &Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: CallToolResult{
			Content: []ContentBlock{{Type: "text", Text: result}},
			IsError: isError,
		},
	}
}

func (s *Server) dispatchTool(name string, args map[string]any) (string, bool) {
	switch name {
	case "journal_add":
		return s.toolAdd(args)
	case "journal_list":
		return s.toolList(args)
	case "journal_stats":
		return s.httpDo(http.MethodGet, "/api/stats", nil)
	case "journal_export":
		return s.toolExport(args)
	default:
		return fmt.Sprintf("unknown tool: %s", name), true
	}
}

// --- Tool implementations (HTTP delegation) ---

func (s *Server) toolAdd(args map[string]any) (string, bool) {
	kind, err := getKind(args)
	if err != nil {
		return err.Error(), true
	}
	raw, _ := args["fields"].(map[string]any)
	fields := make(map[string]string, len(raw))
	for k, v := range raw {
		if str, ok := v.(string); ok {
			fields[k] = str
		} else if v != nil {
			fields[k] = fmt.Sprint(v)
		}
	}
	return s.httpDo(http.MethodPost, "/api/records/"+string(kind), models.SubmitRequest{Fields: fields})
}

func (s *Server) toolList(args map[string]any) (string, bool) {
	kind, err := getKind(args)
	if err != nil {
		return err.Error(), true
	}
	return s.httpDo(http.MethodGet, "/api/records/"+string(kind), nil)
}

func (s *Server) toolExport(args map[string]any) (string, bool) {
	switch getString(args, "format", "markdown") {
	case "markdown":
		return s.httpDo(http.MethodGet, "/api/export/markdown", nil)
	case "csv":
		kind, err := getKind(args)
		if err != nil {
			return err.Error(), true
		}
		return s.httpDo(http.MethodGet, "/api/export/csv/"+string(kind), nil)
	default:
		return "format must be markdown or csv", true
	}
}

// --- HTTP helpers ---

func (s *Server) httpDo(method, path string, body any) (string, bool) {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Sprintf("marshal error: %s", err), true
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, s.serverURL+path, reader)
	if err != nil {
		return fmt.Sprintf("request error: %s", err), true
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.passcode != "" {
		req.Header.Set("Authorization", "Bearer "+s.passcode)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Sprintf("HTTP error: %s", err), true
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Sprintf("read error: %s", err), true
	}

	return string(respBody), resp.StatusCode >= 400
}

// --- Response helpers ---

func writeResponse(w io.Writer, resp *Response) {
	data, _ := json.Marshal(resp)
	fmt.Fprintf(w, "%s\n", data)
}

func errorResponse(id any, code int, message string) *Response {
	return &Response{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &RPCError{Code: code, Message: message},
	}
}

// --- Argument helpers ---

func getString(args map[string]any, key, fallback string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func getKind(args map[string]any) (models.Kind, error) {
	return models.ParseKind(getString(args, "kind", ""))
}
