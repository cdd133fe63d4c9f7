package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/memory-match-game/game/engine"
	"github.com/wricardo/memory-match-game/game/service"
)

const (
	serverName    = "Memory Match Game"
	serverVersion = "1.0.0"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(true),
		server.WithInstructions(`Memory Match Game - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Cards lie face down in a grid. Flip two per turn; equal symbols stay revealed.
Reveal every pair to win.

AVAILABLE TOOLS:
- create_session, list_sessions, get_session: manage sessions
- game_state: current board, score, moves and time
- select_card: flip a card by index
- tick: advance game time so pending pairs resolve
- set_grid_size, reset_game: deal a new board
- save_game, load_game: store or restore progress
- list_configs: available board presets
- game_instructions: full rules

NOTE: After two cards are flipped the pair resolves after a short delay.
Call tick (or wait for the server clock) before the next selection.`),
	)

	c.registerTools()
}

func sessionParam() mcp.ToolOption {
	return mcp.WithString("session_id",
		mcp.Required(),
		mcp.Description("Session ID"),
	)
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.NewTool("create_session",
		mcp.WithDescription("Create a new game session with optional config selection"),
		mcp.WithString("config_id",
			mcp.Description("Config to use, see list_configs (optional, defaults to classic)"),
		),
	), c.handleCreateSession)

	c.mcpServer.AddTool(mcp.NewTool("list_sessions",
		mcp.WithDescription("List all active game sessions"),
	), c.handleListSessions)

	c.mcpServer.AddTool(mcp.NewTool("get_session",
		mcp.WithDescription("Get details of a specific session"),
		sessionParam(),
	), c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.NewTool("game_state",
		mcp.WithDescription("Get the current game state"),
		sessionParam(),
	), c.handleGameState)

	c.mcpServer.AddTool(mcp.NewTool("select_card",
		mcp.WithDescription("Flip the card at a grid index (row * columns + column)"),
		sessionParam(),
		mcp.WithNumber("index",
			mcp.Required(),
			mcp.Description("Zero-based card index"),
			mcp.Min(0),
		),
	), c.handleSelectCard)

	c.mcpServer.AddTool(mcp.NewTool("set_grid_size",
		mcp.WithDescription("Deal a new board with the given dimensions; rows * columns must be even"),
		sessionParam(),
		mcp.WithNumber("rows", mcp.Required(), mcp.Min(engine.MinGridDimension)),
		mcp.WithNumber("columns", mcp.Required(), mcp.Min(engine.MinGridDimension)),
	), c.handleSetGridSize)

	c.mcpServer.AddTool(mcp.NewTool("reset_game",
		mcp.WithDescription("Deal a fresh board of the current size"),
		sessionParam(),
	), c.handleReset)

	c.mcpServer.AddTool(mcp.NewTool("tick",
		mcp.WithDescription("Advance game time so pending pairs resolve"),
		sessionParam(),
		mcp.WithNumber("seconds",
			mcp.Description("Seconds to advance (default 1)"),
			mcp.DefaultNumber(1),
			mcp.Min(0),
		),
	), c.handleTick)

	// Snapshots
	c.mcpServer.AddTool(mcp.NewTool("save_game",
		mcp.WithDescription("Save score, moves and elapsed time for the session"),
		sessionParam(),
	), c.handleSaveGame)

	c.mcpServer.AddTool(mcp.NewTool("load_game",
		mcp.WithDescription("Restore the saved score, moves and time; a new board is dealt"),
		sessionParam(),
	), c.handleLoadGame)

	// Configuration and help
	c.mcpServer.AddTool(mcp.NewTool("list_configs",
		mcp.WithDescription("List available game configurations"),
	), c.handleListConfigs)

	c.mcpServer.AddTool(mcp.NewTool("game_instructions",
		mcp.WithDescription("Get the complete game rules"),
	), c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body := map[string]string{}
	if configID := request.GetString("config_id", ""); configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, http.MethodPost, "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n\n%s",
		session.ID, session.ConfigName, formatGameState(session.GameState))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, http.MethodGet, "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result strings.Builder
	fmt.Fprintf(&result, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		phase := "unknown"
		if s.GameState != nil {
			phase = string(s.GameState.Phase)
		}
		fmt.Fprintf(&result, "- %s (Config: %s, Phase: %s, Created: %s)\n",
			s.ID, s.ConfigName, phase, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, http.MethodGet, sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var state engine.GameState
	if err := c.apiCall(ctx, http.MethodGet, sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleSelectCard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	index, err := request.RequireInt("index")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result service.ActionResult
	err = c.apiCall(ctx, http.MethodPost, sessionPath(sessionID, "/select"), map[string]int{"index": index}, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatActionResult(&result)), nil
}

func (c *Client) handleSetGridSize(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rows, err := request.RequireInt("rows")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	columns, err := request.RequireInt("columns")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result service.ActionResult
	body := map[string]int{"rows": rows, "columns": columns}
	if err := c.apiCall(ctx, http.MethodPost, sessionPath(sessionID, "/grid"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatActionResult(&result)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result service.ActionResult
	if err := c.apiCall(ctx, http.MethodPost, sessionPath(sessionID, "/reset"), nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatActionResult(&result)), nil
}

func (c *Client) handleTick(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	seconds := request.GetFloat("seconds", 1)
	if seconds < 0 {
		return mcp.NewToolResultError("seconds must be non-negative"), nil
	}

	var result service.ActionResult
	body := map[string]float64{"delta_seconds": seconds}
	if err := c.apiCall(ctx, http.MethodPost, sessionPath(sessionID, "/tick"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatActionResult(&result)), nil
}

func (c *Client) handleSaveGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var response struct {
		Message  string               `json:"message"`
		Snapshot *engine.SaveSnapshot `json:"snapshot"`
	}
	if err := c.apiCall(ctx, http.MethodPost, sessionPath(sessionID, "/save"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSnapshot(response.Message, response.Snapshot)), nil
}

func (c *Client) handleLoadGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result service.ActionResult
	if err := c.apiCall(ctx, http.MethodPost, sessionPath(sessionID, "/load"), nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatActionResult(&result)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, http.MethodGet, "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result strings.Builder
	result.WriteString("Available Configurations:\n\n")
	for _, config := range configs {
		fmt.Fprintf(&result, "• %s (config_id: %s)\n  %s\n  Grid: %dx%d, Symbols: %d\n\n",
			config.Name, config.ConfigID, config.Description, config.Rows, config.Columns, config.SymbolCount)
	}

	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `🃏 Memory Match Game - Complete Instructions

GAME OBJECTIVE:
Every card has exactly one twin. Reveal all pairs in as few moves as possible.

BOARD:
• Cards are numbered row by row from 0: index = row * columns + column
• ?? - face-down card (symbol hidden)
• a symbol - face-up card waiting to be resolved
• [symbol] - matched card, stays revealed

TURN SEQUENCE:
1. select_card on a face-down card: it flips face up
2. select_card on a second face-down card: one move is counted
3. The pair resolves after a delay:
   • Match: both stay revealed and the score grows by the match reward
   • Mismatch: both flip back face down
4. While a pair is resolving selections are ignored. Use tick to advance time
   when the server clock is disabled.

SCORING:
• Each matched pair adds the configured reward (usually 10)
• Moves count pairs of selections, matched or not
• Elapsed time runs from the first flip until the last pair is matched

VICTORY:
• The game is won when every pair is matched
• Time stops and further selections are ignored

SAVE / LOAD:
• save_game stores score, moves, grid size and elapsed time
• load_game restores those totals on a freshly dealt board of the saved size

STRATEGY:
• Remember every symbol you have seen and its index
• Flip an unknown card first; if its twin is already known, pick it next
• Selections on face-up or matched cards are ignored and cost nothing

SESSION MANAGEMENT:
• Multiple game sessions can run simultaneously
• Each session has its own board, score and clock

Good luck and happy matching! 🧠`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	save := "no"
	if session.HasSave {
		save = "yes"
	}
	return fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\nSaved game: %s\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		save,
		formatGameState(session.GameState))
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var result strings.Builder

	fmt.Fprintf(&result, "Phase: %s | Score: %d | Moves: %d | Time: %.1fs | Pairs: %d/%d\n",
		state.Phase, state.Score, state.Moves, state.ElapsedTime,
		len(state.MatchedPairIDs), state.TotalPairs)
	if len(state.PendingSelection) > 0 {
		fmt.Fprintf(&result, "Pending: %v\n", state.PendingSelection)
	}
	result.WriteString("\n")

	for row := 0; row < state.Rows; row++ {
		for col := 0; col < state.Columns; col++ {
			index := row*state.Columns + col
			if index >= len(state.Cards) {
				break
			}
			if col > 0 {
				result.WriteString("  ")
			}
			fmt.Fprintf(&result, "%2d:%s", index, cardFace(state.Cards[index]))
		}
		result.WriteString("\n")
	}

	if state.Victory {
		result.WriteString("\n🎉 VICTORY!")
	}

	if state.Message != "" {
		fmt.Fprintf(&result, "\nMessage: %s", state.Message)
	}

	return result.String()
}

func cardFace(card engine.CardView) string {
	switch {
	case card.Matched:
		return "[" + card.Symbol + "]"
	case card.FaceUp:
		return card.Symbol
	default:
		return "??"
	}
}

func formatActionResult(result *service.ActionResult) string {
	var b strings.Builder

	if !result.Success {
		b.WriteString("⚠️ Ignored")
		if result.Message != "" {
			b.WriteString(": " + result.Message)
		}
		b.WriteString("\n")
	} else if result.Message != "" {
		b.WriteString(result.Message + "\n")
	}

	for _, ev := range result.Events {
		switch ev.Type {
		case string(engine.EventMatch):
			fmt.Fprintf(&b, "✅ match %v\n", ev.Cards)
		case string(engine.EventMismatch):
			fmt.Fprintf(&b, "❌ mismatch %v\n", ev.Cards)
		case string(engine.EventWon):
			fmt.Fprintf(&b, "🏆 won: score %d, moves %d, time %.1fs\n", ev.Score, ev.Moves, ev.ElapsedTime)
		}
	}

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatSnapshot(message string, snapshot *engine.SaveSnapshot) string {
	if snapshot == nil {
		return message
	}
	return fmt.Sprintf("%s\nScore: %d | Moves: %d | Grid: %dx%d | Time: %.1fs | Matched pairs: %d",
		message, snapshot.Score, snapshot.Moves, snapshot.Rows, snapshot.Columns,
		snapshot.ElapsedTime, len(snapshot.MatchedPairIDs))
}
