package dvctl

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/gosuri/uitable"
	"github.com/spf13/pflag"

	"github.com/larsks/dronevision/internal/cli"
	"github.com/larsks/dronevision/internal/fleet"
	"github.com/larsks/dronevision/internal/session"
	"github.com/larsks/dronevision/internal/telemetry"
	"github.com/larsks/dronevision/internal/version"
)

// APIResponse represents the standard API response format
type APIResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// HTTPClient interface for testing
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Handler implements the dvctl command handler
type Handler struct {
	config     *Config
	httpClient HTTPClient
	stdout     io.Writer
	stderr     io.Writer

	jsonOutput bool
}

// NewHandler creates a new dvctl handler
func NewHandler() *Handler {
	return &Handler{
		httpClient: &http.Client{},
		stdout:     os.Stdout,
		stderr:     os.Stderr,
	}
}

// AddFlags adds command-specific flags
func (h *Handler) AddFlags(fs *pflag.FlagSet) {
	fs.BoolVarP(&h.jsonOutput, "json", "j", false, "Print raw JSON instead of tables")
}

// Execute implements the cli.SubCommandHandler interface
func (h *Handler) Execute(cmdArgs *cli.CommandArgs) error {
	h.config = cmdArgs.Config.(*Config)

	if cmdArgs.Command == cli.CommandHelp || len(cmdArgs.Args) == 0 {
		h.showHelp()
		return nil
	}

	command := cmdArgs.Args[0]
	args := cmdArgs.Args[1:]

	switch command {
	case cli.CommandVersion:
		version.ShowVersion(h.stdout)
		return nil
	case cli.CommandHelp:
		h.showHelp()
		return nil
	case "assets":
		return h.cmdAssets(args)
	case "open":
		return h.cmdOpen(args)
	case "show":
		return h.withSession(command, args, h.cmdShow)
	case "tab":
		return h.cmdTab(args)
	case "select":
		return h.cmdSelect(args)
	case "thermal":
		return h.withSession(command, args, func(id string) error {
			return h.postView(id, "/thermal", nil)
		})
	case "scan", "report":
		return h.withSession(command, args, func(id string) error {
			return h.postView(id, "/action", map[string]string{"kind": command})
		})
	case "tick":
		return h.withSession(command, args, h.cmdTick)
	case "logs":
		return h.withSession(command, args, h.cmdLogs)
	case "close":
		return h.withSession(command, args, h.cmdClose)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownCommand, command)
	}
}

func (h *Handler) showHelp() {
	fmt.Fprintf(h.stdout, `dvctl - Command line client for the DroneVision mission control API

Usage: dvctl [flags] <command> [arguments]

Commands:
  assets                      List the inspected assets
  open                        Open a dashboard session
  show <session>              Show the dashboard state of a session
  tab <session> <tab>         Switch the viewport (map, camera, analytics)
  select <session> <asset>    Select an asset by id
  thermal <session>           Toggle the thermal camera mode
  scan <session>              Trigger a scan
  report <session>            Trigger report generation
  tick <session>              Append one telemetry entry
  logs <session>              Show the telemetry log
  close <session>             Close a session
  help                        Show this help
  version                     Show version information

Flags:
  --config string       Config file to use (default "%s")
  -h, --help            Show help
  -j, --json            Print raw JSON instead of tables
  --server-url string   API server URL (default "%s")
  --version             Show version and exit
`, getDefaultConfigFile(), defaultServerURL)
}

// withSession checks that args holds exactly one session id.
func (h *Handler) withSession(command string, args []string, fn func(id string) error) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: %s <session>", ErrUsage, command)
	}
	return fn(args[0])
}

func (h *Handler) cmdAssets(args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("%w: assets", ErrUsage)
	}

	var assets []fleet.Asset
	raw, err := h.call(http.MethodGet, "/api/assets", nil, &assets)
	if err != nil {
		return err
	}
	if h.jsonOutput {
		return h.printJSON(raw)
	}

	table := uitable.New()
	table.AddRow("ID", "TYPE", "STATUS", "HEALTH", "TEMPERATURE", "LAST SCAN")
	for _, a := range assets {
		table.AddRow(a.ID, a.Type, a.Status, fmt.Sprintf("%d%%", a.Health), a.Temperature, a.LastScanAgo)
	}
	fmt.Fprintln(h.stdout, table) //nolint:errcheck
	return nil
}

func (h *Handler) cmdOpen(args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("%w: open", ErrUsage)
	}

	var view session.View
	raw, err := h.call(http.MethodPost, "/api/sessions", nil, &view)
	if err != nil {
		return err
	}
	if h.jsonOutput {
		return h.printJSON(raw)
	}

	fmt.Fprintf(h.stdout, "Session opened: %s\n", view.ID) //nolint:errcheck
	return nil
}

func (h *Handler) cmdShow(id string) error {
	var view session.View
	raw, err := h.call(http.MethodGet, sessionPath(id, ""), nil, &view)
	if err != nil {
		return err
	}
	if h.jsonOutput {
		return h.printJSON(raw)
	}

	h.printView(view)
	fmt.Fprintln(h.stdout) //nolint:errcheck
	h.printEntries(view.Telemetry)
	return nil
}

func (h *Handler) cmdTab(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: tab <session> <map|camera|analytics>", ErrUsage)
	}
	return h.postView(args[0], "/tab", map[string]string{"tab": args[1]})
}

func (h *Handler) cmdSelect(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: select <session> <asset-id>", ErrUsage)
	}

	assetID, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidAssetID, args[1])
	}

	return h.postView(args[0], "/asset", map[string]int{"id": assetID})
}

func (h *Handler) cmdTick(id string) error {
	var entry telemetry.Entry
	raw, err := h.call(http.MethodPost, sessionPath(id, "/telemetry/tick"), nil, &entry)
	if err != nil {
		return err
	}
	if h.jsonOutput {
		return h.printJSON(raw)
	}

	fmt.Fprintln(h.stdout, entry) //nolint:errcheck
	return nil
}

func (h *Handler) cmdLogs(id string) error {
	var entries []telemetry.Entry
	raw, err := h.call(http.MethodGet, sessionPath(id, "/telemetry"), nil, &entries)
	if err != nil {
		return err
	}
	if h.jsonOutput {
		return h.printJSON(raw)
	}

	h.printEntries(entries)
	return nil
}

func (h *Handler) cmdClose(id string) error {
	if _, err := h.call(http.MethodDelete, sessionPath(id, ""), nil, nil); err != nil {
		return err
	}

	fmt.Fprintf(h.stdout, "Session closed: %s\n", id) //nolint:errcheck
	return nil
}

// postView sends a dashboard operation and prints the resulting view.
func (h *Handler) postView(id, suffix string, body any) error {
	var view session.View
	raw, err := h.call(http.MethodPost, sessionPath(id, suffix), body, &view)
	if err != nil {
		return err
	}
	if h.jsonOutput {
		return h.printJSON(raw)
	}

	h.printView(view)
	return nil
}

func (h *Handler) printView(view session.View) {
	dash := view.Dashboard

	selected := "none"
	if dash.SelectedAsset != nil {
		selected = dash.SelectedAsset.String()
	}

	action := "idle"
	if dash.ActionStatus != "" {
		action = fmt.Sprintf("%s (%s)", dash.ActionStatus, dash.ActionMessage)
	}

	table := uitable.New()
	table.AddRow("SESSION:", view.ID)
	table.AddRow("VERSION:", dash.Version)
	table.AddRow("TAB:", dash.ActiveTab)
	table.AddRow("ASSET:", selected)
	table.AddRow("THERMAL:", dash.ThermalMode)
	table.AddRow("ACTION:", action)
	table.AddRow("TUTORIAL:", dash.TutorialVisible)
	fmt.Fprintln(h.stdout, table) //nolint:errcheck
}

func (h *Handler) printEntries(entries []telemetry.Entry) {
	table := uitable.New()
	table.MaxColWidth = 60
	table.AddRow("SEQ", "TIME", "TYPE", "EVENT")
	for _, e := range entries {
		table.AddRow(e.Seq, e.Timestamp, e.Severity, e.Message)
	}
	fmt.Fprintln(h.stdout, table) //nolint:errcheck
}

func (h *Handler) printJSON(raw json.RawMessage) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return fmt.Errorf("error formatting response: %w", err)
	}
	buf.WriteByte('\n')
	_, err := buf.WriteTo(h.stdout)
	return err
}

func sessionPath(id, suffix string) string {
	return "/api/sessions/" + url.PathEscape(id) + suffix
}

// call performs a request and decodes the data field of the response into
// out when out is not nil. It returns the raw data field.
func (h *Handler) call(method, path string, body any, out any) (json.RawMessage, error) {
	resp, err := h.makeAPIRequest(method, path, body)
	if err != nil {
		return nil, err
	}

	var apiResp APIResponse
	if err := json.Unmarshal(resp, &apiResp); err != nil {
		return nil, fmt.Errorf("error parsing response: %w", err)
	}

	if apiResp.Status != "ok" {
		return nil, fmt.Errorf("%w: %s", ErrAPI, apiResp.Message)
	}

	if out != nil && len(apiResp.Data) > 0 {
		if err := json.Unmarshal(apiResp.Data, out); err != nil {
			return nil, fmt.Errorf("error parsing response data: %w", err)
		}
	}

	return apiResp.Data, nil
}

func (h *Handler) makeAPIRequest(method, path string, body any) ([]byte, error) {
	target := strings.TrimSuffix(h.config.ServerURL, "/") + path

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("error marshaling request: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, target, reqBody)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %w", err)
	}

	return respBody, nil
}
