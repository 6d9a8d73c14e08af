package poll

import (
	"encoding/json"
	"os"
	"sort"
)

// MCPServer describes one configured MCP server.
type MCPServer struct {
	Name    string
	Command string
	URL     string
}

// FetchMCP lists the MCP servers configured in the host settings file.
// A missing file yields an empty list, not an error; servers are returned
// sorted by name.
func FetchMCP(settingsPath string) ([]MCPServer, error) {
	data, err := os.ReadFile(settingsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var settings struct {
		MCPServers map[string]struct {
			Command string `json:"command"`
			URL     string `json:"url"`
		} `json:"mcpServers"`
	}
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, err
	}

	servers := make([]MCPServer, 0, len(settings.MCPServers))
	for name, s := range settings.MCPServers {
		servers = append(servers, MCPServer{Name: name, Command: s.Command, URL: s.URL})
	}
	sort.Slice(servers, func(i, j int) bool { return servers[i].Name < servers[j].Name })
	return servers, nil
}
